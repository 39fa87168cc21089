package finance

import (
	"time"

	"github.com/dvloznov/finance-advisor/internal/domain"
)

// TransactionView is the JSON shape of a transaction. Expenses carry
// category and incomes carry source.
type TransactionView struct {
	ID        string      `json:"_id"`
	UserID    string      `json:"userId"`
	Type      domain.Kind `json:"type"`
	Category  string      `json:"category,omitempty"`
	Source    string      `json:"source,omitempty"`
	Amount    float64     `json:"amount"`
	Icon      string      `json:"icon"`
	Date      time.Time   `json:"date"`
	CreatedAt time.Time   `json:"createdAt"`
}

// View converts tx to its JSON shape.
func View(tx domain.Transaction) TransactionView {
	v := TransactionView{
		ID:        tx.ID,
		UserID:    tx.OwnerID,
		Type:      tx.Kind,
		Amount:    tx.Amount,
		Icon:      tx.Icon,
		Date:      tx.Date,
		CreatedAt: tx.CreatedAt,
	}
	if tx.Kind == domain.KindIncome {
		v.Source = tx.Label
	} else {
		v.Category = tx.Label
	}
	return v
}

// Views converts a listing. The result is never nil so it encodes as [].
func Views(txs []domain.Transaction) []TransactionView {
	out := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, View(tx))
	}
	return out
}
