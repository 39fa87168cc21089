package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/dvloznov/finance-advisor/internal/domain"
)

// SumAmounts adds up the amounts of txs. Non-finite or negative amounts are
// treated as malformed and skipped.
func SumAmounts(txs []domain.Transaction) float64 {
	var total float64
	for _, tx := range txs {
		if !validAmount(tx.Amount) {
			continue
		}
		total += tx.Amount
	}
	return total
}

// AggregateByCategory groups txs by label and sums each group. Records with an
// empty label or a malformed amount are skipped. The icon of the first record
// seen for a label is kept. The result is sorted by total, highest first.
func AggregateByCategory(txs []domain.Transaction) []domain.CategoryTotal {
	index := make(map[string]int)
	var out []domain.CategoryTotal

	for _, tx := range txs {
		if tx.Label == "" || !validAmount(tx.Amount) {
			continue
		}
		i, ok := index[tx.Label]
		if !ok {
			index[tx.Label] = len(out)
			out = append(out, domain.CategoryTotal{Category: tx.Label, Icon: tx.Icon})
			i = len(out) - 1
		}
		out[i].Total += tx.Amount
	}

	SortByTotalDesc(out)
	return out
}

// SortByTotalDesc orders totals by descending total, ties broken by label.
func SortByTotalDesc(totals []domain.CategoryTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Total != totals[j].Total {
			return totals[i].Total > totals[j].Total
		}
		return totals[i].Category < totals[j].Category
	})
}

// Windowed keeps the transactions dated at or after since.
func Windowed(txs []domain.Transaction, since time.Time) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Date.Before(since) {
			out = append(out, tx)
		}
	}
	return out
}

// Within keeps the transactions that fall inside w.
func Within(txs []domain.Transaction, w Window) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if w.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
