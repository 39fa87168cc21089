package domain

import (
	"time"
)

// Kind distinguishes the two transaction variants.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// DefaultIcon is stored when a transaction is created without an icon.
const DefaultIcon = "Other"

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// LabelField is the name of the grouping field for the kind:
// "category" for expenses and "source" for incomes.
func (k Kind) LabelField() string {
	if k == KindIncome {
		return "source"
	}
	return "category"
}

// Transaction is a single income or expense record owned by one user.
// Label holds the expense category or the income source.
type Transaction struct {
	ID        string
	OwnerID   string
	Kind      Kind
	Label     string
	Amount    float64
	Icon      string
	Date      time.Time
	CreatedAt time.Time
}

// WithDefaults fills the model-level defaults: icon falls back to DefaultIcon
// and an unset date falls back to now.
func (t Transaction) WithDefaults(now time.Time) Transaction {
	if t.Icon == "" {
		t.Icon = DefaultIcon
	}
	if t.Date.IsZero() {
		t.Date = now
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	return t
}

// CategoryTotal is the summed amount for one category or source label.
type CategoryTotal struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Icon       string  `json:"icon,omitempty"`
	Percentage int     `json:"percentage"`
}

// Totals is the pair of sums a snapshot is built from.
type Totals struct {
	Income   float64
	Expenses float64
}

// FinancialSnapshot is the fixed-shape summary rendered into prompts.
type FinancialSnapshot struct {
	TotalIncome          float64
	TotalExpenses        float64
	Savings              float64
	SavingsRate          int
	DailyAverageSpending float64
	TopCategories        []CategoryTotal
	Categories           []CategoryTotal
	NetBalance           float64
	RecentTransactions   []Transaction
}

// ChatMessage is one prior turn of a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
