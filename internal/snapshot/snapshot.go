package snapshot

import (
	"fmt"
	"math"

	"github.com/dvloznov/finance-advisor/internal/aggregate"
	"github.com/dvloznov/finance-advisor/internal/domain"
)

const (
	// DaysPerMonth is the fixed denominator for the daily average, regardless
	// of the real month length.
	DaysPerMonth = 30
	// TopCategoryCount is how many categories the snapshot highlights.
	TopCategoryCount = 3
)

// Build derives a FinancialSnapshot from totals, per-category totals and the
// recent transactions. categoryTotals may be in any order. Build is pure: the
// same inputs always give the same snapshot.
func Build(totals domain.Totals, categoryTotals []domain.CategoryTotal, recent []domain.Transaction) (domain.FinancialSnapshot, error) {
	if !finite(totals.Income) || !finite(totals.Expenses) {
		return domain.FinancialSnapshot{}, fmt.Errorf("%w: income=%v expenses=%v", domain.ErrInvalidSnapshot, totals.Income, totals.Expenses)
	}

	net := totals.Income - totals.Expenses
	savings := math.Max(0, net)

	rate := 0
	if totals.Income > 0 {
		rate = roundInt(savings / totals.Income * 100)
	}

	all := make([]domain.CategoryTotal, len(categoryTotals))
	copy(all, categoryTotals)
	aggregate.SortByTotalDesc(all)
	for i := range all {
		all[i].Percentage = percentOf(all[i].Total, totals.Expenses)
	}

	top := all
	if len(top) > TopCategoryCount {
		top = top[:TopCategoryCount]
	}
	top = append([]domain.CategoryTotal(nil), top...)

	rec := append([]domain.Transaction(nil), recent...)

	return domain.FinancialSnapshot{
		TotalIncome:          totals.Income,
		TotalExpenses:        totals.Expenses,
		Savings:              savings,
		SavingsRate:          rate,
		DailyAverageSpending: totals.Expenses / DaysPerMonth,
		TopCategories:        top,
		Categories:           all,
		NetBalance:           net,
		RecentTransactions:   rec,
	}, nil
}

func percentOf(part, whole float64) int {
	if whole == 0 {
		return 0
	}
	return roundInt(part / whole * 100)
}

// roundInt rounds to the nearest integer, halves rounding up.
func roundInt(v float64) int {
	return int(math.Floor(v + 0.5))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
