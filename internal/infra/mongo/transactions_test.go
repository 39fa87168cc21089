package mongo

import (
	"testing"
	"time"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/store"
	"go.mongodb.org/mongo-driver/bson"
)

func TestOwnerFilter(t *testing.T) {
	since := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name     string
		q        store.Query
		wantDate bson.M
	}{
		{"no bounds", store.Query{}, nil},
		{"since only", store.Query{Since: since}, bson.M{"$gte": since}},
		{"both bounds", store.Query{Since: since, Until: until}, bson.M{"$gte": since, "$lte": until}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := ownerFilter("u1", tt.q)
			if filter["userId"] != "u1" {
				t.Errorf("userId = %v, want u1", filter["userId"])
			}

			date, ok := filter["date"].(bson.M)
			if tt.wantDate == nil {
				if ok {
					t.Errorf("unexpected date filter %v", date)
				}
				return
			}
			if !ok {
				t.Fatalf("missing date filter")
			}
			for k, v := range tt.wantDate {
				if date[k] != v {
					t.Errorf("date[%s] = %v, want %v", k, date[k], v)
				}
			}
		})
	}
}

func TestDocumentMapping(t *testing.T) {
	at := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)

	income := toDocument(domain.Transaction{OwnerID: "u1", Kind: domain.KindIncome, Label: "Salary", Amount: 10, Date: at})
	if income.Source != "Salary" || income.Category != "" {
		t.Errorf("income document = %+v, want Source set", income)
	}
	if got := income.toDomain(domain.KindIncome); got.Label != "Salary" {
		t.Errorf("income label = %q, want Salary", got.Label)
	}

	expense := toDocument(domain.Transaction{OwnerID: "u1", Kind: domain.KindExpense, Label: "Food", Amount: 10, Date: at})
	if expense.Category != "Food" || expense.Source != "" {
		t.Errorf("expense document = %+v, want Category set", expense)
	}
	if got := expense.toDomain(domain.KindExpense); got.Label != "Food" || got.OwnerID != "u1" {
		t.Errorf("expense = %+v", got)
	}
}
