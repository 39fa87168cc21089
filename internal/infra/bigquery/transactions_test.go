package bigquery

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/store"
)

func TestDatasetTable(t *testing.T) {
	ds := Dataset{Project: "proj", Dataset: "finance"}
	if got, want := ds.Table("expenses"), "`proj.finance.expenses`"; got != want {
		t.Errorf("Table() = %s, want %s", got, want)
	}
}

func TestWhereClause(t *testing.T) {
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		q          store.Query
		wantWhere  string
		wantParams int
	}{
		{"owner only", store.Query{}, "user_id = @user_id", 1},
		{"since", store.Query{Since: since}, "user_id = @user_id AND date >= @since", 2},
		{"range", store.Query{Since: since, Until: until}, "user_id = @user_id AND date >= @since AND date <= @until", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, params := whereClause("u1", tt.q)
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if len(params) != tt.wantParams {
				t.Errorf("got %d params, want %d", len(params), tt.wantParams)
			}
			if params[0].Value != "u1" {
				t.Errorf("user_id param = %v, want u1", params[0].Value)
			}
		})
	}
}

func TestTransactionRowToDomain(t *testing.T) {
	at := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	row := TransactionRow{
		ID:     "t1",
		UserID: "u1",
		Label:  bigquery.NullString{StringVal: "Food", Valid: true},
		Amount: bigquery.NullFloat64{Float64: 12, Valid: true},
		Date:   bigquery.NullTimestamp{Timestamp: at, Valid: true},
	}
	tx, ok := row.toDomain(domain.KindExpense)
	if !ok {
		t.Fatal("expected valid row")
	}
	if tx.Label != "Food" || tx.Amount != 12 || !tx.Date.Equal(at) {
		t.Errorf("toDomain() = %+v", tx)
	}

	row.Amount = bigquery.NullFloat64{}
	if _, ok := row.toDomain(domain.KindExpense); ok {
		t.Error("row with null amount should be rejected")
	}
}

func TestTableFor(t *testing.T) {
	if table, _ := tableFor(domain.KindIncome); table != incomesTable {
		t.Errorf("tableFor(income) = %s", table)
	}
	if _, err := tableFor(domain.Kind("transfer")); err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Errorf("tableFor(transfer) error = %v", err)
	}
}
