package export

import (
	"os"
	"testing"
	"time"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func TestWriteTempWorkbook(t *testing.T) {
	txs := []domain.Transaction{
		{Kind: domain.KindExpense, Label: "Rent", Amount: 900, Date: time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)},
		{Kind: domain.KindExpense, Label: "Food", Amount: 42.5, Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	path, cleanup, err := WriteTempWorkbook(domain.KindExpense, txs)
	if err != nil {
		t.Fatalf("WriteTempWorkbook() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	rows, err := f.GetRows("Expense")
	f.Close()
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}

	want := [][]string{
		{"Category", "Amount", "Date"},
		{"Rent", "900", "2025-07-02"},
		{"Food", "42.5", "2025-07-01"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed, stat error = %v", path, err)
	}
}

func TestWriteTempWorkbook_UniquePaths(t *testing.T) {
	p1, c1, err := WriteTempWorkbook(domain.KindIncome, nil)
	if err != nil {
		t.Fatalf("WriteTempWorkbook() error = %v", err)
	}
	defer c1()
	p2, c2, err := WriteTempWorkbook(domain.KindIncome, nil)
	if err != nil {
		t.Fatalf("WriteTempWorkbook() error = %v", err)
	}
	defer c2()

	if p1 == p2 {
		t.Errorf("concurrent exports share path %s", p1)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(domain.KindIncome); got != "income_details.xlsx" {
		t.Errorf("Filename(income) = %s", got)
	}
	if got := Filename(domain.KindExpense); got != "expense_details.xlsx" {
		t.Errorf("Filename(expense) = %s", got)
	}
}
