package export

import (
	"fmt"
	"os"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	// ContentType is the media type of the generated workbooks.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout  = "2006-01-02"
)

// Filename is the download name offered to clients for kind.
func Filename(kind domain.Kind) string {
	if kind == domain.KindIncome {
		return "income_details.xlsx"
	}
	return "expense_details.xlsx"
}

func sheetName(kind domain.Kind) string {
	if kind == domain.KindIncome {
		return "Income"
	}
	return "Expense"
}

func header(kind domain.Kind) []interface{} {
	if kind == domain.KindIncome {
		return []interface{}{"Source", "Amount", "Date"}
	}
	return []interface{}{"Category", "Amount", "Date"}
}

// WriteTempWorkbook writes txs as a one-sheet workbook to a uniquely named
// temporary file. The caller must call cleanup once the file has been sent.
func WriteTempWorkbook(kind domain.Kind, txs []domain.Transaction) (path string, cleanup func(), err error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(kind)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", nil, fmt.Errorf("WriteTempWorkbook: rename sheet: %w", err)
	}

	hdr := header(kind)
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return "", nil, fmt.Errorf("WriteTempWorkbook: header: %w", err)
	}

	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", nil, fmt.Errorf("WriteTempWorkbook: cell name: %w", err)
		}
		row := []interface{}{tx.Label, tx.Amount, tx.Date.Format(dateLayout)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", nil, fmt.Errorf("WriteTempWorkbook: row %d: %w", i+2, err)
		}
	}

	tmp, err := os.CreateTemp("", sheet+"-details-*.xlsx")
	if err != nil {
		return "", nil, fmt.Errorf("WriteTempWorkbook: create temp file: %w", err)
	}
	path = tmp.Name()
	cleanup = func() { _ = os.Remove(path) }

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("WriteTempWorkbook: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("WriteTempWorkbook: close: %w", err)
	}

	return path, cleanup, nil
}
