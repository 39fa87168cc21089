package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/dvloznov/finance-advisor/internal/api/middleware"
	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/export"
	"github.com/dvloznov/finance-advisor/internal/finance"
	"github.com/rs/zerolog"
)

// Ledger records and lists a user's transactions.
type Ledger interface {
	AddTransaction(ctx context.Context, userID string, kind domain.Kind, in finance.NewTransaction) (domain.Transaction, error)
	ListTransactions(ctx context.Context, userID string, kind domain.Kind) ([]domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID string, kind domain.Kind, id string) error
	ExportTransactions(ctx context.Context, userID string, kind domain.Kind) (path string, cleanup func(), err error)
}

// TransactionsHandler serves the endpoints of one transaction kind.
type TransactionsHandler struct {
	ledger Ledger
	kind   domain.Kind
	log    zerolog.Logger
}

// NewTransactionsHandler creates a handler for kind.
func NewTransactionsHandler(ledger Ledger, kind domain.Kind, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		ledger: ledger,
		kind:   kind,
		log:    log.With().Str("kind", string(kind)).Logger(),
	}
}

type transactionRequest struct {
	Category string      `json:"category"`
	Source   string      `json:"source"`
	Amount   json.Number `json:"amount"`
	Icon     string      `json:"icon"`
	Date     string      `json:"date"`
}

// transactionInput is validated after the label has been picked for the kind.
type transactionInput struct {
	Label  string  `json:"label" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
	Date   string  `json:"date" validate:"required"`
}

func (h *TransactionsHandler) parse(r *http.Request) (finance.NewTransaction, error) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		return finance.NewTransaction{}, err
	}

	in := transactionInput{Label: req.Category, Date: req.Date}
	if h.kind == domain.KindIncome {
		in.Label = req.Source
	}
	in.Label = strings.TrimSpace(in.Label)

	if req.Amount != "" {
		amount, err := req.Amount.Float64()
		if err != nil {
			return finance.NewTransaction{}, domain.NewValidationError("amount", "amount must be a number")
		}
		in.Amount = amount
	}

	if err := validateStruct(in); err != nil {
		if ve, ok := err.(*domain.ValidationError); ok && ve.Field == "label" {
			field := h.kind.LabelField()
			return finance.NewTransaction{}, domain.NewValidationError(field, field+" is required")
		}
		return finance.NewTransaction{}, err
	}

	date, err := parseDate("date", in.Date)
	if err != nil {
		return finance.NewTransaction{}, err
	}

	return finance.NewTransaction{
		Label:  in.Label,
		Amount: in.Amount,
		Icon:   strings.TrimSpace(req.Icon),
		Date:   date,
	}, nil
}

// Add handles POST /api/v1/expenses and POST /api/v1/incomes
func (h *TransactionsHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	in, err := h.parse(r)
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Server Error")
		return
	}

	tx, err := h.ledger.AddTransaction(ctx, userID, h.kind, in)
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Server Error")
		return
	}

	l := requestLog(r, h.log)
	l.Info().Str("user_id", userID).Str("id", tx.ID).Msg("Transaction added")
	middleware.WriteJSON(w, http.StatusCreated, finance.View(tx))
}

// List handles GET /api/v1/expenses and GET /api/v1/incomes
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	txs, err := h.ledger.ListTransactions(ctx, middleware.UserIDFromContext(ctx), h.kind)
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Server Error")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, finance.Views(txs))
}

// Delete handles DELETE /api/v1/expenses/{id} and DELETE /api/v1/incomes/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	if id == "" {
		middleware.WriteFailure(w, http.StatusBadRequest, "id is required", nil)
		return
	}

	if err := h.ledger.DeleteTransaction(ctx, middleware.UserIDFromContext(ctx), h.kind, id); err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Server Error")
		return
	}

	middleware.WriteMessage(w, http.StatusOK, h.title()+" deleted successfully")
}

// Export handles GET /api/v1/expenses/export and GET /api/v1/incomes/export
func (h *TransactionsHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	path, cleanup, err := h.ledger.ExportTransactions(ctx, middleware.UserIDFromContext(ctx), h.kind)
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Server Error")
		return
	}
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Server Error")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Server Error")
		return
	}

	filename := export.Filename(h.kind)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

func (h *TransactionsHandler) title() string {
	if h.kind == domain.KindIncome {
		return "Income"
	}
	return "Expense"
}
