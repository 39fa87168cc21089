package finance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/finance-advisor/internal/aggregate"
	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/export"
	"github.com/dvloznov/finance-advisor/internal/snapshot"
	"github.com/dvloznov/finance-advisor/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardRecentPerKind = 5
	suggestionRecentCount  = 10
)

// Completer turns a prompt into a reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service answers dashboard, advice and transaction requests for one user
// at a time. It holds no per-request state.
type Service struct {
	txs      store.TransactionStore
	ai       Completer
	renderer snapshot.Renderer
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a finance service.
func NewService(txs store.TransactionStore, ai Completer, renderer snapshot.Renderer, log zerolog.Logger) *Service {
	return &Service{
		txs:      txs,
		ai:       ai,
		renderer: renderer,
		log:      log,
		now:      time.Now,
	}
}

// WindowTotal is a windowed listing with its sum.
type WindowTotal struct {
	Total        float64           `json:"total"`
	Transactions []TransactionView `json:"transactions"`
}

// Dashboard is the all-time overview of one user.
type Dashboard struct {
	TotalBalance       float64           `json:"totalBalance"`
	TotalIncome        float64           `json:"totalIncome"`
	TotalExpenses      float64           `json:"totalExpenses"`
	Last30DaysExpenses WindowTotal       `json:"last30DaysExpenses"`
	Last60DaysIncome   WindowTotal       `json:"last60DaysIncome"`
	RecentTransactions []TransactionView `json:"recentTransactions"`
}

// Dashboard gathers all-time totals, the rolling expense and income windows
// and the latest transactions of both kinds.
func (s *Service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	now := s.now()
	expenseWindow := aggregate.RollingDays(now, aggregate.DashboardExpenseDays)
	incomeWindow := aggregate.RollingDays(now, aggregate.DashboardIncomeDays)

	var (
		totalIncome, totalExpenses   float64
		last60Income, last30Expenses []domain.Transaction
		recentIncome, recentExpenses []domain.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totalIncome, err = s.txs.Total(gctx, userID, domain.KindIncome, store.Query{})
		return err
	})
	g.Go(func() (err error) {
		totalExpenses, err = s.txs.Total(gctx, userID, domain.KindExpense, store.Query{})
		return err
	})
	g.Go(func() (err error) {
		last60Income, err = s.txs.List(gctx, userID, domain.KindIncome, store.Query{Since: incomeWindow.Since})
		return err
	})
	g.Go(func() (err error) {
		last30Expenses, err = s.txs.List(gctx, userID, domain.KindExpense, store.Query{Since: expenseWindow.Since})
		return err
	})
	g.Go(func() (err error) {
		recentIncome, err = s.txs.List(gctx, userID, domain.KindIncome, store.Query{Limit: dashboardRecentPerKind})
		return err
	})
	g.Go(func() (err error) {
		recentExpenses, err = s.txs.List(gctx, userID, domain.KindExpense, store.Query{Limit: dashboardRecentPerKind})
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("Dashboard: %w", err)
	}

	recent := append(append([]domain.Transaction{}, recentIncome...), recentExpenses...)
	sortNewestFirst(recent)

	return Dashboard{
		TotalBalance:  totalIncome - totalExpenses,
		TotalIncome:   totalIncome,
		TotalExpenses: totalExpenses,
		Last30DaysExpenses: WindowTotal{
			Total:        aggregate.SumAmounts(last30Expenses),
			Transactions: Views(last30Expenses),
		},
		Last60DaysIncome: WindowTotal{
			Total:        aggregate.SumAmounts(last60Income),
			Transactions: Views(last60Income),
		},
		RecentTransactions: Views(recent),
	}, nil
}

// monthActivity is the current calendar month of one user.
type monthActivity struct {
	incomes  []domain.Transaction
	expenses []domain.Transaction
}

// currentMonth fetches the month's incomes and expenses concurrently and
// returns once both are complete.
func (s *Service) currentMonth(ctx context.Context, userID string) (monthActivity, error) {
	w := aggregate.CalendarMonth(s.now())
	q := store.Query{Since: w.Since, Until: w.Until}

	var m monthActivity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m.incomes, err = s.txs.List(gctx, userID, domain.KindIncome, q)
		return err
	})
	g.Go(func() (err error) {
		m.expenses, err = s.txs.List(gctx, userID, domain.KindExpense, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return monthActivity{}, err
	}
	return m, nil
}

func (m monthActivity) snapshot(recent []domain.Transaction) (domain.FinancialSnapshot, error) {
	totals := domain.Totals{
		Income:   aggregate.SumAmounts(m.incomes),
		Expenses: aggregate.SumAmounts(m.expenses),
	}
	return snapshot.Build(totals, aggregate.AggregateByCategory(m.expenses), recent)
}

// FinancialSummary accompanies a suggestion. Savings here is the plain
// difference and may be negative.
type FinancialSummary struct {
	TotalIncome   float64                `json:"totalIncome"`
	TotalExpenses float64                `json:"totalExpenses"`
	Savings       float64                `json:"savings"`
	TopCategories []domain.CategoryTotal `json:"topCategories"`
}

// Suggestion is a generated tip plus the figures it was based on.
type Suggestion struct {
	Text    string
	Summary FinancialSummary
}

// Suggestion generates a short tip from the current calendar month.
func (s *Service) Suggestion(ctx context.Context, userID string) (Suggestion, error) {
	month, err := s.currentMonth(ctx, userID)
	if err != nil {
		return Suggestion{}, fmt.Errorf("Suggestion: %w", err)
	}

	recent := month.expenses
	if len(recent) > suggestionRecentCount {
		recent = recent[:suggestionRecentCount]
	}

	snap, err := month.snapshot(recent)
	if err != nil {
		return Suggestion{}, fmt.Errorf("Suggestion: %w", err)
	}

	text, err := s.ai.Complete(ctx, s.renderer.SuggestionPrompt(snap))
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to generate suggestion: %w", err)
	}

	top := snap.TopCategories
	if top == nil {
		top = []domain.CategoryTotal{}
	}

	return Suggestion{
		Text: text,
		Summary: FinancialSummary{
			TotalIncome:   snap.TotalIncome,
			TotalExpenses: snap.TotalExpenses,
			Savings:       snap.NetBalance,
			TopCategories: top,
		},
	}, nil
}

// Chat answers message with the current calendar month as context.
func (s *Service) Chat(ctx context.Context, userID, message string, history []domain.ChatMessage) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.NewValidationError("message", "Message is required")
	}

	month, err := s.currentMonth(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("Chat: %w", err)
	}

	snap, err := month.snapshot(nil)
	if err != nil {
		return "", fmt.Errorf("Chat: %w", err)
	}

	reply, err := s.ai.Complete(ctx, s.renderer.ChatPrompt(message, snap, history))
	if err != nil {
		return "", fmt.Errorf("chatbot failed: %w", err)
	}
	return reply, nil
}

// NewTransaction is the validated input for adding an income or expense.
type NewTransaction struct {
	Label  string
	Amount float64
	Icon   string
	Date   time.Time
}

// AddTransaction stores a new record for userID.
func (s *Service) AddTransaction(ctx context.Context, userID string, kind domain.Kind, in NewTransaction) (domain.Transaction, error) {
	tx, err := s.txs.Insert(ctx, domain.Transaction{
		OwnerID: userID,
		Kind:    kind,
		Label:   in.Label,
		Amount:  in.Amount,
		Icon:    in.Icon,
		Date:    in.Date,
	})
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("AddTransaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns every record of kind for userID, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID string, kind domain.Kind) ([]domain.Transaction, error) {
	txs, err := s.txs.List(ctx, userID, kind, store.Query{})
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return txs, nil
}

// DeleteTransaction removes a record. Deleting an id that does not exist
// for userID succeeds without effect.
func (s *Service) DeleteTransaction(ctx context.Context, userID string, kind domain.Kind, id string) error {
	err := s.txs.Delete(ctx, userID, kind, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Info().Str("user_id", userID).Str("kind", string(kind)).Str("id", id).Msg("Delete of unknown transaction ignored")
		return nil
	}
	if err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	return nil
}

// ExportTransactions writes every record of kind to a temporary workbook.
// The caller must invoke cleanup after serving the file.
func (s *Service) ExportTransactions(ctx context.Context, userID string, kind domain.Kind) (path string, cleanup func(), err error) {
	txs, err := s.ListTransactions(ctx, userID, kind)
	if err != nil {
		return "", nil, err
	}
	return export.WriteTempWorkbook(kind, txs)
}

func sortNewestFirst(txs []domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
}
