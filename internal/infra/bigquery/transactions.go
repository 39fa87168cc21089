package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
)

// TransactionRow is one row of the incomes or expenses table as read back.
// Nullable columns are kept nullable so bad rows can be skipped instead of
// failing the whole listing.
type TransactionRow struct {
	ID        string                 `bigquery:"id"`
	UserID    string                 `bigquery:"user_id"`
	Label     bigquery.NullString    `bigquery:"label"`
	Amount    bigquery.NullFloat64   `bigquery:"amount"`
	Icon      bigquery.NullString    `bigquery:"icon"`
	Date      bigquery.NullTimestamp `bigquery:"date"`
	CreatedTS bigquery.NullTimestamp `bigquery:"created_ts"`
}

// toDomain converts the row, reporting false when a required column is null.
func (r TransactionRow) toDomain(kind domain.Kind) (domain.Transaction, bool) {
	if !r.Amount.Valid || !r.Date.Valid {
		return domain.Transaction{}, false
	}
	tx := domain.Transaction{
		ID:      r.ID,
		OwnerID: r.UserID,
		Kind:    kind,
		Label:   r.Label.StringVal,
		Amount:  r.Amount.Float64,
		Icon:    r.Icon.StringVal,
		Date:    r.Date.Timestamp,
	}
	if r.CreatedTS.Valid {
		tx.CreatedAt = r.CreatedTS.Timestamp
	}
	return tx, true
}

// TransactionRepository stores incomes and expenses in two BigQuery tables
// using DML statements, so that deletes are visible immediately.
type TransactionRepository struct {
	client *bigquery.Client
	ds     Dataset
	log    zerolog.Logger
	now    func() time.Time
}

// NewTransactionRepository creates a repository with a shared client.
func NewTransactionRepository(client *bigquery.Client, ds Dataset, log zerolog.Logger) *TransactionRepository {
	return &TransactionRepository{client: client, ds: ds, log: log, now: time.Now}
}

func tableFor(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindIncome:
		return incomesTable, nil
	case domain.KindExpense:
		return expensesTable, nil
	default:
		return "", fmt.Errorf("unknown kind %q", kind)
	}
}

// Insert implements store.TransactionStore.
func (r *TransactionRepository) Insert(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	table, err := tableFor(tx.Kind)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("Insert: %w", err)
	}

	tx = tx.WithDefaults(r.now())
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	q := r.client.Query(fmt.Sprintf(`
		INSERT INTO %s (id, user_id, %s, amount, icon, date, created_ts)
		VALUES (@id, @user_id, @label, @amount, @icon, @date, @created_ts)
	`, r.ds.Table(table), tx.Kind.LabelField()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: tx.ID},
		{Name: "user_id", Value: tx.OwnerID},
		{Name: "label", Value: tx.Label},
		{Name: "amount", Value: tx.Amount},
		{Name: "icon", Value: tx.Icon},
		{Name: "date", Value: tx.Date},
		{Name: "created_ts", Value: tx.CreatedAt},
	}

	if _, err := runDML(ctx, q); err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: Insert: %w", domain.ErrStoreUnavailable, err)
	}
	return tx, nil
}

// whereClause builds the owner and date predicates plus their parameters.
func whereClause(ownerID string, q store.Query) (string, []bigquery.QueryParameter) {
	conds := []string{"user_id = @user_id"}
	params := []bigquery.QueryParameter{{Name: "user_id", Value: ownerID}}

	if !q.Since.IsZero() {
		conds = append(conds, "date >= @since")
		params = append(params, bigquery.QueryParameter{Name: "since", Value: q.Since})
	}
	if !q.Until.IsZero() {
		conds = append(conds, "date <= @until")
		params = append(params, bigquery.QueryParameter{Name: "until", Value: q.Until})
	}

	return strings.Join(conds, " AND "), params
}

// List implements store.TransactionStore. Rows with a null amount or date
// are logged and skipped.
func (r *TransactionRepository) List(ctx context.Context, ownerID string, kind domain.Kind, q store.Query) ([]domain.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	where, params := whereClause(ownerID, q)
	sql := fmt.Sprintf(`
		SELECT id, user_id, %s AS label, amount, icon, date, created_ts
		FROM %s
		WHERE %s
		ORDER BY date DESC, id DESC
	`, kind.LabelField(), r.ds.Table(table), where)
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	query := r.client.Query(sql)
	query.Parameters = params

	it, err := query.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: List: query read: %w", domain.ErrStoreUnavailable, err)
	}

	var result []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: List: iterating rows: %w", domain.ErrStoreUnavailable, err)
		}

		tx, ok := row.toDomain(kind)
		if !ok {
			r.log.Warn().Str("table", table).Str("id", row.ID).Msg("Skipping row with null amount or date")
			continue
		}
		result = append(result, tx)
	}

	return result, nil
}

// Total implements store.TransactionStore.
func (r *TransactionRepository) Total(ctx context.Context, ownerID string, kind domain.Kind, q store.Query) (float64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, fmt.Errorf("Total: %w", err)
	}

	where, params := whereClause(ownerID, q)
	query := r.client.Query(fmt.Sprintf(`
		SELECT COALESCE(SUM(amount), 0) AS total
		FROM %s
		WHERE %s
	`, r.ds.Table(table), where))
	query.Parameters = params

	it, err := query.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: Total: query read: %w", domain.ErrStoreUnavailable, err)
	}

	var row struct {
		Total float64 `bigquery:"total"`
	}
	err = it.Next(&row)
	if err == iterator.Done {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: Total: reading row: %w", domain.ErrStoreUnavailable, err)
	}
	return row.Total, nil
}

// Delete implements store.TransactionStore.
func (r *TransactionRepository) Delete(ctx context.Context, ownerID string, kind domain.Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	q := r.client.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = @id AND user_id = @user_id
	`, r.ds.Table(table)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: id},
		{Name: "user_id", Value: ownerID},
	}

	affected, err := runDML(ctx, q)
	if err != nil {
		return fmt.Errorf("%w: Delete: %w", domain.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("Delete: %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

var _ store.TransactionStore = (*TransactionRepository)(nil)
