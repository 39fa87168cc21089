package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-advisor/internal/store"
	"github.com/rs/zerolog"
)

const (
	incomesTable  = "incomes"
	expensesTable = "expenses"
	usersTable    = "users"
)

// Dataset addresses tables inside one project and dataset.
type Dataset struct {
	Project string
	Dataset string
}

// Table returns the fully qualified, backquoted name of table.
func (d Dataset) Table(table string) string {
	return fmt.Sprintf("`%s.%s.%s`", d.Project, d.Dataset, table)
}

// NewBackend creates a shared BigQuery client and returns stores over it.
func NewBackend(ctx context.Context, ds Dataset, log zerolog.Logger) (store.Backend, error) {
	client, err := bigquery.NewClient(ctx, ds.Project)
	if err != nil {
		return store.Backend{}, fmt.Errorf("NewBackend: creating client: %w", err)
	}

	return store.Backend{
		Transactions: NewTransactionRepository(client, ds, log),
		Users:        NewUserRepository(client, ds),
		Close:        client.Close,
	}, nil
}

// runDML runs a data-manipulation statement and returns the number of rows it touched.
func runDML(ctx context.Context, q *bigquery.Query) (int64, error) {
	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("wait for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("job error: %w", err)
	}

	if status.Statistics != nil {
		if qs, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
			return qs.NumDMLAffectedRows, nil
		}
	}
	return 0, nil
}
