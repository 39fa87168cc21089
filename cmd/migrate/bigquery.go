package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// bigQueryMigrator applies versioned DDL to one dataset.
type bigQueryMigrator struct {
	client    *bigquery.Client
	project   string
	dataset   string
	appliedBy string
}

func (m *bigQueryMigrator) table() string {
	return fmt.Sprintf("`%s.%s.schema_migrations`", m.project, m.dataset)
}

func (m *bigQueryMigrator) run(ctx context.Context, dir string) error {
	if err := m.exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version       INT64 NOT NULL,
			name          STRING NOT NULL,
			applied_at    TIMESTAMP NOT NULL,
			checksum      STRING,
			applied_by    STRING
		)
	`, m.table()), nil); err != nil {
		return fmt.Errorf("ensuring schema_migrations table: %w", err)
	}

	migrations, err := readMigrations(dir, m.project, m.dataset)
	if err != nil {
		return err
	}
	log.Printf("Found %d migration files", len(migrations))

	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}
	log.Printf("Found %d already applied migrations", len(applied))

	pending, drifted := planMigrations(migrations, applied)
	for _, d := range drifted {
		log.Printf("  [WARN] %04d_%s changed after it was applied", d.Version, d.Name)
	}

	for _, migration := range pending {
		log.Printf("  [RUN]  %04d_%s", migration.Version, migration.Name)

		if err := m.exec(ctx, migration.SQL, nil); err != nil {
			return fmt.Errorf("executing migration %04d_%s: %w", migration.Version, migration.Name, err)
		}

		if err := m.exec(ctx, fmt.Sprintf(`
			INSERT INTO %s
			(version, name, applied_at, checksum, applied_by)
			VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
		`, m.table()), []bigquery.QueryParameter{
			{Name: "version", Value: migration.Version},
			{Name: "name", Value: migration.Name},
			{Name: "checksum", Value: migration.Checksum},
			{Name: "applied_by", Value: m.appliedBy},
		}); err != nil {
			return fmt.Errorf("recording migration %04d_%s: %w", migration.Version, migration.Name, err)
		}

		log.Printf("  [OK]   %04d_%s", migration.Version, migration.Name)
	}

	if len(pending) == 0 {
		log.Println("No new migrations to apply. Database is up to date.")
	} else {
		log.Printf("Successfully applied %d migration(s)", len(pending))
	}
	return nil
}

// applied retrieves the list of already applied migrations
func (m *bigQueryMigrator) applied(ctx context.Context) ([]AppliedMigration, error) {
	q := m.client.Query(fmt.Sprintf(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM %s
		ORDER BY version ASC
	`, m.table()))

	it, err := q.Read(ctx)
	if err != nil {
		// If table doesn't exist yet, return empty list
		if strings.Contains(err.Error(), "Not found") {
			return nil, nil
		}
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var applied []AppliedMigration
	for {
		var row struct {
			Version   int64
			Name      string
			AppliedAt time.Time
			Checksum  bigquery.NullString
			AppliedBy bigquery.NullString
		}

		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating results: %w", err)
		}

		applied = append(applied, AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}

	return applied, nil
}

func (m *bigQueryMigrator) exec(ctx context.Context, sql string, params []bigquery.QueryParameter) error {
	q := m.client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}
