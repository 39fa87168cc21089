// Command migrate prepares a storage backend: it applies versioned DDL to
// BigQuery or creates the MongoDB indexes.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-advisor/internal/config"
	infraMongo "github.com/dvloznov/finance-advisor/internal/infra/mongo"
)

func main() {
	cfg := config.Load()

	var (
		target        = flag.String("target", cfg.StoreBackend, "Backend to migrate: bigquery or mongo (or set STORE_BACKEND env)")
		projectID     = flag.String("project", cfg.BigQueryProject, "GCP project ID (or set BIGQUERY_PROJECT env)")
		datasetID     = flag.String("dataset", cfg.BigQueryDataset, "BigQuery dataset ID")
		appliedBy     = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
		migrationsDir = flag.String("migrations", "migrations/bigquery", "Path to migrations directory")
		mongoURI      = flag.String("mongo-uri", cfg.MongoURI, "MongoDB connection URI (or set MONGO_URI env)")
		mongoDB       = flag.String("mongo-db", cfg.MongoDatabase, "MongoDB database name")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	switch *target {
	case config.BackendBigQuery:
		if *projectID == "" {
			log.Fatal("Error: -project flag is required. Please specify your GCP project ID.")
		}

		dir, err := findMigrationsDir(*migrationsDir)
		if err != nil {
			log.Fatal(err)
		}

		client, err := bigquery.NewClient(ctx, *projectID)
		if err != nil {
			log.Fatalf("Failed to create BigQuery client: %v", err)
		}
		defer client.Close()

		log.Printf("Connected to BigQuery project: %s, dataset: %s", *projectID, *datasetID)

		m := &bigQueryMigrator{client: client, project: *projectID, dataset: *datasetID, appliedBy: *appliedBy}
		if err := m.run(ctx, dir); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}

	case config.BackendMongo:
		client, err := infraMongo.Connect(ctx, *mongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer client.Disconnect(context.Background())

		log.Printf("Connected to MongoDB database: %s", *mongoDB)

		created, err := infraMongo.EnsureIndexes(ctx, client.Database(*mongoDB))
		if err != nil {
			log.Fatalf("Failed to create indexes: %v", err)
		}
		for _, name := range created {
			log.Printf("  [OK]   index %s", name)
		}

	default:
		log.Fatalf("Error: unsupported target %q. Use -target bigquery or -target mongo.", *target)
	}
}
