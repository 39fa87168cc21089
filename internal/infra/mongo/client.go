package mongo

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-advisor/internal/store"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	incomesCollection  = "incomes"
	expensesCollection = "expenses"
	usersCollection    = "users"
)

// Connect dials uri, verifies the connection and returns a client.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("Connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("Connect: ping: %w", err)
	}
	return client, nil
}

// NewBackend connects to uri and returns stores over database.
func NewBackend(ctx context.Context, uri, database string, log zerolog.Logger) (store.Backend, error) {
	client, err := Connect(ctx, uri)
	if err != nil {
		return store.Backend{}, err
	}

	db := client.Database(database)
	return store.Backend{
		Transactions: NewTransactionRepository(db, log),
		Users:        NewUserRepository(db),
		Close: func() error {
			return client.Disconnect(context.Background())
		},
	}, nil
}

// EnsureIndexes creates the indexes listings and logins rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) ([]string, error) {
	var created []string

	for _, coll := range []string{incomesCollection, expensesCollection} {
		name, err := db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
		})
		if err != nil {
			return created, fmt.Errorf("EnsureIndexes: %s: %w", coll, err)
		}
		created = append(created, coll+"."+name)
	}

	name, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return created, fmt.Errorf("EnsureIndexes: %s: %w", usersCollection, err)
	}
	created = append(created, usersCollection+"."+name)

	return created, nil
}
