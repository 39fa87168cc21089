package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/store"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// transactionDocument is the stored shape of an income or expense.
// Expenses carry Category and incomes carry Source.
type transactionDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Category  string             `bson:"category,omitempty"`
	Source    string             `bson:"source,omitempty"`
	Amount    float64            `bson:"amount"`
	Icon      string             `bson:"icon"`
	Date      time.Time          `bson:"date"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func toDocument(tx domain.Transaction) transactionDocument {
	doc := transactionDocument{
		UserID:    tx.OwnerID,
		Amount:    tx.Amount,
		Icon:      tx.Icon,
		Date:      tx.Date,
		CreatedAt: tx.CreatedAt,
		UpdatedAt: tx.CreatedAt,
	}
	if tx.Kind == domain.KindIncome {
		doc.Source = tx.Label
	} else {
		doc.Category = tx.Label
	}
	return doc
}

func (d transactionDocument) toDomain(kind domain.Kind) domain.Transaction {
	label := d.Category
	if kind == domain.KindIncome {
		label = d.Source
	}
	return domain.Transaction{
		ID:        d.ID.Hex(),
		OwnerID:   d.UserID,
		Kind:      kind,
		Label:     label,
		Amount:    d.Amount,
		Icon:      d.Icon,
		Date:      d.Date,
		CreatedAt: d.CreatedAt,
	}
}

// TransactionRepository stores incomes and expenses in two collections.
type TransactionRepository struct {
	incomes  *mongo.Collection
	expenses *mongo.Collection
	log      zerolog.Logger
	now      func() time.Time
}

// NewTransactionRepository creates a repository over db.
func NewTransactionRepository(db *mongo.Database, log zerolog.Logger) *TransactionRepository {
	return &TransactionRepository{
		incomes:  db.Collection(incomesCollection),
		expenses: db.Collection(expensesCollection),
		log:      log,
		now:      time.Now,
	}
}

func (r *TransactionRepository) collection(kind domain.Kind) (*mongo.Collection, error) {
	switch kind {
	case domain.KindIncome:
		return r.incomes, nil
	case domain.KindExpense:
		return r.expenses, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}

// Insert implements store.TransactionStore.
func (r *TransactionRepository) Insert(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	coll, err := r.collection(tx.Kind)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("Insert: %w", err)
	}

	tx = tx.WithDefaults(r.now())
	res, err := coll.InsertOne(ctx, toDocument(tx))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: Insert: %w", domain.ErrStoreUnavailable, err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		tx.ID = oid.Hex()
	}
	return tx, nil
}

func ownerFilter(ownerID string, q store.Query) bson.M {
	filter := bson.M{"userId": ownerID}
	date := bson.M{}
	if !q.Since.IsZero() {
		date["$gte"] = q.Since
	}
	if !q.Until.IsZero() {
		date["$lte"] = q.Until
	}
	if len(date) > 0 {
		filter["date"] = date
	}
	return filter
}

// List implements store.TransactionStore. Documents that fail to decode are
// logged and skipped.
func (r *TransactionRepository) List(ctx context.Context, ownerID string, kind domain.Kind, q store.Query) ([]domain.Transaction, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := coll.Find(ctx, ownerFilter(ownerID, q), opts)
	if err != nil {
		return nil, fmt.Errorf("%w: List: find: %w", domain.ErrStoreUnavailable, err)
	}
	defer cur.Close(ctx)

	var result []domain.Transaction
	for cur.Next(ctx) {
		var doc transactionDocument
		if err := cur.Decode(&doc); err != nil {
			r.log.Warn().Err(err).Str("collection", coll.Name()).Msg("Skipping malformed document")
			continue
		}
		result = append(result, doc.toDomain(kind))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: List: cursor: %w", domain.ErrStoreUnavailable, err)
	}

	return result, nil
}

// Total implements store.TransactionStore with a $group aggregation.
func (r *TransactionRepository) Total(ctx context.Context, ownerID string, kind domain.Kind, q store.Query) (float64, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return 0, fmt.Errorf("Total: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: ownerFilter(ownerID, q)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
	}

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("%w: Total: aggregate: %w", domain.ErrStoreUnavailable, err)
	}
	defer cur.Close(ctx)

	var row struct {
		Total float64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, fmt.Errorf("%w: Total: decode: %w", domain.ErrStoreUnavailable, err)
		}
	}
	if err := cur.Err(); err != nil {
		return 0, fmt.Errorf("%w: Total: cursor: %w", domain.ErrStoreUnavailable, err)
	}

	return row.Total, nil
}

// Delete implements store.TransactionStore. An id that is not a valid
// ObjectID cannot exist and is reported as not found.
func (r *TransactionRepository) Delete(ctx context.Context, ownerID string, kind domain.Kind, id string) error {
	coll, err := r.collection(kind)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("Delete: %s: %w", id, domain.ErrNotFound)
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid, "userId": ownerID})
	if err != nil {
		return fmt.Errorf("%w: Delete: %w", domain.ErrStoreUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("Delete: %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

var _ store.TransactionStore = (*TransactionRepository)(nil)
