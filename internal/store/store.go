package store

import (
	"context"
	"time"

	"github.com/dvloznov/finance-advisor/internal/domain"
)

// Query narrows a transaction listing. Zero values mean "no bound".
type Query struct {
	Since time.Time
	Until time.Time
	Limit int
}

// Matches reports whether t falls inside the query's date bounds.
func (q Query) Matches(t time.Time) bool {
	if !q.Since.IsZero() && t.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && t.After(q.Until) {
		return false
	}
	return true
}

// TransactionStore persists income and expense records keyed by owner.
// Listings are ordered by date, newest first. Failures to reach the backend
// are reported wrapped with domain.ErrStoreUnavailable.
type TransactionStore interface {
	Insert(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	List(ctx context.Context, ownerID string, kind domain.Kind, q Query) ([]domain.Transaction, error)
	Total(ctx context.Context, ownerID string, kind domain.Kind, q Query) (float64, error)
	// Delete removes the record with id owned by ownerID. It returns
	// domain.ErrNotFound when no such record exists for that owner.
	Delete(ctx context.Context, ownerID string, kind domain.Kind, id string) error
}

// UserStore persists account holders.
type UserStore interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	Update(ctx context.Context, u domain.User) (domain.User, error)
}

// Backend bundles the stores of one storage technology.
type Backend struct {
	Transactions TransactionStore
	Users        UserStore
	Close        func() error
}
