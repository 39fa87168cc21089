package inmemory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/store"
	"github.com/google/uuid"
)

// Store is an in-memory implementation of TransactionStore and UserStore.
// It is safe for concurrent use. Data is lost on restart.
type Store struct {
	mu    sync.RWMutex
	txs   map[domain.Kind]map[string]domain.Transaction
	users map[string]domain.User
	now   func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		txs: map[domain.Kind]map[string]domain.Transaction{
			domain.KindIncome:  {},
			domain.KindExpense: {},
		},
		users: make(map[string]domain.User),
		now:   time.Now,
	}
}

// Backend wraps the store as a store.Backend.
func (s *Store) Backend() store.Backend {
	return store.Backend{
		Transactions: s,
		Users:        s,
		Close:        func() error { return nil },
	}
}

// Insert implements store.TransactionStore.
func (s *Store) Insert(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if !tx.Kind.Valid() {
		return domain.Transaction{}, fmt.Errorf("Insert: unknown kind %q", tx.Kind)
	}

	tx = tx.WithDefaults(s.now())
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs[tx.Kind][tx.ID] = tx
	return tx, nil
}

// List implements store.TransactionStore.
func (s *Store) List(ctx context.Context, ownerID string, kind domain.Kind, q store.Query) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Transaction
	for _, tx := range s.txs[kind] {
		if tx.OwnerID != ownerID || !q.Matches(tx.Date) {
			continue
		}
		result = append(result, tx)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})

	if q.Limit > 0 && q.Limit < len(result) {
		result = result[:q.Limit]
	}

	return result, nil
}

// Total implements store.TransactionStore.
func (s *Store) Total(ctx context.Context, ownerID string, kind domain.Kind, q store.Query) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, tx := range s.txs[kind] {
		if tx.OwnerID == ownerID && q.Matches(tx.Date) {
			total += tx.Amount
		}
	}
	return total, nil
}

// Delete implements store.TransactionStore.
func (s *Store) Delete(ctx context.Context, ownerID string, kind domain.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, exists := s.txs[kind][id]
	if !exists || tx.OwnerID != ownerID {
		return fmt.Errorf("Delete: %s %s: %w", kind, id, domain.ErrNotFound)
	}

	delete(s.txs[kind], id)
	return nil
}

// Create implements store.UserStore.
func (s *Store) Create(ctx context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.User{}, domain.ErrEmailTaken
		}
	}

	now := s.now()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	return u, nil
}

// FindByEmail implements store.UserStore.
func (s *Store) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("FindByEmail: %w", domain.ErrNotFound)
}

// FindByID implements store.UserStore.
func (s *Store) FindByID(ctx context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return domain.User{}, fmt.Errorf("FindByID: %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

// Update implements store.UserStore.
func (s *Store) Update(ctx context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[u.ID]
	if !exists {
		return domain.User{}, fmt.Errorf("Update: %s: %w", u.ID, domain.ErrNotFound)
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = s.now()
	s.users[u.ID] = u
	return u, nil
}

var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.UserStore        = (*Store)(nil)
)
