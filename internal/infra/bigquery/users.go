package bigquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/store"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// UserRow is one row of the users table.
type UserRow struct {
	UserID          string              `bigquery:"user_id"`
	FullName        string              `bigquery:"full_name"`
	Email           string              `bigquery:"email"`
	PasswordHash    string              `bigquery:"password_hash"`
	ProfileImageURL bigquery.NullString `bigquery:"profile_image_url"`
	CreatedTS       time.Time           `bigquery:"created_ts"`
	UpdatedTS       time.Time           `bigquery:"updated_ts"`
}

func (r UserRow) toDomain() domain.User {
	return domain.User{
		ID:              r.UserID,
		FullName:        r.FullName,
		Email:           r.Email,
		PasswordHash:    r.PasswordHash,
		ProfileImageURL: r.ProfileImageURL.StringVal,
		CreatedAt:       r.CreatedTS,
		UpdatedAt:       r.UpdatedTS,
	}
}

// UserRepository stores account holders in the users table.
type UserRepository struct {
	client *bigquery.Client
	ds     Dataset
	now    func() time.Time
}

// NewUserRepository creates a repository with a shared client.
func NewUserRepository(client *bigquery.Client, ds Dataset) *UserRepository {
	return &UserRepository{client: client, ds: ds, now: time.Now}
}

// Create implements store.UserStore. BigQuery has no unique constraints, so
// the email is checked with a lookup first.
func (r *UserRepository) Create(ctx context.Context, u domain.User) (domain.User, error) {
	_, err := r.FindByEmail(ctx, u.Email)
	if err == nil {
		return domain.User{}, domain.ErrEmailTaken
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("Create: %w", err)
	}

	now := r.now()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	q := r.client.Query(fmt.Sprintf(`
		INSERT INTO %s (user_id, full_name, email, password_hash, profile_image_url, created_ts, updated_ts)
		VALUES (@user_id, @full_name, @email, @password_hash, @profile_image_url, @created_ts, @updated_ts)
	`, r.ds.Table(usersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: u.ID},
		{Name: "full_name", Value: u.FullName},
		{Name: "email", Value: u.Email},
		{Name: "password_hash", Value: u.PasswordHash},
		{Name: "profile_image_url", Value: u.ProfileImageURL},
		{Name: "created_ts", Value: now},
		{Name: "updated_ts", Value: now},
	}

	if _, err := runDML(ctx, q); err != nil {
		return domain.User{}, fmt.Errorf("%w: Create: %w", domain.ErrStoreUnavailable, err)
	}
	return u, nil
}

func (r *UserRepository) findOne(ctx context.Context, op, column, value string) (domain.User, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT user_id, full_name, email, password_hash, profile_image_url, created_ts, updated_ts
		FROM %s
		WHERE %s = @value
		LIMIT 1
	`, r.ds.Table(usersTable), column))
	q.Parameters = []bigquery.QueryParameter{{Name: "value", Value: value}}

	it, err := q.Read(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %s: query read: %w", domain.ErrStoreUnavailable, op, err)
	}

	var row UserRow
	err = it.Next(&row)
	if err == iterator.Done {
		return domain.User{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %s: reading row: %w", domain.ErrStoreUnavailable, op, err)
	}
	return row.toDomain(), nil
}

// FindByEmail implements store.UserStore.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, "FindByEmail", "email", email)
}

// FindByID implements store.UserStore.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, "FindByID", "user_id", id)
}

// Update implements store.UserStore.
func (r *UserRepository) Update(ctx context.Context, u domain.User) (domain.User, error) {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET full_name = @full_name, profile_image_url = @profile_image_url, updated_ts = @updated_ts
		WHERE user_id = @user_id
	`, r.ds.Table(usersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: u.ID},
		{Name: "full_name", Value: u.FullName},
		{Name: "profile_image_url", Value: u.ProfileImageURL},
		{Name: "updated_ts", Value: r.now()},
	}

	affected, err := runDML(ctx, q)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: Update: %w", domain.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return domain.User{}, fmt.Errorf("Update: %s: %w", u.ID, domain.ErrNotFound)
	}
	return r.FindByID(ctx, u.ID)
}

var _ store.UserStore = (*UserRepository)(nil)
