package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/objectstore"
	"github.com/dvloznov/finance-advisor/internal/store"
	"github.com/rs/zerolog"
)

// Image is an uploaded file as received from a multipart form.
type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Session is the result of a successful register or login.
type Session struct {
	User  domain.User
	Token string
}

// Service registers users, checks credentials and edits profiles.
type Service struct {
	users   store.UserStore
	tokens  *TokenManager
	uploads objectstore.Uploader
	log     zerolog.Logger
}

// NewService creates an auth service.
func NewService(users store.UserStore, tokens *TokenManager, uploads objectstore.Uploader, log zerolog.Logger) *Service {
	return &Service{users: users, tokens: tokens, uploads: uploads, log: log}
}

// Tokens exposes the token manager used by the request middleware.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// NormalizeEmail returns email in the form accounts are stored under.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. The email must not be in use.
func (s *Service) Register(ctx context.Context, fullName, email, password string, image *Image) (Session, error) {
	email = NormalizeEmail(email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return Session{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return Session{}, fmt.Errorf("Register: %w", err)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("Register: %w", err)
	}

	u := domain.User{FullName: strings.TrimSpace(fullName), Email: email, PasswordHash: hashed}
	if image != nil {
		u.ProfileImageURL, err = s.UploadImage(ctx, *image)
		if err != nil {
			return Session{}, fmt.Errorf("Register: %w", err)
		}
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		s.discardImage(ctx, u.ProfileImageURL)
		return Session{}, fmt.Errorf("Register: %w", err)
	}
	return s.session(created)
}

// Login checks the credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("Login: %w", err)
	}

	ok, err := CheckPassword(u.PasswordHash, password)
	if err != nil {
		return Session{}, fmt.Errorf("Login: %w", err)
	}
	if !ok {
		return Session{}, domain.ErrInvalidCredentials
	}
	return s.session(u)
}

// Me returns the account of userID.
func (s *Service) Me(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("Me: %w", err)
	}
	return u, nil
}

// UpdateProfile changes the name and, when image is given, the profile
// picture. The replaced picture is removed from storage on a best-effort basis.
func (s *Service) UpdateProfile(ctx context.Context, userID, fullName string, image *Image) (domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("UpdateProfile: %w", err)
	}

	if name := strings.TrimSpace(fullName); name != "" {
		u.FullName = name
	}

	oldImage := u.ProfileImageURL
	if image != nil {
		u.ProfileImageURL, err = s.UploadImage(ctx, *image)
		if err != nil {
			return domain.User{}, fmt.Errorf("UpdateProfile: %w", err)
		}
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		if image != nil {
			s.discardImage(ctx, u.ProfileImageURL)
		}
		return domain.User{}, fmt.Errorf("UpdateProfile: %w", err)
	}

	if image != nil && oldImage != "" && oldImage != updated.ProfileImageURL {
		if err := s.uploads.Delete(ctx, oldImage); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to delete old profile image")
		}
	}
	return updated, nil
}

// UploadImage stores an image and returns its public URL.
func (s *Service) UploadImage(ctx context.Context, image Image) (string, error) {
	if err := objectstore.CheckContentType(image.ContentType); err != nil {
		return "", err
	}
	url, err := s.uploads.Upload(ctx, image.Filename, image.ContentType, image.Body)
	if err != nil {
		return "", fmt.Errorf("UploadImage: %w", err)
	}
	return url, nil
}

// discardImage removes an uploaded image the user record never referenced.
func (s *Service) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.uploads.Delete(ctx, url); err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("Failed to delete orphaned profile image")
	}
}

func (s *Service) session(u domain.User) (Session, error) {
	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}
