package handlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/dvloznov/finance-advisor/internal/api/middleware"
	"github.com/dvloznov/finance-advisor/internal/auth"
	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/rs/zerolog"
)

// Accounts manages user accounts and sessions.
type Accounts interface {
	Register(ctx context.Context, fullName, email, password string, image *auth.Image) (auth.Session, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Me(ctx context.Context, userID string) (domain.User, error)
	UpdateProfile(ctx context.Context, userID, fullName string, image *auth.Image) (domain.User, error)
	UploadImage(ctx context.Context, image auth.Image) (string, error)
}

// AuthHandler handles account endpoints.
type AuthHandler struct {
	accounts       Accounts
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewAuthHandler creates a new auth handler. Multipart bodies larger than
// maxUploadBytes are rejected.
func NewAuthHandler(accounts Accounts, maxUploadBytes int64, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:       accounts,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

type registerRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	ID    string      `json:"id"`
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	var image *auth.Image

	if isMultipart(r) {
		if err := h.parseMultipart(w, r); err != nil {
			middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error registering user")
			return
		}
		req.FullName = r.FormValue("fullName")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")

		img, closeImage, err := formImage(r, "profileImage")
		if err != nil {
			middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error registering user")
			return
		}
		defer closeImage()
		image = img
	} else if err := decodeJSON(r, &req); err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error registering user")
		return
	}

	if err := validateStruct(req); err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error registering user")
		return
	}

	sess, err := h.accounts.Register(r.Context(), req.FullName, req.Email, req.Password, image)
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error registering user")
		return
	}

	l := requestLog(r, h.log)
	l.Info().Str("user_id", sess.User.ID).Msg("User registered")
	middleware.WriteJSON(w, http.StatusCreated, sessionResponse{ID: sess.User.ID, User: sess.User, Token: sess.Token})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error logging in")
		return
	}
	if err := validateStruct(req); err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error logging in")
		return
	}

	sess, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error logging in")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, sessionResponse{ID: sess.User.ID, User: sess.User, Token: sess.Token})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := h.accounts.Me(ctx, middleware.UserIDFromContext(ctx))
	if errors.Is(err, domain.ErrNotFound) {
		middleware.WriteFailure(w, http.StatusNotFound, "User not found", nil)
		return
	}
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error fetching user")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, u)
}

// UpdateMe handles PUT /api/v1/auth/me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var fullName string
	var image *auth.Image

	if isMultipart(r) {
		if err := h.parseMultipart(w, r); err != nil {
			middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error updating user")
			return
		}
		fullName = r.FormValue("fullName")

		img, closeImage, err := formImage(r, "profileImage")
		if err != nil {
			middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error updating user")
			return
		}
		defer closeImage()
		image = img
	} else {
		var req struct {
			FullName string `json:"fullName"`
		}
		if err := decodeJSON(r, &req); err != nil {
			middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error updating user")
			return
		}
		fullName = req.FullName
	}

	u, err := h.accounts.UpdateProfile(ctx, middleware.UserIDFromContext(ctx), fullName, image)
	if errors.Is(err, domain.ErrNotFound) {
		middleware.WriteFailure(w, http.StatusNotFound, "User not found", nil)
		return
	}
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error updating user")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, u)
}

// UploadImage handles POST /api/v1/auth/upload-image
func (h *AuthHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error uploading image")
		return
	}

	image, closeImage, err := formImage(r, "image")
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error uploading image")
		return
	}
	defer closeImage()
	if image == nil {
		middleware.WriteFailure(w, http.StatusBadRequest, "No file uploaded", nil)
		return
	}

	url, err := h.accounts.UploadImage(r.Context(), *image)
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Error uploading image")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message":  "Image uploaded successfully",
		"imageUrl": url,
	})
}

func (h *AuthHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.NewValidationError("file", "File is too large")
		}
		return domain.NewValidationError("body", "Invalid multipart form")
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// formImage returns the uploaded file under field, or nil when absent, with
// a func that closes the file. The func is safe to call when image is nil.
func formImage(r *http.Request, field string) (*auth.Image, func(), error) {
	noop := func() {}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, domain.NewValidationError(field, "Invalid file")
	}

	image := &auth.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return image, func() { file.Close() }, nil
}
