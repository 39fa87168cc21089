package middleware

import (
	"errors"
	"net/http"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/rs/zerolog"
)

// Failure is the body of an unsuccessful response.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// WriteFailure writes {success:false, message, error}.
func WriteFailure(w http.ResponseWriter, status int, message string, err error) {
	f := Failure{Message: message}
	if err != nil {
		f.Error = err.Error()
	}
	WriteJSON(w, status, f)
}

// StatusFor maps a service error to a status code and client message.
// Unrecognised errors map to 500 with fallback as the message.
func StatusFor(err error, fallback string) (int, string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusBadRequest, "Email already in use"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "Only .jpeg, .jpg and .png formats are allowed"
	case errors.Is(err, domain.ErrUploadsDisabled):
		return http.StatusBadRequest, "Image uploads are disabled"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, fallback
	}
}

// WriteServiceError logs err and writes the matching failure response.
// Client errors carry only the message; server errors also carry the raw
// error text.
func WriteServiceError(w http.ResponseWriter, log zerolog.Logger, err error, fallback string) {
	status, message := StatusFor(err, fallback)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg(fallback)
		WriteFailure(w, status, message, err)
		return
	}
	log.Info().Err(err).Int("status", status).Msg("Request rejected")
	WriteFailure(w, status, message, nil)
}
