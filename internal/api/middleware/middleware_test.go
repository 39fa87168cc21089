package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/rs/zerolog"
)

type stubTokens map[string]string

func (s stubTokens) Validate(token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

func TestRequireAuth(t *testing.T) {
	protected := RequireAuth(stubTokens{"good": "user-1"}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"user": UserIDFromContext(r.Context())})
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "no header", wantStatus: http.StatusUnauthorized, wantBody: "Not authorized, no token"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantBody: "Not authorized, no token"},
		{name: "bad token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantBody: "Not authorized, token failed"},
		{name: "valid", header: "Bearer good", wantStatus: http.StatusOK, wantBody: `"user":"user-1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", fmt.Errorf("Chat: %w", domain.NewValidationError("message", "Message is required")), http.StatusBadRequest, "Message is required"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
		{"email taken", fmt.Errorf("Register: %w", domain.ErrEmailTaken), http.StatusBadRequest, "Email already in use"},
		{"file type", domain.ErrUnsupportedFileType, http.StatusBadRequest, "Only .jpeg, .jpg and .png formats are allowed"},
		{"upstream", fmt.Errorf("%w: boom", domain.ErrUpstream), http.StatusInternalServerError, "fallback"},
		{"store", fmt.Errorf("%w: timeout", domain.ErrStoreUnavailable), http.StatusInternalServerError, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := StatusFor(tt.err, "fallback")
			if status != tt.wantStatus || msg != tt.wantMessage {
				t.Errorf("StatusFor() = %d %q, want %d %q", status, msg, tt.wantStatus, tt.wantMessage)
			}
		})
	}
}

func TestWriteServiceError_ServerErrorCarriesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteServiceError(rec, zerolog.Nop(), fmt.Errorf("%w: quota exceeded", domain.ErrUpstream), "Failed to generate suggestion")

	var body Failure
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusInternalServerError || body.Success {
		t.Errorf("status = %d, success = %v", rec.Code, body.Success)
	}
	if body.Message != "Failed to generate suggestion" || !strings.Contains(body.Error, "quota exceeded") {
		t.Errorf("body = %+v", body)
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := zerolog.New(buf)

	var seen string
	h := RequestID(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "req-42" || rec.Header().Get("X-Request-ID") != "req-42" {
		t.Errorf("request id = %q, header = %q", seen, rec.Header().Get("X-Request-ID"))
	}
	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) || !strings.Contains(out, `"status":418`) {
		t.Errorf("log output = %s", out)
	}
}

func TestRequestID_Generated(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(rec.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("generated id = %q, want a uuid", rec.Header().Get("X-Request-ID"))
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/expenses", nil))

	if rec.Code != http.StatusNoContent || called {
		t.Errorf("status = %d, called = %v", rec.Code, called)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing allow-origin header")
	}
}
