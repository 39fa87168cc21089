package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func multipartRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte(content))
	}
	mw.WriteField("fullName", "Asha")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/upload-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFormImage_ClosesFile(t *testing.T) {
	req := multipartRequest(t, "image", "me.png", strings.Repeat("x", 4096))
	// A tiny memory limit spills the file part to disk.
	if err := req.ParseMultipartForm(1); err != nil {
		t.Fatalf("ParseMultipartForm() error = %v", err)
	}
	defer req.MultipartForm.RemoveAll()

	image, closeImage, err := formImage(req, "image")
	if err != nil {
		t.Fatalf("formImage() error = %v", err)
	}
	if image == nil || image.Filename != "me.png" {
		t.Fatalf("formImage() = %+v", image)
	}

	closeImage()

	if _, err := io.ReadAll(image.Body); err == nil {
		t.Error("reading after close should fail")
	}
}

func TestFormImage_Missing(t *testing.T) {
	req := multipartRequest(t, "", "", "")
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("ParseMultipartForm() error = %v", err)
	}

	image, closeImage, err := formImage(req, "image")
	if err != nil || image != nil {
		t.Fatalf("formImage() = %+v, %v; want nil, nil", image, err)
	}
	closeImage()
}

func TestIsMultipart(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"multipart/form-data; boundary=abc", true},
		{"application/json", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("Content-Type", tt.contentType)
			if got := isMultipart(req); got != tt.want {
				t.Errorf("isMultipart(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}
