package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = newValidator()

// requestLog returns the request-scoped logger set by middleware.Logger,
// or fallback outside it.
func requestLog(r *http.Request, fallback zerolog.Logger) zerolog.Logger {
	return logger.FromContextOr(r.Context(), fallback)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ProcessValidationErrors maps each failing field to the tag it failed on.
func ProcessValidationErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	errorResponse := make(map[string]string)
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}

// validateStruct runs the struct validator and converts the first failing
// field, in name order, into a ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fields := ProcessValidationErrors(err)
	if len(fields) == 0 {
		return err
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	field := names[0]
	return domain.NewValidationError(field, describeTag(field, fields[field]))
}

func describeTag(field, tag string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than 0", field)
	case "min":
		return fmt.Sprintf("%s is too short", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("body", "Invalid request body")
	}
	return nil
}

// parseDate accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date.
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError(field, fmt.Sprintf("Invalid %s format", field))
}
