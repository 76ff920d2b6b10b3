package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vidyadoc/slc-api/internal/apperrors"
)

// validationError converts validator failures into the tagged error model so
// handlers can render field-level detail without knowing the validator.
func validationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		fields := make(map[string]string, len(fieldErrors))
		for _, fieldError := range fieldErrors {
			fields[snakeCase(fieldError.Field())] = fmt.Sprintf("failed validation rule %q", fieldError.Tag())
		}
		return apperrors.Validation("request validation failed", fields)
	}
	return apperrors.Validation(err.Error(), nil)
}

// snakeCase converts a struct field name into its JSON wire name.
func snakeCase(field string) string {
	var out strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && field[i-1] >= 'a' && field[i-1] <= 'z' {
				out.WriteByte('_')
			}
			out.WriteRune(r - 'A' + 'a')
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// parseDate converts a validated YYYY-MM-DD string. Empty input means unset.
func parseDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid date %q", raw), map[string]string{"date": "expected YYYY-MM-DD"})
	}
	return &parsed, nil
}

func strPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
