package decision

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const isoDateLayout = "2006-01-02"

var passportRe = regexp.MustCompile(`(?i)^[a-z0-9]{5}(-[a-z0-9]{5}){4}$`)

var entryValidator = newEntryValidator()

func newEntryValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("passport", func(fl validator.FieldLevel) bool {
		return ValidPassport(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseISODate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidPassport reports whether p is five groups of five alphanumerics joined
// by hyphens, in any letter case.
func ValidPassport(p string) bool {
	return passportRe.MatchString(p)
}

// ParseISODate parses a YYYY-MM-DD calendar date. Out of range months and days
// are rejected.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

type FieldIssue struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+" ("+is.Rule+")")
	}
	return "malformed entry: " + strings.Join(parts, ", ")
}

// ValidateEntry returns nil for a complete, well formatted entry and a
// *ValidationError naming every defective field otherwise.
func ValidateEntry(e Entry) error {
	err := entryValidator.Struct(e)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Issues: make([]FieldIssue, 0, len(verrs))}
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Entry.")
		out.Issues = append(out.Issues, FieldIssue{Field: field, Rule: fe.Tag()})
	}
	return out
}
