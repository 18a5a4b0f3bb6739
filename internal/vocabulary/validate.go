package vocabulary

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/errors"
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrValidation
}

// normalizeInput trims every field, lowercases the tag and rejects empty
// tag, category or subcategory.
func normalizeInput(tag, translation, category, subcategory string) (Record, error) {
	rec := Record{
		Tag:         strings.ToLower(strings.TrimSpace(tag)),
		Translation: strings.TrimSpace(translation),
		Category:    strings.TrimSpace(category),
		Subcategory: strings.TrimSpace(subcategory),
	}
	errs := make(map[string]string)
	if rec.Tag == "" {
		errs["tag"] = "tag is required"
	}
	if rec.Category == "" {
		errs["category"] = "category is required"
	}
	if rec.Subcategory == "" {
		errs["subcategory"] = "subcategory is required"
	}
	if len(errs) > 0 {
		return Record{}, &ValidationError{Fields: errs}
	}
	return rec, nil
}
