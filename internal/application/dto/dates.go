package dto

import (
	"strings"
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
)

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

// ParseDate interpreta fechas ISO-8601 (YYYY-MM-DD o RFC3339). Vacío devuelve nil.
func ParseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.NewValidationError(field, "no es una fecha ISO-8601")
}

// FormatDate formatea una fecha de vencimiento como YYYY-MM-DD.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.DateOnly)
	return &s
}
