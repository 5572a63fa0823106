package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// LabelCount is one bucket of a grouped count.
type LabelCount struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// notFound reports whether err means "no row", which repositories surface as
// a nil result rather than an error.
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches s as a literal, case-insensitive substring. It must be
// paired with ilike so the escape character is declared.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// ilike returns a LIKE condition on the lowercased column.
func ilike(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}

// IsUniqueViolation reports whether err came from a unique constraint. The
// message checks cover drivers that do not translate errors.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
