// Package sqlutils provides helpers for classifying SQLite driver errors.
package sqlutils

import (
	"strings"
)

// SQLite extended result codes.
// See: https://www.sqlite.org/rescode.html
const (
	// SQLITE_CONSTRAINT_UNIQUE
	CodeConstraintUnique = "2067"
	// SQLITE_CONSTRAINT_PRIMARYKEY
	CodeConstraintPrimaryKey = "1555"
	// SQLITE_CONSTRAINT_FOREIGNKEY
	CodeConstraintForeignKey = "787"
)

// IsUniqueViolation checks if the error is a SQLite unique constraint
// violation. Both the cgo and pure-Go drivers surface the constraint name in
// the message, so matching on the message text works across drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		containsCode(msg, CodeConstraintUnique) ||
		containsCode(msg, CodeConstraintPrimaryKey)
}

// IsForeignKeyViolation checks if the error is a SQLite foreign key
// constraint violation.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		containsCode(msg, CodeConstraintForeignKey)
}

func containsCode(msg, code string) bool {
	return strings.Contains(msg, "("+code+")") || strings.Contains(msg, "code = "+code)
}
