package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// TimeLayout is the layout used for every TEXT timestamp column. The
// fraction is fixed-width so stored values sort chronologically as text.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// IsUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY
// constraint violation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a SQLite FOREIGN KEY
// constraint violation. Requires _foreign_keys=on (set by Open).
//
// Immediate checks report SQLITE_CONSTRAINT_FOREIGNKEY; ON DELETE RESTRICT
// reports SQLITE_CONSTRAINT_TRIGGER with the same message.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return true
		}
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			strings.Contains(sqliteErr.Error(), "FOREIGN KEY")
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// FormatTime formats t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp. Values written by older code in plain
// RFC3339 are accepted too.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Parse(time.RFC3339, s)
	}
	return t, nil
}

// NullString returns a NULL for empty strings.
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// NullTime returns a NULL for nil times.
func NullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

// LikeContains builds a LIKE pattern matching s anywhere in the column.
// Queries using it must declare ESCAPE '\'.
func LikeContains(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// RowScanner is implemented by both *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}
