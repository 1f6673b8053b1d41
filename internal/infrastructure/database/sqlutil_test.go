package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLikeContains(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "laptop", want: "%laptop%"},
		{in: "100%", want: `%100\%%`},
		{in: "a_b", want: `%a\_b%`},
		{in: `c:\dir`, want: `%c:\\dir%`},
	}
	for _, tt := range tests {
		if got := LikeContains(tt.in); got != tt.want {
			t.Errorf("LikeContains(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTime_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 15, 123456789, time.UTC)

	got, err := ParseTime(FormatTime(now))
	if err != nil {
		t.Fatalf("ParseTime() error = %v", err)
	}
	if !got.Equal(now) {
		t.Errorf("ParseTime() = %v, want %v", got, now)
	}

	legacy, err := ParseTime("2026-03-01T09:30:15Z")
	if err != nil {
		t.Fatalf("ParseTime(legacy) error = %v", err)
	}
	if legacy.Second() != 15 {
		t.Errorf("legacy seconds = %d, want 15", legacy.Second())
	}

	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("ParseTime(garbage) expected error")
	}
}

func TestConstraintViolations(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	schema := `
		CREATE TABLE parents (id TEXT PRIMARY KEY, code TEXT UNIQUE);
		CREATE TABLE children (id TEXT PRIMARY KEY, parent_id TEXT NOT NULL REFERENCES parents(id));
		CREATE TABLE holds (id TEXT PRIMARY KEY, parent_id TEXT NOT NULL REFERENCES parents(id) ON DELETE RESTRICT);
	`
	if _, err := db.DB.ExecContext(ctx, schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO parents (id, code) VALUES ('p1', 'A')"); err != nil {
		t.Fatalf("insert parent: %v", err)
	}

	_, err := db.ExecContext(ctx, "INSERT INTO parents (id, code) VALUES ('p2', 'A')")
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}

	_, err = db.ExecContext(ctx, "INSERT INTO children (id, parent_id) VALUES ('c1', 'missing')")
	if !IsForeignKeyViolation(err) {
		t.Errorf("IsForeignKeyViolation(%v) = false, want true", err)
	}
	if IsUniqueViolation(err) {
		t.Error("foreign key error reported as unique violation")
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO holds (id, parent_id) VALUES ('h1', 'p1')"); err != nil {
		t.Fatalf("insert hold: %v", err)
	}
	_, err = db.ExecContext(ctx, "DELETE FROM parents WHERE id = 'p1'")
	if err == nil {
		t.Fatal("deleting restricted parent succeeded")
	}
	if !IsForeignKeyViolation(err) {
		t.Errorf("IsForeignKeyViolation(%v) = false on RESTRICT delete, want true", err)
	}

	if IsUniqueViolation(nil) || IsForeignKeyViolation(nil) {
		t.Error("nil error reported as a violation")
	}
	if IsUniqueViolation(errors.New("disk I/O error")) {
		t.Error("unrelated error reported as unique violation")
	}
}
