package database

import (
	"context"
	"embed"
	"io/fs"
	"testing"
)

//go:embed testdata/*.sql
var fixtureFS embed.FS

// useMigrations points the runner at fsys/dir for the duration of the test.
func useMigrations(t *testing.T, fsys fs.FS, dir string) {
	t.Helper()
	prevFS, prevDir := MigrationsFS, MigrationsDir
	MigrationsFS, MigrationsDir = fsys, dir
	t.Cleanup(func() {
		MigrationsFS, MigrationsDir = prevFS, prevDir
	})
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&n)
	if err != nil {
		t.Fatalf("sqlite_master lookup: %v", err)
	}
	return n == 1
}

func TestMigrate_UpDown(t *testing.T) {
	useMigrations(t, fixtureFS, "testdata")
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // test cleanup
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "test_assets") {
		t.Fatal("test_assets not created")
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() again error = %v", err)
	}

	applied, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(applied) != 1 || len(pending) != 0 {
		t.Errorf("applied=%d pending=%d, want 1/0", len(applied), len(pending))
	}

	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "test_assets") {
		t.Error("test_assets still present after MigrateDown")
	}
	applied, pending, err = db.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(applied) != 0 || len(pending) != 1 {
		t.Errorf("after down applied=%d pending=%d, want 0/1", len(applied), len(pending))
	}
}

func TestMigrate_NothingToApply(t *testing.T) {
	tests := []struct {
		name string
		fsys fs.FS
		dir  string
	}{
		{name: "no filesystem", fsys: nil, dir: "."},
		{name: "missing directory", fsys: fixtureFS, dir: "does-not-exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useMigrations(t, tt.fsys, tt.dir)
			db := openTestDB(t)
			defer db.Close() //nolint:errcheck // test cleanup

			if err := db.Migrate(context.Background()); err != nil {
				t.Fatalf("Migrate() error = %v", err)
			}
		})
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		file    string
		version string
		up      bool
		ok      bool
	}{
		{"20260301_090000_initial_schema.up.sql", "20260301_090000", true, true},
		{"20260301_090000_initial_schema.down.sql", "20260301_090000", false, true},
		{"20260301_090000_initial_schema.sql", "", false, false},
		{"schema.up.sql", "", false, false},
		{"notes.txt", "", false, false},
	}
	for _, tt := range tests {
		version, up, ok := parseMigrationFilename(tt.file)
		if ok != tt.ok || (ok && (version != tt.version || up != tt.up)) {
			t.Errorf("parseMigrationFilename(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.file, version, up, ok, tt.version, tt.up, tt.ok)
		}
	}

	if got := extractMigrationName("20260415_101500_add_return_note.up.sql"); got != "add_return_note" {
		t.Errorf("extractMigrationName() = %q, want add_return_note", got)
	}
}
