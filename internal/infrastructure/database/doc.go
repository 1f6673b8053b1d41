// Package database owns the SQLite connection and schema migrations for
// AssetFlow.
//
// The store runs with foreign keys on and, by default, WAL journaling.
// Migrations are versioned YYYYMMDD_HHMMSS_description.{up,down}.sql
// files embedded by the migrations package:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// sqlutil.go holds the small helpers the repositories share for time
// columns, nullable values and constraint-violation detection.
package database
