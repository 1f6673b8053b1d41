// Package migrations holds the SQL schema for AssetFlow.
//
// Importing it for side effects registers the embedded files with the
// database package, so the binary carries its own schema.
package migrations

import (
	"embed"

	"github.com/nerrad567/assetflow-core/internal/infrastructure/database"
)

//go:embed *.sql
var schemaFS embed.FS

func init() {
	database.MigrationsFS = schemaFS
	database.MigrationsDir = "."
}
