// Package migrations embeds SQL migration files into the binary so the
// server can bring its schema up to date without shipping loose files.
package migrations

import (
	"embed"

	"github.com/smartdom/smartdom-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // files sit at the root of the embedded FS
}
