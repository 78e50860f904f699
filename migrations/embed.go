// Package migrations embeds the journal schema migrations into the binary.
package migrations

import (
	"embed"

	"github.com/nerrad567/hearth-core/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
