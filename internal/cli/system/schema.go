package system

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/julianstephens/steady/internal/migration"
	"github.com/julianstephens/steady/internal/storage"
	"github.com/julianstephens/steady/internal/storage/postgres"
	"github.com/julianstephens/steady/internal/storage/sqlite"
	"github.com/julianstephens/steady/migrations"
)

// schemaRunner returns a migration runner over the record store's database.
func schemaRunner(p storage.Provider) (*migration.Runner, error) {
	var (
		db     *sql.DB
		dir    string
		driver migration.Driver
	)
	switch s := p.(type) {
	case *sqlite.Store:
		db, dir, driver = s.GetDB(), "sqlite", migration.DriverSQLite
	case *postgres.Store:
		db, dir, driver = s.GetDB(), "postgres", migration.DriverPostgres
	default:
		return nil, fmt.Errorf("%s does not expose a schema", p.Describe())
	}
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	subFS, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", dir, err)
	}
	return migration.NewRunner(db, subFS, driver)
}
