// pkg/dictionary/factory.go
package dictionary

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver for shared deployments
	_ "modernc.org/sqlite" // embedded driver for local runs
)

// Backend selects a store implementation.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// OpenStore creates a Store for the configured backend. DSN is a file path
// for file and sqlite backends and a connection string for postgres.
func OpenStore(backend Backend, dsn string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dsn)
	case BackendSQLite:
		db, err := sqlx.Connect("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite dictionary: %w", err)
		}
		return NewSQLStore(db)
	case BackendPostgres:
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres dictionary: %w", err)
		}
		return NewSQLStore(db)
	default:
		return nil, fmt.Errorf("unsupported dictionary backend: %s", backend)
	}
}
