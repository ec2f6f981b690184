package core

import (
	"fmt"
	"os"

	"traitcore/internal/infra/persistence/memory"
	"traitcore/internal/infra/persistence/postgres"
	"traitcore/internal/infra/persistence/sqlite"
	"traitcore/pkg/domain"
)

// StorageDriver selects which persistent backend OpenPersistentStore builds.
type StorageDriver string

const (
	// StorageMemory keeps everything in process, for tests and throwaway runs.
	StorageMemory StorageDriver = "memory"
	// StorageSQLite writes snapshots to an embedded sqlite file.
	StorageSQLite StorageDriver = "sqlite"
	// StoragePostgres snapshots into a PostgreSQL server.
	StoragePostgres StorageDriver = "postgres"
)

// Persistence aliases so service code reads without the domain qualifier.
type (
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
)

// NewMemoryStore returns the in-memory store implementation backed by the
// given rules engine.
func NewMemoryStore(engine *RulesEngine) *memory.Store {
	return memory.NewStore(engine)
}

// NewSQLiteStore constructs a SQLite-backed persistent store using the provided
// file path (may be empty for the default) and rules engine.
func NewSQLiteStore(path string, engine *RulesEngine) (*sqlite.Store, error) {
	return sqlite.NewStore(path, engine)
}

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	TRAITCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	TRAITCORE_SQLITE_PATH: path to sqlite file (default ./traitcore.db)
//	TRAITCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(engine *RulesEngine) (PersistentStore, error) {
	driver := os.Getenv("TRAITCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		path := os.Getenv("TRAITCORE_SQLITE_PATH")
		return sqlite.NewStore(path, engine)
	case StoragePostgres:
		dsn := os.Getenv("TRAITCORE_POSTGRES_DSN")
		return postgres.NewStore(dsn, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
