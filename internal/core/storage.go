package core

import (
	"fmt"
	"os"

	"sporely/internal/infra/persistence/memory"
	"sporely/internal/infra/persistence/postgres"
	"sporely/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenPersistentStore constructs the selected backend. sqlitePath and
// postgresDSN are consulted only by their respective drivers; empty values
// fall back to each driver's default.
func OpenPersistentStore(driver StorageDriver, sqlitePath, postgresDSN string, engine *RulesEngine) (PersistentStore, error) {
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(sqlitePath, engine)
	case StoragePostgres:
		return postgres.NewStore(postgresDSN, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// OpenPersistentStoreFromEnv selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	SPORELY_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	SPORELY_SQLITE_PATH: path to sqlite file (default ./sporely.db)
//	SPORELY_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStoreFromEnv(engine *RulesEngine) (PersistentStore, error) {
	driver := os.Getenv("SPORELY_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	return OpenPersistentStore(StorageDriver(driver), os.Getenv("SPORELY_SQLITE_PATH"), os.Getenv("SPORELY_POSTGRES_DSN"), engine)
}
