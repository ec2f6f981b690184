// Package postgres provides a Postgres-backed persistent store that mirrors
// the in-memory semantics while snapshotting state into a JSONB table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	sqldocs "traitcore/docs/schema/sql"
	"traitcore/internal/infra/persistence/memory"
	"traitcore/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// Matches what OpenPersistentStore falls back to when no DSN is set.
	defaultDSN = "postgres://localhost/traitcore?sslmode=disable"

	bucketTreeSequences = "tree_sequences"
	bucketTraitTables   = "trait_tables"

	selectStateSQL = `SELECT bucket, payload FROM state`
	upsertStateSQL = `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`
)

var postgresBuckets = []string{bucketTreeSequences, bucketTraitTables}

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store decorates the in-memory store with Postgres durability. Transactions
// run in memory first and the resulting state lands in the state table.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore connects to Postgres, creates the snapshot schema if needed, and
// hydrates a fresh in-memory store from whatever snapshot is already there.
// An empty dsn selects defaultDSN.
func NewStore(dsn string, engine *domain.RulesEngine) (*Store, error) {
	db, err := connect(dsn)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if err := ensureStateTable(ctx, db); err != nil {
		return nil, err
	}
	snapshot, err := loadSnapshot(ctx, db)
	if err != nil {
		return nil, err
	}
	store := &Store{Store: memory.NewStore(engine), db: db}
	store.ImportState(snapshot)
	return store, nil
}

func connect(dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// RunInTransaction defers to the embedded store and snapshots to Postgres
// once the in-memory commit sticks.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err == nil {
		err = s.persist(ctx)
	}
	return res, err
}

// DB returns the live database handle. Integration tests read rows through it.
func (s *Store) DB() *sql.DB { return s.db }

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	for _, stmt := range sqldocs.SplitStatements(sqldocs.Postgres) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure state table: %w", err)
		}
	}
	return nil
}

func loadSnapshot(ctx context.Context, db *sql.DB) (memory.Snapshot, error) {
	var snapshot memory.Snapshot

	rows, err := db.QueryContext(ctx, selectStateSQL)
	if err != nil {
		return snapshot, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			bucket  string
			payload []byte
		)
		if err := rows.Scan(&bucket, &payload); err != nil {
			return memory.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		if err := decodeBucket(&snapshot, bucket, payload); err != nil {
			return memory.Snapshot{}, err
		}
	}
	if err := rows.Err(); err != nil {
		return memory.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return snapshot, nil
}

// decodeBucket hydrates one snapshot field. Unknown buckets and empty
// payloads are skipped so older snapshots keep loading.
func decodeBucket(snapshot *memory.Snapshot, bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	var target any
	switch bucket {
	case bucketTreeSequences:
		target = &snapshot.TreeSequences
	case bucketTraitTables:
		target = &snapshot.TraitTables
	default:
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}

func encodeBucket(snapshot memory.Snapshot, bucket string) ([]byte, error) {
	switch bucket {
	case bucketTreeSequences:
		return json.Marshal(snapshot.TreeSequences)
	case bucketTraitTables:
		return json.Marshal(snapshot.TraitTables)
	}
	return nil, fmt.Errorf("unknown bucket %s", bucket)
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := upsertBuckets(ctx, tx, s.ExportState()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

func upsertBuckets(ctx context.Context, tx *sql.Tx, snapshot memory.Snapshot) error {
	for _, bucket := range postgresBuckets {
		data, err := encodeBucket(snapshot, bucket)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertStateSQL, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	return nil
}

// OverrideSQLOpen replaces the connection opener and returns a func that puts
// it back. Tests use it to point NewStore at stub drivers.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}
