// Package history records every applied operation in a relational
// database for audit and replay review. SQLite (embedded, the default)
// and PostgreSQL are supported through database/sql.
package history

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // embedded sqlite driver

	"github.com/vennlabs/custodiad/internal/core/op"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/types"
)

const (
	// DriverSQLite is the embedded driver name.
	DriverSQLite = "sqlite"

	// DriverPostgres is the PostgreSQL driver name.
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned for drivers this store does not support.
var ErrUnknownDriver = errors.New("unknown history driver")

// Record is one applied (or rejected) operation.
type Record struct {
	Seq       int64
	Digest    string
	Kind      op.Kind
	KindName  string
	Actor     types.ID
	Result    result.Result
	Applied   bool
	AppliedAt time.Time
	Payload   []byte
}

// Store writes and reads the operation history.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects, verifies, and migrates the history database.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}

	st := &Store{db: db, driver: driver}
	if err := st.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func (st *Store) migrate(ctx context.Context) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	blob := "BLOB"
	if st.driver == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
		blob = "BYTEA"
	}
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS operations (
	seq        %s,
	digest     TEXT NOT NULL UNIQUE,
	kind       INTEGER NOT NULL,
	kind_name  TEXT NOT NULL,
	actor      TEXT NOT NULL,
	result     INTEGER NOT NULL,
	applied    BOOLEAN NOT NULL,
	applied_at BIGINT NOT NULL,
	payload    %s
);
CREATE INDEX IF NOT EXISTS idx_operations_actor ON operations (actor);
CREATE INDEX IF NOT EXISTS idx_operations_kind ON operations (kind);`, serial, blob)

	if _, err := st.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate history schema: %w", err)
	}
	return nil
}

// Append records one submission outcome. The canonical payload keeps
// the full operation re-decodable later.
func (st *Store) Append(ctx context.Context, operation op.Operation, out op.ApplyResult, at time.Time) error {
	payload, err := op.EncodeOperation(operation)
	if err != nil {
		return fmt.Errorf("encode operation: %w", err)
	}

	query := `INSERT INTO operations (digest, kind, kind_name, actor, result, applied, applied_at, payload)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if st.driver == DriverPostgres {
		query = `INSERT INTO operations (digest, kind, kind_name, actor, result, applied, applied_at, payload)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	}

	_, err = st.db.ExecContext(ctx, query,
		hex.EncodeToString(out.Digest[:]),
		int64(operation.Kind()),
		operation.Kind().String(),
		operation.Actor().String(),
		int64(out.Result),
		out.Applied,
		at.Unix(),
		payload,
	)
	if err != nil {
		return fmt.Errorf("append history record: %w", err)
	}
	return nil
}

// ByActor returns the newest records for one actor, newest first.
func (st *Store) ByActor(ctx context.Context, actor types.ID, limit int) ([]Record, error) {
	query := `SELECT seq, digest, kind, kind_name, actor, result, applied, applied_at, payload
FROM operations WHERE actor = ? ORDER BY seq DESC LIMIT ?`
	if st.driver == DriverPostgres {
		query = `SELECT seq, digest, kind, kind_name, actor, result, applied, applied_at, payload
FROM operations WHERE actor = $1 ORDER BY seq DESC LIMIT $2`
	}
	return st.query(ctx, query, actor.String(), limit)
}

// Recent returns the newest records across all actors, newest first.
func (st *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT seq, digest, kind, kind_name, actor, result, applied, applied_at, payload
FROM operations ORDER BY seq DESC LIMIT ?`
	if st.driver == DriverPostgres {
		query = `SELECT seq, digest, kind, kind_name, actor, result, applied, applied_at, payload
FROM operations ORDER BY seq DESC LIMIT $1`
	}
	return st.query(ctx, query, limit)
}

func (st *Store) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			kind      int64
			actorHex  string
			res       int64
			appliedAt int64
		)
		if err := rows.Scan(&rec.Seq, &rec.Digest, &kind, &rec.KindName, &actorHex,
			&res, &rec.Applied, &appliedAt, &rec.Payload); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		rec.Kind = op.Kind(kind)
		rec.Result = result.Result(res)
		rec.AppliedAt = time.Unix(appliedAt, 0).UTC()
		if actor, err := types.IDFromHex(actorHex); err == nil {
			rec.Actor = actor
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the database connection.
func (st *Store) Close() error {
	return st.db.Close()
}
