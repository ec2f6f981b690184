// Package testutil provides a stub database driver for postgres store tests.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
)

var driverSeq uint64

// StubConn emulates the snapshot schema for store tests. It keeps the state
// table as ordered rows keyed by bucket and exposes failure toggles for each
// driver hook the store exercises.
type StubConn struct {
	Execs      []string
	Tables     map[string][]map[string]any
	FailExec   bool
	FailBegin  bool
	FailQuery  bool
	FailCommit bool
	RowsErr    error
}

// NewStubDB registers a fresh stub driver and opens a sql.DB over it.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Tables: make(map[string][]map[string]any)}
	name := fmt.Sprintf("stubpg%d", atomic.AddUint64(&driverSeq, 1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) {
	return nil, fmt.Errorf("not implemented")
}

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(context.Context) error {
	if c.FailExec {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, fmt.Errorf("begin rejected")
	}
	return &stubTx{conn: c}, nil
}

// ExecContext implements driver.ExecerContext. DDL statements are recorded and
// acknowledged; bucket upserts replace any existing row with the same bucket.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	if !isStateUpsert(query) {
		return driver.RowsAffected(0), nil
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("expected bucket and payload args, got %d", len(args))
	}
	row := map[string]any{"bucket": args[0].Value, "payload": args[1].Value}
	var kept []map[string]any
	for _, existing := range c.Tables["state"] {
		if existing["bucket"] == row["bucket"] {
			continue
		}
		kept = append(kept, existing)
	}
	c.Tables["state"] = append(kept, row)
	return driver.RowsAffected(1), nil
}

// QueryContext implements driver.QueryerContext. It answers the snapshot load
// query from the current state rows.
func (c *StubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if c.FailQuery {
		return nil, fmt.Errorf("query fail")
	}
	if !strings.Contains(strings.ToLower(query), "from state") {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	rows := &stateRows{err: c.RowsErr}
	for _, row := range c.Tables["state"] {
		rows.rows = append(rows.rows, [2]driver.Value{row["bucket"], row["payload"]})
	}
	return rows, nil
}

func isStateUpsert(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO STATE")
}

type stubTx struct{ conn *StubConn }

func (t *stubTx) Commit() error {
	if t.conn.FailCommit {
		return fmt.Errorf("commit rejected")
	}
	return nil
}

func (t *stubTx) Rollback() error { return nil }

type stateRows struct {
	rows [][2]driver.Value
	idx  int
	err  error
}

func (r *stateRows) Columns() []string { return []string{"bucket", "payload"} }

func (r *stateRows) Close() error { return nil }

func (r *stateRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	dest[0] = r.rows[r.idx][0]
	dest[1] = r.rows[r.idx][1]
	r.idx++
	return nil
}
