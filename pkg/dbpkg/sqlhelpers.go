// Package dbpkg provides helpers to make db initialization and testing easier.
package dbpkg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Setup sets up connection with database.
func Setup(driver, source string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// ParseIsolation maps a config value to the isolation level of atomic units.
//
// Only read committed and serializable are accepted. Under repeatable read a
// unit that waited for an account row lock still reads entries from the
// snapshot taken before the wait, so it can miss the debit of the unit it
// waited for.
func ParseIsolation(level string) (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "read_committed", "read committed":
		return sql.LevelReadCommitted, nil
	case "serializable":
		return sql.LevelSerializable, nil
	}

	return sql.LevelDefault, fmt.Errorf("unsupported isolation level %q", level)
}

// SQLInterface provides neccessary db methods to perform queries.
//
// Both *sql.DB and *sql.Tx implement it, so a repository built on a *sql.Tx
// takes part in that transaction.
type SQLInterface interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}
