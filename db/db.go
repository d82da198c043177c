// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidLevel    = errors.New("invalid volunteer level")
	ErrInvalidParent   = errors.New("parent volunteer must be a level2 volunteer")
	ErrUnknownDBType   = errors.New("unknown database type")
	ErrNothingToUpdate = errors.New("no columns to update")
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so store functions can
// run inside or outside a transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Open connects to the database and verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case TypePostgres:
		driver = "postgres"
	case TypeSQLite:
		driver = "sqlite"
		if !strings.Contains(url, "_pragma=foreign_keys") {
			sep := "?"
			if strings.Contains(url, "?") {
				sep = "&"
			}
			url += sep + "_pragma=foreign_keys(1)"
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDBType, dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer, and an in-memory database only exists
	// on the connection that created it.
	if dbType == TypeSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return conn, nil
}

// Where collects AND-ed conditions written with ? placeholders and renders
// them with numbered $N placeholders.
type Where struct {
	conds []string
	args  []any
}

// Add appends a condition. Empty conditions are ignored.
func (w *Where) Add(cond string, args ...any) {
	if cond == "" {
		return
	}
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// Args returns the bound arguments in placeholder order.
func (w *Where) Args() []any {
	return w.args
}

// SQL renders " WHERE a AND b" with placeholders numbered from start. It
// returns the empty string when there are no conditions.
func (w *Where) SQL(start int) string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + Renumber(strings.Join(w.conds, " AND "), start)
}

// Renumber rewrites each ? in query as $start, $start+1, ...
func Renumber(query string, start int) string {
	var b strings.Builder
	n := start
	for _, r := range query {
		if r == '?' {
			b.WriteString("$" + strconv.Itoa(n))
			n++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Set collects column assignments for an UPDATE.
type Set struct {
	cols []string
	args []any
}

// Add assigns value to column.
func (s *Set) Add(column string, value any) {
	s.cols = append(s.cols, column)
	s.args = append(s.args, value)
}

// Len is the number of assignments.
func (s *Set) Len() int {
	return len(s.cols)
}

// SQL renders "a = $1, b = $2" and returns the next free placeholder number.
func (s *Set) SQL() (string, int) {
	parts := make([]string, len(s.cols))
	for i, c := range s.cols {
		parts[i] = c + " = $" + strconv.Itoa(i+1)
	}
	return strings.Join(parts, ", "), len(s.cols) + 1
}

// placeholders returns "$start, $start+1, ..." for n values.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ", ")
}
