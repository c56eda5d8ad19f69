package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// Server wraps an administrative connection to a MySQL or MariaDB server
// with no database selected. Connections dial lazily on first use, so
// constructing a Server is free and network failures surface on the
// operation that hit them.
type Server struct {
	params ConnParams
	db     *sql.DB
}

// NewServer prepares a server wrapper for the given connection parameters.
func NewServer(params ConnParams) (*Server, error) {
	db, err := sql.Open("mysql", params.DSN(""))
	if err != nil {
		return nil, fmt.Errorf("open server connection: %w", err)
	}
	return &Server{params: params, db: db}, nil
}

// Params returns the connection parameters the server was built with.
func (s *Server) Params() ConnParams { return s.params }

// Ping verifies the server is reachable and the credentials are accepted.
func (s *Server) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", s.params.Addr(), err)
	}
	return nil
}

// Close releases the administrative connection pool.
func (s *Server) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListDatabases returns the names of databases starting with prefix,
// sorted. LIKE wildcards inside the prefix are escaped so it matches
// literally.
func (s *Server) ListDatabases(ctx context.Context, prefix string) ([]string, error) {
	const query = "SELECT schema_name FROM information_schema.schemata WHERE schema_name LIKE ? ORDER BY schema_name"
	rows, err := s.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("list databases %s*: %w", prefix, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan database name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list databases %s*: %w", prefix, err)
	}
	return names, nil
}

// EnsureDatabase creates the named database if it does not exist, with the
// utf8mb4 character set media center clients expect. Safe to call when the
// database is already present.
func (s *Server) EnsureDatabase(ctx context.Context, name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	stmt := fmt.Sprintf(
		"CREATE DATABASE IF NOT EXISTS %s CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci",
		MySQL.QuoteIdentifier(name),
	)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

// OpenDatabase opens a handle on the named database and verifies it with a
// ping. The caller owns the handle and must close it.
func (s *Server) OpenDatabase(ctx context.Context, name string) (*Handle, error) {
	db, err := sql.Open("mysql", s.params.DSN(name))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database %s: %w", name, err)
	}
	return &Handle{DB: db, Dialect: MySQL}, nil
}

// escapeLike backslash-escapes the LIKE metacharacters in s so it can be
// embedded in a pattern as a literal.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
