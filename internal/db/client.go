// Package db wraps the SQLite connection to a GeoPackage file and provides
// schema introspection on top of it.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Client manages the connection to a GeoPackage (SQLite) file.
type Client struct {
	db *sql.DB
}

// Open opens the SQLite file at path and verifies the connection.
func Open(ctx context.Context, path string) (*Client, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// DB returns the underlying database handle.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Conn pins a single connection from the pool. Validations that rely on
// connection-scoped pragmas (foreign_keys, ignore_check_constraints) must run
// every statement on the same connection, which the pool does not guarantee.
func (c *Client) Conn(ctx context.Context) (*sql.Conn, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to pin connection: %w", err)
	}
	return conn, nil
}
