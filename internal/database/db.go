package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cropsense/internal/metrics"

	_ "github.com/go-sql-driver/mysql"
)

// DB is a MySQL-backed client state store. Rows are partitioned by namespace
// so several devices or profiles can share one database.
type DB struct {
	conn      *sql.DB
	namespace string
}

// NewDB creates a new database connection and initializes the schema
// dsn format: "username:password@tcp(host:port)/dbname?parseTime=true"
func NewDB(ctx context.Context, dsn, namespace string) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// A CLI needs very few connections
	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db, err := FromConn(ctx, conn, namespace)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// FromConn wraps an open connection and initializes the schema. An empty
// namespace means "default".
func FromConn(ctx context.Context, conn *sql.DB, namespace string) (*DB, error) {
	if namespace == "" {
		namespace = "default"
	}
	db := &DB{conn: conn, namespace: namespace}

	if err := db.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func (db *DB) initSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS client_state (
		namespace VARCHAR(100) NOT NULL,
		state_key VARCHAR(100) NOT NULL,
		state_value TEXT NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		PRIMARY KEY (namespace, state_key)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

	if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute schema statement: %w", err)
	}
	return nil
}

// Get returns the value stored under key, if any
func (db *DB) Get(ctx context.Context, key string) (string, bool, error) {
	defer db.updatePoolStats()

	var value string
	query := `SELECT state_value FROM client_state WHERE namespace = ? AND state_key = ?`
	err := db.conn.QueryRowContext(ctx, query, db.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts key
func (db *DB) Set(ctx context.Context, key, value string) error {
	defer db.updatePoolStats()

	query := `INSERT INTO client_state (namespace, state_key, state_value, updated_at) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE state_value = VALUES(state_value), updated_at = VALUES(updated_at)`
	_, err := db.conn.ExecContext(ctx, query, db.namespace, key, value, time.Now().UTC())
	return err
}

// Delete removes key; deleting a missing key is not an error
func (db *DB) Delete(ctx context.Context, key string) error {
	defer db.updatePoolStats()

	query := `DELETE FROM client_state WHERE namespace = ? AND state_key = ?`
	_, err := db.conn.ExecContext(ctx, query, db.namespace, key)
	return err
}

func (db *DB) updatePoolStats() {
	stats := db.conn.Stats()
	metrics.UpdateDBConnectionStats(stats.OpenConnections, stats.InUse, stats.Idle)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
