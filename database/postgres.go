package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// Dialect is the SQL flavour behind a DBClient.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Placeholder returns the n-th (1-based) bind parameter for the dialect.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

type DBClient struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewPostgresDB(dbURL string) (*DBClient, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database (ping failed): %w", err)
	}

	log.Println("Successfully connected to PostgreSQL database!")
	return &DBClient{DB: db, Dialect: Postgres}, nil
}

// Open connects to the database selected by driver ("postgres" or "sqlite")
// and makes sure the schema exists.
func Open(ctx context.Context, driver, dbURL, sqlitePath string) (*DBClient, error) {
	var (
		client *DBClient
		err    error
	)
	switch Dialect(driver) {
	case Postgres:
		client, err = NewPostgresDB(dbURL)
	case SQLite:
		client, err = NewSQLiteDB(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want postgres or sqlite)", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Migrate creates the key-value and admin tables if they are missing.
func (c *DBClient) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv_store (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	if c.Dialect == Postgres {
		stmts = append(stmts, `CREATE TABLE IF NOT EXISTS admin_users (
			id              BIGSERIAL PRIMARY KEY,
			email           TEXT NOT NULL UNIQUE,
			hashed_password BYTEA NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	} else {
		stmts = append(stmts, `CREATE TABLE IF NOT EXISTS admin_users (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			email           TEXT NOT NULL UNIQUE,
			hashed_password BLOB NOT NULL,
			created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	}

	for _, stmt := range stmts {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate %s schema: %w", c.Dialect, err)
		}
	}
	return nil
}

func (c *DBClient) Close() {
	if c.DB != nil {
		err := c.DB.Close()
		if err != nil {
			log.Printf("Error closing database connection: %v", err)
		} else {
			log.Printf("%s database connection closed.", c.Dialect)
		}
	}
}
