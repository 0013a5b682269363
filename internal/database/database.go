package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"publazer/internal/apperrors"
	"publazer/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Database struct {
	Pool *pgxpool.Pool
}

func NewConnection(ctx context.Context, cfg *config.Config) (*Database, error) {
	return Connect(ctx, cfg.GetDatabaseURL())
}

func Connect(ctx context.Context, url string) (*Database, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	slog.Info("connected to database")
	return &Database{Pool: pool}, nil
}

func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func RunMigrations(ctx context.Context, db *Database) error {
	createUsersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'faculty', 'admin')),
		department VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`

	// author_id is a weak reference: papers outlive their author's account.
	createPapersTable := `
	CREATE TABLE IF NOT EXISTS papers (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title VARCHAR(500) NOT NULL,
		abstract TEXT NOT NULL DEFAULT '',
		keywords TEXT NOT NULL DEFAULT '',
		file_url TEXT NOT NULL DEFAULT '',
		author VARCHAR(255) NOT NULL DEFAULT '',
		author_id UUID NOT NULL,
		department VARCHAR(255) NOT NULL DEFAULT '',
		upload_date TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
		plagiarism_score INTEGER NOT NULL DEFAULT 0 CHECK (plagiarism_score BETWEEN 0 AND 100),
		comments JSONB NOT NULL DEFAULT '[]'::jsonb,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`

	createNotificationsTable := `
	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		recipient_id UUID NOT NULL,
		message TEXT NOT NULL,
		type VARCHAR(20) NOT NULL DEFAULT 'info' CHECK (type IN ('info', 'success', 'warning', 'error')),
		link TEXT NOT NULL DEFAULT '',
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`

	createIndexes := `
	CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
	CREATE INDEX IF NOT EXISTS idx_papers_author_id ON papers(author_id);
	CREATE INDEX IF NOT EXISTS idx_papers_status ON papers(status);
	CREATE INDEX IF NOT EXISTS idx_papers_upload_date ON papers(upload_date DESC);
	CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at DESC);`

	migrations := []string{
		createUsersTable,
		createPapersTable,
		createNotificationsTable,
		createIndexes,
	}

	for _, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	slog.Info("database migrations completed")
	return nil
}

func (db *Database) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return db.Pool.Begin(ctx)
}

func (db *Database) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.Pool.QueryRow(ctx, sql, args...)
}

func (db *Database) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return db.Pool.Query(ctx, sql, args...)
}

func (db *Database) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return db.Pool.Exec(ctx, sql, args...)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// storageErr wraps driver failures that are not part of the domain taxonomy.
func storageErr(op string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Storage(op, err)
}
