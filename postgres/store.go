// Package postgres provides a PostgreSQL-backed authcore.UserStore using
// the pgx stdlib driver, with schema migrations run via goose.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	authcore "github.com/docsforge/authcore"
	"github.com/docsforge/authcore/postgres/migrations"
)

// Postgres class 23 integrity-constraint violation for unique indexes.
const uniqueViolationCode = "23505"

// Store implements authcore.UserStore against a users table.
type Store struct {
	db *sql.DB
}

// NewStore wraps an existing database handle. The caller keeps ownership
// of the handle and its lifecycle.
func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("database handle required")
	}
	return &Store{db: db}, nil
}

// Open connects to the given DSN and runs pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	store, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := store.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return store, nil
}

// RunMigrations applies the embedded goose migrations.
func (s *Store) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, ".")
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetUserByUsername describes the getuserbyusername operation and its observable behavior.
//
// GetUserByUsername may return an error when input validation, dependency calls, or security checks fail.
// GetUserByUsername does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (authcore.UserRecord, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM users
		 WHERE username = $1
		 `

	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

// GetUserByID describes the getuserbyid operation and its observable behavior.
//
// GetUserByID may return an error when input validation, dependency calls, or security checks fail.
// GetUserByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GetUserByID(ctx context.Context, userID string) (authcore.UserRecord, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM users
		 WHERE id = $1
		 `

	return s.scanUser(s.db.QueryRowContext(ctx, query, userID))
}

// CreateUser describes the createuser operation and its observable behavior.
//
// CreateUser may return an error when input validation, dependency calls, or security checks fail.
// CreateUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) CreateUser(ctx context.Context, input authcore.CreateUserInput) (authcore.UserRecord, error) {
	query := `INSERT INTO users (id, username, email, password_hash)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, username, email, password_hash, created_at
		 `

	row := s.db.QueryRowContext(ctx, query,
		uuid.NewString(), input.Username, input.Email, input.PasswordHash)

	user, err := s.scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return authcore.UserRecord{}, authcore.ErrDuplicateUser
		}
		return authcore.UserRecord{}, err
	}

	return user, nil
}

// UpdatePasswordHash describes the updatepasswordhash operation and its observable behavior.
//
// UpdatePasswordHash may return an error when input validation, dependency calls, or security checks fail.
// UpdatePasswordHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, userID, newHash)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	if affected == 0 {
		return authcore.ErrUserNotFound
	}

	return nil
}

func (s *Store) scanUser(row *sql.Row) (authcore.UserRecord, error) {
	var user authcore.UserRecord
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authcore.UserRecord{}, authcore.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return authcore.UserRecord{}, err
		}
		return authcore.UserRecord{}, fmt.Errorf("error performing sql request: %v", err)
	}

	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
