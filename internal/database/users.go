package database

import (
	"context"
	"errors"
	"strings"

	"publazer/internal/apperrors"
	"publazer/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, password_hash, role, department, created_at, updated_at`

// UserStore implements store.Users on Postgres.
type UserStore struct {
	db *Database
}

func NewUserStore(db *Database) *UserStore {
	return &UserStore{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Department, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound(apperrors.CodeUserNotFound, "User not found")
	}
	if err != nil {
		return nil, storageErr("failed to read user", err)
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, role, department)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.Department).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.Duplicate(apperrors.CodeDuplicateEmail, "Email already in use")
	}
	if err != nil {
		return storageErr("failed to create user", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, email`)
}

func (s *UserStore) ListByRoles(ctx context.Context, roles ...string) ([]models.User, error) {
	return s.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = ANY($1) ORDER BY created_at, email`, roles)
}

func (s *UserStore) list(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("failed to list users", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to list users", err)
	}
	return users, nil
}

func (s *UserStore) Update(ctx context.Context, user *models.User, newHash *string) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	query := `
		UPDATE users
		SET name = $2, email = $3, role = $4, department = $5,
			password_hash = COALESCE($6::text, password_hash),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	updated, err := scanUser(s.db.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.Role, user.Department, newHash))
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Duplicate(apperrors.CodeDuplicateEmail, "Email already in use")
		}
		return err
	}
	*user = *updated
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return storageErr("failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.CodeUserNotFound, "User not found")
	}
	return nil
}
