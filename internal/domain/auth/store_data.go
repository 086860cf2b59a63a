package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userColumns = `id, email, first_name, last_name, role, is_active, last_login, created_at, updated_at, password_hash`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (s *Store) FindByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
}

func (s *Store) FindByID(ctx context.Context, id string) (User, error) {
	return scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id::text = $1`, id))
}

func (s *Store) UpdatePassword(ctx context.Context, userID, hash string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2", hash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

// EnsureUser inserts the user unless the email already exists. The bool is true when a row was created.
func (s *Store) EnsureUser(ctx context.Context, user NewUser) (string, bool, error) {
	existing, err := s.FindByEmail(ctx, user.Email)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return "", false, err
	}

	hash, err := HashPassword(user.Password)
	if err != nil {
		return "", false, err
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, first_name, last_name, role)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (email) DO NOTHING
    RETURNING id
  `, strings.TrimSpace(user.Email), hash, user.FirstName, user.LastName, user.Role).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := s.FindByEmail(ctx, user.Email)
		return existing.ID, false, err
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}
