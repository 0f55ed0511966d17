package database

import (
	"chatrooms-backend/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO users (id, email, username, display_name, password) VALUES (?, ?, ?, ?, ?)",
		u.ID, u.Email, u.UserName, u.DisplayName, u.Password)
	if isDuplicate(err) {
		return fmt.Errorf("user %s: %w", u.UserName, ErrDuplicate)
	}
	return err
}

func (s *Store) UserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.scanUser(ctx, "SELECT id, email, username, display_name, password FROM users WHERE username = ?", username)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.scanUser(ctx, "SELECT id, email, username, display_name, password FROM users WHERE email = ?", email)
}

func (s *Store) scanUser(ctx context.Context, query string, arg string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.UserName, &u.DisplayName, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return u, fmt.Errorf("user %s: %w", arg, ErrNotFound)
	}
	return u, err
}

// EmailOrUsernameTaken reports whether signing up with these would collide.
func (s *Store) EmailOrUsernameTaken(ctx context.Context, email string, username string) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = ? OR username = ?)", email, username).Scan(&taken)
	return taken, err
}

func (s *Store) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", userID).Scan(&exists)
	return exists, err
}

func (s *Store) UpdatePassword(ctx context.Context, username string, password []byte) error {
	result, err := s.db.ExecContext(ctx, "UPDATE users SET password = ? WHERE username = ?", password, username)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return nil
}
