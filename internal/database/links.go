package database

import (
	"chatrooms-backend/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func (s *Store) CreateResetLink(ctx context.Context, link models.ResetLink) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO reset_links (token, username, created_at) VALUES (?, ?, ?)",
		link.Token, link.UserName, link.CreatedAt.UnixMilli())
	return err
}

func (s *Store) ResetLinkByToken(ctx context.Context, token string) (models.ResetLink, error) {
	var link models.ResetLink
	var createdAt int64
	err := s.db.QueryRowContext(ctx, "SELECT token, username, created_at FROM reset_links WHERE token = ?", token).
		Scan(&link.Token, &link.UserName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return link, fmt.Errorf("reset link: %w", ErrNotFound)
	}
	link.CreatedAt = time.UnixMilli(createdAt)
	return link, err
}

// ResetPassword sets the password of the link's user and consumes the link
// in one transaction. A link that fails to update the password stays usable.
func (s *Store) ResetPassword(ctx context.Context, token string, password []byte) (models.ResetLink, error) {
	var link models.ResetLink

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return link, err
	}
	defer tx.Rollback()

	var createdAt int64
	err = tx.QueryRowContext(ctx, "SELECT token, username, created_at FROM reset_links WHERE token = ?", token).
		Scan(&link.Token, &link.UserName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return link, fmt.Errorf("reset link: %w", ErrNotFound)
	} else if err != nil {
		return link, err
	}
	link.CreatedAt = time.UnixMilli(createdAt)

	result, err := tx.ExecContext(ctx, "UPDATE users SET password = ? WHERE username = ?", password, link.UserName)
	if err != nil {
		return link, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return link, err
	}
	if affected == 0 {
		return link, fmt.Errorf("user %s: %w", link.UserName, ErrNotFound)
	}

	// a concurrent reset with the same token may have won
	result, err = tx.ExecContext(ctx, "DELETE FROM reset_links WHERE token = ?", token)
	if err != nil {
		return link, err
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return link, err
	}
	if affected == 0 {
		return link, fmt.Errorf("reset link: %w", ErrNotFound)
	}

	return link, tx.Commit()
}
