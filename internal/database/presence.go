package database

import (
	"chatrooms-backend/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const presenceColumns = "connection_id, username, display_name, room, joined_at"

func scanPresence(row rowScanner) (models.ActivePresence, error) {
	var p models.ActivePresence
	err := row.Scan(&p.ConnectionID, &p.UserName, &p.DisplayName, &p.Room, &p.JoinedAt)
	return p, err
}

func (s *Store) InsertPresence(ctx context.Context, p models.ActivePresence) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO active_users ("+presenceColumns+") VALUES (?, ?, ?, ?, ?)",
		p.ConnectionID, p.UserName, p.DisplayName, p.Room, p.JoinedAt)
	if isDuplicate(err) {
		return fmt.Errorf("connection %d: %w", p.ConnectionID, ErrDuplicate)
	}
	return err
}

// TakePresence finds and removes the row of a connection in one transaction.
// Of several concurrent callers only one gets the row, the rest get ErrNotFound.
func (s *Store) TakePresence(ctx context.Context, connectionID int64) (models.ActivePresence, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.ActivePresence{}, err
	}
	defer tx.Rollback()

	p, err := scanPresence(tx.QueryRowContext(ctx, "SELECT "+presenceColumns+" FROM active_users WHERE connection_id = ?", connectionID))
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("connection %d: %w", connectionID, ErrNotFound)
	} else if err != nil {
		return p, err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM active_users WHERE connection_id = ?", connectionID)
	if err != nil {
		return p, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return p, err
	}
	if affected == 0 {
		return p, fmt.Errorf("connection %d: %w", connectionID, ErrNotFound)
	}

	return p, tx.Commit()
}

func (s *Store) PresenceByConnection(ctx context.Context, connectionID int64) (models.ActivePresence, error) {
	p, err := scanPresence(s.db.QueryRowContext(ctx, "SELECT "+presenceColumns+" FROM active_users WHERE connection_id = ?", connectionID))
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("connection %d: %w", connectionID, ErrNotFound)
	}
	return p, err
}

// PresenceByUsername returns the most recent presence of a user.
func (s *Store) PresenceByUsername(ctx context.Context, username string) (models.ActivePresence, error) {
	p, err := scanPresence(s.db.QueryRowContext(ctx, "SELECT "+presenceColumns+" FROM active_users WHERE username = ? ORDER BY joined_at DESC, connection_id DESC LIMIT 1", username))
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return p, err
}

func (s *Store) PresenceByRoom(ctx context.Context, room string) ([]models.ActivePresence, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+presenceColumns+" FROM active_users WHERE room = ? ORDER BY joined_at, connection_id", room)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	presences := []models.ActivePresence{}
	for rows.Next() {
		p, err := scanPresence(rows)
		if err != nil {
			return nil, err
		}
		presences = append(presences, p)
	}

	return presences, rows.Err()
}

// ClearPresence drops every presence row. Rows that survive a process exit
// belong to connections that no longer exist.
func (s *Store) ClearPresence(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM active_users")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
