package database

import (
	"chatrooms-backend/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const messageColumns = "id, room, username, display_name, body, filename, original_name, path, type, time_str, date_str, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (models.Message, error) {
	var msg models.Message
	err := row.Scan(&msg.ID, &msg.Room, &msg.UserName, &msg.DisplayName, &msg.Text, &msg.FileName,
		&msg.OriginalName, &msg.Path, &msg.Type, &msg.Time, &msg.Date, &msg.CreatedAt)
	return msg, err
}

func (s *Store) SaveMessage(ctx context.Context, msg models.Message) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO messages ("+messageColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		msg.ID, msg.Room, msg.UserName, msg.DisplayName, msg.Text, msg.FileName,
		msg.OriginalName, msg.Path, msg.Type, msg.Time, msg.Date, msg.CreatedAt)
	return err
}

// MessagesByRoom returns the history of a room, oldest first.
func (s *Store) MessagesByRoom(ctx context.Context, room string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+messageColumns+" FROM messages WHERE room = ? ORDER BY created_at, id", room)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (s *Store) MessageByID(ctx context.Context, id int64) (models.Message, error) {
	msg, err := scanMessage(s.db.QueryRowContext(ctx, "SELECT "+messageColumns+" FROM messages WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return msg, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	return msg, err
}

// DeleteMessage removes the message only if it was sent by username in room.
// It returns the removed row, or ErrNotFound when nothing matched.
func (s *Store) DeleteMessage(ctx context.Context, id int64, username string, room string) (models.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	msg, err := scanMessage(tx.QueryRowContext(ctx, "SELECT "+messageColumns+" FROM messages WHERE id = ? AND username = ? AND room = ?", id, username, room))
	if errors.Is(err, sql.ErrNoRows) {
		return msg, fmt.Errorf("message %d: %w", id, ErrNotFound)
	} else if err != nil {
		return msg, err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return msg, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return msg, err
	}
	if affected == 0 {
		return msg, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}

	return msg, tx.Commit()
}
