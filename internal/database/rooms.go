package database

import (
	"chatrooms-backend/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

func roomKey(name string) string {
	return strings.ToLower(name)
}

func (s *Store) CreateRoom(ctx context.Context, room models.Room) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO rooms (id, name, name_key, creator, created_at) VALUES (?, ?, ?, ?, ?)",
		room.ID, room.Name, roomKey(room.Name), room.Creator, room.CreatedAt)
	if isDuplicate(err) {
		return fmt.Errorf("room %s: %w", room.Name, ErrDuplicate)
	}
	return err
}

// RoomByName looks the room up ignoring case.
func (s *Store) RoomByName(ctx context.Context, name string) (models.Room, error) {
	var room models.Room
	err := s.db.QueryRowContext(ctx, "SELECT id, name, creator, created_at FROM rooms WHERE name_key = ?", roomKey(name)).
		Scan(&room.ID, &room.Name, &room.Creator, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return room, fmt.Errorf("room %s: %w", name, ErrNotFound)
	}
	return room, err
}

func (s *Store) ListRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, creator, created_at FROM rooms ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := []models.Room{}
	for rows.Next() {
		var room models.Room
		err := rows.Scan(&room.ID, &room.Name, &room.Creator, &room.CreatedAt)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}
