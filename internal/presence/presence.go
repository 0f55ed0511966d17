// Package presence tracks which user is live in which room, one row per
// websocket connection.
package presence

import (
	"chatrooms-backend/internal/database"
	"chatrooms-backend/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Store struct {
	db    *database.Store
	sugar *zap.SugaredLogger
	now   func() time.Time
}

func NewStore(db *database.Store, sugar *zap.SugaredLogger) *Store {
	return &Store{db: db, sugar: sugar, now: time.Now}
}

// Join registers connectionID as username being live in room. The user must
// exist, the returned error wraps database.ErrNotFound otherwise.
func (s *Store) Join(ctx context.Context, connectionID int64, username string, room string) (models.ActivePresence, error) {
	user, err := s.db.UserByUsername(ctx, username)
	if err != nil {
		return models.ActivePresence{}, fmt.Errorf("join room %s: %w", room, err)
	}

	p := models.ActivePresence{
		ConnectionID: connectionID,
		UserName:     user.UserName,
		DisplayName:  user.DisplayName,
		Room:         room,
		JoinedAt:     s.now().UnixMilli(),
	}

	err = s.db.InsertPresence(ctx, p)
	if err != nil {
		return models.ActivePresence{}, fmt.Errorf("join room %s: %w", room, err)
	}

	s.sugar.Debugf("Connection ID [%d] of user [%s] joined room [%s]", connectionID, username, room)
	return p, nil
}

// Leave removes the presence of connectionID and returns it, or nil when the
// connection never finished joining or already left.
func (s *Store) Leave(ctx context.Context, connectionID int64) (*models.ActivePresence, error) {
	p, err := s.db.TakePresence(ctx, connectionID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	s.sugar.Debugf("Connection ID [%d] of user [%s] left room [%s]", connectionID, p.UserName, p.Room)
	return &p, nil
}

// ListByRoom returns everyone live in room in the order they joined.
func (s *Store) ListByRoom(ctx context.Context, room string) ([]models.ActivePresence, error) {
	return s.db.PresenceByRoom(ctx, room)
}

// Current resolves the live presence of username. With a non zero
// connectionID that exact connection is used and must belong to the user,
// otherwise the user's most recent presence is returned.
func (s *Store) Current(ctx context.Context, username string, connectionID int64) (models.ActivePresence, error) {
	if connectionID == 0 {
		return s.db.PresenceByUsername(ctx, username)
	}

	p, err := s.db.PresenceByConnection(ctx, connectionID)
	if err != nil {
		return p, err
	}
	if p.UserName != username {
		return models.ActivePresence{}, fmt.Errorf("connection %d is not owned by %s: %w", connectionID, username, database.ErrNotFound)
	}
	return p, nil
}
