// Package chat runs the per connection session protocol: joining a room,
// relaying messages and typing indicators, deleting messages and sharing
// images.
package chat

import (
	"chatrooms-backend/internal/database"
	"chatrooms-backend/internal/fileHandlers"
	"chatrooms-backend/internal/hub"
	"chatrooms-backend/internal/messages"
	"chatrooms-backend/internal/models"
	"chatrooms-backend/internal/presence"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const DefaultTypingTimeout = 3 * time.Second

type Service struct {
	db            *database.Store
	presence      *presence.Store
	formatter     *messages.Formatter
	hub           *hub.Hub
	uploads       *fileHandlers.Uploads
	typingTimeout time.Duration
	sugar         *zap.SugaredLogger
}

func NewService(db *database.Store, presence *presence.Store, formatter *messages.Formatter, h *hub.Hub, uploads *fileHandlers.Uploads, typingTimeout time.Duration, sugar *zap.SugaredLogger) *Service {
	if typingTimeout <= 0 {
		typingTimeout = DefaultTypingTimeout
	}
	return &Service{
		db:            db,
		presence:      presence,
		formatter:     formatter,
		hub:           h,
		uploads:       uploads,
		typingTimeout: typingTimeout,
		sugar:         sugar,
	}
}

// NewSession creates the protocol state of a freshly connected client.
func (s *Service) NewSession(client *hub.Client) *Session {
	return &Session{
		svc:    s,
		client: client,
		state:  stateConnected,
	}
}

// Handler adapts NewSession to what hub.Serve expects.
func (s *Service) Handler(client *hub.Client) hub.Handler {
	return s.NewSession(client)
}

// ShareImage stores an image uploaded over http and broadcasts it to the room
// the uploader is live in. connectionID selects the uploading tab, zero means
// the user's most recent connection.
func (s *Service) ShareImage(ctx context.Context, username string, connectionID int64, originalName string, data []byte) (models.Message, error) {
	p, err := s.presence.Current(ctx, username, connectionID)
	if err != nil {
		return models.Message{}, fmt.Errorf("no live room for %s: %w", username, err)
	}

	return s.publishImage(ctx, p, originalName, data)
}

func (s *Service) publishImage(ctx context.Context, p models.ActivePresence, originalName string, data []byte) (models.Message, error) {
	upload, err := s.uploads.Save(originalName, data)
	if err != nil {
		return models.Message{}, err
	}

	msg, err := s.formatter.FormatImage(ctx, p, upload)
	if err != nil {
		if rmErr := s.uploads.Remove(upload.FileName); rmErr != nil {
			s.sugar.Error(rmErr)
		}
		return models.Message{}, err
	}

	s.sugar.Debugf("User [%s] shared image [%s] in room [%s]", p.UserName, upload.FileName, p.Room)
	s.emitToRoom(p.Room, hub.Image, msg)
	return msg, nil
}

// RoomUsers lists everyone live in room.
func (s *Service) RoomUsers(ctx context.Context, room string) (models.RoomUsers, error) {
	users, err := s.presence.ListByRoom(ctx, room)
	if err != nil {
		return models.RoomUsers{}, err
	}
	return models.RoomUsers{Room: room, Users: users}, nil
}

func (s *Service) broadcastRoomUsers(ctx context.Context, room string) {
	roomUsers, err := s.RoomUsers(ctx, room)
	if err != nil {
		s.sugar.Errorf("Couldn't list users of room [%s]: %v", room, err)
		return
	}
	s.emitToRoom(room, hub.RoomUsers, roomUsers)
}

func (s *Service) emitToRoom(room string, event string, payload any) {
	if err := s.hub.EmitToRoom(room, event, payload); err != nil {
		s.sugar.Error(err)
	}
}

func (s *Service) emitToRoomExcept(room string, exceptID int64, event string, payload any) {
	if err := s.hub.EmitToRoomExcept(room, exceptID, event, payload); err != nil {
		s.sugar.Error(err)
	}
}

func (s *Service) emitTo(client *hub.Client, event string, payload any) {
	if err := s.hub.EmitTo(client, event, payload); err != nil {
		s.sugar.Error(err)
	}
}
