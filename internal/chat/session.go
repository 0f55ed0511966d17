package chat

import (
	"chatrooms-backend/internal/database"
	"chatrooms-backend/internal/hub"
	"chatrooms-backend/internal/models"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

type state int

const (
	stateConnected state = iota
	stateJoined
	stateDisconnected
)

func (s state) String() string {
	switch s {
	case stateConnected:
		return "connected"
	case stateJoined:
		return "joined"
	case stateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

type joinRoomPayload struct {
	Room string `json:"room"`
	URL  string `json:"url"`
}

type imagePayload struct {
	FileName string `json:"filename"`
	Data     string `json:"data"`
}

type deletePayload struct {
	ID json.Number `json:"id"`
}

// Session is the protocol state of one connection. Events of a connection
// arrive one at a time, the mutex orders them against the typing timer.
type Session struct {
	svc    *Service
	client *hub.Client

	mutex    sync.Mutex
	state    state
	presence models.ActivePresence

	typingTimer *time.Timer
	// typingSeq invalidates timers that fired while being stopped
	typingSeq uint64
}

func (s *Session) State() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state.String()
}

// Room returns the room the session is joined to, empty when not joined.
func (s *Session) Room() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != stateJoined {
		return ""
	}
	return s.presence.Room
}

func (s *Session) Handle(ctx context.Context, event string, data []byte) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sugar := s.svc.sugar

	if s.state == stateDisconnected {
		sugar.Debugf("Connection ID [%d] sent [%s] after disconnecting, ignoring", s.client.ID, event)
		return
	}

	if event == hub.JoinRoom {
		if s.state == stateJoined {
			sugar.Warnf("Connection ID [%d] is already in room [%s], ignoring join", s.client.ID, s.presence.Room)
			return
		}
		s.joinRoom(ctx, data)
		return
	}

	if s.state != stateJoined {
		sugar.Warnf("Connection ID [%d] sent [%s] before joining a room, ignoring", s.client.ID, event)
		return
	}

	switch event {
	case hub.ChatMessage:
		s.chatMessage(ctx, data)
	case hub.Typing:
		s.typing()
	case hub.NotTyping:
		s.notTyping()
	case hub.Image:
		s.image(ctx, data)
	case hub.DeleteMessage, hub.DeleteFile:
		s.deleteMessage(ctx, data)
	case hub.LeaveRoom:
		s.leave(ctx)
		s.state = stateConnected
	default:
		sugar.Warnf("Connection ID [%d] sent unknown event [%s]", s.client.ID, event)
	}
}

// Disconnect leaves the room, if any. No event is handled afterwards.
func (s *Session) Disconnect(ctx context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state == stateDisconnected {
		return
	}
	s.leave(ctx)
	s.state = stateDisconnected
}

func (s *Session) joinRoom(ctx context.Context, data []byte) {
	sugar := s.svc.sugar

	var payload joinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Room == "" {
		sugar.Warnf("Connection ID [%d] sent an invalid joinRoom payload", s.client.ID)
		s.svc.emitTo(s.client, hub.Error, "Invalid room")
		return
	}

	room, err := s.svc.db.RoomByName(ctx, payload.Room)
	if errors.Is(err, database.ErrNotFound) {
		sugar.Debugf("Connection ID [%d] tried joining missing room [%s]", s.client.ID, payload.Room)
		s.svc.emitTo(s.client, hub.Error, fmt.Sprintf("Room %s doesn't exist", payload.Room))
		return
	} else if err != nil {
		sugar.Errorf("Couldn't look up room [%s]: %v", payload.Room, err)
		return
	}

	p, err := s.svc.presence.Join(ctx, s.client.ID, s.client.UserName, room.Name)
	if err != nil {
		sugar.Errorf("Connection ID [%d] couldn't join room [%s]: %v", s.client.ID, room.Name, err)
		return
	}

	s.presence = p
	s.state = stateJoined
	s.svc.hub.Join(s.client, p.Room)

	welcome, _ := s.svc.formatter.Format(ctx, models.BotName, fmt.Sprintf("Welcome %s!", p.DisplayName), p.Room)
	s.svc.emitTo(s.client, hub.Message, welcome)

	joined, _ := s.svc.formatter.Format(ctx, models.BotName, fmt.Sprintf("%s has joined the room!", p.DisplayName), p.Room)
	s.svc.emitToRoomExcept(p.Room, s.client.ID, hub.Message, joined)

	s.svc.broadcastRoomUsers(ctx, p.Room)
}

func (s *Session) chatMessage(ctx context.Context, data []byte) {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		s.svc.sugar.Warnf("Connection ID [%d] sent a chat message that is not a string", s.client.ID)
		return
	}

	msg, err := s.svc.formatter.Format(ctx, s.presence.UserName, text, s.presence.Room)
	if err != nil {
		s.svc.sugar.Error(err)
		return
	}
	msg.ConnectionID = s.client.ID

	s.svc.emitToRoom(s.presence.Room, hub.Message, msg)
}

func (s *Session) typing() {
	msg := s.svc.formatter.Typing(s.presence.DisplayName)
	s.svc.emitToRoomExcept(s.presence.Room, s.client.ID, hub.Message, msg)

	s.stopTyping()
	seq := s.typingSeq
	s.typingTimer = time.AfterFunc(s.svc.typingTimeout, func() {
		s.typingExpired(seq)
	})
}

func (s *Session) notTyping() {
	if s.stopTyping() {
		s.svc.emitToRoomExcept(s.presence.Room, s.client.ID, hub.DeleteTypingMsg, nil)
	}
}

func (s *Session) typingExpired(seq uint64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if seq != s.typingSeq || s.typingTimer == nil || s.state != stateJoined {
		return
	}
	s.typingTimer = nil
	s.typingSeq++

	s.svc.emitToRoomExcept(s.presence.Room, s.client.ID, hub.DeleteTypingMsg, nil)
}

// stopTyping disarms the typing timer and reports whether it was armed.
func (s *Session) stopTyping() bool {
	if s.typingTimer == nil {
		return false
	}
	s.typingTimer.Stop()
	s.typingTimer = nil
	s.typingSeq++
	return true
}

func (s *Session) image(ctx context.Context, data []byte) {
	var payload imagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.svc.sugar.Warnf("Connection ID [%d] sent an invalid image payload", s.client.ID)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		s.svc.sugar.Warnf("Connection ID [%d] sent an image that is not base64", s.client.ID)
		s.svc.emitTo(s.client, hub.Error, "Invalid image")
		return
	}

	_, err = s.svc.publishImage(ctx, s.presence, payload.FileName, raw)
	if err != nil {
		s.svc.sugar.Warnf("Connection ID [%d] couldn't share image: %v", s.client.ID, err)
		s.svc.emitTo(s.client, hub.Error, "Couldn't upload image")
	}
}

func (s *Session) deleteMessage(ctx context.Context, data []byte) {
	var payload deletePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.svc.sugar.Warnf("Connection ID [%d] sent an invalid delete payload", s.client.ID)
		return
	}
	id, err := strconv.ParseInt(payload.ID.String(), 10, 64)
	if err != nil {
		s.svc.sugar.Warnf("Connection ID [%d] sent an invalid message id [%s]", s.client.ID, payload.ID)
		return
	}

	msg, err := s.svc.db.DeleteMessage(ctx, id, s.presence.UserName, s.presence.Room)
	if errors.Is(err, database.ErrNotFound) {
		s.svc.sugar.Debugf("User [%s] tried deleting message [%d] that isn't theirs in room [%s]", s.presence.UserName, id, s.presence.Room)
		return
	} else if err != nil {
		s.svc.sugar.Errorf("Couldn't delete message [%d]: %v", id, err)
		return
	}

	if msg.Type == models.MessageTypeImage {
		if err := s.svc.uploads.Remove(msg.FileName); err != nil {
			s.svc.sugar.Error(err)
		}
		s.svc.emitToRoom(msg.Room, hub.DeleteFile, models.DeleteKey{ID: msg.ID, FileName: msg.FileName})
		return
	}

	s.svc.emitToRoom(msg.Room, hub.DeleteMessage, models.DeleteKey{ID: msg.ID})
}

// leave drops the presence of this connection and tells the room.
// The caller sets the state that follows.
func (s *Session) leave(ctx context.Context) {
	wasTyping := s.stopTyping()

	p, err := s.svc.presence.Leave(ctx, s.client.ID)
	if err != nil {
		s.svc.sugar.Errorf("Couldn't remove presence of connection ID [%d]: %v", s.client.ID, err)
	}
	s.svc.hub.Leave(s.client)
	s.presence = models.ActivePresence{}

	if p == nil {
		return
	}

	if wasTyping {
		s.svc.emitToRoom(p.Room, hub.DeleteTypingMsg, nil)
	}

	left, _ := s.svc.formatter.Format(ctx, models.BotName, fmt.Sprintf("%s has left the room", p.DisplayName), p.Room)
	s.svc.emitToRoom(p.Room, hub.Message, left)

	s.svc.broadcastRoomUsers(ctx, p.Room)
}
