package messages

import (
	"chatrooms-backend/internal/database"
	"chatrooms-backend/internal/models"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeGateway struct {
	users   map[string]models.User
	saved   []models.Message
	saveErr error
}

func (g *fakeGateway) UserByUsername(_ context.Context, username string) (models.User, error) {
	u, ok := g.users[username]
	if !ok {
		return u, fmt.Errorf("user %s: %w", username, database.ErrNotFound)
	}
	return u, nil
}

func (g *fakeGateway) SaveMessage(_ context.Context, msg models.Message) error {
	if g.saveErr != nil {
		return g.saveErr
	}
	g.saved = append(g.saved, msg)
	return nil
}

type counter struct{ n int64 }

func (c *counter) Generate() int64 {
	c.n++
	return c.n
}

func newTestFormatter(t *testing.T, g *fakeGateway) *Formatter {
	t.Helper()

	location, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatal(err)
	}

	f := NewFormatter(g, &counter{}, location, zap.NewNop().Sugar())
	f.now = func() time.Time { return time.Date(2024, 3, 5, 8, 15, 0, 0, time.UTC) }
	return f
}

func newGateway() *fakeGateway {
	return &fakeGateway{users: map[string]models.User{
		"alice": {UserName: "alice", DisplayName: "Alice"},
	}}
}

func TestFormatBotNeverPersists(t *testing.T) {
	g := newGateway()
	f := newTestFormatter(t, g)

	for _, text := range []string{"", "Welcome Alice!", "Alice has left the room"} {
		msg, err := f.Format(context.Background(), models.BotName, text, "general")
		if err != nil {
			t.Fatal(err)
		}
		if msg.DisplayName != models.BotName || msg.Text != text {
			t.Errorf("unexpected bot message %+v", msg)
		}
		if msg.ID != 0 {
			t.Errorf("bot message got ID %d", msg.ID)
		}
	}

	if len(g.saved) != 0 {
		t.Errorf("bot messages saved %d times, want 0", len(g.saved))
	}
}

func TestFormatUserMessage(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantSaved int
	}{
		{"empty text is not stored", "", 0},
		{"text is stored once", "hello", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newGateway()
			f := newTestFormatter(t, g)

			msg, err := f.Format(context.Background(), "alice", tc.text, "general")
			if err != nil {
				t.Fatal(err)
			}

			if msg.DisplayName != "Alice" || msg.Room != "general" || msg.Type != models.MessageTypeText {
				t.Errorf("unexpected message %+v", msg)
			}
			if msg.ID == 0 {
				t.Error("user message has no ID")
			}
			if len(g.saved) != tc.wantSaved {
				t.Fatalf("saved %d messages, want %d", len(g.saved), tc.wantSaved)
			}
			if tc.wantSaved == 1 && g.saved[0].Text != tc.text {
				t.Errorf("saved text = %q, want %q", g.saved[0].Text, tc.text)
			}
		})
	}
}

func TestFormatTimeInFixedZone(t *testing.T) {
	f := newTestFormatter(t, newGateway())

	msg, err := f.Format(context.Background(), "alice", "hi", "general")
	if err != nil {
		t.Fatal(err)
	}

	// 08:15 UTC is 13:45 in Kolkata
	if msg.Time != "1:45 pm" {
		t.Errorf("Time = %q, want 1:45 pm", msg.Time)
	}
	if msg.Date != "05-Mar-2024" {
		t.Errorf("Date = %q, want 05-Mar-2024", msg.Date)
	}
}

func TestFormatUnknownSender(t *testing.T) {
	f := newTestFormatter(t, newGateway())

	_, err := f.Format(context.Background(), "ghost", "hi", "general")
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestFormatSaveFailureStillReturns(t *testing.T) {
	g := newGateway()
	g.saveErr = errors.New("disk full")
	f := newTestFormatter(t, g)

	msg, err := f.Format(context.Background(), "alice", "hi", "general")
	if err != nil {
		t.Fatalf("save failure surfaced: %v", err)
	}
	if msg.Text != "hi" {
		t.Errorf("Text = %q", msg.Text)
	}
}

func TestFormatImage(t *testing.T) {
	g := newGateway()
	f := newTestFormatter(t, g)

	p := models.ActivePresence{ConnectionID: 9, UserName: "alice", DisplayName: "Alice", Room: "general"}
	upload := models.Upload{FileName: "abc.png", OriginalName: "cat.png", Path: "/uploads/abc.png"}

	msg, err := f.FormatImage(context.Background(), p, upload)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != models.MessageTypeImage || msg.Room != "general" || msg.FileName != "abc.png" {
		t.Errorf("unexpected image message %+v", msg)
	}
	if len(g.saved) != 1 {
		t.Errorf("saved %d, want 1", len(g.saved))
	}

	g.saveErr = errors.New("disk full")
	if _, err := f.FormatImage(context.Background(), p, upload); err == nil {
		t.Error("expected error when image can't be saved")
	}
}

func TestTyping(t *testing.T) {
	f := newTestFormatter(t, newGateway())

	msg := f.Typing("Alice")
	if !msg.Typing || msg.Text != "Alice is typing a message.." || msg.UserName != models.BotName {
		t.Errorf("unexpected typing message %+v", msg)
	}
}
