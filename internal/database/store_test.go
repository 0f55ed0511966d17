package database

import (
	"chatrooms-backend/internal/models"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := OpenSqlite(":memory:", zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return NewStore(db)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	alice := models.User{ID: 1, Email: "alice@example.com", UserName: "alice", DisplayName: "Alice", Password: []byte("hash")}
	if err := store.CreateUser(ctx, alice); err != nil {
		t.Fatal(err)
	}

	err := store.CreateUser(ctx, models.User{ID: 2, Email: "other@example.com", UserName: "alice", DisplayName: "A", Password: []byte("x")})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate username: got %v, want ErrDuplicate", err)
	}

	got, err := store.UserByUsername(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.DisplayName != "Alice" || string(got.Password) != "hash" {
		t.Errorf("unexpected user %+v", got)
	}

	_, err = store.UserByUsername(ctx, "bob")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}

	taken, err := store.EmailOrUsernameTaken(ctx, "alice@example.com", "someone")
	if err != nil || !taken {
		t.Errorf("EmailOrUsernameTaken = %t, %v; want true", taken, err)
	}

	if err := store.UpdatePassword(ctx, "alice", []byte("new")); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdatePassword(ctx, "bob", []byte("new")); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePassword on missing user: got %v", err)
	}
}

func TestRoomsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateRoom(ctx, models.Room{ID: 1, Name: "General", Creator: "Alice", CreatedAt: 1}); err != nil {
		t.Fatal(err)
	}

	err := store.CreateRoom(ctx, models.Room{ID: 2, Name: "general", Creator: "Bob", CreatedAt: 2})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("got %v, want ErrDuplicate", err)
	}

	room, err := store.RoomByName(ctx, "GENERAL")
	if err != nil {
		t.Fatal(err)
	}
	if room.Name != "General" {
		t.Errorf("room name = %q, want General", room.Name)
	}

	rooms, err := store.ListRooms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 1 {
		t.Errorf("len(rooms) = %d, want 1", len(rooms))
	}
}

func TestDeleteMessageOwnership(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	msg := models.Message{ID: 10, Room: "general", UserName: "alice", DisplayName: "Alice", Text: "hi", Type: models.MessageTypeText, CreatedAt: 1}
	if err := store.SaveMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		id       int64
		username string
		room     string
		want     error
	}{
		{"wrong sender", 10, "bob", "general", ErrNotFound},
		{"wrong room", 10, "alice", "random", ErrNotFound},
		{"unknown id", 11, "alice", "general", ErrNotFound},
		{"owner", 10, "alice", "general", nil},
		{"already deleted", 10, "alice", "general", ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deleted, err := store.DeleteMessage(ctx, tc.id, tc.username, tc.room)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if deleted.Text != "hi" {
					t.Errorf("deleted text = %q", deleted.Text)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}

	messages, err := store.MessagesByRoom(ctx, "general")
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 0 {
		t.Errorf("len(messages) = %d, want 0", len(messages))
	}
}

func TestTakePresenceOnlyOnce(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.InsertPresence(ctx, models.ActivePresence{ConnectionID: 5, UserName: "alice", DisplayName: "Alice", Room: "general", JoinedAt: 1})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var mutex sync.Mutex
	taken := 0
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.TakePresence(ctx, 5)
			if err == nil {
				mutex.Lock()
				taken++
				mutex.Unlock()
			} else if !errors.Is(err, ErrNotFound) {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if taken != 1 {
		t.Errorf("presence taken %d times, want 1", taken)
	}
}

func TestResetLinkSingleUse(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	alice := models.User{ID: 1, Email: "alice@example.com", UserName: "alice", DisplayName: "Alice", Password: []byte("old")}
	if err := store.CreateUser(ctx, alice); err != nil {
		t.Fatal(err)
	}

	link := models.ResetLink{Token: "token", UserName: "alice", CreatedAt: time.Now()}
	if err := store.CreateResetLink(ctx, link); err != nil {
		t.Fatal(err)
	}

	got, err := store.ResetPassword(ctx, "token", []byte("new"))
	if err != nil {
		t.Fatal(err)
	}
	if got.UserName != "alice" {
		t.Errorf("username = %q", got.UserName)
	}

	user, err := store.UserByUsername(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if string(user.Password) != "new" {
		t.Errorf("password = %q, want new", user.Password)
	}

	_, err = store.ResetPassword(ctx, "token", []byte("again"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("second use: got %v, want ErrNotFound", err)
	}
}

func TestResetLinkKeptWhenUpdateFails(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// the link points at a user that doesn't exist, so the update matches no row
	link := models.ResetLink{Token: "token", UserName: "ghost", CreatedAt: time.Now()}
	if err := store.CreateResetLink(ctx, link); err != nil {
		t.Fatal(err)
	}

	_, err := store.ResetPassword(ctx, "token", []byte("new"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	if _, err := store.ResetLinkByToken(ctx, "token"); err != nil {
		t.Errorf("link was consumed by a failed reset: %v", err)
	}
}
