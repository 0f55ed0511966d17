package email

import (
	"chatrooms-backend/internal/keyValue"
	"chatrooms-backend/internal/models"
	"context"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestMailer(t *testing.T, cfg *models.ConfigFile) *Mailer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sugar := zap.NewNop().Sugar()
	return NewMailer(cfg, "https://chat.example.com/", keyValue.New(ctx, nil, sugar), sugar)
}

func TestResetGoesToOutboxWithoutSmtp(t *testing.T) {
	ctx := context.Background()
	m := newTestMailer(t, &models.ConfigFile{})

	if !m.Local() {
		t.Fatal("mailer without SMTP server is not local")
	}

	if err := m.SendPasswordReset(ctx, "alice@example.com", "Alice", "abc-123"); err != nil {
		t.Fatal(err)
	}

	links, err := m.Outbox(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 || links[0].Email != "alice@example.com" || links[0].Link != "https://chat.example.com/reset/abc-123" {
		t.Errorf("unexpected outbox %+v", links)
	}

	rec := httptest.NewRecorder()
	m.OutboxHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/outbox", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/reset/abc-123") {
		t.Errorf("outbox page %d: %s", rec.Code, rec.Body.String())
	}
}

func TestResetOverSmtp(t *testing.T) {
	m := newTestMailer(t, &models.ConfigFile{
		SmtpServer:   "smtp.example.com",
		SmtpPort:     587,
		SmtpUsername: "mailer@example.com",
	})

	var gotAddr string
	var gotTo []string
	var gotMsg string
	m.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	if err := m.SendPasswordReset(context.Background(), "bob@example.com", "<Bob>", "tok"); err != nil {
		t.Fatal(err)
	}

	if gotAddr != "smtp.example.com:587" || len(gotTo) != 1 || gotTo[0] != "bob@example.com" {
		t.Errorf("sent to %s %v", gotAddr, gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: Reset password") || !strings.Contains(gotMsg, "&lt;Bob&gt;") {
		t.Errorf("unexpected mail %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "From: mailer@example.com") {
		t.Errorf("sender missing in %q", gotMsg)
	}
}
