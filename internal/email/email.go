package email

import (
	"chatrooms-backend/internal/keyValue"
	"chatrooms-backend/internal/models"
	"context"
	"fmt"
	"html"
	"net/smtp"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends account mail over SMTP. Without a configured SMTP server the
// mail is kept in the local outbox instead.
type Mailer struct {
	server    string
	address   string
	username  string
	password  string
	sender    string
	publicURL string
	outbox    *keyValue.Store
	sugar     *zap.SugaredLogger
	sendMail  sendFunc
}

func NewMailer(cfg *models.ConfigFile, publicURL string, outbox *keyValue.Store, sugar *zap.SugaredLogger) *Mailer {
	sender := cfg.SmtpSender
	if sender == "" {
		sender = cfg.SmtpUsername
	}

	return &Mailer{
		server:    cfg.SmtpServer,
		address:   fmt.Sprintf("%s:%d", cfg.SmtpServer, cfg.SmtpPort),
		username:  cfg.SmtpUsername,
		password:  cfg.SmtpPassword,
		sender:    sender,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		outbox:    outbox,
		sugar:     sugar,
		sendMail:  smtp.SendMail,
	}
}

// Local reports whether mail goes to the outbox instead of SMTP.
func (m *Mailer) Local() bool {
	return m.server == ""
}

func (m *Mailer) sendEmail(to string, subject string, message string) error {
	auth := smtp.PlainAuth("", m.username, m.password, m.server)

	msg := fmt.Appendf(nil, "From: %s\r\n", m.sender)
	msg = fmt.Appendf(msg, "To: %s\r\n", to)
	msg = fmt.Append(msg, "MIME-version: 1.0;\r\n")
	msg = fmt.Append(msg, "Content-Type: text/html; charset=\"UTF-8\";\r\n")
	msg = fmt.Appendf(msg, "Subject: %s\r\n", subject)
	msg = fmt.Append(msg, "\r\n")
	msg = fmt.Appendf(msg, "%s\r\n", message)

	return m.sendMail(m.address, auth, m.sender, []string{to}, msg)
}

// ResetLink is the address of the page that consumes token.
func (m *Mailer) ResetLink(token string) string {
	return fmt.Sprintf("%s/reset/%s", m.publicURL, url.PathEscape(token))
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to string, displayName string, token string) error {
	link := m.ResetLink(token)

	if m.Local() {
		m.sugar.Infof("No SMTP server configured, storing reset mail of [%s] in the outbox", to)
		return m.storeLocal(ctx, to, link)
	}

	subject := "Reset password"
	message := fmt.Sprintf(`
	<html>
		<body>
			<p>Hey <strong>%s!</strong><br><br>
			You have requested to reset the password for your account.<br><br>
			To reset your password please <strong><a href="%s">Click here!</a></strong></p>
		</body>
	</html>`,
		html.EscapeString(displayName), link)

	return m.sendEmail(to, subject, message)
}
