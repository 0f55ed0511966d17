package email

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type OutboxLink struct {
	Email string `json:"email"`
	Link  string `json:"link"`
}

const outboxKey = "email_outbox"

func (m *Mailer) storeLocal(ctx context.Context, to string, link string) error {
	return m.outbox.Append(ctx, outboxKey, OutboxLink{Email: to, Link: link}, time.Hour)
}

func (m *Mailer) Outbox(ctx context.Context) ([]OutboxLink, error) {
	var links []OutboxLink
	err := m.outbox.List(ctx, outboxKey, &links)
	return links, err
}

// OutboxHandler lists the mail waiting in the local outbox.
func (m *Mailer) OutboxHandler() http.Handler {
	r := chi.NewRouter()

	r.Get("/outbox", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		links, err := m.Outbox(r.Context())
		if err != nil {
			m.sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		var htmlString []byte
		if len(links) == 0 {
			htmlString = fmt.Append(htmlString, "<h1>No emails in the outbox</h1>\n")
		} else {
			htmlString = fmt.Append(htmlString, "<h1>Password reset emails:</h1>")
			for _, link := range links {
				htmlString = fmt.Appendf(htmlString, `<p><a href="%s">%s</a></p>`, html.EscapeString(link.Link), html.EscapeString(link.Email))
			}
		}

		_, err = w.Write(htmlString)
		if err != nil {
			m.sugar.Error(err)
		}
	})

	return r
}

// ListenLocal serves the outbox on address until ctx is done.
func (m *Mailer) ListenLocal(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           m.OutboxHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			m.sugar.Error(err)
		}
	}()

	m.sugar.Infof("View emails of the local outbox on http://%s/outbox", address)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
