package handlers

import (
	"chatrooms-backend/internal/chat"
	"chatrooms-backend/internal/database"
	"chatrooms-backend/internal/email"
	"chatrooms-backend/internal/fileHandlers"
	"chatrooms-backend/internal/hub"
	"chatrooms-backend/internal/jwt"
	"chatrooms-backend/internal/keyValue"
	"chatrooms-backend/internal/models"
	"chatrooms-backend/internal/snowflake"
	"chatrooms-backend/internal/validator"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = 12

type Deps struct {
	Config     *models.ConfigFile
	Sugar      *zap.SugaredLogger
	Store      *database.Store
	KeyValue   *keyValue.Store
	Issuer     *jwt.Issuer
	Mailer     *email.Mailer
	Validator  *validator.Validator
	IDs        *snowflake.Generator
	Hub        *hub.Hub
	Chat       *chat.Service
	Uploads    *fileHandlers.Uploads
	BcryptCost int
}

type Handlers struct {
	cfg        *models.ConfigFile
	sugar      *zap.SugaredLogger
	db         *database.Store
	kv         *keyValue.Store
	issuer     *jwt.Issuer
	mailer     *email.Mailer
	validate   *validator.Validator
	ids        *snowflake.Generator
	hub        *hub.Hub
	chat       *chat.Service
	uploads    *fileHandlers.Uploads
	bcryptCost int
	now        func() time.Time
}

func New(d Deps) *Handlers {
	cost := d.BcryptCost
	if cost < bcrypt.MinCost {
		cost = defaultBcryptCost
	}

	return &Handlers{
		cfg:        d.Config,
		sugar:      d.Sugar,
		db:         d.Store,
		kv:         d.KeyValue,
		issuer:     d.Issuer,
		mailer:     d.Mailer,
		validate:   d.Validator,
		ids:        d.IDs,
		hub:        d.Hub,
		chat:       d.Chat,
		uploads:    d.Uploads,
		bcryptCost: cost,
		now:        time.Now,
	}
}

func (h *Handlers) wsConfig() hub.Config {
	return hub.Config{
		PingInterval:   h.cfg.PingInterval,
		PongWait:       h.cfg.PongWait,
		WriteWait:      h.cfg.WriteWait,
		MaxMessageSize: h.cfg.MaxMessageSize,
	}
}

func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	if h.cfg.PrintHttpRequests {
		r.Use(middleware.Logger)
	}

	r.Use(middleware.Recoverer)

	// websocket connections live longer than any request timeout
	var websocketPath string
	if h.cfg.BehindNginx {
		websocketPath = "/ws/"
	} else {
		websocketPath = "/ws"
	}
	r.With(h.UserVerifier).Get(websocketPath, h.HandleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/api", func(api chi.Router) {
			api.Get("/health", h.Health)

			api.Route("/auth", func(r chi.Router) {
				r.Post("/signup", h.Signup)
				r.Post("/login", h.Login)
				r.Post("/logout", h.Logout)
				r.Post("/forgot", h.Forgot)
				r.Get("/reset/{token}", h.ResetCheck)
				r.Post("/reset", h.Reset)
				r.With(h.UserVerifier).Get("/isLoggedIn", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			})

			api.Route("/user", func(r chi.Router) {
				r.Use(h.UserVerifier)
				r.Get("/self", h.GetUserInfo)
			})

			api.Route("/rooms", func(r chi.Router) {
				r.Use(h.UserVerifier)
				r.Get("/", h.ListRooms)
				r.Post("/", h.CreateRoom)
				r.Get("/{room}", h.GetRoom)
			})

			api.With(h.UserVerifier).Post("/upload", h.UploadImage)
		})

		r.With(middleware.SetHeader("X-Content-Type-Options", "nosniff")).
			Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.cfg.UploadDir))))
		if !h.cfg.BehindNginx {
			r.Handle("/*", http.FileServer(http.Dir("./public/static")))
		}
	})

	return r
}
