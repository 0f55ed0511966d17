package main

import (
	"chatrooms-backend/internal/chat"
	"chatrooms-backend/internal/config"
	"chatrooms-backend/internal/database"
	"chatrooms-backend/internal/email"
	"chatrooms-backend/internal/fileHandlers"
	"chatrooms-backend/internal/handlers"
	"chatrooms-backend/internal/hub"
	"chatrooms-backend/internal/jwt"
	"chatrooms-backend/internal/keyValue"
	"chatrooms-backend/internal/messages"
	"chatrooms-backend/internal/models"
	"chatrooms-backend/internal/presence"
	"chatrooms-backend/internal/snowflake"
	"chatrooms-backend/internal/validator"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const localOutboxAddress = "127.0.0.1:3010"

func setupLogger(cfg *models.ConfigFile) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	if cfg.LogToFile {
		config.OutputPaths = append(config.OutputPaths, "app.log")
	}
	config.Level = level

	return config.Build()
}

func setupRedis(ctx context.Context, cfg *models.ConfigFile) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	err := rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func main() {
	fmt.Println("Reading config file...")
	cfg, err := config.Load("config.json")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Println("Setting up logger...")
	logger, err := setupLogger(cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, sugar); err != nil {
		sugar.Fatal(err)
	}
}

func run(ctx context.Context, cfg *models.ConfigFile, sugar *zap.SugaredLogger) error {
	db, err := database.Setup(cfg, sugar)
	if err != nil {
		return err
	}
	defer db.Close()
	store := database.NewStore(db)

	// presence rows of a previous run belong to connections that are gone
	cleared, err := store.ClearPresence(ctx)
	if err != nil {
		return err
	}
	if cleared > 0 {
		sugar.Infof("Removed %d stale presence rows", cleared)
	}

	var redisClient *redis.Client
	if !cfg.SelfContained {
		sugar.Infof("Connecting to redis at %s...", cfg.RedisAddress)
		redisClient, err = setupRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}
	kv := keyValue.New(ctx, redisClient, sugar)

	ids, err := snowflake.New(cfg.SnowflakeWorkerID)
	if err != nil {
		return err
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}

	isHttps := cfg.TlsCert != "" && cfg.TlsKey != ""

	var httpProtocol string
	if isHttps {
		httpProtocol = "https"
	} else {
		httpProtocol = "http"
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s://%s:%s", httpProtocol, cfg.Address, cfg.Port)
	}

	uploads, err := fileHandlers.NewUploads(cfg.UploadDir, "/uploads", cfg.MaxUploadBytes, ids)
	if err != nil {
		return err
	}

	mailer := email.NewMailer(cfg, publicURL, kv, sugar)
	if mailer.Local() {
		go func() {
			if err := mailer.ListenLocal(ctx, localOutboxAddress); err != nil {
				sugar.Error(err)
			}
		}()
	}

	h := hub.New(sugar)
	formatter := messages.NewFormatter(store, ids, location, sugar)
	chatService := chat.NewService(store, presence.NewStore(store, sugar), formatter, h, uploads, cfg.TypingTimeout, sugar)

	router := handlers.New(handlers.Deps{
		Config:    cfg,
		Sugar:     sugar,
		Store:     store,
		KeyValue:  kv,
		Issuer:    jwt.NewIssuer(cfg.JwtSecret, isHttps),
		Mailer:    mailer,
		Validator: validator.New(),
		IDs:       ids,
		Hub:       h,
		Chat:      chatService,
		Uploads:   uploads,
	}).Router()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Address, cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		sugar.Infof("Server is running on %s", publicURL)
		if isHttps {
			errs <- server.ListenAndServeTLS(cfg.TlsCert, cfg.TlsKey)
		} else {
			errs <- server.ListenAndServe()
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	sugar.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Error(err)
	}

	// hijacked websocket connections are not closed by server.Shutdown
	h.Shutdown(shutdownCtx)
	return nil
}
