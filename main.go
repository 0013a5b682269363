package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"publazer/internal/api"
	"publazer/internal/auth"
	"publazer/internal/config"
	"publazer/internal/database"
	"publazer/internal/email"
	"publazer/internal/events"
	"publazer/internal/notify"
	"publazer/internal/review"
	"publazer/internal/similarity"
	"publazer/internal/storage"
	"publazer/internal/store"
	"publazer/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

type stores struct {
	users  store.Users
	papers store.Papers
	notes  store.Notifications
	corpus store.Corpus
	files  review.FileStore
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	cfg := config.New()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		st     stores
		pinger interface{ Ping(context.Context) error }
	)
	if cfg.DemoMode {
		logger.Warn("running in DEMO MODE, data is kept in memory only")
		mem := store.NewMemory()
		st = stores{mem.Users(), mem.Papers(), mem.Notifications(), mem.Corpus(), storage.NewMemoryStorage()}
	} else {
		db, err := database.NewConnection(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db); err != nil {
			return err
		}
		papers := database.NewPaperStore(db)
		st = stores{
			users:  database.NewUserStore(db),
			papers: papers,
			notes:  database.NewNotificationStore(db),
			corpus: papers,
			files:  storage.NewSupabaseStorage(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, cfg.Supabase.Bucket),
		}
		pinger = db
	}

	var revoker *auth.Revoker
	if cfg.Redis.URL != "" {
		client, err := auth.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Warn("redis unavailable, logout will not revoke tokens", "error", err)
		} else {
			defer client.Close()
			revoker = auth.NewRevoker(client)
		}
	}

	bus, err := events.NewBus(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer bus.Close()

	router, err := bus.NewRouter()
	if err != nil {
		return err
	}
	mailer := email.NewMailer(email.NewEmailSender(cfg, logger), st.users, logger)
	mailer.Register(bus, router)
	go func() {
		if err := router.Run(ctx); err != nil {
			logger.Error("event router stopped", "error", err)
		}
	}()
	defer router.Close()

	notifier := notify.NewService(st.notes, st.users, logger)
	scanner := similarity.NewScanner(st.corpus)
	server := api.NewServer(api.Deps{
		Config: cfg,
		Users:  users.NewService(st.users, cfg.BcryptCost, logger),
		Papers: review.NewService(review.Deps{
			Papers:         st.papers,
			Users:          st.users,
			Files:          st.files,
			Notifier:       notifier,
			Scanner:        scanner,
			Events:         bus,
			MaxUploadBytes: cfg.Upload.MaxBytes,
			Logger:         logger,
		}),
		Notify:   notifier,
		Scanner:  scanner,
		JWT:      auth.NewJWTManager(cfg),
		Revoker:  revoker,
		Logger:   logger,
		Database: pinger,
	})

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	if err := api.SetupRoutes(engine, server); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "demo_mode", cfg.DemoMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
