package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/libroteka/recommendation-service/config"
	"github.com/libroteka/recommendation-service/handlers"
	"github.com/libroteka/recommendation-service/middleware"
	"github.com/libroteka/recommendation-service/service"
	"github.com/libroteka/recommendation-service/store"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "recommendations").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName, cfg.LoansDB, cfg.CatalogDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("mongodb connect")
	}
	logger.Info().Msg("connected to MongoDB")
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("mongodb disconnect")
		}
	}()
	if err := db.EnsureSettingsIndex(ctx); err != nil {
		logger.Error().Err(err).Msg("settings index")
	}

	var notifier service.Notifier
	switch {
	case cfg.NotifyWebhookURL != "":
		notifier = service.NewWebhookNotifier(cfg.NotifyWebhookURL)
	case cfg.SMTPHost != "":
		notifier = &service.SMTPNotifier{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.NotifyFrom,
			To:   cfg.NotifyTo,
		}
	default:
		logger.Warn().Msg("no notifier configured; training notifications disabled")
	}

	engine := service.NewEngine(db, logger)
	trainer := service.NewTrainer(db, notifier, cfg.TrainTopN, logger)
	settings := service.NewSettings(db, logger)

	authHandler := &handlers.AuthHandler{
		DB:           db,
		JWTSecret:    cfg.JWTSecret,
		DefaultEmail: cfg.AuthEmail,
		DefaultPass:  cfg.AuthPass,
	}
	recsHandler := &handlers.RecommendationsHandler{
		Engine:        engine,
		Trainer:       trainer,
		Stats:         db,
		RetentionDays: cfg.RetentionDays,
	}
	settingsHandler := &handlers.SettingsHandler{Settings: settings}

	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Route("/recommendations", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))

			r.Get("/top", recsHandler.Top)
			r.Get("/{userId}", recsHandler.Personalized)
			r.Post("/user/{userId}/settings", settingsHandler.Set)
			r.Put("/user/{userId}/settings", settingsHandler.Update)
			r.Put("/user/{userId}/notify", settingsHandler.Notify)
			r.Delete("/user/{userId}/reset", settingsHandler.Reset)

			// Admin-only: model training, pruning, stats
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/train", recsHandler.Train)
				r.Delete("/obsolete", recsHandler.Prune)
				r.Get("/stats", recsHandler.ModelStats)
			})
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
