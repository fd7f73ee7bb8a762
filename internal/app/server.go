package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/smsinbox/server/internal/api"
	"github.com/smsinbox/server/internal/config"
	"github.com/smsinbox/server/internal/relay"
	"github.com/smsinbox/server/internal/store"
	"github.com/smsinbox/server/internal/twilio"
)

// Server owns the process: config, logger, database, relay, HTTP listener.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	cfg        *config.Config
}

func NewServer() (*Server, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	if err := store.Migrate(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	registry := relay.NewRegistry()
	dispatcher := relay.NewDispatcher(registry, logger.Named("relay"))
	validator := twilio.NewRequestValidator(cfg.Twilio.AuthToken, cfg.PublicURL, cfg.ValidateSignatures())

	mux := api.SetupRoutes(
		&api.Handler{Phones: st, Messages: st},
		&api.WebhookHandler{Phones: st, Messages: st, Dispatcher: dispatcher, Validator: validator},
		&api.WSHandler{Dispatcher: dispatcher},
		cfg.CORSOrigin,
	)

	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		},
		store: st,
		cfg:   cfg,
	}, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Run serves HTTP until SIGINT/SIGTERM, then drains connections. Websocket
// clients are simply dropped; the subscription registry is in-memory only
// and rebuilds from zero when they reconnect.
func (s *Server) Run() error {
	go func() {
		zap.L().Info("listening",
			zap.String("addr", s.httpServer.Addr),
			zap.String("environment", s.cfg.Environment),
			zap.Bool("signature_validation", s.cfg.ValidateSignatures()),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)
	s.store.Close()
	return err
}
