package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"quizhub/internal/api"
	"quizhub/internal/config"
	"quizhub/internal/database"
	"quizhub/internal/game"
	"quizhub/internal/router"
	"quizhub/internal/scheduler"
	"quizhub/internal/websocket"
)

// Version is the release version reported by /version.
const Version = "0.1.0"

// Application coordinates all system components. Initialization follows
// dependency order: store -> game registry -> connection registry ->
// scheduler -> router -> handler -> HTTP server. Shutdown reverses it.
type Application struct {
	config        *config.Config
	store         *database.Store
	games         *game.Registry
	conns         *websocket.Registry
	sched         *scheduler.Scheduler
	messageRouter *router.Router
	httpServer    *http.Server
}

// NewApplication builds a fully wired application from cfg.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := database.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize question store: %w", err)
	}

	games := game.NewRegistry(store)
	conns := websocket.NewRegistry()

	sched := scheduler.NewScheduler(games, conns, scheduler.Timings{
		PreGame:     cfg.Game.PreGameDelay,
		Countdown:   cfg.Game.RoundCountdown,
		ResultDelay: cfg.Game.ResultDelay,
	})

	msgRouter := router.NewRouter(games, conns, sched, cfg.Game.QuestionCount)
	wsHandler := websocket.NewHandler(conns, msgRouter, cfg.WebSocket.PingInterval, cfg.WebSocket.ReadTimeout)
	apiServer := api.NewServer(games, conns, store, wsHandler, Version)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      apiServer,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Application{
		config:        cfg,
		store:         store,
		games:         games,
		conns:         conns,
		sched:         sched,
		messageRouter: msgRouter,
		httpServer:    httpServer,
	}, nil
}

// Start begins serving. It returns once the HTTP listener is up or has
// failed to bind.
func (app *Application) Start(ctx context.Context) error {
	log.Printf("Starting quizhub on %s", app.httpServer.Addr)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case err := <-serverErrCh:
		return err
	case <-time.After(100 * time.Millisecond):
		log.Printf("quizhub started")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop gracefully shuts the application down: stop accepting
// connections, cancel round timers, close the store.
func (app *Application) Stop(ctx context.Context) error {
	log.Printf("Shutting down quizhub")

	if err := app.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	app.sched.Stop()

	if err := app.store.Close(); err != nil {
		log.Printf("Question store shutdown error: %v", err)
	}

	log.Printf("quizhub shutdown complete")
	return nil
}

// Addr returns the server address.
func (app *Application) Addr() string {
	return app.httpServer.Addr
}
