package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridrunner/tictactoe-backend/internal/config"
	"github.com/gridrunner/tictactoe-backend/internal/metrics"
	"github.com/gridrunner/tictactoe-backend/internal/repository"
	"github.com/gridrunner/tictactoe-backend/internal/repository/storage"
	"github.com/gridrunner/tictactoe-backend/internal/session"
	"github.com/gridrunner/tictactoe-backend/transport/rest"
	"github.com/gridrunner/tictactoe-backend/transport/websocket"
)

var ErrUnknownStorageBackend = errors.New("unknown storage backend")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	roomRepo, cleanup, err := newRoomRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer cleanup()

	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	registry := websocket.NewRegistry(logger, appMetrics)
	sessions := session.NewManager(logger, roomRepo, registry, appMetrics)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, sessions, registry)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newRoomRepository - picks the room store from config: the in-memory one
// runs with no external services, Redis survives restarts.
func newRoomRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.RoomRepository, func(), error) {
	switch conf.Storage.Backend {
	case config.StorageMemory:
		return repository.NewMemoryRoomRepository(), func() {}, nil

	case config.StorageRedis:
		client, err := storage.NewRedisClient(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		cleanup := func() {
			if closeErr := client.Close(); closeErr != nil {
				log.Error("could not close redis client", "error", closeErr)
			}
		}

		return repository.NewRoomRepository(client), cleanup, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownStorageBackend, conf.Storage.Backend)
	}
}
