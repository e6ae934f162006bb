package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/openkanban/board-api/internal/config"
	pgstore "github.com/openkanban/board-api/internal/platform/postgres"
	"github.com/openkanban/board-api/internal/realtime"
	"github.com/openkanban/board-api/internal/service"
	"github.com/openkanban/board-api/internal/service/auth"
	"github.com/openkanban/board-api/internal/store"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore       store.UserStore
	boardStore      store.BoardStore
	listStore       store.ListStore
	taskStore       store.TaskStore
	assignmentStore store.AssignmentStore
	activityStore   store.ActivityStore

	// Auth
	jwtService auth.JWTService
	hasher     auth.PasswordHasher

	// Realtime
	registry    *realtime.Registry
	broadcaster realtime.Broadcaster
	gateway     *realtime.Gateway
	redisClient *redis.Client
	stopPubSub  context.CancelFunc

	// Services
	userService     service.UserService
	boardService    service.BoardService
	listService     service.ListService
	taskService     service.TaskService
	activityService service.ActivityService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger,
// and database connection that must be established before application
// initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.hasher = auth.NewPasswordHasher(cfg.Auth.BCryptCost)

	app.userStore = pgstore.NewUserStore(db)
	app.boardStore = pgstore.NewBoardStore(db)
	app.listStore = pgstore.NewListStore(db)
	app.taskStore = pgstore.NewTaskStore(db)
	app.assignmentStore = pgstore.NewAssignmentStore(db)
	app.activityStore = pgstore.NewActivityStore(db)

	if err := app.setupRealtime(ctx); err != nil {
		return nil, err
	}

	txRunner := store.NewTxRunner(db)

	app.activityService, err = service.NewActivityService(
		app.activityStore,
		app.boardStore,
		app.listStore,
		app.taskStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity service: %w", err)
	}

	app.boardService, err = service.NewBoardService(
		app.boardStore,
		app.listStore,
		app.broadcaster,
		app.activityService,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create board service: %w", err)
	}

	app.listService, err = service.NewListService(
		txRunner,
		app.boardStore,
		app.listStore,
		app.broadcaster,
		app.activityService,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create list service: %w", err)
	}

	app.taskService, err = service.NewTaskService(
		txRunner,
		app.boardStore,
		app.listStore,
		app.taskStore,
		app.assignmentStore,
		app.userStore,
		app.broadcaster,
		app.activityService,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.userService, err = service.NewUserService(
		app.userStore,
		app.hasher,
		app.jwtService,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.gateway = realtime.NewGateway(
		app.jwtService,
		app.registry,
		realtime.GatewayOptions{
			SendBufferSize:  cfg.Realtime.SendBufferSize,
			WriteTimeoutSec: cfg.Realtime.WriteTimeoutSec,
		},
		logger,
	)

	logger.Info("application initialized")
	return app, nil
}

// setupRealtime creates the connection registry and selects the event
// fan-out backend. The memory backend delivers events in-process; the
// redis backend publishes them through Redis pub/sub so rooms span every
// server instance.
func (app *application) setupRealtime(ctx context.Context) error {
	app.registry = realtime.NewRegistry()
	hub := realtime.NewHub(app.registry, app.logger)

	if app.config.Realtime.Backend != "redis" {
		app.broadcaster = hub
		return nil
	}

	opts, err := redis.ParseURL(app.config.Realtime.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse redis URL: %w", err)
	}
	app.redisClient = redis.NewClient(opts)

	if err := app.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	broadcaster := realtime.NewRedisBroadcaster(
		app.redisClient,
		app.config.Realtime.RedisChannelPrefix,
		hub,
		app.logger,
	)

	pubsubCtx, cancel := context.WithCancel(ctx)
	app.stopPubSub = cancel
	go broadcaster.Run(pubsubCtx)

	app.broadcaster = broadcaster
	app.logger.Info("redis event backend initialized",
		"channel_prefix", app.config.Realtime.RedisChannelPrefix)
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources owned by the application. The database
// connection is closed by the caller that opened it.
func (app *application) cleanup() {
	if app.stopPubSub != nil {
		app.stopPubSub()
	}
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("failed to close redis client", "error", err)
		}
	}
}
