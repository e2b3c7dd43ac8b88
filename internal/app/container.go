// Package app wires the application's dependencies.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/tandem/internal/scheduling/application/services"
	schedulingDomain "github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	"github.com/felixgeelhaar/tandem/internal/scheduling/infrastructure/busytime"
	sessionCommands "github.com/felixgeelhaar/tandem/internal/sessions/application/commands"
	sessionQueries "github.com/felixgeelhaar/tandem/internal/sessions/application/queries"
	sessionsDomain "github.com/felixgeelhaar/tandem/internal/sessions/domain"
	sessionPersistence "github.com/felixgeelhaar/tandem/internal/sessions/infrastructure/persistence"
	sharedDomain "github.com/felixgeelhaar/tandem/internal/shared/domain"
	"github.com/felixgeelhaar/tandem/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/tandem/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/tandem/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	_ "modernc.org/sqlite"
)

// Container holds all wired dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Connections
	PGPool      *pgxpool.Pool
	SQLiteDB    *sql.DB
	RedisClient *redis.Client
	Publisher   eventbus.Publisher

	// Scheduling
	BusyProvider     schedulingDomain.BusyWindowProvider
	ConflictDetector *services.ConflictDetector
	Scheduler        *services.Scheduler

	// Sessions
	SessionRepo       sessionsDomain.Repository
	ProposeSessions   *sessionCommands.ProposeSessionsHandler
	TransitionSession *sessionCommands.TransitionSessionHandler
	GetSession        *sessionQueries.GetSessionHandler
	ListSessions      *sessionQueries.ListSessionsHandler
}

// NewContainer creates and wires all dependencies. DATABASE_URL
// selects the storage backend: postgres URLs use pgx, everything else
// is treated as a SQLite file path.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}
	clock := sharedDomain.SystemClock{}

	var dbProvider schedulingDomain.BusyWindowProvider
	if strings.HasPrefix(cfg.DatabaseURL, "postgres://") || strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		c.PGPool = pool
		c.SessionRepo = sessionPersistence.NewPostgresSessionRepository(pool)
		dbProvider = busytime.NewPostgresProvider(pool)
		logger.Info("connected to database", "driver", "postgres")
	} else {
		dbConn, err := sql.Open("sqlite", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := dbConn.PingContext(ctx); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
		}
		if err := migrations.RunSQLite(ctx, dbConn); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		c.SQLiteDB = dbConn
		c.SessionRepo = sessionPersistence.NewSQLiteSessionRepository(dbConn)
		dbProvider = busytime.NewSQLiteProvider(dbConn)
		logger.Info("connected to database", "driver", "sqlite")
	}

	// Connect to Redis (optional)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, busy-window cache disabled", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					c.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, busy-window cache disabled", "error", err)
			} else {
				c.RedisClient = redisClient
				logger.Info("connected to Redis")
			}
		}
	}

	// Busy-window sources: bookings from the database, optionally
	// merged with the user's external CalDAV calendar.
	provider := dbProvider
	if cfg.CalDAVURL != "" {
		caldavProvider := busytime.NewCalDAVProvider(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, logger)
		if cfg.CalDAVPath != "" {
			caldavProvider = caldavProvider.WithCalendarPath(cfg.CalDAVPath)
		}
		guarded := busytime.NewBreakerProvider("caldav", caldavProvider, logger)
		provider = busytime.NewCompositeProvider(dbProvider, guarded)
		logger.Info("caldav busy-window source enabled", "url", cfg.CalDAVURL)
	}
	var busyCache sessionCommands.BusyCache
	if c.RedisClient != nil {
		cached := busytime.NewCachedProvider(provider, c.RedisClient, cfg.BusyCacheTTL, logger)
		provider = cached
		busyCache = cached
	}
	c.BusyProvider = provider

	// Event publisher (optional)
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			logger.Warn("RabbitMQ not available, events will not be published", "error", err)
			c.Publisher = eventbus.NewNoopPublisher(logger)
		} else {
			c.Publisher = publisher
		}
	} else {
		c.Publisher = eventbus.NewNoopPublisher(logger)
	}

	// Scheduling services
	c.ConflictDetector = services.NewConflictDetector(c.BusyProvider, clock, logger)
	c.Scheduler = services.NewScheduler(c.ConflictDetector, clock, services.SchedulerConfig{
		InitialWeeks:          cfg.SchedulerInitialWeeks,
		MaxWeeks:              cfg.SchedulerMaxWeeks,
		PoolFactor:            cfg.SchedulerPoolFactor,
		WidenMargin:           cfg.SchedulerWidenMargin,
		HorizonExtensionWeeks: cfg.SchedulerHorizonExtension,
	}, logger)

	// Session command handlers
	c.ProposeSessions = sessionCommands.NewProposeSessionsHandler(c.Scheduler, c.SessionRepo, c.Publisher, busyCache, logger)
	c.TransitionSession = sessionCommands.NewTransitionSessionHandler(c.SessionRepo, c.Publisher, clock, busyCache, logger)
	c.GetSession = sessionQueries.NewGetSessionHandler(c.SessionRepo)
	c.ListSessions = sessionQueries.NewListSessionsHandler(c.SessionRepo)

	return c, nil
}

// Close releases all connections.
func (c *Container) Close() {
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Logger.Warn("error closing publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis client", "error", err)
		}
	}
	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing sqlite database", "error", err)
		}
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
