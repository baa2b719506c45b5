package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/callegarimattia/battleship/internal/env"
	"github.com/callegarimattia/battleship/internal/events"
	"github.com/callegarimattia/battleship/internal/gateway"
	"github.com/callegarimattia/battleship/internal/matchmaker"
	"github.com/callegarimattia/battleship/internal/queue"
	"github.com/callegarimattia/battleship/internal/ratelimiter"
	"github.com/callegarimattia/battleship/internal/reconnect"
	"github.com/callegarimattia/battleship/internal/room"
)

// Application wires every collaborator (queue store, room registry,
// reconnect coordinator, rate limiter, matchmaker, event sink, gateway) into
// a runnable HTTP/WS server.
type Application struct {
	E   *echo.Echo
	cfg *env.Config

	hub *gateway.Hub
	gw  *gateway.Gateway
	mm  *matchmaker.Matchmaker

	stop   chan struct{}
	cancel context.CancelFunc

	redisClient *redis.Client
	sqlDB       *sql.DB
}

// Setup loads configuration and wires every collaborator, leaving the
// Application ready for Run.
func (a *Application) Setup() error {
	cfg, err := env.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	store, err := a.setupQueueStore(ctx, cfg)
	if err != nil {
		return err
	}

	limiter, err := a.setupRateLimiter(ctx, cfg)
	if err != nil {
		return err
	}

	sink, err := a.setupEventSink(cfg)
	if err != nil {
		return err
	}

	a.hub = gateway.NewHub()
	rooms := room.NewRegistry(room.DefaultConfig(), a.hub, sink)
	rc := reconnect.New([]byte(cfg.JWTSecret), cfg.ReconnectGrace, rooms, store)

	a.gw = gateway.New(ctx, a.hub, store, rooms, rc, limiter, cfg)
	mmCfg := matchmaker.DefaultConfig()
	mmCfg.SoloTimeout = cfg.QueueWait
	a.mm = matchmaker.New(store, rooms, a.hub, mmCfg)

	a.stop = make(chan struct{})

	a.E = echo.New()
	a.E.HideBanner = true
	a.E.GET("/healthz", a.healthz)
	a.E.GET("/readyz", a.readyz)
	a.E.GET("/ws", func(c echo.Context) error {
		a.gw.ServeHTTP(c.Response(), c.Request())
		return nil
	})

	return nil
}

func (a *Application) setupQueueStore(ctx context.Context, cfg *env.Config) (queue.Store, error) {
	if cfg.RedisURL == "" {
		if cfg.RedisRequired {
			return nil, fmt.Errorf("REDIS_REQUIRED is set but REDIS_URL is empty")
		}
		return queue.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	a.redisClient = redis.NewClient(opts)
	if err := a.redisClient.Ping(ctx).Err(); err != nil {
		if cfg.RedisRequired {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Printf("server: redis unreachable (%v), falling back to in-memory queue store", err)
		return queue.NewMemoryStore(), nil
	}

	return queue.NewRedisStore(ctx, a.redisClient, cfg.RedisKeyPrefix)
}

func (a *Application) setupRateLimiter(ctx context.Context, cfg *env.Config) (ratelimiter.Limiter, error) {
	if a.redisClient != nil {
		return ratelimiter.NewRedisLimiter(ctx, a.redisClient, cfg.RedisKeyPrefix, ratelimiter.DefaultBounds)
	}
	return ratelimiter.NewMemoryLimiter(ctx, ratelimiter.DefaultBounds), nil
}

func (a *Application) setupEventSink(cfg *env.Config) (events.Sink, error) {
	if !cfg.SQLiteRequired && cfg.SQLitePath == "" {
		return events.NewRecordingSink(), nil
	}

	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		if cfg.SQLiteRequired {
			return nil, fmt.Errorf("open sqlite at %s: %w", cfg.SQLitePath, err)
		}
		log.Printf("server: sqlite unavailable (%v), falling back to in-memory event sink", err)
		return events.NewRecordingSink(), nil
	}
	a.sqlDB = db

	sink, err := events.NewSQLSink(db)
	if err != nil {
		return nil, fmt.Errorf("bootstrap events schema: %w", err)
	}
	return sink, nil
}

func (a *Application) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// readyz inspects each required dependency's reachability. A dependency
// that was configured as required but cannot be reached fails readiness;
// a dependency that fell back to an in-process store never blocks it.
func (a *Application) readyz(c echo.Context) error {
	if a.cfg.RedisRequired {
		if a.redisClient == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "redis unavailable"})
		}
		if err := a.redisClient.Ping(c.Request().Context()).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "redis unreachable"})
		}
	}

	if a.cfg.SQLiteRequired {
		if a.sqlDB == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "sqlite unavailable"})
		}
		if err := a.sqlDB.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "sqlite unreachable"})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// Run starts the gateway hub and matchmaker loops and blocks serving HTTP
// until the process receives a shutdown signal or the server errors out.
func (a *Application) Run() error {
	go a.hub.Run(a.stop)
	go a.mm.Run(context.Background())

	addr := ":" + a.cfg.Port
	log.Printf("server: listening on %s", addr)
	return a.E.Start(addr)
}

// Shutdown stops the background loops and gracefully drains the HTTP server.
func (a *Application) Shutdown(ctx context.Context) error {
	close(a.stop)
	a.cancel()
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return a.E.Shutdown(shutdownCtx)
}
