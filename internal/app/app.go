package app

import (
	"context"
	"fmt"
	"time"

	"Planner/internal/config"
	"Planner/internal/notify"
	"Planner/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg       config.Config
	st        store.Store
	cacheRdb  *redis.Client
	scheduler notify.Scheduler
	router    *gin.Engine
}

func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	st, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	a.st = st

	if cfg.Redis.CacheEnabled {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			st.Close()
			return nil, err
		}
		a.cacheRdb = rdb
	}

	a.scheduler = newScheduler(cfg.Notify)
	a.router = newRouter(cfg, a.st, a.cacheRdb, a.scheduler)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.scheduler != nil {
		a.scheduler.CancelAll()
	}
	if a.cacheRdb != nil {
		_ = a.cacheRdb.Close()
	}
	if a.st != nil {
		_ = a.st.Close()
	}
	return nil
}

func newStore(cfg config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return store.NewMemory(), nil
	case config.DriverSQLite:
		return store.NewSQLite(cfg.Store.SQLitePath)
	case config.DriverRedis:
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store.NewRedis(rdb), nil
	case config.DriverPostgres:
		pool, err := newPostgres(cfg.Store.PGDSN)
		if err != nil {
			return nil, err
		}
		if err := runMigrations(cfg.Store.PGDSN, "./migrations"); err != nil {
			pool.Close()
			return nil, err
		}
		return store.NewPostgres(pool), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newScheduler(cfg config.NotifyConfig) notify.Scheduler {
	if cfg.Disabled {
		return notify.Nop{}
	}
	var sink notify.Sink = notify.LogSink{}
	if cfg.WebhookURL != "" {
		sink = notify.NewWebhookSink(cfg.WebhookURL)
	}
	return notify.NewTimerScheduler(sink, time.Now)
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func runMigrations(dsn string, migrationsDir string) error {

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newRouter(cfg config.Config, st store.Store, cacheRdb *redis.Client, scheduler notify.Scheduler) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, st, cacheRdb, scheduler)
	return r
}
