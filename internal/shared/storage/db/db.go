package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"resume-importer/internal/shared/telemetry"
)

// ErrMissingURL is returned when no connection string is configured.
var ErrMissingURL = errors.New("DATABASE_URL is empty")

// Profile selects pool defaults for the kind of process opening the database.
type Profile string

const (
	ProfileServer  Profile = "server"
	ProfileLambda  Profile = "lambda"
	ProfileMigrate Profile = "migrate"
)

// Pool holds connection pool settings.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
	PingTimeout time.Duration
}

var profiles = map[Profile]Pool{
	// Lambda runs many small instances; keep each one to a couple of connections.
	ProfileLambda:  {MaxOpen: 2, MaxIdle: 1, MaxLifetime: 15 * time.Minute, MaxIdleTime: 30 * time.Second, PingTimeout: 3 * time.Second},
	ProfileServer:  {MaxOpen: 10, MaxIdle: 5, MaxLifetime: time.Hour, MaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
	ProfileMigrate: {MaxOpen: 1, MaxIdle: 1, MaxLifetime: time.Hour, MaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
}

// RuntimeProfile picks the lambda profile inside AWS Lambda and the server profile elsewhere.
func RuntimeProfile() Profile {
	if strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != "" {
		return ProfileLambda
	}
	return ProfileServer
}

// PoolFor returns the defaults for p with DB_* environment overrides applied.
func PoolFor(p Profile) Pool {
	pool, ok := profiles[p]
	if !ok {
		pool = profiles[ProfileServer]
	}
	envInt("DB_MAX_OPEN_CONNS", &pool.MaxOpen)
	envInt("DB_MAX_IDLE_CONNS", &pool.MaxIdle)
	envDuration("DB_CONN_MAX_LIFETIME", &pool.MaxLifetime)
	envDuration("DB_CONN_MAX_IDLE_TIME", &pool.MaxIdleTime)
	envDuration("DB_PING_TIMEOUT", &pool.PingTimeout)
	return pool
}

var sqlOpen = sql.Open

// Open connects to Postgres through pgx and pings before returning.
func Open(ctx context.Context, url string, pool Pool) (*sql.DB, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrMissingURL
	}
	conn, err := sqlOpen("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool.apply(conn)

	timeout := pool.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := conn.Stats()
	telemetry.Info("db.opened", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return conn, nil
}

func (p Pool) apply(conn *sql.DB) {
	maxOpen, maxIdle, lifetime := p.MaxOpen, p.MaxIdle, p.MaxLifetime
	if maxOpen <= 0 {
		maxOpen = 10
	}
	if maxIdle <= 0 {
		maxIdle = 5
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)
	conn.SetConnMaxLifetime(lifetime)
	if p.MaxIdleTime > 0 {
		conn.SetConnMaxIdleTime(p.MaxIdleTime)
	}
}

// shared caches one *sql.DB per process so warm Lambda invocations reuse it.
var shared struct {
	mu   sync.Mutex
	conn *sql.DB
}

// Shared returns the process-wide connection, opening it on first use.
// A failed open is not cached; the next caller tries again.
func Shared(ctx context.Context, url string, pool Pool) (*sql.DB, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.conn != nil {
		return shared.conn, nil
	}
	conn, err := Open(ctx, url, pool)
	if err != nil {
		return nil, err
	}
	shared.conn = conn
	return conn, nil
}

// resetShared drops the cached connection without closing it.
func resetShared() {
	shared.mu.Lock()
	shared.conn = nil
	shared.mu.Unlock()
}

func envInt(key string, dst *int) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env.ignored", map[string]any{"key": key, "error": err.Error()})
		return
	}
	*dst = v
}

func envDuration(key string, dst *time.Duration) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env.ignored", map[string]any{"key": key, "error": err.Error()})
		return
	}
	*dst = v
}
