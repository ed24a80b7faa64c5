// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

const pingTimeout = 2 * time.Second

type UserCounter interface {
	CountByRole(ctx context.Context) (map[access.Role]int, error)
	CountBySuspension(ctx context.Context) (active, suspended int, err error)
}

type HandlerConfig struct {
	Users      UserCounter
	DBStats    func() sql.DBStats
	DBPing     func(ctx context.Context) error
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
}

type Handler struct {
	cfg HandlerConfig
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg}
}

// RegisterRoutes mounts the dashboard behind authenticator and the admin
// guard.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/stats", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)
		r.Get("/", h.GetSystemStats)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		wg                    sync.WaitGroup
		dbHealthy, rdbHealthy bool
	)
	wg.Go(func() { dbHealthy = ping(ctx, "database", h.cfg.DBPing) })
	wg.Go(func() { rdbHealthy = ping(ctx, "redis", h.cfg.RedisPing) })

	users, err := h.userStats(ctx)
	wg.Wait()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SystemStatsResponse{
		Users: users,
		Database: DatabaseStatus{
			Healthy: dbHealthy,
			Stats:   h.dbStats(),
		},
		Redis: RedisStatus{
			Healthy: rdbHealthy,
			Stats:   h.redisStats(),
		},
		Runtime: runtimeStats(),
	})
}

func ping(ctx context.Context, name string, fn func(context.Context) error) bool {
	if fn == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		slog.WarnContext(ctx, "dependency ping failed", "dependency", name, "error", err)
		return false
	}
	return true
}

func (h *Handler) userStats(ctx context.Context) (UserStats, error) {
	stats := UserStats{ByRole: map[string]int{}}
	if h.cfg.Users == nil {
		return stats, nil
	}

	counts, err := h.cfg.Users.CountByRole(ctx)
	if err != nil {
		return stats, err
	}

	for role, n := range counts {
		stats.ByRole[string(role)] = n
		stats.Total += n
	}

	stats.Active, stats.Suspended, err = h.cfg.Users.CountBySuspension(ctx)
	if err != nil {
		return stats, err
	}
	return stats, nil
}

func (h *Handler) dbStats() *DBPoolStats {
	if h.cfg.DBStats == nil {
		return nil
	}

	s := h.cfg.DBStats()
	return &DBPoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration.String(),
	}
}

func (h *Handler) redisStats() *RedisPoolStats {
	if h.cfg.RedisStats == nil {
		return nil
	}

	s := h.cfg.RedisStats()
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
	}
}

func runtimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     m.Alloc,
		NumGC:        m.NumGC,
	}
}

type SystemStatsResponse struct {
	Users    UserStats      `json:"users"`
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type UserStats struct {
	Total     int            `json:"total"`
	Active    int            `json:"active"`
	Suspended int            `json:"suspended"`
	ByRole    map[string]int `json:"by_role"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
