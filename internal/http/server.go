package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"moodflow/internal/cache"
	"moodflow/internal/insights"
	applog "moodflow/internal/log"
	"moodflow/internal/middleware/ratelimit"
	"moodflow/internal/middleware/security"
	"moodflow/internal/middleware/trace"
	"moodflow/internal/store"
)

const (
	statsCacheSize    = 200
	calendarCacheSize = 100
	cacheCleanupEvery = 10 * time.Minute
	defaultCacheTTL   = 30 * time.Second
	readyTimeout      = 5 * time.Second
	maxBodyBytes      = 1 << 20
)

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	CacheTTL           time.Duration
	Logger             *applog.Logger
}

// Server is the JSON API over a mood store.
type Server struct {
	http.Server

	moods  store.Store
	logger *applog.Logger
	now    func() time.Time

	statsCache    *cache.Loader[insights.RangeSummary]
	calendarCache *cache.Loader[insights.CalendarView]
	statsLRU      *cache.LRUCache[insights.RangeSummary]
	calendarLRU   *cache.LRUCache[insights.CalendarView]
	cacheManager  *cache.Manager

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	appMetrics      *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	moodsCreated int64
	moodsUpdated int64
	moodsDeleted int64
	uptime       time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// moods should be the write path that publishes events, usually a
// *services.MoodService.
func NewServer(addr string, moods store.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		opts.CORSAllowedOrigins = []string{"*"}
	}

	s := &Server{
		moods:        moods,
		logger:       opts.Logger.WithComponent(applog.ComponentHTTP),
		now:          time.Now,
		statsLRU:     cache.NewLRUCache[insights.RangeSummary](statsCacheSize, opts.CacheTTL),
		calendarLRU:  cache.NewLRUCache[insights.CalendarView](calendarCacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		traceMiddleware: trace.NewMiddleware(opts.Logger, security.ClientIP),
		appMetrics:      &appMetrics{uptime: time.Now()},
	}
	s.statsCache = cache.NewLoader[insights.RangeSummary](s.statsLRU)
	s.calendarCache = cache.NewLoader[insights.CalendarView](s.calendarLRU)
	s.cacheManager.Register(s.statsLRU)
	s.cacheManager.Register(s.calendarLRU)
	s.cacheManager.StartCleanup(cacheCleanupEvery)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /moods/{$}", s.handleCreateMood)
	mux.HandleFunc("GET /moods/{$}", s.handleListMoods)
	mux.HandleFunc("GET /moods/statistics/{$}", s.handleStatistics)
	mux.HandleFunc("GET /moods/calendar/{$}", s.handleCalendar)
	mux.HandleFunc("GET /moods/{id}", s.handleGetMood)
	mux.HandleFunc("PUT /moods/{id}", s.handleUpdateMood)
	mux.HandleFunc("DELETE /moods/{id}", s.handleDeleteMood)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(security.ClientIP, s.handleRateLimited,
		http.MethodPost, http.MethodPut, http.MethodDelete)(handler)
	handler = security.CORS(opts.CORSAllowedOrigins)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = applog.RequestIDMiddleware(trace.RequestID)(handler)
	handler = applog.Middleware(s.logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// invalidateInsights drops cached statistics and calendars after a write.
func (s *Server) invalidateInsights() {
	s.statsCache.Purge()
	s.calendarCache.Purge()
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
