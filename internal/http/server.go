// Package http exposes the analytics session over a JSON API. One
// session is shared by all clients; the server serializes access to it.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"compras/internal/cache"
	"compras/internal/core"
	"compras/internal/log"
	"compras/internal/session"
	"compras/internal/source"
	"compras/internal/storage"
)

// Options carries the server's collaborators. DefaultSource is used by
// reloads that name no file; Repo enables staging loads and the
// readiness probe. Repo and Publisher may be nil.
type Options struct {
	Session       *session.Session
	DefaultSource source.RowReader
	Repo          *storage.SQLiteRepository
	Publisher     ImportPublisher
	Logger        *log.Logger
	CacheTTL      time.Duration
	CacheEntries  int
	RecordLimit   int
}

// ImportPublisher queues a file for background staging. The AMQP
// client satisfies it.
type ImportPublisher interface {
	PublishImportRequest(ctx context.Context, path, source string) error
}

type Server struct {
	http.Server

	mu            sync.Mutex // guards session
	session       *session.Session
	defaultSource source.RowReader
	repo          *storage.SQLiteRepository
	publisher     ImportPublisher
	logger        *log.Logger
	recordLimit   int

	rateLimiter *rateLimiter

	// Derived views keyed by filter fingerprint. Cleared on every
	// session mutation.
	aggregatesCache *cache.LRUCache[aggregatesResponse]
	recordsCache    *cache.LRUCache[[]recordResponse]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

func NewServer(addr string, opts Options) *Server {
	mux := http.NewServeMux()

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	entries := opts.CacheEntries
	if entries <= 0 {
		entries = 100
	}
	recordLimit := opts.RecordLimit
	if recordLimit <= 0 {
		recordLimit = 100
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		session:         opts.Session,
		defaultSource:   opts.DefaultSource,
		repo:            opts.Repo,
		publisher:       opts.Publisher,
		logger:          logger,
		recordLimit:     recordLimit,
		rateLimiter:     newRateLimiter(),
		aggregatesCache: cache.NewLRUCache[aggregatesResponse](entries, ttl),
		recordsCache:    cache.NewLRUCache[[]recordResponse](entries, ttl),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.aggregatesCache)
	s.cacheManager.Register(s.recordsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/load", s.withMiddleware(s.handleLoad))
	mux.HandleFunc("/api/import", s.withMiddleware(s.handleImport))
	mux.HandleFunc("/api/filters", s.withMiddleware(s.handleFilters))
	mux.HandleFunc("/api/facets", s.withMiddleware(s.handleFacets))
	mux.HandleFunc("/api/aggregates", s.withMiddleware(s.handleAggregates))
	mux.HandleFunc("/api/records", s.withMiddleware(s.handleRecords))
	mux.HandleFunc("/api/reference-prices", s.withMiddleware(s.handleReferencePrices))

	return s
}

// Shutdown stops background cleanup goroutines and the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateViews drops every cached derived view. Called under s.mu
// after any session mutation.
func (s *Server) invalidateViews() {
	s.aggregatesCache.Clear()
	s.recordsCache.Clear()
}

// criteriaKey fingerprints the active filters for cache lookups.
func criteriaKey(c core.FilterCriteria) string {
	return fmt.Sprintf("m=%d|d=%s|s=%s|q=%s", c.Month, c.Description, c.Supplier, c.Search)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once a dataset is loaded, or when the
// staging store is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	loaded := s.session.Size() > 0
	s.mu.Unlock()

	if !loaded && s.repo != nil {
		if _, err := s.repo.StagedCount(r.Context()); err != nil {
			http.Error(w, "staging store unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
