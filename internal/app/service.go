// Package service wires the store, lookups and intent handlers into the
// fulfillment service consumed by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/fulfillment/internal/adapters/repository"
	"github.com/okian/fulfillment/internal/domain/lookup"
	"github.com/okian/fulfillment/internal/domain/model"
	"github.com/okian/fulfillment/internal/domain/replay"
	"github.com/okian/fulfillment/internal/fulfillment"
	"github.com/okian/fulfillment/pkg/logger"
	"github.com/okian/fulfillment/pkg/metrics"
)

// Service answers conversational turns.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	router *fulfillment.Router
	replay replay.Cache[fulfillment.Reply]

	// Configuration
	lookupMode      lookup.Mode
	duplicatePolicy lookup.Policy
	contextLifespan int
	fanoutLimit     int
	replaySize      int
	now             func() time.Time
	location        *time.Location

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the document store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLookupMode selects "scan" or "indexed" name matching.
func WithLookupMode(mode string) Option {
	return func(s *Service) {
		s.lookupMode = lookup.Mode(mode)
	}
}

// WithDuplicatePolicy selects "last" or "first" for colliding names.
func WithDuplicatePolicy(policy string) Option {
	return func(s *Service) {
		s.duplicatePolicy = lookup.Policy(policy)
	}
}

// WithContextLifespan sets the lifespan of contexts established by replies.
func WithContextLifespan(turns int) Option {
	return func(s *Service) {
		if turns > 0 {
			s.contextLifespan = turns
		}
	}
}

// WithFanoutLimit bounds concurrent participant lookups within one turn.
func WithFanoutLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fanoutLimit = n
		}
	}
}

// WithReplaySize sets the size of the redelivery cache. 0 disables it.
func WithReplaySize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.replaySize = size
		}
	}
}

// WithClock sets the source of "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone used for "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		lookupMode:      lookup.ModeScan,
		duplicatePolicy: lookup.PolicyLast,
		contextLifespan: model.DefaultContextLifespan,
		fanoutLimit:     runtime.NumCPU() * 2,
		replaySize:      10_000,
		now:             time.Now,
		location:        time.UTC,
		logger:          nil, // replaced when the service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the lookups, handlers and routing table.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting fulfillment service...")

	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory store")
	}

	finderOpts := []lookup.Option{lookup.WithMode(s.lookupMode), lookup.WithPolicy(s.duplicatePolicy)}
	handlers := fulfillment.NewHandlers(
		lookup.NewFinder(s.store, model.CollectionPlayers, repository.DecodePlayer, finderOpts...),
		lookup.NewFinder(s.store, model.CollectionTournaments, repository.DecodeTournament, finderOpts...),
		lookup.NewFinder(s.store, model.CollectionMatches, repository.DecodeMatch, finderOpts...),
		fulfillment.WithClock(s.now),
		fulfillment.WithLocation(s.location),
		fulfillment.WithContextLifespan(s.contextLifespan),
		fulfillment.WithFanoutLimit(s.fanoutLimit),
		fulfillment.WithLogger(s.logger.Named("handler")),
	)
	s.router = fulfillment.NewRouter(fulfillment.Catalogue(handlers), s.logger.Named("router"))

	if s.replaySize > 0 {
		s.replay = replay.New[fulfillment.Reply](
			replay.WithMaxSize(s.replaySize),
			replay.WithEvictHook(func(string) { metrics.RecordReplayEviction() }),
		)
	}

	if err := s.refreshDocumentCounts(ctx); err != nil {
		return fmt.Errorf("count documents: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "fulfillment service started",
		logger.String("lookupMode", string(s.lookupMode)),
		logger.String("duplicatePolicy", string(s.duplicatePolicy)),
		logger.Int("contextLifespan", s.contextLifespan),
		logger.Int("fanoutLimit", s.fanoutLimit),
		logger.Int("replaySize", s.replaySize),
	)

	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping fulfillment service...")

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "failed to close store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "fulfillment service stopped")
}

// Fulfill answers one turn. A redelivered turn id is answered from the
// replay cache. Failed replies are not cached so a retry gets another try.
func (s *Service) Fulfill(ctx context.Context, turn fulfillment.Turn) (fulfillment.Reply, error) {
	s.mu.RLock()
	started, router, cache := s.started, s.router, s.replay
	s.mu.RUnlock()

	if !started {
		return fulfillment.Reply{}, ErrNotStarted
	}

	if cache != nil && turn.ID != "" {
		if reply, ok := cache.Lookup(ctx, turn.ID); ok {
			metrics.RecordReplayHit()
			s.logger.Debug(ctx, "replaying reply", logger.String("turn", turn.ID))
			return reply, nil
		}
	}

	reply, err := router.Route(ctx, turn)
	if err != nil {
		return reply, err
	}

	if cache != nil && turn.ID != "" && reply.Outcome != fulfillment.OutcomeFailed {
		cache.Record(ctx, turn.ID, reply)
		metrics.UpdateReplaySize(int(cache.Size()))
	}
	return reply, nil
}

// Intents lists the intent ids the service answers.
func (s *Service) Intents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.router == nil {
		return nil
	}
	return s.router.Intents()
}

// Store returns the underlying document store.
func (s *Service) Store() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"lookupMode":      string(s.lookupMode),
		"duplicatePolicy": string(s.duplicatePolicy),
		"contextLifespan": s.contextLifespan,
		"replayCapacity":  s.replaySize,
	}

	if s.started {
		counts, err := s.store.Count(ctx)
		if err != nil {
			s.logger.Error(ctx, "failed to count documents", logger.Error(err))
		} else {
			stats["documents"] = counts
			for name, n := range counts {
				metrics.UpdateDocumentCount(name, n)
			}
		}
		if s.replay != nil {
			stats["replaySize"] = s.replay.Size()
		}
		stats["intents"] = s.router.Intents()
		if totals, err := metrics.TurnTotals(); err == nil {
			stats["turns"] = totals
		}
	}

	return stats
}

// refreshDocumentCounts publishes per-collection document gauges.
func (s *Service) refreshDocumentCounts(ctx context.Context) error {
	counts, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	for name, n := range counts {
		metrics.UpdateDocumentCount(name, n)
	}
	return nil
}
