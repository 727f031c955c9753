package embed

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/skillmatch/internal/hashing"
	"github.com/nextlevelbuilder/skillmatch/internal/skills"
)

// Service states. The machine moves Uninitialized → Loading → Ready on
// success or Loading → Failed on error; both Ready and Failed are
// terminal for the instance. A caller that wants to retry a failed
// load constructs a new Service.
const (
	StateUninitialized int32 = iota
	StateLoading
	StateReady
	StateFailed
)

const (
	loadTimeout    = 60 * time.Second
	prewarmWorkers = 4
)

// Config configures a Service.
type Config struct {
	Model    string   // registry model ID; empty means DefaultModel
	Strategy Strategy // summary | full; empty means summary
	CacheDir string   // base cache directory

	// Encoder overrides the default OpenAI-compatible encoder.
	// Mostly useful for tests and alternative backends.
	Encoder Encoder
	BaseURL string
	APIKey  string
}

// Service is the embedding facade: it selects the model and text
// strategy, owns the content-addressed cache, and wraps the encoder
// behind a readiness state machine so concurrent first callers share
// one load.
type Service struct {
	info     ModelInfo
	strategy Strategy
	encoder  Encoder
	cache    *Cache

	state   atomic.Int32
	ready   chan struct{} // closed once the state is terminal
	loadErr error         // written before ready is closed
	dim     int           // written before ready is closed
}

// NewService validates the configuration and starts loading in the
// background. An unknown model identifier fails here, immediately,
// never at first use.
func NewService(cfg Config) (*Service, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	info, err := LookupModel(model)
	if err != nil {
		return nil, err
	}

	strategy := cfg.Strategy
	if strategy == "" {
		strategy = StrategySummary
	}
	if !ValidStrategy(strategy) {
		return nil, fmt.Errorf("unknown embedding strategy %q", strategy)
	}

	cache, err := NewCache(cfg.CacheDir, info.ID)
	if err != nil {
		return nil, err
	}

	encoder := cfg.Encoder
	if encoder == nil {
		encoder = NewOpenAIEncoder(cfg.BaseURL, cfg.APIKey, info.ID)
	}

	s := &Service{
		info:     info,
		strategy: strategy,
		encoder:  encoder,
		cache:    cache,
		ready:    make(chan struct{}),
	}
	s.state.Store(StateLoading)
	go s.load()
	return s, nil
}

// load probes the encoder once to verify it is usable and to learn the
// served vector dimension. All waiters observe the same outcome.
func (s *Service) load() {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	start := time.Now()
	vecs, err := s.encoder.Embed(ctx, []string{"embedding readiness probe"})
	if err == nil && (len(vecs) == 0 || len(vecs[0]) == 0) {
		err = fmt.Errorf("encoder returned no vector during load probe")
	}

	if err != nil {
		s.loadErr = fmt.Errorf("embedding model %s failed to load: %w", s.info.ID, err)
		s.state.Store(StateFailed)
		close(s.ready)
		slog.Warn("embedding service load failed", "model", s.info.ID, "error", err)
		return
	}

	s.dim = len(vecs[0])
	if s.dim != s.info.Dim {
		slog.Warn("embedding dimension differs from registry",
			"model", s.info.ID, "registry", s.info.Dim, "served", s.dim)
	}
	s.state.Store(StateReady)
	close(s.ready)
	slog.Info("embedding service ready",
		"model", s.info.ID, "dim", s.dim, "elapsed", time.Since(start))
}

// IsReady reports whether the service reached Ready, without blocking.
func (s *Service) IsReady() bool {
	return s.state.Load() == StateReady
}

// State returns the current lifecycle state.
func (s *Service) State() int32 {
	return s.state.Load()
}

// WaitUntilReady blocks the calling goroutine until the load reaches a
// terminal state, returning the load error when it failed.
func (s *Service) WaitUntilReady(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
		return s.loadErr
	}
}

// Model returns the active model ID.
func (s *Service) Model() string { return s.info.ID }

// ActiveStrategy returns the configured text strategy.
func (s *Service) ActiveStrategy() Strategy { return s.strategy }

// Dim returns the served vector dimension, or 0 before Ready.
func (s *Service) Dim() int {
	if !s.IsReady() {
		return 0
	}
	return s.dim
}

// Cache exposes the underlying vector cache for diagnostics.
func (s *Service) Cache() *Cache { return s.cache }

// Embed returns the vector for text, checking the cache first and
// persisting fresh results. A cache write failure degrades to a log
// line; the vector is still returned.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.WaitUntilReady(ctx); err != nil {
		return nil, err
	}

	key := hashing.Hash(text)
	if v, ok := s.cache.Read(key); ok {
		slog.Debug("embedding cache hit", "model", s.info.ID, "key", key[:12])
		return v, nil
	}

	vecs, err := s.encoder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("encoder returned no vector")
	}

	if err := s.cache.Write(key, vecs[0]); err != nil {
		slog.Warn("embedding cache write failed", "key", key[:12], "error", err)
	}
	return vecs[0], nil
}

// GetEmbedding composes the strategy-dependent text for a skill and
// returns its vector. fullContent may be empty; the summary text is
// used as the fallback.
func (s *Service) GetEmbedding(ctx context.Context, name, description, fullContent string) ([]float32, error) {
	text := skillText(s.strategy, name, description, fullContent, s.info.TokenBudget)
	return s.Embed(ctx, text)
}

// ContentFunc resolves a skill's document body for the full embedding
// strategy. skills.Loader.Content satisfies it.
type ContentFunc func(name string) (string, bool)

// lookupContent fetches the body for one skill when the full strategy
// is active. Missing content is fine; the summary text is the fallback.
func (s *Service) lookupContent(content ContentFunc, name string) string {
	if content == nil || s.strategy != StrategyFull {
		return ""
	}
	body, ok := content(name)
	if !ok {
		return ""
	}
	return body
}

// Prewarm computes embeddings for all skills concurrently so the first
// match call is served entirely from cache. Each skill is independent:
// one failure is logged and skipped, never aborting its siblings.
// content may be nil; it is consulted only under the full strategy.
// Returns the number of vectors successfully available.
func (s *Service) Prewarm(ctx context.Context, list []skills.Summary, content ContentFunc) int {
	if err := s.WaitUntilReady(ctx); err != nil {
		slog.Warn("prewarm skipped, service not ready", "error", err)
		return 0
	}

	var done atomic.Int32
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prewarmWorkers)

	for _, sk := range list {
		g.Go(func() error {
			body := s.lookupContent(content, sk.Name)
			if _, err := s.GetEmbedding(ctx, sk.Name, sk.Description, body); err != nil {
				slog.Warn("skill embedding failed", "skill", sk.Name, "error", err)
				return nil
			}
			done.Add(1)
			return nil
		})
	}
	g.Wait()

	slog.Info("embeddings prewarmed", "model", s.info.ID, "skills", len(list), "ok", done.Load())
	return int(done.Load())
}
