// Package tracing records match decisions for offline calibration and
// optional export to an OpenTelemetry backend.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultFlushInterval = 5 * time.Second
	defaultBufferSize    = 256
	recentSpanLimit      = 128
	queryPreviewMaxLen   = 200
)

// MatchSpan captures one match decision.
type MatchSpan struct {
	ID         uuid.UUID     `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Query      string        `json:"query"` // truncated preview
	Strategy   string        `json:"strategy"`
	Candidates int           `json:"candidates"`
	Matched    bool          `json:"matched"`
	Skills     []string      `json:"skills,omitempty"`
	Threshold  float64       `json:"threshold"`
	Reason     string        `json:"reason"`
}

// SpanExporter is implemented by backends that receive span batches.
// Keeping this as an interface lets the OTel dependency live in a
// separate sub-package.
type SpanExporter interface {
	ExportSpans(ctx context.Context, spans []MatchSpan)
	Shutdown(ctx context.Context) error
}

// Collector buffers match spans in memory and flushes them
// periodically. A bounded ring of recent spans stays queryable for the
// diagnostics CLI even without an exporter attached.
type Collector struct {
	spanCh chan MatchSpan
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	recent []MatchSpan

	exporter SpanExporter // nil = local ring only
}

// NewCollector creates a collector.
func NewCollector() *Collector {
	return &Collector{
		spanCh: make(chan MatchSpan, defaultBufferSize),
		stopCh: make(chan struct{}),
	}
}

// SetExporter attaches an external span exporter.
func (c *Collector) SetExporter(exp SpanExporter) {
	c.exporter = exp
}

// Start begins the background flush loop.
func (c *Collector) Start() {
	c.wg.Add(1)
	go c.flushLoop()
}

// Stop flushes remaining spans and shuts down the exporter.
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()

	if c.exporter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.exporter.Shutdown(ctx); err != nil {
			slog.Warn("tracing: exporter shutdown failed", "error", err)
		}
	}
}

// Record enqueues a span. Never blocks: when the buffer is full the
// span is dropped, since tracing must not slow the match path.
func (c *Collector) Record(span MatchSpan) {
	if span.ID == uuid.Nil {
		span.ID = uuid.New()
	}
	span.Query = truncatePreview(span.Query)

	select {
	case c.spanCh <- span:
	default:
		slog.Debug("tracing: span buffer full, dropping")
	}
}

// Recent returns a copy of the most recent spans, newest last.
func (c *Collector) Recent() []MatchSpan {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]MatchSpan, len(c.recent))
	copy(out, c.recent)
	return out
}

func (c *Collector) flushLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(defaultFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.stopCh:
			c.flush()
			return
		}
	}
}

func (c *Collector) flush() {
	var batch []MatchSpan
	for {
		select {
		case span := <-c.spanCh:
			batch = append(batch, span)
		default:
			goto drained
		}
	}
drained:
	if len(batch) == 0 {
		return
	}

	c.mu.Lock()
	c.recent = append(c.recent, batch...)
	if len(c.recent) > recentSpanLimit {
		c.recent = c.recent[len(c.recent)-recentSpanLimit:]
	}
	c.mu.Unlock()

	if c.exporter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		c.exporter.ExportSpans(ctx, batch)
		cancel()
	}
}

func truncatePreview(s string) string {
	if len(s) <= queryPreviewMaxLen {
		return s
	}
	return s[:queryPreviewMaxLen] + "..."
}
