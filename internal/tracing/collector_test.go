package tracing

import (
	"context"
	"sync"
	"testing"
	"time"
)

type captureExporter struct {
	mu    sync.Mutex
	spans []MatchSpan
	shut  bool
}

func (c *captureExporter) ExportSpans(_ context.Context, spans []MatchSpan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spans = append(c.spans, spans...)
}

func (c *captureExporter) Shutdown(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shut = true
	return nil
}

func TestCollectorFlushOnStop(t *testing.T) {
	exp := &captureExporter{}
	c := NewCollector()
	c.SetExporter(exp)
	c.Start()

	c.Record(MatchSpan{
		StartedAt: time.Now(),
		Query:     "deploy to staging",
		Strategy:  "semantic",
		Matched:   true,
		Skills:    []string{"deploy"},
		Reason:    "Matched via semantic search",
	})
	c.Stop()

	exp.mu.Lock()
	defer exp.mu.Unlock()
	if len(exp.spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(exp.spans))
	}
	if exp.spans[0].ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("span ID not assigned")
	}
	if !exp.shut {
		t.Error("exporter not shut down")
	}

	recent := c.Recent()
	if len(recent) != 1 || recent[0].Query != "deploy to staging" {
		t.Errorf("recent = %+v", recent)
	}
}

func TestCollectorQueryPreviewTruncated(t *testing.T) {
	c := NewCollector()
	c.Start()

	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'q'
	}
	c.Record(MatchSpan{Query: string(long)})
	c.Stop()

	recent := c.Recent()
	if len(recent) != 1 {
		t.Fatalf("recent length = %d", len(recent))
	}
	if len(recent[0].Query) > queryPreviewMaxLen+3 {
		t.Errorf("preview length = %d, want <= %d", len(recent[0].Query), queryPreviewMaxLen+3)
	}
}
