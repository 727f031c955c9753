// Package embed generates, caches, and serves sentence-embedding
// vectors for skill matching. Vectors are produced once per distinct
// (model, text) pair and persisted in a content-addressed disk cache.
package embed

import (
	"context"
	"errors"
	"fmt"
)

// Encoder produces embedding vectors for text. Implementations must
// return one L2-normalized vector per input, all of the same dimension.
type Encoder interface {
	Name() string
	Model() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrUnknownModel is returned at construction time for a model
// identifier that is not in the registry.
var ErrUnknownModel = errors.New("unknown embedding model")

// ModelInfo describes a registered embedding model.
type ModelInfo struct {
	ID          string
	Dim         int // expected vector dimension
	TokenBudget int // max input tokens for the full-content strategy
}

// modelRegistry is the fixed set of embedding models the service
// accepts. The dimension is verified against the encoder's output
// during the load probe.
var modelRegistry = map[string]ModelInfo{
	"all-minilm":             {ID: "all-minilm", Dim: 384, TokenBudget: 256},
	"nomic-embed-text":       {ID: "nomic-embed-text", Dim: 768, TokenBudget: 2048},
	"mxbai-embed-large":      {ID: "mxbai-embed-large", Dim: 1024, TokenBudget: 512},
	"text-embedding-3-small": {ID: "text-embedding-3-small", Dim: 1536, TokenBudget: 8192},
}

// DefaultModel is used when no model is configured.
const DefaultModel = "all-minilm"

// LookupModel returns the registry entry for id.
func LookupModel(id string) (ModelInfo, error) {
	info, ok := modelRegistry[id]
	if !ok {
		return ModelInfo{}, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	return info, nil
}

// RegisteredModels returns the IDs of all known models.
func RegisteredModels() []string {
	out := make([]string, 0, len(modelRegistry))
	for id := range modelRegistry {
		out = append(out, id)
	}
	return out
}
