// Package config loads the skillmatch configuration: a JSON5 file with
// environment overrides, plus XDG-style resolution of the embedding
// cache directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/titanous/json5"
)

// Embeddings configures the encoder backend.
type Embeddings struct {
	BaseURL string `json:"baseUrl"`
	APIKey  string `json:"apiKey"`
}

// Config is the full configuration surface.
type Config struct {
	// Model is the embedding model identifier, validated against the
	// registry when the embedding service is constructed.
	Model string `json:"model"`

	// EmbedStrategy selects the text fed to the model: "summary" or "full".
	EmbedStrategy string `json:"embedStrategy"`

	// Strategy selects the matching signal: "semantic" or "lexical".
	Strategy string `json:"strategy"`

	// Threshold is the minimum score for a match. Zero selects the
	// strategy default; the scales are not comparable across strategies.
	Threshold float64 `json:"threshold"`

	TopK int  `json:"topK"`
	Gate bool `json:"gate"`

	// CacheDir overrides the embedding cache location.
	CacheDir string `json:"cacheDir"`

	// Workspace is the project root whose skills/ directory is scanned.
	Workspace  string `json:"workspace"`
	GlobalDir  string `json:"globalSkillsDir"`
	BuiltinDir string `json:"builtinSkillsDir"`

	Embeddings Embeddings `json:"embeddings"`

	// OTLPEndpoint enables trace export when set (e.g. "localhost:4318").
	OTLPEndpoint string `json:"otlpEndpoint"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Model:         "all-minilm",
		EmbedStrategy: "summary",
		Strategy:      "semantic",
		TopK:          5,
		Gate:          true,
	}
}

// DefaultPath returns ~/.skillmatch/config.json5.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".skillmatch", "config.json5")
}

// Load reads the config file at path, falling back to defaults when
// the file does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("cannot read config %s: %w", path, err)
			}
		} else if err := json5.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// ApplyEnvOverrides lets the environment win over the file. Secrets in
// particular belong in the environment, not on disk.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SKILLMATCH_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("SKILLMATCH_STRATEGY"); v != "" {
		c.Strategy = v
	}
	if v := os.Getenv("SKILLMATCH_EMBED_STRATEGY"); v != "" {
		c.EmbedStrategy = v
	}
	if v := os.Getenv("SKILLMATCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Threshold = f
		}
	}
	if v := os.Getenv("SKILLMATCH_TOPK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TopK = n
		}
	}
	if v := os.Getenv("SKILLMATCH_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("SKILLMATCH_EMBEDDINGS_BASE_URL"); v != "" {
		c.Embeddings.BaseURL = v
	}
	if v := os.Getenv("SKILLMATCH_EMBEDDINGS_API_KEY"); v != "" {
		c.Embeddings.APIKey = v
	}
	if v := os.Getenv("SKILLMATCH_OTLP_ENDPOINT"); v != "" {
		c.OTLPEndpoint = v
	}
}

// ResolveCacheDir returns the embedding cache base directory:
// the configured override first, then $XDG_CACHE_HOME/skillmatch,
// then ~/.cache/skillmatch.
func (c *Config) ResolveCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "skillmatch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "skillmatch")
	}
	return filepath.Join(home, ".cache", "skillmatch")
}
