package cmd

import (
	"github.com/nextlevelbuilder/skillmatch/internal/config"
	"github.com/nextlevelbuilder/skillmatch/internal/embed"
	"github.com/nextlevelbuilder/skillmatch/internal/matcher"
	"github.com/nextlevelbuilder/skillmatch/internal/skills"
)

// newLoader builds a skill loader over the configured hierarchy.
func newLoader(cfg *config.Config) *skills.Loader {
	return skills.NewLoader(skills.DefaultSources(cfg.Workspace, cfg.GlobalDir, cfg.BuiltinDir))
}

// newService builds the embedding service from the config. The caller
// decides whether to wait for readiness.
func newService(cfg *config.Config) (*embed.Service, error) {
	return embed.NewService(embed.Config{
		Model:    cfg.Model,
		Strategy: embed.Strategy(cfg.EmbedStrategy),
		CacheDir: cfg.ResolveCacheDir(),
		BaseURL:  cfg.Embeddings.BaseURL,
		APIKey:   cfg.Embeddings.APIKey,
	})
}

// newMatcher wires the matcher for the configured strategy. The
// embedding service is only constructed (and therefore loaded) when
// the semantic strategy is active; the loader supplies skill bodies
// for the full embedding strategy.
func newMatcher(cfg *config.Config, loader *skills.Loader) (*matcher.Matcher, error) {
	mcfg := matcher.Config{
		Strategy:  cfg.Strategy,
		Threshold: cfg.Threshold,
		TopK:      cfg.TopK,
		UseGate:   cfg.Gate,
		Content:   loader.Content,
	}
	if cfg.Strategy == matcher.StrategyLexical {
		return matcher.New(mcfg, nil), nil
	}
	svc, err := newService(cfg)
	if err != nil {
		return nil, err
	}
	return matcher.New(mcfg, svc), nil
}
