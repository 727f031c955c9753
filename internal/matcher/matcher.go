// Package matcher combines the conversation gate, the embedding
// service (or the lexical index), the score threshold, and top-K
// truncation into the single match decision the host calls on every
// qualifying chat turn.
package matcher

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/nextlevelbuilder/skillmatch/internal/embed"
	"github.com/nextlevelbuilder/skillmatch/internal/gate"
	"github.com/nextlevelbuilder/skillmatch/internal/lexical"
	"github.com/nextlevelbuilder/skillmatch/internal/skills"
	"github.com/nextlevelbuilder/skillmatch/internal/vector"
)

// Matching strategies. Exactly one is active per matcher.
const (
	StrategySemantic = "semantic"
	StrategyLexical  = "lexical"
)

// Reason strings are part of the external contract: stable, exact,
// and checked by tests.
const (
	ReasonNoSkills   = "No skills available"
	ReasonMeta       = "Meta-conversation detected"
	ReasonSemantic   = "Matched via semantic search"
	ReasonLexical    = "Matched via local search"
	ReasonNoRelevant = "No relevant skills found"
)

// Default thresholds per strategy. Cosine similarities and BM25 scores
// live on different scales; the numbers are never interchangeable.
const (
	DefaultSemanticThreshold = 0.30
	DefaultLexicalThreshold  = 6.0
	DefaultTopK              = 5
)

// SkillMatch pairs a skill name with its relevance score.
type SkillMatch struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Result is the structured outcome of one match call. Absence of a
// match is a normal result, never an error.
type Result struct {
	Matched bool     `json:"matched"`
	Skills  []string `json:"skills"`
	Reason  string   `json:"reason"`

	// Matches carries the scores behind Skills, for diagnostics.
	Matches []SkillMatch `json:"matches,omitempty"`
}

// Config configures a Matcher.
type Config struct {
	Strategy  string  // semantic | lexical
	Threshold float64 // 0 selects the strategy default
	TopK      int     // 0 selects DefaultTopK
	UseGate   bool    // screen out meta-conversation turns first

	// Content resolves skill bodies for the full embedding strategy.
	// May be nil; the summary text is embedded instead.
	Content embed.ContentFunc
}

// Matcher decides which skills are plausibly relevant to a message.
type Matcher struct {
	cfg     Config
	service *embed.Service // semantic strategy only
	index   lexical.IndexCache
}

// New creates a matcher. service may be nil for the lexical strategy.
func New(cfg Config, service *embed.Service) *Matcher {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategySemantic
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Threshold == 0 {
		if cfg.Strategy == StrategyLexical {
			cfg.Threshold = DefaultLexicalThreshold
		} else {
			cfg.Threshold = DefaultSemanticThreshold
		}
	}
	return &Matcher{cfg: cfg, service: service}
}

// Match scores message against the available skills and returns the
// merged decision. The returned error is reserved for infrastructure
// failure (embedding model cannot load) and programmer errors; "no
// match" outcomes are normal results.
func (m *Matcher) Match(ctx context.Context, message string, available []skills.Summary) (Result, error) {
	if len(available) == 0 {
		return Result{Matched: false, Skills: []string{}, Reason: ReasonNoSkills}, nil
	}

	if m.cfg.UseGate && gate.IsMeta(message) {
		slog.Debug("meta-conversation gated", "message_len", len(message))
		return Result{Matched: false, Skills: []string{}, Reason: ReasonMeta}, nil
	}

	// With the gate disabled a blank message still reaches here; there
	// is nothing to embed or tokenize, so it matches nothing.
	if strings.TrimSpace(message) == "" {
		return Result{Matched: false, Skills: []string{}, Reason: ReasonNoRelevant}, nil
	}

	var (
		matches []SkillMatch
		reason  string
		err     error
	)
	switch m.cfg.Strategy {
	case StrategyLexical:
		matches = m.lexicalMatches(message, available)
		reason = ReasonLexical
	default:
		matches, err = m.semanticMatches(ctx, message, available)
		if err != nil {
			return Result{}, err
		}
		reason = ReasonSemantic
	}

	if len(matches) == 0 {
		return Result{Matched: false, Skills: []string{}, Reason: ReasonNoRelevant}, nil
	}

	names := make([]string, len(matches))
	for i, sm := range matches {
		names[i] = sm.Name
	}
	return Result{Matched: true, Skills: names, Reason: reason, Matches: matches}, nil
}

// Rank returns every skill's score without threshold filtering or
// truncation, for calibration tooling. Gate and empty-list handling
// are the caller's concern here.
func (m *Matcher) Rank(ctx context.Context, message string, available []skills.Summary) ([]SkillMatch, error) {
	if m.cfg.Strategy == StrategyLexical {
		idx := m.index.Get(available)
		byName := make(map[string]float64)
		for _, lm := range idx.Query(message, len(available), 0) {
			byName[lm.Name] = lm.Score
		}
		// Zero-score skills still appear, same as the semantic path.
		scored := make([]SkillMatch, len(available))
		for i, sk := range available {
			scored[i] = SkillMatch{Name: sk.Name, Score: byName[sk.Name]}
		}
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Score > scored[j].Score
		})
		return scored, nil
	}
	return m.scoreSemantic(ctx, message, available)
}

// semanticMatches embeds the query and every skill, scores by cosine,
// then applies threshold, ordering, dedup, and topK.
func (m *Matcher) semanticMatches(ctx context.Context, message string, available []skills.Summary) ([]SkillMatch, error) {
	scored, err := m.scoreSemantic(ctx, message, available)
	if err != nil {
		return nil, err
	}

	var matches []SkillMatch
	seen := make(map[string]bool)
	for _, sm := range scored {
		if sm.Score < m.cfg.Threshold || seen[sm.Name] {
			continue
		}
		seen[sm.Name] = true
		matches = append(matches, sm)
	}
	if len(matches) > m.cfg.TopK {
		matches = matches[:m.cfg.TopK]
	}
	return matches, nil
}

// scoreSemantic returns cosine scores for all skills, sorted
// descending with the original skill order as the tiebreak. Matching
// populates the embedding cache as a byproduct; that is expected.
func (m *Matcher) scoreSemantic(ctx context.Context, message string, available []skills.Summary) ([]SkillMatch, error) {
	queryVec, err := m.service.Embed(ctx, message)
	if err != nil {
		return nil, err
	}

	scored := make([]SkillMatch, 0, len(available))
	for _, sk := range available {
		body := m.skillBody(sk.Name)
		skillVec, err := m.service.GetEmbedding(ctx, sk.Name, sk.Description, body)
		if err != nil {
			// One skill's embedding failure must not sink the call.
			slog.Warn("skill embedding failed during match", "skill", sk.Name, "error", err)
			continue
		}
		score, err := vector.Cosine(queryVec, skillVec)
		if err != nil {
			// Length mismatch is a contract violation, not a no-match.
			return nil, err
		}
		scored = append(scored, SkillMatch{Name: sk.Name, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, nil
}

// skillBody fetches a skill's document body when the full embedding
// strategy is active. Summary-strategy matchers never touch disk here.
func (m *Matcher) skillBody(name string) string {
	if m.cfg.Content == nil || m.service.ActiveStrategy() != embed.StrategyFull {
		return ""
	}
	body, ok := m.cfg.Content(name)
	if !ok {
		return ""
	}
	return body
}

// lexicalMatches queries the memoized BM25 index. Threshold, ordering,
// and topK are applied by the index itself.
func (m *Matcher) lexicalMatches(message string, available []skills.Summary) []SkillMatch {
	idx := m.index.Get(available)
	out := make([]SkillMatch, 0)
	seen := make(map[string]bool)
	for _, lm := range idx.Query(message, m.cfg.TopK, m.cfg.Threshold) {
		if seen[lm.Name] {
			continue
		}
		seen[lm.Name] = true
		out = append(out, SkillMatch{Name: lm.Name, Score: lm.Score})
	}
	return out
}
