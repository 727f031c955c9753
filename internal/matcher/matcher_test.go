package matcher

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/skillmatch/internal/embed"
	"github.com/nextlevelbuilder/skillmatch/internal/skills"
	"github.com/nextlevelbuilder/skillmatch/internal/vector"
)

// stubEncoder returns scripted vectors per exact text, with a default
// for anything unscripted (including the service's load probe).
// Vectors are normalized at construction, mirroring the real encoder's
// contract.
type stubEncoder struct {
	byText map[string][]float32
	def    []float32
}

func (s *stubEncoder) Name() string  { return "stub" }
func (s *stubEncoder) Model() string { return "all-minilm" }

func (s *stubEncoder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := s.byText[t]; ok {
			out[i] = vector.NormalizeL2(v)
		} else {
			out[i] = vector.NormalizeL2(s.def)
		}
	}
	return out, nil
}

var (
	gitSkill = skills.Summary{Name: "git-helper", Description: "Provides git workflow assistance, branching and commits"}
	pdfSkill = skills.Summary{Name: "pdf", Description: "PDF manipulation, extraction and form filling"}

	branchQuery    = "Help me create a new branch and commit my changes"
	gibberishQuery = "xyzabc123qwerty456"
)

func newSemanticMatcher(t *testing.T, cfg Config) *Matcher {
	t.Helper()
	enc := &stubEncoder{
		byText: map[string][]float32{
			embed.SummaryText(gitSkill.Name, gitSkill.Description): {1, 0, 0},
			embed.SummaryText(pdfSkill.Name, pdfSkill.Description): {0, 1, 0},
			branchQuery:    {0.97, 0.24, 0},
			gibberishQuery: {0, 0, 1},
		},
		def: []float32{0, 0, 1},
	}
	svc, err := embed.NewService(embed.Config{
		Model:    "all-minilm",
		CacheDir: t.TempDir(),
		Encoder:  enc,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	cfg.Strategy = StrategySemantic
	return New(cfg, svc)
}

func TestMatchEmptySkills(t *testing.T) {
	m := newSemanticMatcher(t, Config{})
	res, err := m.Match(context.Background(), "anything at all", nil)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Matched || len(res.Skills) != 0 || res.Reason != ReasonNoSkills {
		t.Errorf("result = %+v, want unmatched with %q", res, ReasonNoSkills)
	}
}

func TestMatchMetaGated(t *testing.T) {
	m := newSemanticMatcher(t, Config{UseGate: true})
	res, err := m.Match(context.Background(), "yes", []skills.Summary{gitSkill, pdfSkill})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Matched || res.Reason != ReasonMeta {
		t.Errorf("result = %+v, want gated with %q", res, ReasonMeta)
	}
}

func TestMatchSemanticScenario(t *testing.T) {
	m := newSemanticMatcher(t, Config{UseGate: true})
	res, err := m.Match(context.Background(), branchQuery, []skills.Summary{gitSkill, pdfSkill})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !res.Matched {
		t.Fatalf("branch query did not match: %+v", res)
	}
	if res.Reason != ReasonSemantic {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonSemantic)
	}
	found := false
	for _, name := range res.Skills {
		if name == "git-helper" {
			found = true
		}
	}
	if !found {
		t.Errorf("skills = %v, want git-helper included", res.Skills)
	}
	// matched == true iff skills is non-empty
	if len(res.Skills) == 0 {
		t.Error("matched=true with empty skills")
	}
}

func TestMatchSemanticNoRelevant(t *testing.T) {
	m := newSemanticMatcher(t, Config{})
	res, err := m.Match(context.Background(), gibberishQuery, []skills.Summary{gitSkill, pdfSkill})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Matched || res.Reason != ReasonNoRelevant {
		t.Errorf("result = %+v, want %q", res, ReasonNoRelevant)
	}
}

func TestMatchThresholdInvariant(t *testing.T) {
	m := newSemanticMatcher(t, Config{Threshold: 0.30})
	res, err := m.Match(context.Background(), branchQuery, []skills.Summary{gitSkill, pdfSkill})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	for _, sm := range res.Matches {
		if sm.Score < 0.30 {
			t.Errorf("match %s score %f below threshold", sm.Name, sm.Score)
		}
	}
}

func TestMatchTopK(t *testing.T) {
	m := newSemanticMatcher(t, Config{})

	// 20 near-duplicate skills all collapse onto the stub's default
	// vector, as does the query, so every one scores 1.0.
	var many []skills.Summary
	for i := 0; i < 20; i++ {
		many = append(many, skills.Summary{
			Name:        fmt.Sprintf("testing-%02d", i),
			Description: "testing utilities",
		})
	}
	res, err := m.Match(context.Background(), "testing", many)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(res.Skills) > 5 {
		t.Errorf("skills length = %d, want <= 5 (default topK)", len(res.Skills))
	}
	// Equal scores: stable ordering keeps the original skill order.
	if res.Skills[0] != "testing-00" {
		t.Errorf("tiebreak skill = %s, want testing-00", res.Skills[0])
	}
	// No duplicate names.
	seen := map[string]bool{}
	for _, name := range res.Skills {
		if seen[name] {
			t.Errorf("duplicate skill %s in result", name)
		}
		seen[name] = true
	}
}

func TestMatchSortedDescending(t *testing.T) {
	m := newSemanticMatcher(t, Config{Threshold: 0.01})
	res, err := m.Match(context.Background(), branchQuery, []skills.Summary{pdfSkill, gitSkill})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	for i := 1; i < len(res.Matches); i++ {
		if res.Matches[i].Score > res.Matches[i-1].Score {
			t.Errorf("matches not sorted descending: %+v", res.Matches)
		}
	}
	if len(res.Skills) > 0 && res.Skills[0] != "git-helper" {
		t.Errorf("top skill = %s, want git-helper regardless of input order", res.Skills[0])
	}
}

func TestMatchLexicalStrategy(t *testing.T) {
	m := New(Config{Strategy: StrategyLexical, Threshold: 0.1}, nil)

	res, err := m.Match(context.Background(), "git branching workflow", []skills.Summary{gitSkill, pdfSkill})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !res.Matched {
		t.Fatalf("lexical match failed: %+v", res)
	}
	if res.Reason != ReasonLexical {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonLexical)
	}
	if res.Skills[0] != "git-helper" {
		t.Errorf("top skill = %s, want git-helper", res.Skills[0])
	}

	res, err = m.Match(context.Background(), gibberishQuery, []skills.Summary{gitSkill, pdfSkill})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Matched || res.Reason != ReasonNoRelevant {
		t.Errorf("gibberish lexical result = %+v", res)
	}
}

// blankRejectingEncoder mirrors the HTTP encoder's refusal to embed
// whitespace-only input.
type blankRejectingEncoder struct{ stubEncoder }

func (e *blankRejectingEncoder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("cannot embed empty text")
		}
	}
	return e.stubEncoder.Embed(ctx, texts)
}

func TestMatchBlankMessageGateDisabled(t *testing.T) {
	enc := &blankRejectingEncoder{stubEncoder{def: []float32{0, 0, 1}}}
	svc, err := embed.NewService(embed.Config{
		Model:    "all-minilm",
		CacheDir: t.TempDir(),
		Encoder:  enc,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	m := New(Config{Strategy: StrategySemantic, UseGate: false}, svc)

	res, err := m.Match(context.Background(), "   \t", []skills.Summary{gitSkill, pdfSkill})
	if err != nil {
		t.Fatalf("Match on blank message: %v", err)
	}
	if res.Matched || res.Reason != ReasonNoRelevant {
		t.Errorf("result = %+v, want unmatched with %q", res, ReasonNoRelevant)
	}
}

func TestMatchFullStrategyUsesBody(t *testing.T) {
	body := "Create branches, rebase, and open pull requests."
	enc := &stubEncoder{
		byText: map[string][]float32{
			body:        {1, 0, 0},
			branchQuery: {1, 0, 0},
			// The summary text is orthogonal to the query, so a match
			// can only come from embedding the body.
			embed.SummaryText(gitSkill.Name, gitSkill.Description): {0, 1, 0},
		},
		def: []float32{0, 0, 1},
	}
	svc, err := embed.NewService(embed.Config{
		Model:    "all-minilm",
		Strategy: embed.StrategyFull,
		CacheDir: t.TempDir(),
		Encoder:  enc,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	m := New(Config{
		Strategy: StrategySemantic,
		Content: func(name string) (string, bool) {
			if name == gitSkill.Name {
				return body, true
			}
			return "", false
		},
	}, svc)

	res, err := m.Match(context.Background(), branchQuery, []skills.Summary{gitSkill})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !res.Matched || len(res.Skills) == 0 || res.Skills[0] != "git-helper" {
		t.Fatalf("full-strategy match ignored the skill body: %+v", res)
	}
	if res.Matches[0].Score < 0.9 {
		t.Errorf("score = %f, want ~1.0 from the body embedding", res.Matches[0].Score)
	}
}

func TestRankReturnsAllScores(t *testing.T) {
	m := newSemanticMatcher(t, Config{})
	scores, err := m.Rank(context.Background(), branchQuery, []skills.Summary{gitSkill, pdfSkill})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(scores) != 2 {
		t.Errorf("Rank returned %d scores, want 2 (no threshold filtering)", len(scores))
	}
}

func TestRankLexicalReturnsAllScores(t *testing.T) {
	m := New(Config{Strategy: StrategyLexical}, nil)
	scores, err := m.Rank(context.Background(), "git branching workflow", []skills.Summary{pdfSkill, gitSkill})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("Rank returned %d scores, want 2 (zero scores included)", len(scores))
	}
	if scores[0].Name != "git-helper" {
		t.Errorf("top skill = %s, want git-helper", scores[0].Name)
	}
	if scores[0].Score <= 0 {
		t.Errorf("git-helper score = %f, want > 0", scores[0].Score)
	}
	if scores[1].Name != "pdf" || scores[1].Score != 0 {
		t.Errorf("irrelevant skill = %+v, want pdf with score 0", scores[1])
	}
}
