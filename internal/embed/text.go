package embed

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Strategy selects which text is embedded for a skill.
type Strategy string

const (
	// StrategySummary embeds "<name>: <description>".
	StrategySummary Strategy = "summary"
	// StrategyFull embeds the skill's document body when supplied,
	// falling back to the summary text otherwise.
	StrategyFull Strategy = "full"
)

// ValidStrategy reports whether s is a known embedding strategy.
func ValidStrategy(s Strategy) bool {
	return s == StrategySummary || s == StrategyFull
}

// SummaryText composes the summary-strategy embedding text.
func SummaryText(name, description string) string {
	if description == "" {
		return name
	}
	return name + ": " + description
}

// skillText composes the text to embed for one skill under the given
// strategy. The strategy changes only the text, never the embedding
// contract, so summary and full entries for the same skill hash to
// different cache keys and never collide.
func skillText(strategy Strategy, name, description, fullContent string, budget int) string {
	if strategy == StrategyFull && strings.TrimSpace(fullContent) != "" {
		return truncateTokens(fullContent, budget)
	}
	return SummaryText(name, description)
}

var (
	bpeOnce sync.Once
	bpe     *tiktoken.Tiktoken
)

// truncateTokens trims text to at most budget tokens so full-document
// bodies fit the model's input window. When the BPE vocabulary cannot
// be loaded (offline first run), falls back to a 4-chars-per-token
// estimate rather than failing the embed.
func truncateTokens(text string, budget int) string {
	if budget <= 0 {
		return text
	}

	bpeOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Warn("tokenizer unavailable, using character estimate", "error", err)
			return
		}
		bpe = enc
	})

	if bpe == nil {
		limit := budget * 4
		if len(text) <= limit {
			return text
		}
		return text[:limit]
	}

	tokens := bpe.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text
	}
	return bpe.Decode(tokens[:budget])
}
