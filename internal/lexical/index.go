// Package lexical implements a BM25-style inverted index over skill
// names and descriptions, used as an alternative matching signal to
// embeddings. Scores are unscaled BM25 values and are not comparable
// to cosine similarities; thresholds are strategy-specific constants.
package lexical

import (
	"math"
	"sort"

	"github.com/nextlevelbuilder/skillmatch/internal/skills"
)

// BM25 parameters and the name-field boost. Name tokens are counted
// twice so a query hitting the skill name outranks a description-only
// hit.
const (
	bm25K1    = 1.2
	bm25B     = 0.75
	nameBoost = 2

	// fuzzyMinLen gates typo-tolerant matching: short terms produce
	// too many accidental one-edit neighbors.
	fuzzyMinLen = 5
)

// Match is a single scored result from a lexical query.
type Match struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type indexedDoc struct {
	name string
	tf   map[string]int
	dl   float64
}

// Index is an immutable BM25 index over a skill list. Build a new one
// when the list changes; see IndexCache for fingerprint-keyed reuse.
type Index struct {
	docs  []indexedDoc
	df    map[string]int
	avgDL float64
}

// Build indexes the skills. Document order is preserved and acts as
// the deterministic tiebreak for equal scores.
func Build(list []skills.Summary) *Index {
	idx := &Index{df: make(map[string]int)}

	totalTokens := 0
	for _, s := range list {
		tf := make(map[string]int)
		count := 0

		for _, t := range Tokenize(s.Name) {
			tf[t] += nameBoost
			count += nameBoost
		}
		for _, t := range Tokenize(s.Description) {
			tf[t]++
			count++
		}

		for t := range tf {
			idx.df[t]++
		}
		idx.docs = append(idx.docs, indexedDoc{name: s.Name, tf: tf, dl: float64(count)})
		totalTokens += count
	}

	if len(idx.docs) > 0 {
		idx.avgDL = float64(totalTokens) / float64(len(idx.docs))
	}
	return idx
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int { return len(idx.docs) }

// Query scores every document against the query, filters to
// score ≥ threshold, sorts descending (stable, original order breaks
// ties) and truncates to topK.
func (idx *Index) Query(query string, topK int, threshold float64) []Match {
	if topK <= 0 {
		topK = 5
	}
	queryTerms := Tokenize(query)
	if len(queryTerms) == 0 || len(idx.docs) == 0 {
		return nil
	}

	// Expand each query term to the vocabulary terms it matches
	// (exact, prefix, and one-edit fuzzy for longer terms).
	expansions := make([][]string, len(queryTerms))
	for i, qt := range queryTerms {
		expansions[i] = idx.expandTerm(qt)
	}

	N := float64(len(idx.docs))
	var results []Match

	for _, doc := range idx.docs {
		score := 0.0
		for _, terms := range expansions {
			// A query term contributes its best-matching vocabulary
			// term only, so exact+prefix hits are not double counted.
			best := 0.0
			for _, t := range terms {
				freq := float64(doc.tf[t])
				if freq == 0 {
					continue
				}
				dfTerm := float64(idx.df[t])
				idf := math.Log((N-dfTerm+0.5)/(dfTerm+0.5) + 1)
				s := idf * freq * (bm25K1 + 1) /
					(freq + bm25K1*(1-bm25B+bm25B*doc.dl/idx.avgDL))
				if s > best {
					best = s
				}
			}
			score += best
		}

		if score >= threshold && score > 0 {
			results = append(results, Match{Name: doc.name, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// expandTerm returns the vocabulary terms a query term matches:
// itself (exact), terms it prefixes, and one-edit neighbors for terms
// of fuzzyMinLen or longer.
func (idx *Index) expandTerm(qt string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}

	if idx.df[qt] > 0 {
		add(qt)
	}
	fuzzy := len(qt) >= fuzzyMinLen
	for t := range idx.df {
		if t == qt {
			continue
		}
		if len(t) > len(qt) && t[:len(qt)] == qt {
			add(t)
			continue
		}
		if fuzzy && withinOneEdit(qt, t) {
			add(t)
		}
	}
	return out
}

// withinOneEdit reports whether a and b are at most one insertion,
// deletion, or substitution apart.
func withinOneEdit(a, b string) bool {
	la, lb := len(a), len(b)
	if la > lb {
		a, b, la, lb = b, a, lb, la
	}
	if lb-la > 1 {
		return false
	}

	if la == lb {
		diff := 0
		for i := 0; i < la; i++ {
			if a[i] != b[i] {
				diff++
				if diff > 1 {
					return false
				}
			}
		}
		return true
	}

	// b is one longer than a: a single insertion must reconcile them.
	i, j, edits := 0, 0, 0
	for i < la && j < lb {
		if a[i] == b[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		j++
	}
	return true
}
