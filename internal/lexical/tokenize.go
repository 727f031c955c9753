package lexical

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTermLen drops noise terms: anything shorter than 3 characters
// carries almost no lexical signal and inflates false matches.
const minTermLen = 3

// stopwords are common English function words and contraction stems
// (the tokenizer strips apostrophes, so "don't" arrives as "don").
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "can",
		"had", "her", "was", "one", "our", "out", "has", "have", "this",
		"that", "with", "they", "them", "then", "than", "there", "their",
		"these", "those", "from", "into", "onto", "about", "after",
		"before", "between", "both", "each", "few", "more", "most",
		"other", "some", "such", "only", "same", "too", "very", "just",
		"will", "would", "could", "should", "what", "when",
		"where", "which", "while", "who", "whom", "why", "how", "any",
		"because", "been", "being", "does", "doing", "down", "during",
		"here", "its", "itself", "off", "over", "own", "she", "him",
		"his", "under", "until", "again", "against", "above", "below",
		"please", "help", "want", "need", "like", "make", "use", "using",
		// contraction stems
		"don", "didn", "doesn", "isn", "aren", "wasn", "weren", "won",
		"wouldn", "couldn", "shouldn", "cant", "ive", "youre", "youve",
		"ill", "im", "thats", "lets", "hes", "shes", "theyre", "weve",
	} {
		stopwords[w] = struct{}{}
	}
}

// foldDiacritics strips combining marks so "café" and "cafe" index to
// the same term.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Tokenize lowercases, folds diacritics, splits on non-alphanumerics,
// and drops stopwords and terms shorter than 3 characters.
func Tokenize(text string) []string {
	folded, _, err := transform.String(foldDiacritics, text)
	if err != nil {
		folded = text
	}
	lower := strings.ToLower(folded)

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, lower)

	var tokens []string
	for _, f := range strings.Fields(cleaned) {
		if len(f) < minTermLen {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
