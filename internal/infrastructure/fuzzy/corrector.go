// Package fuzzy rewrites misspelled utterances to canonical command phrases
// using a token-set similarity over matching character blocks.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

// DefaultPhrases is the built-in correction table.
var DefaultPhrases = []domain.CorrectionPhrase{
	{Canonical: "play music", Variants: []string{"play musc", "paly music", "play muzic", "play song"}},
	{Canonical: "volume up", Variants: []string{"volum up", "volume upp", "vol up"}},
	{Canonical: "volume down", Variants: []string{"volum down", "volume dwn"}},
	{Canonical: "open chrome", Variants: []string{"opne chrome", "open crome", "open chrom"}},
	{Canonical: "send email", Variants: []string{"send emial", "snd email", "male someone"}},
	{Canonical: "youtube", Variants: []string{"youbtube", "utube", "youtub"}},
	{Canonical: "take screenshot", Variants: []string{"scrrenshot", "screensh", "scren shot"}},
	{Canonical: "lock system", Variants: []string{"lok system", "lock sistem"}},
	{Canonical: "shutdown", Variants: []string{"shutdwn", "shut down"}},
	{Canonical: "wifi off", Variants: []string{"wifi of", "wif off"}},
	{Canonical: "what time", Variants: []string{"wht time", "whats time"}},
	{Canonical: "search for", Variants: []string{"serch for", "search 4"}},
	{Canonical: "brightness up", Variants: []string{"brightnes up", "brightn up"}},
	{Canonical: "pause music", Variants: []string{"paus music", "pause muzic"}},
	{Canonical: "next song", Variants: []string{"nxt song", "next track"}},
}

// commandWords change what a command means. Input that swaps one of them in
// for a phrase word is a different command, not a misspelling.
var commandWords = toSet([]string{
	"on", "off", "up", "down", "set", "start", "stop", "open", "close",
	"next", "previous", "music", "song", "movie", "video",
})

type candidate struct {
	canonical string
	phrase    string
	tokens    []string
	variant   bool
}

// Corrector maps near-miss input onto the phrase table.
type Corrector struct {
	threshold  float64
	canonicals [][]string
	candidates []candidate
	logger     ports.Logger
}

// NewCorrector compiles the phrase table. An empty table falls back to DefaultPhrases.
func NewCorrector(phrases []domain.CorrectionPhrase, threshold float64, logger ports.Logger) *Corrector {
	if len(phrases) == 0 {
		phrases = DefaultPhrases
	}
	if threshold <= 0 || threshold > 1 {
		threshold = domain.DefaultCorrectionThreshold
	}
	c := &Corrector{threshold: threshold, logger: logger}
	for _, p := range phrases {
		canonical := strings.Join(tokenize(p.Canonical), " ")
		if canonical == "" {
			continue
		}
		c.canonicals = append(c.canonicals, tokenize(canonical))
		c.candidates = append(c.candidates, candidate{canonical: canonical, phrase: canonical, tokens: tokenize(canonical)})
		for _, v := range p.Variants {
			tokens := tokenize(v)
			if len(tokens) == 0 {
				continue
			}
			c.candidates = append(c.candidates, candidate{canonical: canonical, phrase: strings.Join(tokens, " "), tokens: tokens, variant: true})
		}
	}
	return c
}

// Correct returns the canonical form of text, or text unchanged when nothing
// scores above the threshold. It never fails.
func (c *Corrector) Correct(text string) (out string) {
	out = text
	defer func() {
		if r := recover(); r != nil {
			out = text
			if c.logger != nil {
				c.logger.Warn("typo correction recovered from panic", map[string]interface{}{"panic": r})
			}
		}
	}()

	input := tokenize(text)
	if len(input) == 0 {
		return text
	}
	inputSet := toSet(input)

	// Text that already spells out a command phrase is left alone.
	for _, tokens := range c.canonicals {
		if containsAll(inputSet, tokens) {
			return text
		}
	}

	best := -1
	bestScore := 0.0
	for i, cand := range c.candidates {
		candSet := toSet(cand.tokens)
		// A fragment of a longer phrase is not a misspelling of it.
		if isStrictSuperset(candSet, inputSet) || swapsCommandWord(inputSet, candSet) {
			continue
		}
		score := TokenSetRatio(input, cand.tokens)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore <= c.threshold {
		return text
	}

	chosen := c.candidates[best]
	if chosen.variant {
		if rewritten, ok := replacePhrase(text, chosen.tokens, chosen.canonical); ok {
			return rewritten
		}
	}
	if c.logger != nil {
		c.logger.Debug("typo corrected", map[string]interface{}{"input": text, "output": chosen.canonical, "score": bestScore})
	}
	return chosen.canonical
}

// swapsCommandWord reports whether input replaces a word of the candidate with
// a known command word, as in "wifi on" against "wifi off".
func swapsCommandWord(input, cand map[string]struct{}) bool {
	missing := false
	for tok := range cand {
		if _, ok := input[tok]; !ok {
			missing = true
			break
		}
	}
	if !missing {
		return false
	}
	for tok := range input {
		if _, ok := cand[tok]; ok {
			continue
		}
		if _, ok := commandWords[tok]; ok {
			return true
		}
	}
	return false
}

// Similarity scores text against a single phrase in [0, 1].
func Similarity(a, b string) float64 {
	return TokenSetRatio(tokenize(a), tokenize(b))
}

// TokenSetRatio compares two token lists by their shared and differing tokens.
func TokenSetRatio(a, b []string) float64 {
	setA, setB := toSet(a), toSet(b)
	var inter, onlyA, onlyB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter = append(inter, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	best := ratio(combinedA, combinedB)
	if sect != "" {
		best = max(best, ratio(sect, combinedA), ratio(sect, combinedB))
	}
	return best
}

// ratio is 2*M/T over matching character blocks, so a substituted character
// costs twice as much as an inserted one.
func ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// tokenize lower-cases text and splits it on every non alphanumeric rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func containsAll(set map[string]struct{}, tokens []string) bool {
	for _, tok := range tokens {
		if _, ok := set[tok]; !ok {
			return false
		}
	}
	return true
}

func isStrictSuperset(outer, inner map[string]struct{}) bool {
	if len(outer) <= len(inner) {
		return false
	}
	for tok := range inner {
		if _, ok := outer[tok]; !ok {
			return false
		}
	}
	return true
}

// replacePhrase swaps the first contiguous run of words matching phrase for
// replacement, keeping every other word of text as typed.
func replacePhrase(text string, phrase []string, replacement string) (string, bool) {
	words := strings.Fields(text)
	norms := make([]string, len(words))
	for i, w := range words {
		norms[i] = strings.Join(tokenize(w), "")
	}
	for start := 0; start+len(phrase) <= len(words); start++ {
		matched := true
		for j, tok := range phrase {
			if norms[start+j] != tok {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		out := make([]string, 0, len(words)-len(phrase)+1)
		out = append(out, words[:start]...)
		out = append(out, replacement)
		out = append(out, words[start+len(phrase):]...)
		return strings.Join(out, " "), true
	}
	return "", false
}

var _ ports.Corrector = (*Corrector)(nil)
