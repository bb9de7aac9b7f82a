package fuzzy

import (
	"math"
	"testing"

	"github.com/doeshing/aura-go/internal/domain"
)

func TestCorrector_Correct(t *testing.T) {
	c := NewCorrector(nil, 0.8, nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trailing typo", input: "open chromee", want: "open chrome"},
		{name: "transposed letters", input: "opne chrome", want: "open chrome"},
		{name: "known variant", input: "shut down", want: "shutdown"},
		{name: "variant inside longer utterance", input: "serch for cats", want: "search for cats"},
		{name: "canonical phrase untouched", input: "open chrome", want: "open chrome"},
		{name: "canonical inside utterance untouched", input: "what is the time", want: "what is the time"},
		{name: "fragment is not corrected", input: "open", want: "open"},
		{name: "unrelated text untouched", input: "set timer for 5 minutes", want: "set timer for 5 minutes"},
		{name: "gibberish untouched", input: "xyzzy plugh", want: "xyzzy plugh"},
		{name: "empty input", input: "   ", want: "   "},
		{name: "opposite toggle untouched", input: "wifi on", want: "wifi on"},
		{name: "different media word untouched", input: "play movie", want: "play movie"},
		{name: "different volume verb untouched", input: "volume set", want: "volume set"},
		{name: "close is not open", input: "close chrome", want: "close chrome"},
		{name: "typo next to command word", input: "play musc", want: "play music"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Correct(tt.input); got != tt.want {
				t.Errorf("Correct(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCorrector_Idempotent(t *testing.T) {
	c := NewCorrector(nil, 0.8, nil)
	inputs := []string{"open chromee", "serch for cats", "paly music", "lok system", "call amma", "xyzzy", "wif off now"}

	for _, input := range inputs {
		once := c.Correct(input)
		twice := c.Correct(once)
		if once != twice {
			t.Errorf("Correct not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestCorrector_CustomTableAndThreshold(t *testing.T) {
	phrases := []domain.CorrectionPhrase{{Canonical: "read screen", Variants: []string{"red screen"}}}

	strict := NewCorrector(phrases, 0.99, nil)
	if got := strict.Correct("read scren"); got != "read scren" {
		t.Errorf("strict corrector rewrote input to %q", got)
	}

	loose := NewCorrector(phrases, 0.8, nil)
	if got := loose.Correct("read scren"); got != "read screen" {
		t.Errorf("loose corrector = %q, want read screen", got)
	}
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{a: "open chrome", b: "chrome open", want: 1},
		{a: "open chromee", b: "open chrome", want: 22.0 / 23.0},
		{a: "", b: "", want: 1},
		{a: "abc", b: "xyz", want: 0},
		{a: "play movie", b: "play music", want: 0.7},
		{a: "wifi on", b: "wifi off", want: 0.8},
	}

	for _, tt := range tests {
		got := Similarity(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRatioBounds(t *testing.T) {
	pairs := [][2]string{{"play music", "paly musc"}, {"a", "bbbbbbbb"}, {"volume up", "volume up"}}
	for _, p := range pairs {
		score := Similarity(p[0], p[1])
		if score < 0 || score > 1 {
			t.Errorf("Similarity(%q, %q) = %v out of range", p[0], p[1], score)
		}
	}
}
