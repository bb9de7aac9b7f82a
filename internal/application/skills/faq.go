package skills

import (
	"strings"
	"time"
	"unicode"

	"github.com/doeshing/aura-go/internal/domain"
)

type faqEntry struct {
	keys   [][]string
	answer func(now time.Time) string
}

// FAQ answers canned questions. Keys match whole words, never word fragments.
type FAQ struct {
	now     func() time.Time
	entries []faqEntry
}

func fixed(answer string) func(time.Time) string {
	return func(time.Time) string { return answer }
}

// NewFAQ builds the canned answer table.
func NewFAQ(now func() time.Time) *FAQ {
	greeting := func(t time.Time) string { return "Hello! Current time: " + t.Format(domain.ClockFormat) }
	farewell := fixed("Goodbye! Have a great day.")
	gan := fixed("GAN = Generative Adversarial Network. Two neural networks compete: a generator creates fake data and a discriminator detects fakes.")

	table := []struct {
		keys   []string
		answer func(time.Time) string
	}{
		{keys: []string{"gan", "generative adversarial"}, answer: gan},
		{keys: []string{"python"}, answer: fixed("Python: high-level language for web development, data science, ML and automation. Simple syntax with vast libraries such as NumPy, Pandas and TensorFlow.")},
		{keys: []string{"acid"}, answer: fixed("ACID: Atomicity, Consistency, Isolation, Durability. Guarantees for reliable database transactions.")},
		{keys: []string{"decision tree"}, answer: fixed("Decision Tree: ML algorithm using a tree-like model of decisions. It splits data on feature values to classify or predict.")},
		{keys: []string{"hello", "hi", "hey"}, answer: greeting},
		{keys: []string{"thank", "thanks", "thank you"}, answer: fixed("You're welcome! Happy to help anytime.")},
		{keys: []string{"bye", "goodbye"}, answer: farewell},
		{keys: []string{"time", "current time", "what time"}, answer: func(t time.Time) string { return "Current time: " + t.Format(domain.ClockFormat) }},
		{keys: []string{"date", "today's date", "what day"}, answer: func(t time.Time) string { return "Today: " + t.Format(domain.DateFormat) }},
		{keys: []string{"vscode", "vs code"}, answer: fixed("VS Code: lightweight code editor by Microsoft. Supports debugging, Git and extensions for 100+ languages.")},
	}

	f := &FAQ{now: now}
	for _, row := range table {
		entry := faqEntry{answer: row.answer}
		for _, key := range row.keys {
			entry.keys = append(entry.keys, faqWords(key))
		}
		f.entries = append(f.entries, entry)
	}
	return f
}

// Answer returns the canned answer for text, if any key appears in it as whole words.
func (f *FAQ) Answer(text string) (string, bool) {
	words := faqWords(text)
	if len(words) == 0 {
		return "", false
	}
	for _, entry := range f.entries {
		for _, key := range entry.keys {
			if containsPhrase(words, key) {
				return entry.answer(f.now()), true
			}
		}
	}
	return "", false
}

func faqWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j := range phrase {
			if words[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
