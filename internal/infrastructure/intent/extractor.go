// Package intent classifies utterances into coarse intent labels and pulls
// entities (emails, apps, numbers, quoted text) out of them.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

type intentRule struct {
	label   domain.IntentLabel
	pattern string
}

// Rules are evaluated in order; the first match wins.
var intentRules = []intentRule{
	{label: domain.IntentMusic, pattern: `(play|pause|stop|music|song|spotify|next|skip|previous|back)`},
	{label: domain.IntentVideo, pattern: `(youtube|yt\b|watch|video|vedio|utube)`},
	{label: domain.IntentEmail, pattern: `(email|mail|gmail|send mail|send an email)`},
	{label: domain.IntentSearch, pattern: `(search|google|find|what is|tell me about|how to)`},
	{label: domain.IntentSystem, pattern: `(lock|shutdown|restart|sleep|volume|brightness|wifi|bluetooth)`},
	{label: domain.IntentScreenshot, pattern: `(screenshot|capture screen|screen shot)`},
	{label: domain.IntentApp, pattern: `(open|launch|start|run)`},
	{label: domain.IntentFile, pattern: `(file|folder|create file|delete file|document)`},
	{label: domain.IntentTime, pattern: `(time|current time|what time|date|what day)`},
	{label: domain.IntentWeather, pattern: `(weather|temperature|forecast)`},
	{label: domain.IntentHelp, pattern: `(help|what can you do|commands)`},
}

// KnownApps is the application vocabulary recognised as an entity.
var KnownApps = []string{
	"chrome", "firefox", "notepad", "word", "excel", "powerpoint", "spotify",
	"discord", "telegram", "vlc", "calculator", "paint", "edge", "vscode",
}

// KnownWebsites is the website vocabulary recognised as an entity.
var KnownWebsites = []string{
	"facebook", "twitter", "instagram", "linkedin", "reddit", "stackoverflow", "github",
	"netflix", "amazon", "ebay", "youtube", "gmail", "google", "wikipedia", "whatsapp",
}

// stopPhrases are removed, in order, when deriving the residual query.
var stopPhrases = []string{
	"search for", "find", "google", "youtube", "watch", "send email to", "mail to",
	"email", "compose", "open", "launch", "start", "run", "play", "what is",
	"tell me about", "how to", "please", "can you", "could you",
}

var (
	emailPattern  = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	numberPattern = regexp.MustCompile(`\b\d+\b`)
	quotedPattern = regexp.MustCompile(`"([^"]*)"`)
)

type compiledRule struct {
	re    *regexp.Regexp
	label domain.IntentLabel
}

// Extractor implements ports.IntentExtractor with compiled regex tables.
type Extractor struct {
	rules []compiledRule
}

// NewExtractor compiles the rule table once.
func NewExtractor() *Extractor {
	compiled := make([]compiledRule, 0, len(intentRules))
	for _, rule := range intentRules {
		compiled = append(compiled, compiledRule{re: regexp.MustCompile(rule.pattern), label: rule.label})
	}
	return &Extractor{rules: compiled}
}

// Classify returns the first matching intent label, or general.
func (e *Extractor) Classify(text string) domain.IntentLabel {
	lower := strings.ToLower(text)
	for _, rule := range e.rules {
		if rule.re.MatchString(lower) {
			return rule.label
		}
	}
	return domain.IntentGeneral
}

// ExtractEntities runs every extraction independently.
func (e *Extractor) ExtractEntities(text string) domain.Entities {
	lower := strings.ToLower(text)
	var entities domain.Entities

	entities.Email = emailPattern.FindString(text)
	entities.App = firstContained(lower, KnownApps)
	entities.Website = firstContained(lower, KnownWebsites)

	for _, raw := range numberPattern.FindAllString(text, -1) {
		if n, err := strconv.Atoi(raw); err == nil {
			entities.Numbers = append(entities.Numbers, n)
		}
	}

	query := lower
	for _, phrase := range stopPhrases {
		query = strings.ReplaceAll(query, phrase, "")
	}
	query = strings.Join(strings.Fields(query), " ")
	if len(query) > 2 {
		entities.Query = query
	}

	for _, m := range quotedPattern.FindAllStringSubmatch(text, -1) {
		entities.Quoted = append(entities.Quoted, m[1])
	}
	return entities
}

func firstContained(text string, vocabulary []string) string {
	for _, word := range vocabulary {
		if strings.Contains(text, word) {
			return word
		}
	}
	return ""
}

var _ ports.IntentExtractor = (*Extractor)(nil)
