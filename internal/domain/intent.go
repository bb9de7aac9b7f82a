package domain

// IntentLabel is the coarse classification of an utterance.
type IntentLabel string

const (
	IntentMusic      IntentLabel = "music"
	IntentVideo      IntentLabel = "video"
	IntentEmail      IntentLabel = "email"
	IntentSearch     IntentLabel = "search"
	IntentSystem     IntentLabel = "system"
	IntentScreenshot IntentLabel = "screenshot"
	IntentApp        IntentLabel = "app"
	IntentFile       IntentLabel = "file"
	IntentTime       IntentLabel = "time"
	IntentWeather    IntentLabel = "weather"
	IntentHelp       IntentLabel = "help"
	IntentGeneral    IntentLabel = "general"
)

// Entities holds the structured fields pulled out of an utterance.
// Zero values mean the field was not present.
type Entities struct {
	Email   string
	App     string
	Website string
	Numbers []int
	Query   string
	Quoted  []string
}

// HasEmail reports whether an email address was found.
func (e Entities) HasEmail() bool { return e.Email != "" }

// HasApp reports whether a known application name was found.
func (e Entities) HasApp() bool { return e.App != "" }

// HasQuery reports whether a residual free-text query remained.
func (e Entities) HasQuery() bool { return e.Query != "" }

// FirstNumber returns the first integer in the utterance.
func (e Entities) FirstNumber() (int, bool) {
	if len(e.Numbers) == 0 {
		return 0, false
	}
	return e.Numbers[0], true
}
