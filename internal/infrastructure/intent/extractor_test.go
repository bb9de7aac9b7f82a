package intent

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/doeshing/aura-go/internal/domain"
)

func TestExtractor_Classify(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		input string
		want  domain.IntentLabel
	}{
		{input: "play some music", want: domain.IntentMusic},
		{input: "YouTube cat videos", want: domain.IntentVideo},
		{input: "email to sinchana", want: domain.IntentEmail},
		{input: "search for golang", want: domain.IntentSearch},
		{input: "lock the computer", want: domain.IntentSystem},
		{input: "take a screenshot", want: domain.IntentScreenshot},
		{input: "open chrome", want: domain.IntentApp},
		{input: "create file notes.txt", want: domain.IntentFile},
		{input: "what day is it", want: domain.IntentTime},
		{input: "weather in paris", want: domain.IntentWeather},
		{input: "help", want: domain.IntentHelp},
		{input: "hello there", want: domain.IntentGeneral},
		{input: "", want: domain.IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := e.Classify(tt.input); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractor_ClassifyFirstGroupWins(t *testing.T) {
	e := NewExtractor()
	// "play" belongs to music, which is checked before video.
	if got := e.Classify("play video"); got != domain.IntentMusic {
		t.Errorf("Classify(play video) = %q, want music", got)
	}
}

func TestExtractor_ExtractEntities(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name  string
		input string
		want  domain.Entities
	}{
		{
			name:  "email address and query",
			input: "send email to bob@example.com",
			want:  domain.Entities{Email: "bob@example.com", Query: "bob@example.com"},
		},
		{
			name:  "app and numbers",
			input: "open chrome 2 times in 10 minutes",
			want:  domain.Entities{App: "chrome", Numbers: []int{2, 10}, Query: "chrome 2 times in 10 minutes"},
		},
		{
			name:  "website",
			input: "open github",
			want:  domain.Entities{Website: "github", Query: "github"},
		},
		{
			name:  "quoted text",
			input: `search for "go generics" please`,
			want:  domain.Entities{Query: `"go generics"`, Quoted: []string{"go generics"}},
		},
		{
			name:  "short residual query dropped",
			input: "open it",
			want:  domain.Entities{},
		},
		{
			name:  "empty",
			input: "",
			want:  domain.Entities{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ExtractEntities(tt.input)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ExtractEntities(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestEntitiesHelpers(t *testing.T) {
	entities := NewExtractor().ExtractEntities("set timer for 15 minutes")
	if n, ok := entities.FirstNumber(); !ok || n != 15 {
		t.Errorf("FirstNumber() = %d, %v", n, ok)
	}
	if entities.HasEmail() || entities.HasApp() {
		t.Errorf("unexpected entities %+v", entities)
	}
	if !entities.HasQuery() {
		t.Error("expected residual query")
	}
}
