package config

import (
	"testing"

	"github.com/doeshing/aura-go/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{MinConfidence: 0.2, HistorySize: 50, DefaultMode: "text"},
		Correction:  domain.CorrectionSettings{Enabled: true, Threshold: 0.8},
		Files:       domain.FileSettings{BaseDir: "/tmp/docs", PreviewLength: 300},
		Email:       domain.EmailSettings{SMTPPort: 587},
		Search: domain.SearchSettings{
			GoogleURL:         "https://www.google.com/search?q=%s",
			KnowledgeEndpoint: "https://en.wikipedia.org/api/rest_v1/page/summary/",
		},
		History: domain.HistorySettings{Enabled: true, Path: "/tmp/history.db", RetentionDays: 30},
		Server:  domain.ServerSettings{Addr: "127.0.0.1:8765", QueueSize: 16},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*domain.Config) {}},
		{name: "bad min confidence", mutate: func(c *domain.Config) { c.Preferences.MinConfidence = 1.5 }, wantErr: true},
		{name: "negative min confidence", mutate: func(c *domain.Config) { c.Preferences.MinConfidence = -0.1 }, wantErr: true},
		{name: "zero min confidence selects default", mutate: func(c *domain.Config) { c.Preferences.MinConfidence = 0 }},
		{name: "bad smtp port", mutate: func(c *domain.Config) { c.Email.SMTPPort = 70000 }, wantErr: true},
		{name: "sender without at", mutate: func(c *domain.Config) { c.Email.SenderEmail = "nobody" }, wantErr: true},
		{name: "google url without placeholder", mutate: func(c *domain.Config) { c.Search.GoogleURL = "https://google.com" }, wantErr: true},
		{name: "relative knowledge endpoint", mutate: func(c *domain.Config) { c.Search.KnowledgeEndpoint = "wiki/summary" }, wantErr: true},
		{name: "history enabled without path", mutate: func(c *domain.Config) { c.History.Path = "" }, wantErr: true},
		{name: "history disabled without path", mutate: func(c *domain.Config) { c.History.Enabled = false; c.History.Path = "" }},
		{name: "bad server addr", mutate: func(c *domain.Config) { c.Server.Addr = "8765" }, wantErr: true},
		{name: "negative preview", mutate: func(c *domain.Config) { c.Files.PreviewLength = -1 }, wantErr: true},
		{name: "negative cache ttl", mutate: func(c *domain.Config) { c.Cache.TTLMinutes = -5 }, wantErr: true},
		{name: "zero cache limits use defaults", mutate: func(c *domain.Config) { c.Cache = domain.CacheSettings{Enabled: true} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
