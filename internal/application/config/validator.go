package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/doeshing/aura-go/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	if err := validateFiles(cfg.Files); err != nil {
		return err
	}
	if err := validateEmail(cfg.Email); err != nil {
		return err
	}
	if err := validateSearch(cfg.Search); err != nil {
		return err
	}
	if err := validateCache(cfg.Cache); err != nil {
		return err
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	if err := validateServer(cfg.Server); err != nil {
		return err
	}
	return nil
}

func validateFiles(files domain.FileSettings) error {
	if files.PreviewLength < 0 {
		return fmt.Errorf("files.preview_length must be >= 0")
	}
	return nil
}

func validateEmail(email domain.EmailSettings) error {
	if email.SMTPPort < 0 || email.SMTPPort > 65535 {
		return fmt.Errorf("email.smtp_port out of range: %d", email.SMTPPort)
	}
	if email.SenderEmail != "" && !strings.Contains(email.SenderEmail, "@") {
		return fmt.Errorf("email.sender_email is not an address: %s", email.SenderEmail)
	}
	return nil
}

func validateSearch(search domain.SearchSettings) error {
	templates := map[string]string{
		"search.google_url":  search.GoogleURL,
		"search.youtube_url": search.YouTubeURL,
		"search.weather_url": search.WeatherURL,
	}
	for key, value := range templates {
		if value == "" {
			continue
		}
		if !strings.Contains(value, "%s") {
			return fmt.Errorf("%s must contain a %%s placeholder", key)
		}
	}
	for key, value := range map[string]string{
		"search.news_url":           search.NewsURL,
		"search.knowledge_endpoint": search.KnowledgeEndpoint,
	} {
		if value == "" {
			continue
		}
		if u, err := url.Parse(value); err != nil || u.Scheme == "" {
			return fmt.Errorf("%s is not an absolute URL: %s", key, value)
		}
	}
	if search.TimeoutSeconds < 0 {
		return fmt.Errorf("search.timeout must be >= 0")
	}
	return nil
}

func validateCache(cache domain.CacheSettings) error {
	if cache.TTLMinutes < 0 {
		return fmt.Errorf("cache.ttl_minutes must be >= 0")
	}
	if cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0")
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	if history.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days must be >= 0")
	}
	if history.Enabled && history.Path == "" {
		return fmt.Errorf("history.path must be set when history is enabled")
	}
	return nil
}

func validateServer(server domain.ServerSettings) error {
	if server.QueueSize < 0 {
		return fmt.Errorf("server.queue_size must be >= 0")
	}
	if server.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(server.Addr); err != nil {
		return fmt.Errorf("server.addr invalid: %w", err)
	}
	return nil
}
