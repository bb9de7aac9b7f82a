package domain

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// GetMinConfidence returns the dispatch threshold. 0 means unset and yields
// DefaultMinConfidence; a per-command override may still pass 0.
func (c *Config) GetMinConfidence() float64 {
	if c.Preferences.MinConfidence <= 0 {
		return DefaultMinConfidence
	}
	return c.Preferences.MinConfidence
}

// GetHistorySize returns the in-memory history window size.
func (c *Config) GetHistorySize() int {
	if c.Preferences.HistorySize <= 0 {
		return DefaultHistorySize
	}
	return c.Preferences.HistorySize
}

// GetDefaultMode returns the configured input mode, text when unset or invalid.
func (c *Config) GetDefaultMode() InputMode {
	return ParseInputMode(c.Preferences.DefaultMode)
}

// GetCommandTimeout returns the per-dispatch timeout.
func (c *Config) GetCommandTimeout() time.Duration {
	if c.Preferences.TimeoutSeconds <= 0 {
		return DefaultCommandTimeout
	}
	return time.Duration(c.Preferences.TimeoutSeconds) * time.Second
}

// GetCorrectionThreshold returns the similarity a correction must exceed.
func (c *Config) GetCorrectionThreshold() float64 {
	if c.Correction.Threshold <= 0 || c.Correction.Threshold > 1 {
		return DefaultCorrectionThreshold
	}
	return c.Correction.Threshold
}

// GetPreviewLength returns how many characters a file read shows.
func (c *Config) GetPreviewLength() int {
	if c.Files.PreviewLength <= 0 {
		return DefaultPreviewLength
	}
	return c.Files.PreviewLength
}

// GetQueueSize returns the serve input queue bound.
func (c *Config) GetQueueSize() int {
	if c.Server.QueueSize <= 0 {
		return DefaultQueueSize
	}
	return c.Server.QueueSize
}

// GetSearchTimeout returns the knowledge lookup timeout.
func (c *Config) GetSearchTimeout() time.Duration {
	if c.Search.TimeoutSeconds <= 0 {
		return DefaultHTTPClientTimeout
	}
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// GetCacheTTL returns how long a cached answer stays fresh.
func (c *Config) GetCacheTTL() time.Duration {
	if c.Cache.TTLMinutes <= 0 {
		return DefaultCacheTTL
	}
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// GetCacheMaxEntries returns the maximum number of cache entries
func (c *Config) GetCacheMaxEntries() int {
	if c.Cache.MaxEntries <= 0 {
		return DefaultMaxCacheEntries
	}
	return c.Cache.MaxEntries
}

// GetSMTPPort returns the configured SMTP port.
func (c *Config) GetSMTPPort() int {
	if c.Email.SMTPPort <= 0 {
		return DefaultSMTPPort
	}
	return c.Email.SMTPPort
}

// GetSMTPPassword reads the SMTP password from the configured environment variable.
func (c *Config) GetSMTPPassword() string {
	if c.Email.PasswordEnvVar == "" {
		return ""
	}
	return os.Getenv(c.Email.PasswordEnvVar)
}

// IsEmailConfigured reports whether outgoing mail can be attempted.
func (c *Config) IsEmailConfigured() bool {
	return c.Email.SMTPServer != "" && c.Email.SenderEmail != "" && c.GetSMTPPassword() != ""
}

// GetHistoryRetentionDays returns how long durable history is kept.
func (c *Config) GetHistoryRetentionDays() int {
	if c.History.RetentionDays <= 0 {
		return DefaultHistoryRetainDays
	}
	return c.History.RetentionDays
}

// KnownAppPaths returns the configured candidate paths for an application name.
func (c *Config) KnownAppPaths(name string) ([]string, bool) {
	paths, ok := c.Apps.Known[strings.ToLower(strings.TrimSpace(name))]
	return paths, ok && len(paths) > 0
}

// ResolveAppAlias maps a spoken application name to its canonical form.
func (c *Config) ResolveAppAlias(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := c.Apps.Aliases[key]; ok && alias != "" {
		return alias
	}
	return key
}

// ValidateConsistency checks the configuration for contradictory values.
func (c *Config) ValidateConsistency() error {
	// 0 cannot be told apart from an absent key, so it selects the default.
	if c.Preferences.MinConfidence < 0 || c.Preferences.MinConfidence >= 1 {
		return fmt.Errorf("preferences.min_confidence must be in (0, 1), or 0 for the default %v; got %v",
			DefaultMinConfidence, c.Preferences.MinConfidence)
	}
	if c.Correction.Threshold < 0 || c.Correction.Threshold > 1 {
		return fmt.Errorf("correction.threshold must be in [0, 1], got %v", c.Correction.Threshold)
	}
	if c.Preferences.HistorySize < 0 {
		return fmt.Errorf("preferences.history_size must not be negative")
	}
	switch InputMode(c.Preferences.DefaultMode) {
	case "", ModeText, ModeVoice:
	default:
		return fmt.Errorf("preferences.default_mode must be %q or %q, got %q", ModeText, ModeVoice, c.Preferences.DefaultMode)
	}
	seen := make(map[string]struct{}, len(c.Correction.Phrases))
	for _, phrase := range c.Correction.Phrases {
		key := strings.ToLower(strings.TrimSpace(phrase.Canonical))
		if key == "" {
			return fmt.Errorf("correction phrase with empty canonical form")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate correction phrase %q", phrase.Canonical)
		}
		seen[key] = struct{}{}
	}
	if c.Email.SMTPServer != "" && c.Email.SenderEmail == "" {
		return fmt.Errorf("email.sender_email is required when email.smtp_server is set")
	}
	return nil
}
