package domain

// Config mirrors ~/.aura/config.yaml.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	Preferences         Preferences        `yaml:"preferences"`
	Correction          CorrectionSettings `yaml:"correction"`
	Handlers            HandlerSettings    `yaml:"handlers"`
	Contacts            ContactSettings    `yaml:"contacts"`
	Apps                AppSettings        `yaml:"apps"`
	Files               FileSettings       `yaml:"files"`
	Email               EmailSettings      `yaml:"email"`
	Search              SearchSettings     `yaml:"search"`
	Cache               CacheSettings      `yaml:"cache"`
	History             HistorySettings    `yaml:"history"`
	Speech              SpeechSettings     `yaml:"speech"`
	Server              ServerSettings     `yaml:"server"`
}

// Preferences captures dispatch tunables.
type Preferences struct {
	MinConfidence  float64 `yaml:"min_confidence"`
	HistorySize    int     `yaml:"history_size"`
	DefaultMode    string  `yaml:"default_mode"`
	TimeoutSeconds int     `yaml:"timeout"`
}

// CorrectionSettings configures the typo corrector.
type CorrectionSettings struct {
	Enabled   bool               `yaml:"enabled"`
	Threshold float64            `yaml:"threshold"`
	Phrases   []CorrectionPhrase `yaml:"phrases,omitempty"`
}

// CorrectionPhrase maps one canonical phrase to its known misspellings and synonyms.
type CorrectionPhrase struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// HandlerSettings points at an optional handler table overriding the embedded one.
type HandlerSettings struct {
	File string `yaml:"file,omitempty"`
}

// ContactSettings locates the address book.
type ContactSettings struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}

// AppSettings configures application launching.
type AppSettings struct {
	Known      map[string][]string `yaml:"known,omitempty"`
	Aliases    map[string]string   `yaml:"aliases,omitempty"`
	IndexCache string              `yaml:"index_cache"`
	IndexDirs  []string            `yaml:"index_dirs,omitempty"`
}

// FileSettings scopes the file handlers.
type FileSettings struct {
	BaseDir       string `yaml:"base_dir"`
	PreviewLength int    `yaml:"preview_length"`
}

// EmailSettings configures outgoing mail. The password is read from PasswordEnvVar.
type EmailSettings struct {
	SMTPServer     string `yaml:"smtp_server"`
	SMTPPort       int    `yaml:"smtp_port"`
	SenderEmail    string `yaml:"sender_email"`
	SenderName     string `yaml:"sender_name"`
	PasswordEnvVar string `yaml:"password_env_var"`
}

// SearchSettings holds the URL templates used by the web handlers.
type SearchSettings struct {
	GoogleURL         string `yaml:"google_url"`
	YouTubeURL        string `yaml:"youtube_url"`
	WeatherURL        string `yaml:"weather_url"`
	NewsURL           string `yaml:"news_url"`
	DefaultCity       string `yaml:"default_city"`
	KnowledgeEndpoint string `yaml:"knowledge_endpoint"`
	TimeoutSeconds    int    `yaml:"timeout"`
}

// CacheSettings controls the on-disk cache of knowledge answers.
type CacheSettings struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	MaxEntries int    `yaml:"max_entries"`
}

// HistorySettings controls the durable command log.
type HistorySettings struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// SpeechSettings configures the text-to-speech announcer.
type SpeechSettings struct {
	Enabled bool   `yaml:"enabled"`
	Command string `yaml:"command"`
	Voice   int    `yaml:"voice"`
}

// ServerSettings configures `aura serve`.
type ServerSettings struct {
	Addr      string `yaml:"addr"`
	QueueSize int    `yaml:"queue_size"`
}
