package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Dispatch constants
const (
	// DefaultMinConfidence is the threshold a handler score must exceed
	DefaultMinConfidence = 0.2
	// FallbackConfidence is the fixed score of a handler without keywords
	FallbackConfidence = 0.25
	// DefaultHistorySize bounds the in-memory history window
	DefaultHistorySize = 50
	// DefaultCorrectionThreshold is the similarity a typo correction must exceed
	DefaultCorrectionThreshold = 0.8
	// MaxErrorDetail truncates handler failure descriptions
	MaxErrorDetail = 80
)

// Timeout and duration constants
const (
	// DefaultCommandTimeout is the default timeout for a single dispatch
	DefaultCommandTimeout = 30 * time.Second
	// DefaultHTTPClientTimeout is the timeout for knowledge lookups
	DefaultHTTPClientTimeout = 8 * time.Second
	// DefaultWatchDebounce coalesces bursts of file events
	DefaultWatchDebounce = 300 * time.Millisecond
	// DefaultCacheTTL is how long a knowledge answer is reused
	DefaultCacheTTL = 24 * time.Hour
)

// Limit constants
const (
	// DefaultPreviewLength is the number of characters shown when reading a file
	DefaultPreviewLength = 300
	// DefaultQueueSize bounds the serve input queue
	DefaultQueueSize = 16
	// DefaultSMTPPort is the submission port used with STARTTLS
	DefaultSMTPPort = 587
	// DefaultServeAddr keeps the control panel on loopback
	DefaultServeAddr = "127.0.0.1:8765"
	// DefaultMaxCacheEntries is the maximum number of cache entries
	DefaultMaxCacheEntries = 100
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// DefaultHistorySearchLimit is the default number of search results to return
	DefaultHistorySearchLimit = 50
	// DefaultHistoryRetainDays is the default number of days to retain history
	DefaultHistoryRetainDays = 30
)

// Time formats
const (
	// ClockFormat renders wall-clock times in replies
	ClockFormat = "03:04 PM"
	// DateFormat renders calendar dates in replies
	DateFormat = "January 02, 2006"
)
