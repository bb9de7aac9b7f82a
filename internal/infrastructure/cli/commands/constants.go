package commands

// CLI-specific constants
const (
	// DefaultEditorCommand is the default editor command
	DefaultEditorCommand = "vi"
	envKeyEditor         = "EDITOR"
	historyOutputWidth   = 60
)

// Error messages
const (
	ErrHistoryStoreUnavailable = "history store unavailable"
	ErrQueryRequired           = "--query required"
	ErrInvalidRetainDays       = "--days must be > 0"
	ErrInvalidLimit            = "--limit must be > 0"
	ErrClearCancelled          = "history clear cancelled"
	ErrCacheDisabled           = "answer cache disabled (cache.enabled: false)"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No history recorded yet."
	MsgNoHistoryMatches         = "No matching commands."
	MsgNoAppsIndexed            = "No applications indexed. Run 'aura apps reindex'."
	MsgNoContacts               = "Contact book is empty."
	MsgNoCachedAnswers          = "No cached answers."
)
