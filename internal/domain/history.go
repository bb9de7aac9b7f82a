package domain

import "time"

// HistoryEntry records one dispatched command and the reply it produced.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Mode      InputMode `json:"mode"`
	Handler   string    `json:"handler,omitempty"`
	Category  Category  `json:"category,omitempty"`
	Intent    string    `json:"intent,omitempty"`
	Status    Status    `json:"status"`
}

// CategoryCount is one row of per-category usage statistics.
type CategoryCount struct {
	Category string
	Count    int
}
