package domain

import "time"

// InputMode records how a command reached the assistant.
type InputMode string

const (
	ModeText  InputMode = "text"
	ModeVoice InputMode = "voice"
)

// ParseInputMode maps free-form flag values onto a known mode, defaulting to text.
func ParseInputMode(value string) InputMode {
	if InputMode(value) == ModeVoice {
		return ModeVoice
	}
	return ModeText
}

// Command is a single user utterance as received at the system boundary.
type Command struct {
	ID         string
	Raw        string
	Corrected  string
	Mode       InputMode
	ReceivedAt time.Time
}

// Status enumerates handler outcomes.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
)

// Result is the user-facing outcome of a dispatched command.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Success builds a success result.
func Success(message string) Result {
	return Result{Status: StatusSuccess, Message: message}
}

// Failure builds an error result.
func Failure(message string) Result {
	return Result{Status: StatusError, Message: message}
}

// Warning builds a warning result.
func Warning(message string) Result {
	return Result{Status: StatusWarning, Message: message}
}

// Normalize guarantees a non-empty message for success and error results.
func (r Result) Normalize() Result {
	if r.Status == "" {
		r.Status = StatusSuccess
	}
	if r.Message != "" {
		return r
	}
	switch r.Status {
	case StatusSuccess:
		r.Message = "Done."
	case StatusError:
		r.Message = "Something went wrong."
	}
	return r
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}
