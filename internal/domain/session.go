package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionState represents where a download session is in its lifecycle
type SessionState string

const (
	StateIdle             SessionState = "idle"
	StateFetchingMetadata SessionState = "fetching_metadata"
	StatePreviewReady     SessionState = "preview_ready"
	StateDownloading      SessionState = "downloading"
	StateTerminal         SessionState = "terminal"
)

// ProgressMode tells whether the percent is measured or simulated
type ProgressMode string

const (
	ProgressDeterminate   ProgressMode = "determinate"
	ProgressIndeterminate ProgressMode = "indeterminate"
)

// ProgressState is the progress of the active download attempt
type ProgressState struct {
	Mode    ProgressMode `json:"mode"`
	Percent int          `json:"percent"`
}

// InitialProgress is the state every attempt starts from
func InitialProgress() ProgressState {
	return ProgressState{Mode: ProgressDeterminate, Percent: 0}
}

// EventType categorises session notifications
type EventType string

const (
	EventState    EventType = "state"
	EventProgress EventType = "progress"
	EventOutcome  EventType = "outcome"
	EventError    EventType = "error"
)

// SessionEvent is one notification published to the presentation layer
type SessionEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	State     SessionState   `json:"state"`
	Progress  *ProgressState `json:"progress,omitempty"`
	Outcome   OutcomeKind    `json:"outcome,omitempty"`
	Notice    string         `json:"notice,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewSessionEvent creates an event stamped with a fresh id and the current time
func NewSessionEvent(eventType EventType, state SessionState) SessionEvent {
	return SessionEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		State:     state,
		Timestamp: time.Now(),
	}
}

// SessionSnapshot is a read-only view of a session
type SessionSnapshot struct {
	ID              string         `json:"id"`
	State           SessionState   `json:"state"`
	Request         *MediaRequest  `json:"request,omitempty"`
	Metadata        *MediaMetadata `json:"metadata,omitempty"`
	Duration        string         `json:"duration,omitempty"`
	Progress        ProgressState  `json:"progress"`
	DownloadEnabled bool           `json:"download_enabled"`
	LastNotice      string         `json:"last_notice,omitempty"`
	LastError       string         `json:"last_error,omitempty"`
}
