package domain

import "io"

// OutcomeKind classifies the result of one download attempt sequence
type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeMissingOutput  OutcomeKind = "missing_output"
	OutcomeAuthRequired   OutcomeKind = "auth_required"
	OutcomeGenericFailure OutcomeKind = "generic_failure"
)

// User-facing notices for each terminal outcome
const (
	NoticeSuccess        = "Download complete."
	NoticeMissingOutput  = "The server could not find the media output. Please re-upload the media and try again."
	NoticeAuthRequired   = "The platform requires sign-in to confirm you're not a bot. Refresh the backend's cookies for this platform, then retry."
	NoticeGenericFailure = "Download failed. Please try again."
)

// DownloadOutcome is the terminal result of resolving a download across providers
type DownloadOutcome struct {
	Kind     OutcomeKind `json:"kind"`
	Provider string      `json:"provider,omitempty"`
	Message  string      `json:"message,omitempty"`

	// Set for OutcomeSuccess only. The caller owns Stream and must close it.
	Stream      io.ReadCloser `json:"-"`
	TotalBytes  int64         `json:"total_bytes,omitempty"` // <= 0 when unknown
	ContentType string        `json:"content_type,omitempty"`
	Filename    string        `json:"filename,omitempty"`

	// Filled in by the session once the stream has been saved
	FilePath      string `json:"file_path,omitempty"`
	BytesReceived int64  `json:"bytes_received,omitempty"`
}

// SuccessOutcome wraps a response stream that is ready to be consumed
func SuccessOutcome(stream io.ReadCloser, totalBytes int64) DownloadOutcome {
	if totalBytes < 0 {
		totalBytes = 0
	}
	return DownloadOutcome{Kind: OutcomeSuccess, Stream: stream, TotalBytes: totalBytes}
}

// MissingOutputOutcome reports that the backend has no output for the download
func MissingOutputOutcome() DownloadOutcome {
	return DownloadOutcome{Kind: OutcomeMissingOutput}
}

// AuthRequiredOutcome reports a sign-in or bot-check wall
func AuthRequiredOutcome(message string) DownloadOutcome {
	return DownloadOutcome{Kind: OutcomeAuthRequired, Message: message}
}

// GenericFailureOutcome reports any other failure
func GenericFailureOutcome(message string) DownloadOutcome {
	return DownloadOutcome{Kind: OutcomeGenericFailure, Message: message}
}

// IsResolved reports whether the fallback walk must stop at this outcome
func (o DownloadOutcome) IsResolved() bool {
	return o.Kind == OutcomeSuccess || o.Kind == OutcomeMissingOutput || o.Kind == OutcomeAuthRequired
}

// Notice returns the text shown to the user for this outcome
func (o DownloadOutcome) Notice() string {
	switch o.Kind {
	case OutcomeSuccess:
		return NoticeSuccess
	case OutcomeMissingOutput:
		return NoticeMissingOutput
	case OutcomeAuthRequired:
		return NoticeAuthRequired
	default:
		return NoticeGenericFailure
	}
}
