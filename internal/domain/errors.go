package domain

import (
	"errors"
	"fmt"
)

// DefaultMetadataError is shown when the metadata endpoint gives no reason
const DefaultMetadataError = "Failed to fetch video information"

var (
	// ErrConfiguration means the provider list is empty or malformed
	ErrConfiguration = errors.New("configuration error: no download providers configured")

	ErrEmptyURL           = errors.New("url is required")
	ErrInvalidURL         = errors.New("url must be a valid http or https address")
	ErrSubmissionIgnored  = errors.New("metadata request already in flight")
	ErrDownloadInProgress = errors.New("download already in progress")
	ErrNoPreview          = errors.New("no preview available, submit a url first")
)

// MetadataFetchError is a failed metadata request
type MetadataFetchError struct {
	Message    string
	StatusCode int // 0 for transport errors
	Err        error
}

func (e *MetadataFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *MetadataFetchError) Unwrap() error {
	return e.Err
}
