package domain

import (
	"context"
	"io"
)

// MetadataClient fetches preview metadata for a request
type MetadataClient interface {
	FetchMetadata(ctx context.Context, req MediaRequest) (*MediaMetadata, error)
}

// ProviderClient performs one provider attempt.
// A non-nil error is a transport failure; HTTP-level failures come back as outcomes.
type ProviderClient interface {
	Attempt(ctx context.Context, provider ProviderEndpoint, req MediaRequest, downloadID string) (DownloadOutcome, error)
}

// MediaSink stores a downloaded payload
type MediaSink interface {
	Open(meta *MediaMetadata, outcome DownloadOutcome) (MediaWriter, error)
}

// MediaWriter receives the payload. Exactly one of Commit or Abort is called.
type MediaWriter interface {
	io.Writer
	Commit() (string, error)
	Abort() error
}
