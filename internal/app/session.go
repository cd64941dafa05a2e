package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/yourusername/mediafetch-go/internal/domain"
	"go.uber.org/zap"
)

// Notifier is told about every terminal download outcome
type Notifier interface {
	NotifyOutcome(meta *domain.MediaMetadata, outcome domain.DownloadOutcome)
}

// SessionDeps holds the collaborators of a DownloadSession
type SessionDeps struct {
	Metadata  domain.MetadataClient
	Providers domain.ProviderClient
	Endpoints []domain.ProviderEndpoint
	Sink      domain.MediaSink // nil discards the payload
	Notifier  Notifier         // optional
	Progress  domain.ProgressConfig
	ChunkSize int
	Logger    *zap.Logger
}

// DownloadSession drives one preview from submission through download
type DownloadSession struct {
	id        string
	metadata  domain.MetadataClient
	resolver  *Resolver
	endpoints []domain.ProviderEndpoint
	sink      domain.MediaSink
	notifier  Notifier
	tracker   *ProgressTracker
	chunkSize int
	hub       *EventHub
	logger    *zap.Logger

	mu              sync.Mutex
	state           domain.SessionState
	request         *domain.MediaRequest
	meta            *domain.MediaMetadata
	progress        domain.ProgressState
	downloadEnabled bool
	lastNotice      string
	lastError       string
}

// NewDownloadSession creates an idle session
func NewDownloadSession(deps SessionDeps) (*DownloadSession, error) {
	if len(deps.Endpoints) == 0 {
		return nil, domain.ErrConfiguration
	}
	for _, endpoint := range deps.Endpoints {
		if endpoint.Name == "" || endpoint.URLTemplate == nil {
			return nil, fmt.Errorf("%w: provider %q has no url template", domain.ErrConfiguration, endpoint.Name)
		}
	}
	if deps.Metadata == nil || deps.Providers == nil {
		return nil, fmt.Errorf("%w: metadata and provider clients are required", domain.ErrConfiguration)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sink := deps.Sink
	if sink == nil {
		sink = discardSink{}
	}
	chunkSize := deps.ChunkSize
	if chunkSize <= 0 {
		chunkSize = domain.DefaultConfig().Download.ChunkSize
	}

	s := &DownloadSession{
		id:        uuid.New().String(),
		metadata:  deps.Metadata,
		resolver:  NewResolver(deps.Providers, logger),
		endpoints: append([]domain.ProviderEndpoint(nil), deps.Endpoints...),
		sink:      sink,
		notifier:  deps.Notifier,
		chunkSize: chunkSize,
		hub:       NewEventHub(defaultEventBuffer, logger),
		logger:    logger.With(zap.String("component", "session")),
		state:     domain.StateIdle,
		progress:  domain.InitialProgress(),
	}
	s.tracker = NewProgressTracker(deps.Progress, s.onProgress)

	return s, nil
}

// ID returns the session id
func (s *DownloadSession) ID() string {
	return s.id
}

// Subscribe returns a stream of session events and its cancel func
func (s *DownloadSession) Subscribe() (<-chan domain.SessionEvent, func()) {
	return s.hub.Subscribe()
}

// Close releases all event subscribers
func (s *DownloadSession) Close() {
	s.hub.Close()
}

// Snapshot returns the current view of the session
func (s *DownloadSession) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.SessionSnapshot{
		ID:              s.id,
		State:           s.state,
		Progress:        s.progress,
		DownloadEnabled: s.downloadEnabled,
		LastNotice:      s.lastNotice,
		LastError:       s.lastError,
	}
	if s.request != nil {
		req := *s.request
		snap.Request = &req
	}
	if s.meta != nil {
		meta := *s.meta
		snap.Metadata = &meta
		snap.Duration = meta.FormatDuration()
	}
	return snap
}

// Submit fetches metadata for rawURL and moves the session to PreviewReady.
// Failures return a *domain.MetadataFetchError and leave the session Idle.
func (s *DownloadSession) Submit(ctx context.Context, rawURL string) (*domain.MediaMetadata, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, domain.ErrEmptyURL
	}
	if err := validate.Var(trimmed, "required,url,media_url"); err != nil {
		return nil, domain.ErrInvalidURL
	}

	s.mu.Lock()
	switch s.state {
	case domain.StateFetchingMetadata:
		s.mu.Unlock()
		return nil, domain.ErrSubmissionIgnored
	case domain.StateDownloading, domain.StateTerminal:
		s.mu.Unlock()
		return nil, domain.ErrDownloadInProgress
	}
	s.state = domain.StateFetchingMetadata
	s.request = nil
	s.meta = nil
	s.downloadEnabled = false
	s.lastError = ""
	s.lastNotice = ""
	s.mu.Unlock()

	s.publishState(domain.StateFetchingMetadata)

	req := domain.NewMediaRequest(trimmed)
	s.logger.Info("Fetching metadata",
		zap.String("url", req.URL),
		zap.String("platform", string(req.ProviderHint)))

	meta, err := s.metadata.FetchMetadata(ctx, req)
	if err != nil {
		fetchErr := asMetadataError(err)

		s.mu.Lock()
		s.state = domain.StateIdle
		s.lastError = fetchErr.Message
		s.mu.Unlock()

		s.logger.Warn("Metadata fetch failed", zap.String("url", req.URL), zap.Error(err))

		event := domain.NewSessionEvent(domain.EventError, domain.StateIdle)
		event.Error = fetchErr.Message
		s.hub.Publish(event)
		return nil, fetchErr
	}

	s.mu.Lock()
	s.state = domain.StatePreviewReady
	s.request = &req
	s.meta = meta
	s.progress = domain.InitialProgress()
	s.downloadEnabled = true
	s.mu.Unlock()

	s.logger.Info("Preview ready",
		zap.String("title", meta.Title),
		zap.String("download_id", meta.DownloadID))
	s.publishState(domain.StatePreviewReady)

	return meta, nil
}

// TriggerDownload resolves the current preview across providers and saves
// the payload. It blocks until the session is back in PreviewReady. The error
// return covers guard violations only; download failures are outcomes.
func (s *DownloadSession) TriggerDownload(ctx context.Context) (domain.DownloadOutcome, error) {
	req, meta, err := s.beginDownload()
	if err != nil {
		return domain.DownloadOutcome{}, err
	}
	return s.download(ctx, req, meta), nil
}

// StartDownload applies the same guards as TriggerDownload, then runs the
// download in the background. The channel receives the outcome once.
func (s *DownloadSession) StartDownload(ctx context.Context) (<-chan domain.DownloadOutcome, error) {
	req, meta, err := s.beginDownload()
	if err != nil {
		return nil, err
	}

	done := make(chan domain.DownloadOutcome, 1)
	go func() {
		done <- s.download(ctx, req, meta)
	}()
	return done, nil
}

// beginDownload moves PreviewReady to Downloading
func (s *DownloadSession) beginDownload() (domain.MediaRequest, *domain.MediaMetadata, error) {
	s.mu.Lock()
	switch s.state {
	case domain.StatePreviewReady:
	case domain.StateDownloading, domain.StateTerminal:
		s.mu.Unlock()
		return domain.MediaRequest{}, nil, domain.ErrDownloadInProgress
	default:
		s.mu.Unlock()
		return domain.MediaRequest{}, nil, domain.ErrNoPreview
	}
	s.state = domain.StateDownloading
	s.progress = domain.InitialProgress()
	s.downloadEnabled = false
	s.lastNotice = ""
	s.lastError = ""
	req := *s.request
	meta := s.meta
	s.mu.Unlock()

	s.logger.Info("Download started",
		zap.String("url", req.URL),
		zap.String("download_id", meta.DownloadID))
	s.publishState(domain.StateDownloading)

	return req, meta, nil
}

func (s *DownloadSession) download(ctx context.Context, req domain.MediaRequest, meta *domain.MediaMetadata) domain.DownloadOutcome {
	outcome := s.runDownload(ctx, req, meta)
	s.finishDownload(meta, outcome)
	return outcome
}

// runDownload never panics and never returns with the ticker running
func (s *DownloadSession) runDownload(ctx context.Context, req domain.MediaRequest, meta *domain.MediaMetadata) (outcome domain.DownloadOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Download panicked", zap.Any("panic", r), zap.Stack("stack"))
			outcome = domain.GenericFailureOutcome(fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	resolved, err := s.resolver.Resolve(ctx, req, meta.DownloadID, s.endpoints)
	if err != nil {
		return domain.GenericFailureOutcome(err.Error())
	}
	if resolved.Kind != domain.OutcomeSuccess {
		return resolved
	}
	if resolved.Stream == nil {
		return domain.GenericFailureOutcome("provider returned an empty stream")
	}
	return s.consume(meta, resolved)
}

// consume reads the stream chunk by chunk into the sink and the tracker
func (s *DownloadSession) consume(meta *domain.MediaMetadata, outcome domain.DownloadOutcome) domain.DownloadOutcome {
	stream := outcome.Stream
	defer stream.Close()

	handle := s.tracker.Start(outcome.TotalBytes)
	defer handle.Stop()

	writer, err := s.sink.Open(meta, outcome)
	if err != nil {
		return domain.GenericFailureOutcome(fmt.Sprintf("failed to open output: %v", err))
	}
	committed := false
	defer func() {
		if !committed {
			if err := writer.Abort(); err != nil {
				s.logger.Warn("Failed to discard partial download", zap.Error(err))
			}
		}
	}()

	buf := make([]byte, s.chunkSize)
	var received int64
	for {
		n, readErr := stream.Read(buf)
		if n > 0 {
			if _, err := writer.Write(buf[:n]); err != nil {
				return domain.GenericFailureOutcome(fmt.Sprintf("failed to write download: %v", err))
			}
			received += int64(n)
			handle.OnChunk(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return domain.GenericFailureOutcome(fmt.Sprintf("stream interrupted: %v", readErr))
		}
	}

	path, err := writer.Commit()
	if err != nil {
		return domain.GenericFailureOutcome(fmt.Sprintf("failed to save download: %v", err))
	}
	committed = true
	handle.Finish()

	result := outcome
	result.Stream = nil
	result.FilePath = path
	result.BytesReceived = received
	return result
}

// finishDownload passes through Terminal and returns to PreviewReady
func (s *DownloadSession) finishDownload(meta *domain.MediaMetadata, outcome domain.DownloadOutcome) {
	s.mu.Lock()
	s.state = domain.StateTerminal
	s.lastNotice = outcome.Notice()
	if outcome.Kind != domain.OutcomeSuccess {
		s.lastError = outcome.Message
	}
	s.mu.Unlock()

	fields := []zap.Field{
		zap.String("outcome", string(outcome.Kind)),
		zap.String("provider", outcome.Provider),
	}
	if outcome.Kind == domain.OutcomeSuccess {
		s.logger.Info("Download completed", append(fields,
			zap.String("file", outcome.FilePath),
			zap.Int64("bytes", outcome.BytesReceived))...)
	} else {
		s.logger.Warn("Download did not complete", append(fields, zap.String("message", outcome.Message))...)
	}

	event := domain.NewSessionEvent(domain.EventOutcome, domain.StateTerminal)
	event.Outcome = outcome.Kind
	event.Notice = outcome.Notice()
	event.Error = outcome.Message
	s.hub.Publish(event)

	if s.notifier != nil {
		s.notifier.NotifyOutcome(meta, outcome)
	}

	s.mu.Lock()
	s.state = domain.StatePreviewReady
	s.progress = domain.InitialProgress()
	s.downloadEnabled = true
	s.mu.Unlock()

	s.publishState(domain.StatePreviewReady)
}

// onProgress is the tracker callback for the active attempt
func (s *DownloadSession) onProgress(state domain.ProgressState) {
	s.mu.Lock()
	if s.state != domain.StateDownloading {
		s.mu.Unlock()
		return
	}
	s.progress = state
	s.mu.Unlock()

	event := domain.NewSessionEvent(domain.EventProgress, domain.StateDownloading)
	event.Progress = &state
	s.hub.Publish(event)
}

func (s *DownloadSession) publishState(state domain.SessionState) {
	s.mu.Lock()
	progress := s.progress
	s.mu.Unlock()

	event := domain.NewSessionEvent(domain.EventState, state)
	event.Progress = &progress
	s.hub.Publish(event)
}

func asMetadataError(err error) *domain.MetadataFetchError {
	var fetchErr *domain.MetadataFetchError
	if errors.As(err, &fetchErr) {
		return fetchErr
	}
	return &domain.MetadataFetchError{Message: domain.DefaultMetadataError, Err: err}
}

// discardSink drops the payload
type discardSink struct{}

func (discardSink) Open(*domain.MediaMetadata, domain.DownloadOutcome) (domain.MediaWriter, error) {
	return discardWriter{}, nil
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
func (discardWriter) Commit() (string, error)     { return "", nil }
func (discardWriter) Abort() error                { return nil }
