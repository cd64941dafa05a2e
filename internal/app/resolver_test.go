package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/mediafetch-go/internal/domain"
)

// attemptResult is the canned reply of one provider
type attemptResult struct {
	outcome domain.DownloadOutcome
	err     error
	panic   bool
}

// mockProviderClient implements domain.ProviderClient for testing
type mockProviderClient struct {
	mu      sync.Mutex
	results map[string]attemptResult
	calls   []string
}

func newMockProviderClient(results map[string]attemptResult) *mockProviderClient {
	return &mockProviderClient{results: results}
}

func (m *mockProviderClient) Attempt(ctx context.Context, provider domain.ProviderEndpoint, req domain.MediaRequest, downloadID string) (domain.DownloadOutcome, error) {
	m.mu.Lock()
	m.calls = append(m.calls, provider.Name)
	result, ok := m.results[provider.Name]
	m.mu.Unlock()

	if !ok {
		return domain.GenericFailureOutcome("no canned result"), nil
	}
	if result.panic {
		panic("provider exploded")
	}
	return result.outcome, result.err
}

func (m *mockProviderClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// closeTracker records whether a stream was closed
type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func endpoints(names ...string) []domain.ProviderEndpoint {
	out := make([]domain.ProviderEndpoint, len(names))
	for i, name := range names {
		out[i] = domain.NewQueryEndpoint(name, "http://backend.test", "/"+name)
	}
	return out
}

var testRequest = domain.NewMediaRequest("https://www.youtube.com/watch?v=abc")

func TestResolve_EmptyProviders(t *testing.T) {
	r := NewResolver(newMockProviderClient(nil), nil)

	_, err := r.Resolve(context.Background(), testRequest, "d1", nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestResolve_FallsThroughToSuccess(t *testing.T) {
	stream := io.NopCloser(strings.NewReader("media"))
	client := newMockProviderClient(map[string]attemptResult{
		"p1": {outcome: domain.GenericFailureOutcome("p1 down")},
		"p2": {err: errors.New("connection refused")},
		"p3": {outcome: domain.GenericFailureOutcome("p3 down")},
		"p4": {outcome: domain.SuccessOutcome(stream, 5)},
	})
	r := NewResolver(client, nil)

	outcome, err := r.Resolve(context.Background(), testRequest, "d1", endpoints("p1", "p2", "p3", "p4"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "p4", outcome.Provider)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, client.Calls())
}

func TestResolve_StopsAtResolvedOutcome(t *testing.T) {
	for _, resolved := range []domain.DownloadOutcome{
		domain.AuthRequiredOutcome("Sign in to confirm you're not a bot"),
		domain.MissingOutputOutcome(),
	} {
		client := newMockProviderClient(map[string]attemptResult{
			"p1": {outcome: domain.GenericFailureOutcome("p1 down")},
			"p2": {outcome: resolved},
			"p3": {outcome: domain.SuccessOutcome(io.NopCloser(strings.NewReader("x")), 1)},
		})

		outcome, err := NewResolver(client, nil).Resolve(context.Background(), testRequest, "d1", endpoints("p1", "p2", "p3"))
		require.NoError(t, err)

		assert.Equal(t, resolved.Kind, outcome.Kind)
		assert.Equal(t, "p2", outcome.Provider)
		assert.Equal(t, []string{"p1", "p2"}, client.Calls(), "providers after a resolved outcome must not be called")
	}
}

func TestResolve_FirstAuthSignalWins(t *testing.T) {
	client := newMockProviderClient(map[string]attemptResult{
		"youtube": {outcome: domain.AuthRequiredOutcome("bot check")},
		"social":  {outcome: domain.GenericFailureOutcome("social down")},
	})

	outcome, err := NewResolver(client, nil).Resolve(context.Background(), testRequest, "d1", endpoints("youtube", "social"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeAuthRequired, outcome.Kind)
	assert.Equal(t, []string{"youtube"}, client.Calls())
}

func TestResolve_ReturnsLastFailure(t *testing.T) {
	client := newMockProviderClient(map[string]attemptResult{
		"p1": {outcome: domain.GenericFailureOutcome("first")},
		"p2": {err: errors.New("dial tcp: connection refused")},
	})

	outcome, err := NewResolver(client, nil).Resolve(context.Background(), testRequest, "d1", endpoints("p1", "p2"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeGenericFailure, outcome.Kind)
	assert.Equal(t, "p2", outcome.Provider)
	assert.Contains(t, outcome.Message, "connection refused")
}

func TestResolve_ClosesDiscardedStreams(t *testing.T) {
	body := &closeTracker{Reader: strings.NewReader("{}")}
	failure := domain.GenericFailureOutcome("bad")
	failure.Stream = body

	client := newMockProviderClient(map[string]attemptResult{
		"p1": {outcome: failure},
		"p2": {outcome: domain.MissingOutputOutcome()},
	})

	_, err := NewResolver(client, nil).Resolve(context.Background(), testRequest, "d1", endpoints("p1", "p2"))
	require.NoError(t, err)
	assert.True(t, body.closed)
}

func TestResolve_CancelledContext(t *testing.T) {
	client := newMockProviderClient(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := NewResolver(client, nil).Resolve(ctx, testRequest, "d1", endpoints("p1", "p2"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeGenericFailure, outcome.Kind)
	assert.Contains(t, outcome.Message, "cancelled")
	assert.Empty(t, client.Calls())
}
