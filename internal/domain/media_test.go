package domain

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestMediaMetadata_FormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		seconds  *int
		expected string
	}{
		{"two minutes five", intPtr(125), "2:05"},
		{"zero", intPtr(0), "0:00"},
		{"under a minute", intPtr(59), "0:59"},
		{"over an hour", intPtr(3725), "62:05"},
		{"unknown", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MediaMetadata{DurationSeconds: tt.seconds}
			assert.Equal(t, tt.expected, m.FormatDuration())
		})
	}
}

func TestMediaMetadata_SuggestedFilename(t *testing.T) {
	m := &MediaMetadata{Title: "My/Video: part?1", Author: "Some One", DownloadID: "d1"}
	assert.Equal(t, "Some One_My_Video_ part_1_d1.mp4", m.SuggestedFilename("mp4"))

	empty := &MediaMetadata{DownloadID: "d2"}
	assert.Equal(t, "unknown_video_d2.webm", empty.SuggestedFilename(".webm"))
}

func TestMediaMetadata_SuggestedFilenameTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 80; i++ {
		long += "a"
	}
	m := &MediaMetadata{Title: long, Author: long, DownloadID: "x"}

	name := m.SuggestedFilename("")
	assert.Len(t, name, 30+1+50+1+1)
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://www.youtube.com/watch?v=abc", PlatformYouTube},
		{"https://youtu.be/abc", PlatformYouTube},
		{"https://x.com/user/status/123", PlatformX},
		{"https://twitter.com/user/status/123", PlatformX},
		{"https://www.instagram.com/p/xyz", PlatformInstagram},
		{"https://www.tiktok.com/@u/video/1", PlatformTikTok},
		{"https://example.com/watch?v=abc", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestNewMediaRequest(t *testing.T) {
	req := NewMediaRequest("  https://youtu.be/abc  ")

	assert.Equal(t, "https://youtu.be/abc", req.URL)
	assert.Equal(t, PlatformYouTube, req.ProviderHint)
}

func TestNewQueryEndpoint(t *testing.T) {
	p := NewQueryEndpoint("youtube", "http://backend:5000/", "/download_youtube")
	req := MediaRequest{URL: "https://www.youtube.com/watch?v=abc&t=1", ProviderHint: PlatformYouTube}

	raw, err := p.URL(req, "d1")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "backend:5000", u.Host)
	assert.Equal(t, "/download_youtube", u.Path)
	assert.Equal(t, req.URL, u.Query().Get("url"))
	assert.Equal(t, "d1", u.Query().Get("download_id"))
	assert.Equal(t, "youtube", u.Query().Get("platform"))
}

func TestNewQueryEndpoint_AbsoluteEndpointAndNoHint(t *testing.T) {
	p := NewQueryEndpoint("social", "http://backend:5000", "https://other.example/dl")

	raw, err := p.URL(MediaRequest{URL: "https://example.com/v"}, "d9")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "other.example", u.Host)
	assert.False(t, u.Query().Has("platform"))
}

func TestProviderEndpoint_MissingTemplate(t *testing.T) {
	_, err := ProviderEndpoint{Name: "broken"}.URL(MediaRequest{}, "d")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestProvidersFromConfig(t *testing.T) {
	endpoints, err := ProvidersFromConfig("http://b", []ProviderConfig{
		{Name: "youtube", Endpoint: "/a"},
		{Name: "social", Endpoint: "/b"},
	})
	require.NoError(t, err)
	require.Len(t, endpoints, 2)
	assert.Equal(t, "youtube", endpoints[0].Name)
	assert.Equal(t, "social", endpoints[1].Name)

	_, err = ProvidersFromConfig("http://b", nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = ProvidersFromConfig("http://b", []ProviderConfig{{Name: "x"}})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestDownloadOutcome_IsResolvedAndNotice(t *testing.T) {
	assert.True(t, SuccessOutcome(nil, 10).IsResolved())
	assert.True(t, MissingOutputOutcome().IsResolved())
	assert.True(t, AuthRequiredOutcome("bot").IsResolved())
	assert.False(t, GenericFailureOutcome("boom").IsResolved())

	assert.Equal(t, NoticeMissingOutput, MissingOutputOutcome().Notice())
	assert.Equal(t, NoticeAuthRequired, AuthRequiredOutcome("").Notice())
	assert.Equal(t, NoticeGenericFailure, GenericFailureOutcome("x").Notice())
	assert.Equal(t, int64(0), SuccessOutcome(nil, -1).TotalBytes)
}

func TestMetadataFetchError(t *testing.T) {
	err := &MetadataFetchError{Message: "No URL provided", StatusCode: 400}
	assert.Equal(t, "No URL provided (status 400)", err.Error())

	cause := assert.AnError
	wrapped := &MetadataFetchError{Message: DefaultMetadataError, Err: cause}
	assert.Equal(t, DefaultMetadataError, wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}
