package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/mediafetch-go/internal/domain"
)

func newMetadataServer(t *testing.T, status int, payload interface{}) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/download_youtube", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "https://example.com/watch?v=abc", r.PostForm.Get("url"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestMetadataClient(baseURL string) *HTTPMetadataClient {
	return NewHTTPMetadataClient(http.DefaultClient, domain.BackendConfig{
		BaseURL:      baseURL,
		MetadataPath: "/download_youtube",
	}, 5*time.Second, nil)
}

func TestFetchMetadata_Success(t *testing.T) {
	server := newMetadataServer(t, http.StatusOK, map[string]interface{}{
		"title":       "T",
		"author":      "A",
		"length":      125,
		"thumbnail":   "https://img/t.jpg",
		"download_id": "d1",
	})

	req := domain.NewMediaRequest("https://example.com/watch?v=abc")
	meta, err := newTestMetadataClient(server.URL).FetchMetadata(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "T", meta.Title)
	assert.Equal(t, "A", meta.Author)
	assert.Equal(t, "https://img/t.jpg", meta.ThumbnailURL)
	assert.Equal(t, "d1", meta.DownloadID)
	assert.Equal(t, req.URL, meta.SourceURL)
	require.NotNil(t, meta.DurationSeconds)
	assert.Equal(t, "2:05", meta.FormatDuration())
}

func TestFetchMetadata_ErrorField(t *testing.T) {
	server := newMetadataServer(t, http.StatusBadRequest, map[string]string{"error": "Invalid YouTube URL"})

	_, err := newTestMetadataClient(server.URL).FetchMetadata(context.Background(),
		domain.NewMediaRequest("https://example.com/watch?v=abc"))

	var fetchErr *domain.MetadataFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "Invalid YouTube URL", fetchErr.Message)
	assert.Equal(t, http.StatusBadRequest, fetchErr.StatusCode)
}

func TestFetchMetadata_ErrorWithoutMessage(t *testing.T) {
	server := newMetadataServer(t, http.StatusInternalServerError, map[string]string{})

	_, err := newTestMetadataClient(server.URL).FetchMetadata(context.Background(),
		domain.NewMediaRequest("https://example.com/watch?v=abc"))

	var fetchErr *domain.MetadataFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, domain.DefaultMetadataError, fetchErr.Message)
}

func TestFetchMetadata_MissingDownloadID(t *testing.T) {
	server := newMetadataServer(t, http.StatusOK, map[string]interface{}{"title": "T"})

	_, err := newTestMetadataClient(server.URL).FetchMetadata(context.Background(),
		domain.NewMediaRequest("https://example.com/watch?v=abc"))

	var fetchErr *domain.MetadataFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Err.Error(), "download_id")
}

func TestFetchMetadata_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	_, err := newTestMetadataClient(baseURL).FetchMetadata(context.Background(),
		domain.NewMediaRequest("https://example.com/watch?v=abc"))

	var fetchErr *domain.MetadataFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, domain.DefaultMetadataError, fetchErr.Message)
	assert.Equal(t, 0, fetchErr.StatusCode)
	assert.NotNil(t, fetchErr.Err)
}
