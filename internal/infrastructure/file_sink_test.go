package infrastructure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/mediafetch-go/internal/domain"
)

func newTestSink(t *testing.T) (*FileSink, string) {
	t.Helper()
	tmpDir := t.TempDir()
	return NewFileSink(filepath.Join(tmpDir, "incoming"), filepath.Join(tmpDir, "completed"), nil), tmpDir
}

func TestFileSink_CommitMovesToCompleted(t *testing.T) {
	sink, tmpDir := newTestSink(t)
	meta := &domain.MediaMetadata{Title: "Clip", Author: "Me", DownloadID: "d1"}

	w, err := sink.Open(meta, domain.DownloadOutcome{ContentType: "video/webm"})
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)

	path, err := w.Commit()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "completed", "Me_Clip_d1.webm"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	entries, err := os.ReadDir(filepath.Join(tmpDir, "incoming"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileSink_PrefersServerFilename(t *testing.T) {
	sink, tmpDir := newTestSink(t)

	w, err := sink.Open(&domain.MediaMetadata{DownloadID: "d1"}, domain.DownloadOutcome{Filename: "../../etc/clip.mp4"})
	require.NoError(t, err)
	path, err := w.Commit()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "completed", "clip.mp4"), path)
}

func TestFileSink_DoesNotOverwrite(t *testing.T) {
	sink, tmpDir := newTestSink(t)
	outcome := domain.DownloadOutcome{Filename: "clip.mp4"}

	first, err := sink.Open(nil, outcome)
	require.NoError(t, err)
	_, err = first.Commit()
	require.NoError(t, err)

	second, err := sink.Open(nil, outcome)
	require.NoError(t, err)
	path, err := second.Commit()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "completed", "clip (1).mp4"), path)
}

func TestFileSink_AbortRemovesPartial(t *testing.T) {
	sink, tmpDir := newTestSink(t)

	w, err := sink.Open(nil, domain.DownloadOutcome{})
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())

	entries, err := os.ReadDir(filepath.Join(tmpDir, "incoming"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = os.Stat(filepath.Join(tmpDir, "completed"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".mp4", extensionFor(""))
	assert.Equal(t, ".mp4", extensionFor("video/mp4"))
	assert.Equal(t, ".m4a", extensionFor("audio/mp4"))
	assert.Equal(t, ".mp3", extensionFor("audio/mpeg"))
	assert.Equal(t, ".mp4", extensionFor("application/octet-stream"))
	assert.Equal(t, ".mp4", extensionFor("%%%"))
}

func TestFileSink_FailedCommitRemovesPartial(t *testing.T) {
	tmpDir := t.TempDir()
	completed := filepath.Join(tmpDir, "completed")
	require.NoError(t, os.WriteFile(completed, []byte("not a directory"), 0644))
	sink := NewFileSink(filepath.Join(tmpDir, "incoming"), completed, nil)

	w, err := sink.Open(&domain.MediaMetadata{Title: "T", DownloadID: "d1"}, domain.DownloadOutcome{ContentType: "video/mp4"})
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)

	_, err = w.Commit()
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(tmpDir, "incoming"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
