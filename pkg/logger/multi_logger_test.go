package logger

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMultiLogger_WritesAndReadsJournals(t *testing.T) {
	dir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)
	defer ml.Close()

	ml.LogSessionEvent("download_started", zap.String("provider", "youtube"))
	ml.LogSessionEvent("download_finished", zap.String("outcome", "auth_required"))
	ml.LogAppError("panic recovered", zap.String("path", "/api/v1/session"))
	require.NoError(t, ml.Sync())

	reader := NewLogReader(dir)

	entries, err := reader.ReadLogs(CategorySession, time.Now(), "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "download_started", entries[0].Message)
	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "youtube", entries[0].Fields["provider"])
	assert.NotEmpty(t, entries[0].Timestamp)

	entries, err = reader.ReadLogs(CategorySession, time.Now(), "", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "download_finished", entries[0].Message)

	entries, err = reader.ReadLogs(CategorySession, time.Now(), "AUTH", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "download_finished", entries[0].Message)

	entries, err = reader.ReadLogs(CategoryError, time.Now(), "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0].Level)
}

func TestMultiLogger_RotatesDaily(t *testing.T) {
	dir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{LogsDir: dir})
	require.NoError(t, err)
	defer ml.Close()

	tomorrow := time.Now().Add(24 * time.Hour)
	ml.now = func() time.Time { return tomorrow }
	ml.LogSessionEvent("next_day")

	_, err = os.Stat(LogPath(dir, CategorySession, tomorrow.Format(dateLayout)))
	assert.NoError(t, err)

	entries, err := NewLogReader(dir).ReadLogs(CategorySession, tomorrow, "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "next_day", entries[0].Message)
}

func TestNewMultiLogger_RequiresDir(t *testing.T) {
	_, err := NewMultiLogger(MultiLoggerConfig{})
	assert.Error(t, err)
}

func TestLogReader_MissingAndPlainLines(t *testing.T) {
	dir := t.TempDir()
	reader := NewLogReader(dir)

	entries, err := reader.ReadLogs(CategorySession, time.Now(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	path := LogPath(dir, CategoryError, time.Now().Format(dateLayout))
	require.NoError(t, os.WriteFile(path, []byte("not json\n\n"), 0644))

	entries, err = reader.ReadLogs(CategoryError, time.Now(), "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "not json", entries[0].Message)
	assert.Equal(t, "error", entries[0].Category)
}
