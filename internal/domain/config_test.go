package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NotNil(t, config)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 8090, config.Server.Port)
	assert.Equal(t, "/download_youtube", config.Backend.MetadataPath)
	assert.Len(t, config.Providers, 2)
	assert.Equal(t, "youtube", config.Providers[0].Name)
	assert.Equal(t, "social", config.Providers[1].Name)
	assert.Equal(t, 600*time.Millisecond, config.Progress.TickInterval)
	assert.Equal(t, 90, config.Progress.Ceiling)
	assert.Equal(t, "missingOutput", config.Classifier.MissingOutputKey)
	assert.NotEmpty(t, config.Classifier.AuthMarkers)
	assert.Equal(t, 32*1024, config.Download.ChunkSize)
	assert.False(t, config.Notification.Enabled)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestDownloadConfig_Dirs(t *testing.T) {
	c := DownloadConfig{BaseDir: "/data/mf"}

	assert.Equal(t, "/data/mf/incoming", c.IncomingDir())
	assert.Equal(t, "/data/mf/completed", c.CompletedDir())
	assert.Equal(t, "/data/mf/logs", c.LogsDir())
}

func TestDefaultConfig_AuthMarkersAreCopied(t *testing.T) {
	config := DefaultConfig()
	config.Classifier.AuthMarkers[0] = "changed"

	assert.Equal(t, "sign in to confirm", DefaultAuthMarkers[0])
}
