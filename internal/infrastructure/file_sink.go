package infrastructure

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/mediafetch-go/internal/domain"
	"go.uber.org/zap"
)

// FileSink writes payloads into the incoming directory and moves finished
// files into the completed directory
type FileSink struct {
	incomingDir  string
	completedDir string
	logger       *zap.Logger
}

// NewFileSink creates a new file sink
func NewFileSink(incomingDir, completedDir string, logger *zap.Logger) *FileSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSink{
		incomingDir:  incomingDir,
		completedDir: completedDir,
		logger:       logger,
	}
}

// Open creates the incoming file for a download
func (s *FileSink) Open(meta *domain.MediaMetadata, outcome domain.DownloadOutcome) (domain.MediaWriter, error) {
	if err := os.MkdirAll(s.incomingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create incoming directory: %w", err)
	}

	name := s.filename(meta, outcome)
	incomingPath := filepath.Join(s.incomingDir, name+".part")

	file, err := os.OpenFile(incomingPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create incoming file: %w", err)
	}

	return &fileWriter{
		sink:         s,
		file:         file,
		incomingPath: incomingPath,
		name:         name,
	}, nil
}

// filename prefers the server-provided name, then one derived from metadata
func (s *FileSink) filename(meta *domain.MediaMetadata, outcome domain.DownloadOutcome) string {
	if outcome.Filename != "" {
		if base := filepath.Base(filepath.Clean(outcome.Filename)); base != "." && base != "/" && base != ".." {
			return base
		}
	}
	ext := extensionFor(outcome.ContentType)
	if meta == nil {
		return "download" + ext
	}
	return meta.SuggestedFilename(ext)
}

func extensionFor(contentType string) string {
	if contentType == "" {
		return ".mp4"
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".mp4"
	}
	switch mediaType {
	case "video/mp4":
		return ".mp4"
	case "audio/mp4":
		return ".m4a"
	case "video/webm":
		return ".webm"
	case "audio/mpeg":
		return ".mp3"
	case "application/octet-stream":
		return ".mp4"
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".mp4"
}

type fileWriter struct {
	sink         *FileSink
	file         *os.File
	incomingPath string
	name         string
	closed       bool
}

func (w *fileWriter) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

// Commit closes the incoming file and moves it to the completed directory
func (w *fileWriter) Commit() (string, error) {
	if err := w.close(); err != nil {
		os.Remove(w.incomingPath)
		return "", fmt.Errorf("failed to close incoming file: %w", err)
	}

	if err := os.MkdirAll(w.sink.completedDir, 0755); err != nil {
		os.Remove(w.incomingPath)
		return "", fmt.Errorf("failed to create completed directory: %w", err)
	}

	destPath := uniquePath(filepath.Join(w.sink.completedDir, w.name))
	if err := os.Rename(w.incomingPath, destPath); err != nil {
		// Rename fails across filesystems
		if err := copyFile(w.incomingPath, destPath); err != nil {
			os.Remove(w.incomingPath)
			return "", fmt.Errorf("failed to move file %s: %w", w.incomingPath, err)
		}
		os.Remove(w.incomingPath)
	}

	w.sink.logger.Info("Download saved", zap.String("path", destPath))
	return destPath, nil
}

// Abort discards the partial file
func (w *fileWriter) Abort() error {
	w.close()
	if err := os.Remove(w.incomingPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove partial file: %w", err)
	}
	return nil
}

func (w *fileWriter) close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// uniquePath appends " (n)" before the extension until the path is free
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
