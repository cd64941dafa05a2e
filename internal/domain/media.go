package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Platform identifies the media platform a URL belongs to
type Platform string

const (
	PlatformYouTube   Platform = "youtube"   // YouTube
	PlatformX         Platform = "x"         // X/Twitter
	PlatformInstagram Platform = "instagram" // Instagram
	PlatformTikTok    Platform = "tiktok"    // TikTok
)

// MediaRequest is a user submission. It is never modified after creation.
type MediaRequest struct {
	URL          string   `json:"url"`
	ProviderHint Platform `json:"provider_hint,omitempty"`
}

// NewMediaRequest creates a request for the given URL with a detected provider hint
func NewMediaRequest(rawURL string) MediaRequest {
	rawURL = strings.TrimSpace(rawURL)
	return MediaRequest{
		URL:          rawURL,
		ProviderHint: DetectPlatform(rawURL),
	}
}

// MediaMetadata describes the media behind a submitted URL
type MediaMetadata struct {
	Title           string `json:"title"`
	Author          string `json:"author,omitempty"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	DownloadID      string `json:"download_id"`
	SourceURL       string `json:"source_url"`
}

// FormatDuration renders the duration as m:ss, or "" when unknown
func (m *MediaMetadata) FormatDuration() string {
	if m.DurationSeconds == nil {
		return ""
	}
	seconds := *m.DurationSeconds
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-_. ]`)

// SuggestedFilename builds a filesystem-safe name: {author}_{title}_{download_id}{ext}
func (m *MediaMetadata) SuggestedFilename(ext string) string {
	title := m.Title
	if title == "" {
		title = "video"
	}
	author := m.Author
	if author == "" {
		author = "unknown"
	}

	safeTitle := truncateRunes(unsafeFilenameChars.ReplaceAllString(title, "_"), 50)
	safeAuthor := truncateRunes(unsafeFilenameChars.ReplaceAllString(author, "_"), 30)

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s_%s_%s%s", safeAuthor, safeTitle, m.DownloadID, ext)
}

func truncateRunes(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}

// DetectPlatform detects the platform from a URL host
func DetectPlatform(rawURL string) Platform {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	switch host {
	case "youtube.com", "youtu.be", "music.youtube.com":
		return PlatformYouTube
	case "x.com", "twitter.com", "mobile.twitter.com":
		return PlatformX
	case "instagram.com":
		return PlatformInstagram
	case "tiktok.com", "vm.tiktok.com":
		return PlatformTikTok
	}
	return ""
}
