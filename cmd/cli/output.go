package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/mediafetch-go/internal/domain"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))             // green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))             // red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))            // yellow
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))            // cyan
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))           // light grey
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")) // purple
)

// Exit codes of the fetch and preview commands
const (
	exitOK       = 0
	exitFailure  = 1
	exitAuth     = 2
	exitMissing  = 3
	exitMetadata = 4
)

func printPreview(meta *domain.MediaMetadata) {
	fmt.Println(headerStyle.Render(meta.Title))
	if meta.Author != "" {
		fmt.Printf("  %s %s\n", detailStyle.Render("Author:  "), meta.Author)
	}
	if duration := meta.FormatDuration(); duration != "" {
		fmt.Printf("  %s %s\n", detailStyle.Render("Duration:"), duration)
	}
	if meta.ThumbnailURL != "" {
		fmt.Printf("  %s %s\n", detailStyle.Render("Thumbnail:"), meta.ThumbnailURL)
	}
	fmt.Printf("  %s %s\n", detailStyle.Render("ID:      "), meta.DownloadID)
}

func printProgress(progress domain.ProgressState) {
	label := "Downloading"
	if progress.Mode == domain.ProgressIndeterminate {
		label = "Downloading (estimated)"
	}
	fmt.Fprintf(os.Stderr, "\r%s %3d%%", infoStyle.Render(label), progress.Percent)
}

// printOutcome renders the notice for outcome and returns the exit code
func printOutcome(outcome domain.DownloadOutcome) int {
	fmt.Fprintln(os.Stderr)
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		fmt.Println(successStyle.Render("✓ " + outcome.Notice()))
		fmt.Printf("  %s %s\n", detailStyle.Render("File:"), outcome.FilePath)
		return exitOK
	case domain.OutcomeAuthRequired:
		fmt.Println(warningStyle.Render("! " + outcome.Notice()))
		printReason(outcome)
		return exitAuth
	case domain.OutcomeMissingOutput:
		fmt.Println(warningStyle.Render("! " + outcome.Notice()))
		return exitMissing
	default:
		fmt.Println(errorStyle.Render("✗ " + outcome.Notice()))
		printReason(outcome)
		return exitFailure
	}
}

func printReason(outcome domain.DownloadOutcome) {
	if outcome.Message == "" {
		return
	}
	reason := outcome.Message
	if outcome.Provider != "" {
		reason = outcome.Provider + ": " + reason
	}
	fmt.Printf("  %s\n", detailStyle.Render(reason))
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
}
