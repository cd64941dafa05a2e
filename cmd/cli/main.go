package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yourusername/mediafetch-go/internal/app"
	"github.com/yourusername/mediafetch-go/internal/domain"
	"github.com/yourusername/mediafetch-go/pkg/logger"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
	serverURL  string
	rootCmd    = &cobra.Command{
		Use:   "mediafetch",
		Short: "MediaFetch CLI - preview and download media through a download backend",
		Long:  `A command-line client that previews media metadata and downloads it through an ordered list of backend providers.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(logsCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview [url]",
	Short: "Show metadata for a media URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runPreview(args[0]))
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Preview and download a media URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runFetch(args[0]))
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs [category]",
	Short: "View server journals (session, error)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		date, _ := cmd.Flags().GetString("date")
		limit, _ := cmd.Flags().GetInt("limit")
		query, _ := cmd.Flags().GetString("query")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		params := url.Values{}
		params.Set("limit", strconv.Itoa(limit))
		if date != "" {
			params.Set("date", date)
		}
		if query != "" {
			params.Set("q", query)
		}

		resp, err := http.Get(serverURL + "/api/v1/logs/" + url.PathEscape(args[0]) + "?" + params.Encode())
		if err != nil {
			printError(err)
			os.Exit(exitFailure)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(exitFailure)
		}

		var result struct {
			Entries []logger.LogEntry `json:"entries"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			printError(err)
			os.Exit(exitFailure)
		}

		if jsonOutput {
			prettyJSON, _ := json.MarshalIndent(result.Entries, "", "  ")
			fmt.Println(string(prettyJSON))
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tLEVEL\tMESSAGE")
		for _, entry := range result.Entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Timestamp, entry.Level, truncate(entry.Message, 80))
		}
		w.Flush()
	},
}

func init() {
	logsCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8090", "Server URL")
	logsCmd.Flags().StringP("date", "d", "", "Journal date (YYYY-MM-DD), defaults to today")
	logsCmd.Flags().IntP("limit", "n", 100, "Maximum number of entries")
	logsCmd.Flags().StringP("query", "q", "", "Only show entries containing text")
	logsCmd.Flags().BoolP("json", "j", false, "Output in JSON format")
}

// newSession loads configuration and builds an in-process session
func newSession() (*app.DownloadSession, *zap.Logger, error) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Keep stderr quiet for the progress line unless asked otherwise
	logConfig := logger.Config{
		Level:      "warn",
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	}
	if verbose {
		logConfig.Level = "debug"
	}
	log, err := logger.New(logConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	session, err := app.BuildSession(config, log)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}
	return session, log, nil
}

func runPreview(rawURL string) int {
	session, log, err := newSession()
	if err != nil {
		printError(err)
		return exitFailure
	}
	defer log.Sync()
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	meta, err := session.Submit(ctx, rawURL)
	if err != nil {
		printError(err)
		return exitCodeForSubmit(err)
	}

	printPreview(meta)
	return exitOK
}

func runFetch(rawURL string) int {
	session, log, err := newSession()
	if err != nil {
		printError(err)
		return exitFailure
	}
	defer log.Sync()
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	meta, err := session.Submit(ctx, rawURL)
	if err != nil {
		printError(err)
		return exitCodeForSubmit(err)
	}
	printPreview(meta)

	events, unsubscribe := session.Subscribe()
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for event := range events {
			if event.Type == domain.EventProgress && event.Progress != nil {
				printProgress(*event.Progress)
			}
		}
	}()

	outcome, err := session.TriggerDownload(ctx)
	unsubscribe()
	<-printed
	if err != nil {
		printError(err)
		return exitFailure
	}

	return printOutcome(outcome)
}

func exitCodeForSubmit(err error) int {
	var fetchErr *domain.MetadataFetchError
	if errors.As(err, &fetchErr) {
		return exitMetadata
	}
	return exitFailure
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
}
