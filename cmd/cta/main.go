package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/courseta/courseta/internal/slack"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	tokenFlag     string
	tokenFileFlag string
	verboseFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "cta",
	Short: "cta - Mail merge and Slack delivery for instructors",
	Long: `Courseta: render per-student messages from a gradebook and a template,
deliver them as Slack direct messages, and convert schedule spreadsheets
into dated calendar documents.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(setupLogger())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cta version %s\n", Version)
	},
}

// setupLogger builds the process logger from LOG_LEVEL, with --verbose
// forcing debug.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verboseFlag {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// newAccount builds a Slack account from --token / --token-file or the
// SLACK_API_TOKEN / SLACK_TOKEN_FILE environment.
func newAccount() (*slack.Account, error) {
	acct := slack.NewAccount(slack.WithLogger(slog.Default()))

	token := tokenFlag
	if token == "" {
		token = os.Getenv("SLACK_API_TOKEN")
	}
	if token != "" {
		acct.SetToken(token)
		return acct, nil
	}

	path := tokenFileFlag
	if path == "" {
		path = os.Getenv("SLACK_TOKEN_FILE")
	}
	if path == "" {
		return nil, fmt.Errorf("no API token: set --token, --token-file, SLACK_API_TOKEN, or SLACK_TOKEN_FILE")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	if err := acct.SetTokenFromFile(f); err != nil {
		return nil, err
	}
	return acct, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Slack API token (default: SLACK_API_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&tokenFileFlag, "token-file", "", "File whose first line is the Slack API token (default: SLACK_TOKEN_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Load .env first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
