package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github-activity/internal/github"
	"github-activity/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"
)

var (
	apiURLFlag    string
	userAgentFlag string
	timeoutFlag   time.Duration
	sinceFlag     string
	verboseFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "github-activity [username]",
	Short: "Narrate the public GitHub activity of a user",
	Long: `github-activity fetches the public event feed of a GitHub user and prints
what they have been doing. Without a username it starts an interactive prompt;
type a username per line, or q to quit.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&apiURLFlag, "api-url", "", "GitHub API base URL (default "+github.DefaultBaseURL+")")
	rootCmd.Flags().StringVar(&userAgentFlag, "user-agent", "", "User-Agent header sent to the API (default "+github.DefaultUserAgent+")")
	rootCmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "HTTP timeout per request, 0 waits forever")
	rootCmd.Flags().StringVar(&sinceFlag, "since", "", `only show events from this date on, e.g. "2026-01-28", "yesterday" (one-shot mode)`)
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "log requests to stderr")
}

func Execute() error {
	return rootCmd.Execute()
}

func run(cmd *cobra.Command, args []string) error {
	// Load .env file without overriding existing env vars.
	_ = godotenv.Load()

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	if err := logger.InitLogger(cfg.Verbose); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Lg.Sync()

	client, err := github.NewClient(cfg.APIURL, cfg.UserAgent, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return err
	}

	s := NewSession(client, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := context.Background()

	if len(args) == 1 {
		since, err := parseSince(sinceFlag, time.Now())
		if err != nil {
			return err
		}
		return s.Lookup(ctx, args[0], since)
	}
	return s.Run(ctx)
}

const dateFormat = "2006-01-02"

// parseSince resolves a --since value to the start of the day it names. An
// empty value means no lower bound.
func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := parseDate(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since value %q: %w", s, err)
	}
	return startOfDay(t), nil
}

// parseDate tries YYYY-MM-DD first, then falls back to natural language parsing
// via go-naturaldate, relative to ref.
func parseDate(s string, ref time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation(dateFormat, s, ref.Location()); err == nil {
		return t, nil
	}
	return naturaldate.Parse(s, ref)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
