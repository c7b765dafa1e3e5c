package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-live/internal/app"
	"github.com/riskibarqy/cricket-live/internal/config"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
	"github.com/spf13/cobra"
)

// ValidFormats lists the accepted --format values.
var ValidFormats = []string{"text", "json", "yaml"}

// RootOptions holds the global flags. Empty source and base URL fall back to
// the environment configuration.
type RootOptions struct {
	Format   string
	Source   string
	BaseURL  string
	LogLevel string
	Timeout  time.Duration
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cricketctl",
		Short: "Query live and scheduled cricket matches",
		Long: `cricketctl reads the live and schedule feeds through the same
accessors the API uses. A match resolves to its live record while it is
being played and to its schedule entry otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	flags.StringVar(&opts.Source, "source", "", "cricket source (http|memory), defaults to CRICKET_SOURCE")
	flags.StringVar(&opts.BaseURL, "base-url", "", "backend base url, defaults to CRICKET_API_BASE_URL")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "log level written to stderr")
	flags.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "timeout for one-shot commands")

	cmd.AddCommand(NewLiveCommand(opts))
	cmd.AddCommand(NewSchedulesCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

func (o *RootOptions) config() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "load config", err)
	}
	if source := strings.ToLower(strings.TrimSpace(o.Source)); source != "" {
		if source != config.SourceHTTP && source != config.SourceMemory {
			return config.Config{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid source %q", o.Source))
		}
		cfg.CricketSource = source
	}
	if baseURL := strings.TrimSpace(o.BaseURL); baseURL != "" {
		cfg.CricketAPIBaseURL = baseURL
	}
	return cfg, nil
}

// services builds the accessor graph for one command run. Callers Close it
// to stop every poll the command started.
func (o *RootOptions) services(cmd *cobra.Command) (*app.Services, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}

	logger := logging.NewJSONWriter(cmd.ErrOrStderr(), logging.ParseLevel(o.LogLevel)).Named("cricketctl")
	svc, err := app.NewServices(cfg, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "build services", err)
	}
	return svc, nil
}

func (o *RootOptions) oneShotContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.Timeout)
}

func (o *RootOptions) printer(cmd *cobra.Command) *Printer {
	return NewPrinter(o.Format, cmd.OutOrStdout())
}
