package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/config"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fetch"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fpl"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/metrics"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/odds"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/optional"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/snapshot"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/log"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/mcp"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

const (
	// DefaultConfigFile is looked up in the repository root
	DefaultConfigFile = "config.json"
	// OutputDir is the directory below the repository root receiving snapshots
	OutputDir = "data"
)

var (
	// Command line flags
	configFlag      string
	rootFlag        string
	metricsFileFlag string
	logLevel        logLevelFlag

	// Root command
	rootCmd = &cobra.Command{
		Use:           "fplfeed",
		Short:         "Collect the public FPL feed snapshot",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `fplfeed collects the public Fantasy Premier League data for one manager,
optional set piece, injury and elite feeds, and betting odds into a single
JSON snapshot under data/.

Every fetch is independent. A failed section is recorded inline and never
stops the run, so the snapshot is always written.`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: applyLogLevel,
		RunE:              runCollect,
	}

	collectCmd = &cobra.Command{
		Use:   "collect",
		Short: "Collect and write the snapshot (default command)",
		Args:  cobra.NoArgs,
		RunE:  runCollect,
	}

	// Version command
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fplfeed version %s\n", feed.Version)
			if feed.VersionCommit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", feed.VersionCommit)
			}
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlag, "root", ".", "Repository root holding config.json, extras/ and data/")
	pf.Var(&logLevel, "log-level", "Log level: debug, info, warn or error")

	for _, c := range []*cobra.Command{rootCmd, collectCmd} {
		c.Flags().StringVarP(&configFlag, "config", "c", "", "Config file, JSON or YAML (default <root>/config.json)")
		c.Flags().StringVar(&metricsFileFlag, "metrics-file", "", "Write Prometheus metrics of the run to this file")
	}

	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcp.Command())
}

// Run executes the main CLI functionality. An interrupt cancels in-flight fetches.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func applyLogLevel(cmd *cobra.Command, args []string) error {
	if logLevel.IsSet {
		log.SetLevel(logLevel.Value)
	}
	return nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log.With("run_id", uuid.NewString())

	cfgPath := configFlag
	if cfgPath == "" {
		cfgPath = filepath.Join(rootFlag, DefaultConfigFile)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return failure.Wrap(err)
	}
	log.Info("Loaded config", "path", cfgPath, "manager_id", cfg.ManagerID, "leagues", len(cfg.LeagueIDs))

	var (
		fetchOpts    []fetch.Option
		resolverOpts []optional.Option
		recorder     *metrics.Recorder
	)
	if metricsFileFlag != "" {
		recorder = metrics.NewRecorder()
		fetchOpts = append(fetchOpts, fetch.WithObserver(recorder))
		resolverOpts = append(resolverOpts, optional.WithRecorder(recorder))
	}
	client := fetch.New(fetchOpts...)

	snap := snapshot.Collect(ctx, snapshot.Sources{
		Primary:  fpl.NewCollector(client, cfg),
		Optional: optional.NewResolver(client, rootFlag, resolverOpts...),
		Feeds:    optional.Feeds(cfg.Extras),
		Odds:     odds.NewFetcher(client, cfg.Odds),
	})

	paths, err := snapshot.Write(filepath.Join(rootFlag, OutputDir), snap)
	if err != nil {
		return failure.Wrap(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote:", paths.Compact)
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote:", paths.Pretty)

	if recorder != nil {
		recorder.MarkRun(time.Now())
		if err := recorder.WriteTextfile(metricsFileFlag); err != nil {
			log.Warn("Failed to write metrics", "path", metricsFileFlag, "error", fetch.Message(err))
		}
	}
	return nil
}
