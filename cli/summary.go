package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/snapshot"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/validate"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [path]",
	Short: "Show where each section of a snapshot came from",
	Long: `Show per-section provenance of a written snapshot: which primary fetches
failed, whether optional feeds are remote or local fallbacks, and the odds status.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	path := filepath.Join(rootFlag, validate.DefaultPath)
	if len(args) == 1 {
		path = args[0]
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return failure.New(SnapshotUnread,
			failure.Message("Missing: "+path),
			failure.Context{"path": path},
		)
	}
	sum, err := snapshot.Summarize(raw)
	if err != nil {
		return failure.Wrap(err)
	}

	// Render markdown with glamour
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return failure.Wrap(err)
	}

	out, err := renderer.Render(sum.Markdown())
	if err != nil {
		return failure.Wrap(err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
