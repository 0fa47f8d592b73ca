package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/validate"
	"github.com/mattn/go-isatty"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

var (
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")). // green
		Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // red
			Bold(true)
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check that a written snapshot has the required keys",
	Long: `Check that a written snapshot has the top-level keys fpl and _fetched_at_utc,
and that fpl has bootstrap_static, fixtures, entry and leagues.

The path defaults to data/latest.json below --root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := filepath.Join(rootFlag, validate.DefaultPath)
	if len(args) == 1 {
		path = args[0]
	}

	out := cmd.OutOrStdout()
	if err := validate.Check(path); err != nil {
		fmt.Fprintln(out, styled(out, failStyle, validate.Message(err)))
		return failure.New(ValidationFailed,
			failure.Message("snapshot validation failed"),
			failure.Context{"path": path},
		)
	}
	fmt.Fprintln(out, styled(out, okStyle, validate.OKMessage))
	return nil
}

// styled renders s with style only when w is a terminal
func styled(w io.Writer, style lipgloss.Style, s string) string {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return style.Render(s)
	}
	return s
}
