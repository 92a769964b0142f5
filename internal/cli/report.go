package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/taskboard/internal/board"
	"github.com/jaekwang-park/taskboard/internal/export"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all tasks as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.requireSession(cmd.Context()); err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := rt.app.ExportCSV(&buf); err != nil {
				return err
			}
			if out == "-" {
				_, err := io.Copy(cmd.OutOrStdout(), &buf)
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s.\n", len(rt.board.Tasks()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", export.FileName, `output file, or "-" for stdout`)
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts and this week's due dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.requireSession(cmd.Context()); err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), rt.app.Stats())
			return nil
		},
	}
}

func printStats(w io.Writer, s board.Stats) {
	fmt.Fprintf(w, "Total: %d  Completed: %d  Active: %d  Overdue: %d\n", s.Total, s.Completed, s.Active, s.Overdue)
	fmt.Fprintf(w, "Priority: high %d  medium %d  low %d\n", s.High, s.Medium, s.Low)
	fmt.Fprintln(w, "Due this week:")
	for i, n := range s.Week {
		fmt.Fprintf(w, "  %s %-3d %s\n", board.Weekdays[i], n, strings.Repeat("#", n))
	}
}
