package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/taskboard/internal/export"
	"github.com/jaekwang-park/taskboard/internal/tui"
)

func newBoardCmd(opts *rootOptions) *cobra.Command {
	var exportPath string
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the interactive task board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			notifier := tui.NewNotifier()
			rt, err := opts.setup(cmd, notifier)
			if err != nil {
				return err
			}
			defer rt.Close()

			if ok, err := rt.app.Restore(cmd.Context()); ok && err != nil {
				rt.logger.Warn("failed to load tasks", "error", err)
			}
			return tui.Run(rt.app, notifier, rt.store, tui.Options{
				RequestTimeout: rt.settings.RequestTimeout,
				ExportPath:     exportPath,
			})
		},
	}
	cmd.Flags().StringVar(&exportPath, "export-path", export.FileName, "where the x key writes the CSV export")
	return cmd
}

func newThemeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light]",
		Short:     "Show or set the board's color scheme; with no argument it toggles",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			dark, err := rt.store.DarkMode()
			if err != nil {
				return err
			}
			switch {
			case len(args) == 0:
				dark = !dark
			case args[0] == "dark":
				dark = true
			case args[0] == "light":
				dark = false
			default:
				return fmt.Errorf("unknown theme %q (dark or light)", args[0])
			}
			if err := rt.store.SetDarkMode(dark); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", pick(dark, "dark", "light"))
			return nil
		},
	}
}
