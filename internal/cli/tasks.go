package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/taskboard/internal/board"
	"github.com/jaekwang-park/taskboard/internal/model"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var filter, search, tag, sortKey string
	var desc bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, pinned first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, key := board.Filter(filter), board.SortKey(sortKey)
			if !f.IsValid() {
				return fmt.Errorf("unknown filter %q (all, active, completed, overdue)", filter)
			}
			if !key.IsValid() {
				return fmt.Errorf("unknown sort key %q (title, due_date, priority)", sortKey)
			}

			rt, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.requireSession(cmd.Context()); err != nil {
				return err
			}

			dir := board.Asc
			if desc {
				dir = board.Desc
			}
			rt.board.SetFilter(f)
			rt.board.SetSort(key, dir)
			rt.board.SetTag(tag)
			rt.board.ApplyQuery(search)
			return printTasks(cmd.OutOrStdout(), rt.app.View())
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(board.FilterAll), "all, active, completed or overdue")
	cmd.Flags().StringVarP(&search, "search", "s", "", "text to find in title or description")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only tasks carrying this tag")
	cmd.Flags().StringVar(&sortKey, "sort", string(board.SortDueDate), "title, due_date or priority")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	return cmd
}

func printTasks(w io.Writer, tasks []model.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPIN\tTITLE\tPRIORITY\tDUE\tTAGS")
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, mark(t.Completed, "x"), mark(t.Pinned, "*"), t.Title, t.Priority, due,
			strings.Join(board.ParseTags(t.Tags), ", "))
	}
	return tw.Flush()
}

func mark(on bool, s string) string {
	if on {
		return s
	}
	return ""
}

// taskFlags are the editable fields shared by add and edit.
type taskFlags struct {
	description string
	due         string
	priority    string
	tags        string
	pinned      bool
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "description (at most 300 characters)")
	cmd.Flags().StringVar(&f.due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVarP(&f.tags, "tags", "t", "", "comma-separated tags")
	cmd.Flags().BoolVar(&f.pinned, "pinned", false, "pin the task")
}

// apply overwrites the fields of d whose flags were given.
func (f *taskFlags) apply(cmd *cobra.Command, d board.Draft) board.Draft {
	changed := cmd.Flags().Changed
	if changed("description") {
		d.Description = f.description
	}
	if changed("due") {
		d.DueDate = f.due
	}
	if changed("priority") {
		d.Priority = f.priority
	}
	if changed("tags") {
		d.Tags = f.tags
	}
	if changed("pinned") {
		d.Pinned = f.pinned
	}
	return d
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.requireSession(cmd.Context()); err != nil {
				return err
			}

			d := flags.apply(cmd, board.Draft{Title: strings.Join(args, " ")})
			t, err := rt.app.Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s\n", t.ID, t.Title)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var flags taskFlags
	var title string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task; only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rt, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.requireSession(cmd.Context()); err != nil {
				return err
			}

			current, ok := rt.board.Task(id)
			if !ok {
				return fmt.Errorf("task %d not found", id)
			}
			d := flags.apply(cmd, board.DraftOf(current))
			if cmd.Flags().Changed("title") {
				d.Title = title
			}
			t, err := rt.app.Update(cmd.Context(), id, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d: %s\n", t.ID, t.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	flags.register(cmd)
	return cmd
}

func newDoneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between completed and active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(cmd, opts, args[0], false)
		},
	}
}

func newPinCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle whether a task is pinned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(cmd, opts, args[0], true)
		},
	}
}

func runToggle(cmd *cobra.Command, opts *rootOptions, arg string, pin bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	rt, err := opts.setup(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.requireSession(cmd.Context()); err != nil {
		return err
	}

	if pin {
		t, err := rt.app.TogglePin(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task %d %s.\n", t.ID, pick(t.Pinned, "pinned", "unpinned"))
		return nil
	}
	t, err := rt.app.Toggle(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d marked %s.\n", t.ID, pick(t.Completed, "completed", "active"))
	return nil
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rt, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.requireSession(cmd.Context()); err != nil {
				return err
			}

			if err := rt.app.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d.\n", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
