package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/session"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			if password == "" {
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}
			ok, err := rt.app.Login(cmd.Context(), args[0], password)
			if !ok {
				return explain(err)
			}
			if err != nil {
				// The token is saved; the next command retries the load.
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. Tasks could not be loaded.\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%d tasks).\n", args[0], len(rt.board.Tasks()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			if password == "" {
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}
			return explain(rt.app.Register(cmd.Context(), args[0], password))
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			rt.app.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user and when the session expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			if !rt.sessions.Restore() {
				return errNotLoggedIn
			}
			s, _ := rt.sessions.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (session expires %s)\n", s.Subject, s.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
}

// explain puts the form message in front of a credential validation error.
func explain(err error) error {
	switch {
	case errors.Is(err, session.ErrEmptyCredentials):
		return fmt.Errorf("%s (%w)", session.EmptyCredentialsMessage, err)
	case errors.Is(err, session.ErrWeakPassword):
		return fmt.Errorf("%s (%w)", model.WeakPasswordMessage, err)
	}
	return err
}

// readPassword prompts without echo on a terminal, or reads one line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
