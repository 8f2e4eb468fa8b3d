package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/auth"
)

func newRegisterCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Long: `Create a new account and sign in to it.

The password is read from standard input when --password is not given.

Usage:
  taskflow register --name "Ann" --email ann@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, err := passwordFlag(cmd)
			if err != nil {
				return err
			}

			user, err := e.app.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! Your account has been created.\n", user.Name)
			return nil
		},
	}

	cmd.Flags().StringP("name", "n", "", "Your name")
	cmd.Flags().StringP("email", "e", "", "Email address")
	cmd.Flags().StringP("password", "p", "", "Password (read from stdin if omitted)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, err := passwordFlag(cmd)
			if err != nil {
				return err
			}

			user, err := e.app.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s!\n", user.Name)
			if stats := e.app.Tasks.Stats(); stats.Total > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "You have %d pending tasks (%d overdue).\n", stats.Pending, stats.Overdue)
			}
			return nil
		},
	}

	cmd.Flags().StringP("email", "e", "", "Email address")
	cmd.Flags().StringP("password", "p", "", "Password (read from stdin if omitted)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, signedIn := e.app.Session.Current()
			if err := e.app.Logout(cmd.Context()); err != nil {
				return err
			}
			if signedIn {
				fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s.\n", user.Email)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			}
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := e.app.RequireUser()
			if err != nil {
				return notSignedIn(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
			fmt.Fprintf(out, "  ID: %s\n", user.ID)
			fmt.Fprintf(out, "  Joined: %s\n", user.JoinedAt.Local().Format("02/01/2006"))
			if user.Avatar != "" {
				fmt.Fprintf(out, "  Avatar: %s\n", user.Avatar)
			}
			return nil
		},
	}
}

func newAvatarCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <url>",
		Short: "Change your avatar URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := e.app.Session.UpdateAvatar(cmd.Context(), args[0])
			if err != nil {
				return notSignedIn(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Avatar updated: %s\n", user.Avatar)
			return nil
		},
	}
}

// passwordFlag returns --password or reads one line from stdin
func passwordFlag(cmd *cobra.Command) (string, error) {
	if password, _ := cmd.Flags().GetString("password"); password != "" {
		return password, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// notSignedIn adds a hint to ErrNotAuthenticated
func notSignedIn(err error) error {
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return fmt.Errorf("%w. Use 'taskflow login' or 'taskflow register' first", err)
	}
	return err
}
