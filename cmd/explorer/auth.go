package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/world-explorer/users"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, pw string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(cmd, pw)
			if err != nil {
				return err
			}
			user, err := a.session.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s!\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&pw, "password", "", "password (prompted for when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var username, email, pw string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := passwordOrPrompt(cmd, pw)
			if err != nil {
				return err
			}
			user, err := a.session.Register(cmd.Context(), username, email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! Your avatar is the %s.\n", user.Username, user.Avatar)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&pw, "password", "", "password (prompted for when empty)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Server logout failed: %v\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoAmICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in explorer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), snap.User)
			return nil
		},
	}
}

func newPasswordCmd(a *app) *cobra.Command {
	passwordCmd := &cobra.Command{
		Use:   "password",
		Short: "Password helpers",
	}
	passwordCmd.AddCommand(&cobra.Command{
		Use:   "check [password]",
		Short: "Show how a password measures up to the policy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pw string
			if len(args) == 1 {
				pw = args[0]
			}
			pw, err := passwordOrPrompt(cmd, pw)
			if err != nil {
				return err
			}
			check, err := a.client.ValidatePassword(cmd.Context(), pw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Strength: %s (%d%%)\n", check.Level, check.Percentage)
			for _, r := range check.Requirements {
				mark := " "
				if r.Met {
					mark = "x"
				}
				fmt.Fprintf(out, "  [%s] %s\n", mark, r.Label)
			}
			if !check.Valid {
				fmt.Fprintln(out, check.Message)
			}
			return nil
		},
	})
	return passwordCmd
}

// passwordOrPrompt returns pw, or reads one line from stdin when pw is empty.
func passwordOrPrompt(cmd *cobra.Command, pw string) (string, error) {
	if pw != "" {
		return pw, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printUser(w io.Writer, u *users.PublicUser) {
	fmt.Fprintf(w, "%s <%s>\n", u.Username, u.Email)
	fmt.Fprintf(w, "  id:        %s\n", u.ID)
	fmt.Fprintf(w, "  avatar:    %s\n", u.Avatar)
	if len(u.FavoriteCountries) == 0 {
		fmt.Fprintln(w, "  favorites: none yet")
		return
	}
	fmt.Fprintf(w, "  favorites: %s\n", strings.Join(u.FavoriteCountries, ", "))
}
