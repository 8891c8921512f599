package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and print a bearer token",
		Long: `Authenticates against the server and prints the issued token.
The password is read from stdin unless --password is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			token, err := c.Login(cmd.Context(), args[0], password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintln(cmd.ErrOrStderr(), "Logged in. Export ERPACCESS_TOKEN with the token above.")
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password (read from stdin when omitted)")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user and their permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			me, err := c.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			role := me.User.RoleName
			if role == "" {
				role = "(none)"
			}
			fmt.Fprintf(out, "User: %s\nRole: %s\n", me.User.Username, role)
			fmt.Fprintf(out, "Permissions: %s\n", strings.Join(me.Permissions, ", "))
			return nil
		},
	}
}
