package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(o *options) *cobra.Command {
	var token, userID string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a signed-in credential",
		Long: `Store the access token issued by the MediVault sign-in page.

The user id is read from the token's subject claim unless --user-id is given.
Expired or malformed tokens are rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := o.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.sessions.Login(cmd.Context(), token, userID); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			cred, err := e.sessions.Credential(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as user %s\n", cred.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Access token (JWT)")
	cmd.Flags().StringVar(&userID, "user-id", "", "User id (defaults to the token subject)")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on the server and forget the credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := o.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.sessions.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout failed, please try again: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "medivault %s (commit: %s)\n", version, commit)
		},
	}
}
