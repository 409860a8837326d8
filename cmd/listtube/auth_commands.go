package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
	"github.com/Khateeb-Urrahman/ListTube/internal/session"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a token issued by the ListTube service",
		Long: "Sign in with an access or refresh token, as returned by the service's " +
			"/auth/google/callback endpoint. The token is saved to the config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			token = strings.TrimSpace(token)
			issuer, err := ctx.issuer()
			if err != nil {
				return err
			}
			claims, err := issuer.Verify(token)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if err := ctx.loader.SaveToken(token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", displayName(claims.Identity()))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Access or refresh token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved sign-in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			if err := ctx.loader.SaveToken(""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(sess *session.Session, _ *identity.Local) error {
				snap := sess.Snapshot()
				if snap.User == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", displayName(snap.User), snap.User.UID)
				return nil
			})
		},
	}
}

func displayName(id *identity.Identity) string {
	switch {
	case id == nil:
		return ""
	case id.DisplayName != "":
		return id.DisplayName
	case id.Email != "":
		return id.Email
	default:
		return id.UID
	}
}
