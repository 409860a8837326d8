package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
	"github.com/Khateeb-Urrahman/ListTube/internal/media"
	"github.com/Khateeb-Urrahman/ListTube/internal/session"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query or YouTube link>",
		Short: "Search for media",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withSession(cmd.Context(), func(sess *session.Session, _ *identity.Local) error {
				items, err := sess.Search(cmd.Context(), query)
				if err != nil {
					return errors.New(session.MsgSearchFailed)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No results")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), itemTable(items))

				if preview := sess.Snapshot().Preview; preview != nil {
					if embed, ok := media.EmbedURL(*preview); ok {
						fmt.Fprintf(cmd.OutOrStdout(), "Preview: %s\n", embed)
					}
				}
				return nil
			})
		},
	}
}
