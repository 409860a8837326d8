package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
	"github.com/Khateeb-Urrahman/ListTube/internal/media"
	"github.com/Khateeb-Urrahman/ListTube/internal/playlist"
	"github.com/Khateeb-Urrahman/ListTube/internal/session"
)

func newPlaylistsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "playlists",
		Aliases: []string{"pl"},
		Short:   "Manage your playlists",
	}
	cmd.AddCommand(
		newPlaylistsListCommand(ctx),
		newPlaylistsShowCommand(ctx),
		newPlaylistsCreateCommand(ctx),
		newPlaylistsDeleteCommand(ctx),
		newPlaylistsAddCommand(ctx),
		newPlaylistsRemoveCommand(ctx),
	)
	return cmd
}

func newPlaylistsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your playlists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(sess *session.Session, _ *identity.Local) error {
				if err := requireUser(sess); err != nil {
					return err
				}
				snap := sess.Snapshot()
				if snap.State == session.Error {
					return errors.New(snap.Message)
				}
				if len(snap.Playlists) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No playlists yet")
					return nil
				}

				rows := make([][]string, 0, len(snap.Playlists))
				for _, p := range snap.Playlists {
					rows = append(rows, []string{
						p.ID,
						p.Name,
						strconv.Itoa(len(p.Items)),
						p.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Items", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newPlaylistsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <playlist-id>",
		Short: "Show the items of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(sess *session.Session, _ *identity.Local) error {
				if err := requireUser(sess); err != nil {
					return err
				}
				if !sess.Select(args[0]) {
					return fmt.Errorf("playlist %s not found", args[0])
				}
				p := sess.Snapshot().Active

				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d items)\n", p.Name, len(p.Items))
				if len(p.Items) == 0 {
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), itemTable(p.Items))
				return nil
			})
		},
	}
}

func newPlaylistsCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a playlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return ctx.withSession(cmd.Context(), func(sess *session.Session, _ *identity.Local) error {
				p, res, err := sess.CreatePlaylist(cmd.Context(), name)
				if err := messageError(sess, res, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created playlist %q (%s)\n", p.Name, p.ID)
				return nil
			})
		},
	}
}

func newPlaylistsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <playlist-id>",
		Short: "Delete a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(sess *session.Session, _ *identity.Local) error {
				res, err := sess.DeletePlaylist(cmd.Context(), args[0])
				if err := messageError(sess, res, err); err != nil {
					return err
				}
				printResult(cmd, res, "Deleted playlist "+args[0])
				return nil
			})
		},
	}
}

func newPlaylistsAddCommand(ctx *commandContext) *cobra.Command {
	var pick int

	cmd := &cobra.Command{
		Use:   "add <playlist-id> <query or YouTube link>",
		Short: "Search for media and add a result to a playlist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			playlistID := args[0]
			query := strings.Join(args[1:], " ")
			return ctx.withSession(cmd.Context(), func(sess *session.Session, _ *identity.Local) error {
				if err := requireUser(sess); err != nil {
					return err
				}
				items, err := sess.Search(cmd.Context(), query)
				if err != nil {
					return errors.New(session.MsgSearchFailed)
				}
				if len(items) == 0 {
					return fmt.Errorf("no media found for %q", query)
				}
				if pick < 1 || pick > len(items) {
					return fmt.Errorf("--pick must be between 1 and %d", len(items))
				}
				item := items[pick-1]

				res, err := sess.AddItem(cmd.Context(), playlistID, item)
				if err := messageError(sess, res, err); err != nil {
					return err
				}
				printResult(cmd, res, fmt.Sprintf("Added %q (%s)", item.Title, item.ID))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&pick, "pick", 1, "Which search result to add, starting at 1")
	return cmd
}

func newPlaylistsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <playlist-id> <item-id>",
		Short: "Remove an item from a playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(sess *session.Session, _ *identity.Local) error {
				res, err := sess.RemoveItem(cmd.Context(), args[0], args[1])
				if err := messageError(sess, res, err); err != nil {
					return err
				}
				printResult(cmd, res, "Removed "+args[1])
				return nil
			})
		},
	}
}

// printResult prints done for an applied change and the skip reason
// otherwise.
func printResult(cmd *cobra.Command, res playlist.Result, done string) {
	if res.Outcome == playlist.Applied {
		fmt.Fprintln(cmd.OutOrStdout(), done)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Nothing changed: %s\n", strings.ReplaceAll(string(res.Reason), "_", " "))
}

func itemTable(items []media.Item) string {
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			it.ID,
			it.Title,
			it.Duration,
		})
	}
	return renderTable(
		[]string{"#", "ID", "Title", "Duration"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}
