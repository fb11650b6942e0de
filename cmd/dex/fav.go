package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newFavCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorites",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show favorite cards, lowest id first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := a.pipeline.Favorites(cmd.Context())
				return err
			},
		},
		&cobra.Command{
			Use:   "add <id|name>",
			Short: "Add a favorite",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := a.resolveID(cmd, args[0])
				if err != nil {
					return err
				}
				if err := a.container.Favorites().Add(cmd.Context(), id); err != nil {
					return err
				}
				printf(cmd, "added #%03d\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <id|name>",
			Short: "Remove a favorite",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := a.favoriteID(cmd, args[0])
				if err != nil {
					return err
				}
				if err := a.container.Favorites().Remove(cmd.Context(), id); err != nil {
					return err
				}
				printf(cmd, "removed #%03d\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle <id|name>",
			Short: "Add or remove a favorite",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := a.favoriteID(cmd, args[0])
				if err != nil {
					return err
				}
				on, err := a.container.Favorites().Toggle(cmd.Context(), id)
				if err != nil {
					return err
				}
				if on {
					printf(cmd, "added #%03d\n", id)
				} else {
					printf(cmd, "removed #%03d\n", id)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every favorite",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.container.Favorites().Clear(cmd.Context()); err != nil {
					return err
				}
				printf(cmd, "favorites cleared\n")
				return nil
			},
		},
	)
	return cmd
}

// resolveID maps an id or name to the id of a record upstream knows about.
func (a *app) resolveID(cmd *cobra.Command, arg string) (int, error) {
	recs := a.container.Records()
	if id, err := strconv.Atoi(arg); err == nil {
		rec, err := recs.GetByID(cmd.Context(), id)
		if err != nil {
			return 0, err
		}
		return rec.ID, nil
	}
	rec, err := recs.Get(cmd.Context(), arg)
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// favoriteID is resolveID, except that an id already in the favorites is
// taken as is so entries upstream no longer serves can still be dropped.
func (a *app) favoriteID(cmd *cobra.Command, arg string) (int, error) {
	if id, err := strconv.Atoi(arg); err == nil && a.container.Favorites().Has(id) {
		return id, nil
	}
	return a.resolveID(cmd, arg)
}
