package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-dex-catalog/catalog"
	"github.com/goliatone/go-dex-catalog/present"
)

func newBrowseCmd(a *app) *cobra.Command {
	var (
		query, category, generation string
		page, pageSize              int
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List Pokémon matching the filters, one page at a time",
		Long: `List Pokémon matching a name or id query, a type and a generation.

Generations:
` + present.Generations(),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageSize <= 0 {
				pageSize = a.container.Config().Pager.PageSize
			}
			st := catalog.NewFilterState(pageSize)
			st = catalog.Reduce(st, catalog.Action{Kind: catalog.SetQuery, Value: query})
			st = catalog.Reduce(st, catalog.Action{Kind: catalog.SetCategory, Value: category})
			st = catalog.Reduce(st, catalog.Action{Kind: catalog.SetGeneration, Value: generation})
			st = catalog.Reduce(st, catalog.Action{Kind: catalog.GoToPage, N: page})

			_, err := a.pipeline.Render(cmd.Context(), st)
			return err
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "name substring or exact id")
	cmd.Flags().StringVarP(&category, "type", "t", "", "type filter, e.g. fire")
	cmd.Flags().StringVarP(&generation, "gen", "g", "", "generation 1-9")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "cards per page (config default when 0)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show the detail entry for one Pokémon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.pipeline.Detail(cmd.Context(), args[0])
			return err
		},
	}
}

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the types usable with browse --type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.pipeline.Categories(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				printf(cmd, "%s\n", n)
			}
			return nil
		},
	}
}
