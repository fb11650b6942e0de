package main

import (
	"github.com/spf13/cobra"
)

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func newThemeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the card theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dark, err := a.container.Theme().Dark(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", themeName(dark))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dark, err := a.container.Theme().Toggle(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", themeName(dark))
			return nil
		},
	})
	return cmd
}
