package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/invoicer/internal/template"
)

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the available invoice templates",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range template.NewRegistry().Names() {
				suffix := ""
				if name == template.Baseline {
					suffix = " (fallback)"
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", name, suffix)
			}
		},
	}
}
