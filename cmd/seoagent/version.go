package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/seoagent"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of seoagent",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "seoagent version %s\n", seoagent.Version)
		},
	}
}
