package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvest/internal/harvest"
)

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "List the default query terms used by fetch",
	Run: func(cmd *cobra.Command, args []string) {
		for i, t := range harvest.DefaultTerms {
			fmt.Printf("%2d. %s\n", i+1, t)
		}
	},
}

func init() {
	rootCmd.AddCommand(termsCmd)
}
