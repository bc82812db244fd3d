// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvest/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the article store to YAML or JSON",
	Long: `Export writes every stored article to stdout, or to --out, as YAML or
JSON. The store itself is not modified.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	cfg := loadConfig(cmd)
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}

	if err := st.Export(context.Background(), w, format); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "Exported %s to %s\n", st.Location(), outPath)
	}
	return nil
}

func init() {
	exportCmd.Flags().String("format", store.FormatYAML, "export format: yaml or json")
	exportCmd.Flags().String("out", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
}
