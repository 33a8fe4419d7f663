package main

import (
	"fmt"
	"os"

	"foodwaste/internal/cli"
	"foodwaste/internal/importer"

	"github.com/spf13/cobra"
)

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import entries from an XLSX workbook",
		Long: `Import reads the first sheet of the workbook. Columns are food_item,
category, quantity, unit, date, reason and notes; a header row may reorder them.
Rows that fail validation are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open workbook: %w", err)
			}
			defer f.Close()

			b, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer closeBackend(b)

			result, err := importer.ImportXLSX(cmd.Context(), f, b.Service)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.SuccessStyle.Render(fmt.Sprintf("Imported %d entries", result.Imported)))
			for _, rf := range result.Failed {
				fmt.Fprintln(out, cli.ErrorStyle.Render(fmt.Sprintf("  row %d: %s", rf.Row, rf.Error)))
			}
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export every entry to an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer closeBackend(b)

			entries, err := b.Service.Entries(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create workbook: %w", err)
			}
			if err := importer.WriteXLSX(f, entries); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Exported %d entries to %s", len(entries), args[0])))
			return nil
		},
	}
}
