package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/aesop/pkg/export"
)

func exportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection as vectors.tsv and metadata.tsv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if output == "" {
				output = a.config.Files.ExportDir
			}

			vs, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer vs.Close()

			entries, err := vs.List(ctx)
			if err != nil {
				return err
			}

			if err := export.WriteTSV(output, entries); err != nil {
				return err
			}

			color.Green("✓ Exported %d fables to %s", len(entries), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default files.export_dir)")

	return cmd
}
