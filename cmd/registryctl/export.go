package main

import (
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/well-registry/internal/registry"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		layout   string
		output   string
		agencies []string
		template bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write monitoring locations as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if template {
				return registry.WriteTemplate(w)
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.service().Export(cmd.Context(), cliAccess(agencies), w, registry.ParseLayout(layout))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d monitoring locations\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&layout, "layout", string(registry.LayoutDownload), "Column layout: download or upload")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringSliceVar(&agencies, "agency", nil, "Export only these agencies")
	cmd.Flags().BoolVar(&template, "template", false, "Write the empty bulk upload workbook instead")
	return cmd
}
