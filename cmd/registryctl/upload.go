package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/well-registry/internal/registry"
	"github.com/spf13/cobra"
)

func newValidateUploadCmd() *cobra.Command {
	var (
		agencies []string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "validate-upload FILE",
		Short: "Check a bulk upload file without inserting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := registry.ReadRows(f, args[0])
			if err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.service().Ingest(cmd.Context(), cliAccess(agencies), rows, true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				printIssues(cmd, "error", res.Errors)
				printIssues(cmd, "warning", res.Warnings)
				fmt.Fprintf(out, "%d rows checked, %d with errors, %d with warnings\n",
					len(rows), len(res.Errors), len(res.Warnings))
			}
			if !res.OK() {
				return fmt.Errorf("%s has %d invalid rows", args[0], len(res.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&agencies, "agency", nil, "Check as a member of these agencies instead of a superuser")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func printIssues(cmd *cobra.Command, kind string, issues []registry.RowIssues) {
	out := cmd.OutOrStdout()
	for _, ri := range issues {
		for _, m := range ri.Messages {
			if m.Field != "" {
				fmt.Fprintf(out, "row %d: %s: %s: %s\n", ri.Row, kind, m.Field, m.Message)
			} else {
				fmt.Fprintf(out, "row %d: %s: %s\n", ri.Row, kind, m.Message)
			}
		}
	}
}
