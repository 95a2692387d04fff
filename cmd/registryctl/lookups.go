package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/couchcryptid/well-registry/internal/lookup"
	"github.com/spf13/cobra"
)

func newUpdateLookupsCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "update-lookups",
		Short: "Upsert lookup tables from their canonical CSV files",
		Long: "Reads agency.csv, country.csv, state.csv, county.csv, horizontal_datum.csv,\n" +
			"altitude_datum.csv, nat_aqfr.csv, and units.csv from --dir. Missing files are\n" +
			"skipped. Existing rows are updated in place; nothing is deleted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := lookup.Load(os.DirFS(dir))
			if err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.store.Migrate(cmd.Context()); err != nil {
				return err
			}
			counts, err := e.store.UpsertLookups(cmd.Context(), src)
			if err != nil {
				return err
			}

			tables := make([]string, 0, len(counts))
			for table := range counts {
				tables = append(tables, table)
			}
			sort.Strings(tables)
			out := cmd.OutOrStdout()
			for _, table := range tables {
				fmt.Fprintf(out, "%-26s %d\n", table, counts[table])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory containing lookup CSV files (required)")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
