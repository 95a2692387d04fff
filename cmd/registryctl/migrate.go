package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if down {
				if err := e.store.RollbackLast(cmd.Context()); err != nil {
					return err
				}
				e.logger.Info("rolled back last migration")
				return nil
			}
			if err := e.store.Migrate(cmd.Context()); err != nil {
				return err
			}
			e.logger.Info("migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "Roll back the most recent migration instead")
	return cmd
}
