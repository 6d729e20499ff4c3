// cmd/job-portal/schema.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"job-portal/internal/common/database"
)

var applySchema bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the PostgreSQL schema, or apply it with --apply",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !applySchema {
			fmt.Fprint(cmd.OutOrStdout(), database.Schema())
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := database.EnsureSchema(cmd.Context(), pg.DB); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&applySchema, "apply", false, "apply the schema to the configured database")
}
