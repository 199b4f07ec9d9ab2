package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/bookit/internal/config"
	"github.com/iliyamo/bookit/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := newLogger("migrate", cfg.LogLevel)
			opts := dbOptions(cfg, 10)
			db, err := database.Open(opts, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.Migrate(cmd.Context(), db, opts.Driver)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(os.Stdout, "schema up to date")
				return nil
			}
			for _, f := range applied {
				fmt.Fprintf(os.Stdout, "applied %s\n", f)
			}
			return nil
		},
	}
}
