package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/bookit/internal/config"
	"github.com/iliyamo/bookit/internal/database"
	"github.com/iliyamo/bookit/internal/seed"
)

func newSeedCmd() *cobra.Command {
	var migrateUp bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace all catalog data and bookings with the sample data set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := newLogger("seed", cfg.LogLevel)
			opts := dbOptions(cfg, 10)
			db, err := database.Open(opts, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if migrateUp {
				if _, err := database.Migrate(ctx, db, opts.Driver); err != nil {
					return err
				}
			}
			sum, err := seed.Run(ctx, db, opts.Driver, time.Now().UTC(), logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "seeded experiences=%d slots=%d promo_codes=%d\n",
				sum.Experiences, sum.Slots, sum.PromoCodes)
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "apply migrations before seeding")
	return cmd
}
