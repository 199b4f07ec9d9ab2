package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/bookit/internal/config"
	"github.com/iliyamo/bookit/internal/queue"
)

func newConsumeCmd() *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Consume booking.confirmed events and append them to a log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadBroker()
			logger := newLogger("booking-consumer", cfg.LogLevel)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			c := queue.NewConsumer(cfg.AMQPURL, logger)
			if logPath != "" {
				c.LogPath = logPath
			}
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logPath, "log-file", "", "file to append bookings to (default logs/booking.log)")
	return cmd
}
