package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/bookit/internal/config"
	"github.com/iliyamo/bookit/internal/database"
	"github.com/iliyamo/bookit/internal/handler"
	"github.com/iliyamo/bookit/internal/middleware"
	"github.com/iliyamo/bookit/internal/queue"
	"github.com/iliyamo/bookit/internal/repository"
	"github.com/iliyamo/bookit/internal/router"
	"github.com/iliyamo/bookit/internal/service"
)

func newServeCmd() *cobra.Command {
	var (
		migrateUp    bool
		events       bool
		withConsumer bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := newLogger("bookit", cfg.LogLevel)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			opts := dbOptions(cfg, 10)
			db, err := database.Open(opts, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if migrateUp {
				applied, err := database.Migrate(ctx, db, opts.Driver)
				if err != nil {
					return err
				}
				if len(applied) > 0 {
					logger.Infof("applied migrations: %v", applied)
				}
			}

			rdb := config.NewRedisClient()
			if rdb == nil {
				logger.Warn("redis unavailable: response cache and rate limiting disabled")
			} else {
				defer rdb.Close()
			}

			var publisher service.BookingPublisher
			if events {
				publisher = queue.NewPublisher(cfg.AMQPURL)
			}
			if withConsumer {
				c := queue.NewConsumer(cfg.AMQPURL, logger)
				go func() {
					if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						logger.Errorf("booking consumer stopped: %v", err)
					}
				}()
			}

			reservations := service.NewReservationService(db, opts.Driver, publisher, logger, service.ReservationConfig{
				VerifyPrice: cfg.VerifyPrice,
				IDAttempts:  cfg.BookingIDAttempts,
			})
			expRepo := repository.NewExperienceRepo(db, opts.Driver)
			slotRepo := repository.NewSlotRepo(db, opts.Driver)
			bookingRepo := repository.NewBookingRepo(db, opts.Driver)
			promoRepo := repository.NewPromoRepo(db, opts.Driver)

			cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
			limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

			e := router.NewEcho(cfg.FrontendURL)
			e.Logger = logger
			router.RegisterRoutes(e, handler.Health(db))
			router.RegisterPublic(e, handler.NewCatalogHandler(expRepo, slotRepo), cache)
			router.RegisterBookings(e, handler.NewBookingHandler(reservations, bookingRepo), &handler.PromoHandler{Promos: promoRepo}, limit)
			if cfg.AdminEnabled() {
				router.RegisterAdmin(e, &handler.AdminHandler{
					Bookings:     bookingRepo,
					Username:     cfg.AdminUser,
					PasswordHash: cfg.AdminPasswordHash,
					JWTSecret:    cfg.JWTSecret,
					TokenTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
				}, limit)
			} else {
				logger.Warn("admin API disabled: set JWT_SECRET and ADMIN_PASSWORD_HASH to enable it")
			}

			addr := ":" + cfg.Port
			logger.Infof("listening on %s (env=%s, driver=%s)", addr, cfg.Env, opts.Driver)
			errCh := make(chan error, 1)
			go func() { errCh <- e.Start(addr) }()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			logger.Info("shutting down")
			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			err = e.Shutdown(shutdownCtx)
			if werr := reservations.WaitForEvents(shutdownCtx); werr != nil {
				logger.Warnf("shutdown: booking events still in flight: %v", werr)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "apply database migrations on startup")
	cmd.Flags().BoolVar(&events, "events", true, "publish booking.confirmed events to RabbitMQ")
	cmd.Flags().BoolVar(&withConsumer, "with-consumer", false, "also run the booking event consumer in this process")
	return cmd
}
