// Package cli defines the bookit command tree.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/bookit/internal/config"
	"github.com/iliyamo/bookit/internal/database"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookit",
		Short:         "Experience booking API with slot-level seat reservations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newConsumeCmd())
	root.AddCommand(newHashPasswordCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(prefix, level string) *log.Logger {
	l := log.New(prefix)
	l.SetLevel(parseLevel(level))
	return l
}

func parseLevel(s string) log.Lvl {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return log.DEBUG
	case "WARN", "WARNING":
		return log.WARN
	case "ERROR":
		return log.ERROR
	case "OFF":
		return log.OFF
	default:
		return log.INFO
	}
}

func dbOptions(cfg config.Config, attempts int) database.Options {
	return database.Options{
		Driver:          database.ParseDialect(cfg.DBDriver),
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		LockTimeoutSec:  cfg.DBLockTimeoutSec,
		ConnectAttempts: attempts,
	}
}
