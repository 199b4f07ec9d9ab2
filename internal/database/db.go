package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/gommon/log"
	_ "github.com/lib/pq"
)

// Options describes how to reach the relational store.
type Options struct {
	Driver Dialect
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
	// LockTimeoutSec bounds how long a statement waits for a row lock.
	// It is handed to the server per session; zero keeps the server default.
	LockTimeoutSec int
	// ConnectAttempts is the number of pings tried before giving up, two
	// seconds apart. Values below one mean a single attempt.
	ConnectAttempts int
}

// DSN renders the driver specific connection string.
func (o Options) DSN() string {
	switch o.Driver {
	case Postgres:
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(o.Host, o.Port),
			Path:   "/" + o.Name,
		}
		if o.Pass != "" {
			u.User = url.UserPassword(o.User, o.Pass)
		} else {
			u.User = url.User(o.User)
		}
		q := url.Values{}
		q.Set("sslmode", "disable")
		if o.LockTimeoutSec > 0 {
			// lib/pq forwards unknown keys as run-time parameters; lock_timeout is in ms
			q.Set("lock_timeout", strconv.Itoa(o.LockTimeoutSec*1000))
		}
		u.RawQuery = q.Encode()
		return u.String()
	default:
		auth := o.User
		if o.Pass != "" {
			auth = fmt.Sprintf("%s:%s", o.User, o.Pass)
		}
		// parseTime=true -> DATE/DATETIME -> time.Time | loc=UTC keeps times consistent
		dsn := fmt.Sprintf("%s@tcp(%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, net.JoinHostPort(o.Host, o.Port), o.Name)
		if o.LockTimeoutSec > 0 {
			// unknown DSN params are applied as session variables by the driver
			dsn += "&innodb_lock_wait_timeout=" + strconv.Itoa(o.LockTimeoutSec)
		}
		return dsn
	}
}

// Open connects to the store and verifies the connection, retrying while the
// server is still starting up.
func Open(o Options, logger *log.Logger) (*sql.DB, error) {
	db, err := sql.Open(o.Driver.DriverName(), o.DSN())
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	attempts := o.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 1; i <= attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			logger.Infof("database connected (driver=%s host=%s db=%s)", o.Driver, o.Host, o.Name)
			return db, nil
		}
		if i < attempts {
			logger.Warnf("database not ready (attempt %d/%d): %v", i, attempts, err)
			time.Sleep(2 * time.Second)
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("connect %s: %w", o.Driver, err)
}
