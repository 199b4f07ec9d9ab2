// Package database opens the relational store, applies the schema and hides
// the few differences between the MySQL and PostgreSQL dialects from the
// repositories. Queries are written once with `?` placeholders and rebound
// for PostgreSQL.
package database

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Dialect names a supported SQL store.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

// ParseDialect maps a DB_DRIVER value onto a Dialect. Unknown values fall
// back to MySQL.
func ParseDialect(s string) Dialect {
	if strings.EqualFold(s, "postgres") || strings.EqualFold(s, "postgresql") {
		return Postgres
	}
	return MySQL
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "postgres"
	}
	return "mysql"
}

// Rebind rewrites `?` placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// MySQL server error numbers.
const (
	mysqlDupEntry        = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// IsUniqueViolation reports whether err is a primary key or unique index
// violation from either store.
func IsUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDupEntry
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

// IsLockFailure reports deadlocks and lock wait timeouts. Both abort the
// current transaction and are safe to retry from scratch.
func IsLockFailure(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlLockWaitTimeout || me.Number == mysqlDeadlock
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		switch pe.Code {
		case "40P01", "55P03", "40001":
			return true
		}
	}
	return false
}
