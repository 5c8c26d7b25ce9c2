package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

const mysqlDuplicateEntry = 1062

// isUniqueConstraintError reports whether err is a uniqueness violation from
// any of the supported drivers. Services use it to turn races on duplicate
// proposals or rosters into the conflict sentinel instead of a 500.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	// sqlite has no typed error exposed through the gorm driver.
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"unique", "duplicate", "constraint"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
