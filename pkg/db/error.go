package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	pgCodeUniqueViolation      = "23505"
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeLockNotAvailable     = "55P03"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if pgCode(err) == pgCodeUniqueViolation {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsRetryableTxErr reports serialization failures and deadlocks, both of which
// leave the transaction rolled back and safe to retry from the start.
func IsRetryableTxErr(err error) bool {
	if err == nil {
		return false
	}
	switch pgCode(err) {
	case pgCodeSerializationFailure, pgCodeDeadlockDetected:
		return true
	}
	// MySQL deadlock (1213) / lock wait timeout (1205)
	msg := err.Error()
	return strings.Contains(msg, "Error 1213") || strings.Contains(msg, "Error 1205")
}

// IsLockTimeoutErr reports NOWAIT / lock_timeout failures.
func IsLockTimeoutErr(err error) bool {
	return pgCode(err) == pgCodeLockNotAvailable
}

// pgCode extracts the SQLSTATE from either driver; gorm runs on pgx while
// migrations run on lib/pq.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// ErrorKind names database failures the ledger expects under contention.
// Unclassified errors return "".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsDuplicateKeyErr(err):
		return "duplicate_key"
	case IsRetryableTxErr(err):
		return "tx_conflict"
	case IsLockTimeoutErr(err):
		return "lock_timeout"
	default:
		return ""
	}
}
