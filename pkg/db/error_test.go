package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"gorm duplicate", fmt.Errorf("insert bill: %w", gorm.ErrDuplicatedKey), "duplicate_key"},
		{"sqlite unique", errors.New("UNIQUE constraint failed: bills.period, bills.sequence"), "duplicate_key"},
		{"pgx serialization", &pgconn.PgError{Code: "40001"}, "tx_conflict"},
		{"pq deadlock", &pq.Error{Code: "40P01"}, "tx_conflict"},
		{"mysql lock wait", errors.New("Error 1205: Lock wait timeout exceeded"), "tx_conflict"},
		{"pgx lock not available", fmt.Errorf("lock orders: %w", &pgconn.PgError{Code: "55P03"}), "lock_timeout"},
		{"other", errors.New("connection refused"), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorKind(tc.err))
		})
	}
}
