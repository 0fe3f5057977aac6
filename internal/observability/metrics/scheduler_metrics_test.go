package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/tapledger/internal/authorization"
	"github.com/smallbiznis/tapledger/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifySchedulerJobReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: SchedulerJobReasonDeadlineExceeded},
		{name: "forbidden", err: authorization.ErrForbidden, want: SchedulerJobReasonForbidden},
		{name: "lock_held", err: fmt.Errorf("billing_run: %w", ratelimit.ErrLockHeld), want: SchedulerJobReasonLockHeld},
		{name: "db_lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: SchedulerJobReasonDBLockTimeout},
		{name: "serialization_failure", err: &pgconn.PgError{Code: "40001"}, want: SchedulerJobReasonSerializationFailure},
		{name: "unique_violation", err: gorm.ErrDuplicatedKey, want: SchedulerJobReasonUniqueViolation},
		{name: "unknown", err: errors.New("boom"), want: SchedulerJobReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySchedulerJobReason(tc.err))
		})
	}
}

func TestAddBatchProcessed(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewSchedulerMetricsForTest(registry)

	m.AddBatchProcessed("billing_run", "orders", 3)
	m.AddBatchProcessed("billing_run", "orders", 0)

	got := testutil.ToFloat64(m.batchProcessed.WithLabelValues("billing_run", "orders"))
	assert.Equal(t, float64(3), got)
}

func TestBillTransitionAndLockWait(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewSchedulerMetricsForTest(registry)

	m.IncBillTransition("UNPAID", "PAID")
	m.IncBillTransition("UNPAID", "PAID")
	m.ObserveDBLockWait(LockResourceUnbilledOrders, 20*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.billTransitions.WithLabelValues("UNPAID", "PAID")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.dbLockWait))
}

func TestClassifySchedulerErrorType(t *testing.T) {
	assert.Equal(t, SchedulerErrorTypeDeadlineExceeded, ClassifySchedulerErrorType(context.Canceled))
	assert.Equal(t, SchedulerErrorTypeDB, ClassifySchedulerErrorType(&pgconn.PgError{Code: "40P01"}))
	assert.Equal(t, SchedulerErrorTypeBusinessRule, ClassifySchedulerErrorType(errors.New("invalid_transition")))
	assert.True(t, IsSchedulerErrorRetryable(context.DeadlineExceeded))
	assert.False(t, IsSchedulerErrorRetryable(gorm.ErrRecordNotFound))
}
