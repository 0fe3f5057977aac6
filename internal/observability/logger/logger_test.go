package logger

import (
	"context"
	"testing"

	obscontext "github.com/smallbiznis/tapledger/internal/observability/context"
	"github.com/smallbiznis/tapledger/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFieldsSkipsEmptyValues(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithActor(ctx, "42", "treasurer")
	ctx = correlation.ContextWithCorrelationID(ctx, "run-9")

	core, logs := observer.New(zap.InfoLevel)
	WithContext(ctx, zap.New(core)).Info("bill issued")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "42", fields["member_id"])
	assert.Equal(t, "treasurer", fields["member_role"])
	assert.Equal(t, "run-9", fields["correlation_id"])
	assert.NotContains(t, fields, "trace_id")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(nil, Config{Level: "loud"})
	assert.Error(t, err)
}

func TestOperation(t *testing.T) {
	cases := map[string]string{
		`SELECT * FROM "orders" WHERE billed = false FOR UPDATE`: "SELECT_FOR_UPDATE",
		`select * from drinks`:                                  "SELECT",
		`WITH t AS (SELECT 1) UPDATE bills SET status = 'PAID'`: "SELECT",
		`INSERT INTO bill_items (bill_id) VALUES (1)`:           "INSERT",
		``: "UNKNOWN",
	}
	for sql, want := range cases {
		assert.Equal(t, want, Operation(sql), sql)
	}
}
