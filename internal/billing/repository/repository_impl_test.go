package repository

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/tapledger/internal/billing/domain"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"github.com/smallbiznis/tapledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestNextSequenceIsScopedToPeriod(t *testing.T) {
	db := testutil.NewDB(t, &domain.Bill{})
	node := testutil.NewNode(t)
	repo := Provide()
	ctx := context.Background()

	seq, err := repo.NextSequence(ctx, db, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	for i, period := range []string{"2024-03", "2024-03", "2024-04"} {
		require.NoError(t, repo.InsertBill(ctx, db, &domain.Bill{
			ID:          node.Generate(),
			Number:      period + "-" + string(rune('a'+i)),
			Period:      period,
			Sequence:    int64(i + 1),
			SubjectType: orderdomain.SubjectMember,
			DisplayName: "Alice",
			Currency:    "EUR",
			Status:      domain.BillStatusUnpaid,
			Metadata:    datatypes.JSONMap{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}))
	}

	seq, err = repo.NextSequence(ctx, db, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)
	seq, err = repo.NextSequence(ctx, db, "2024-05")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

func TestUpdateStatusIsGuardedByCurrentStatus(t *testing.T) {
	db := testutil.NewDB(t, &domain.Bill{})
	node := testutil.NewNode(t)
	repo := Provide()
	ctx := context.Background()
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	bill := domain.Bill{
		ID:          node.Generate(),
		Number:      "TAP-202403-0001",
		Period:      "2024-03",
		Sequence:    1,
		SubjectType: orderdomain.SubjectMember,
		DisplayName: "Alice",
		Currency:    "EUR",
		Status:      domain.BillStatusUnpaid,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.InsertBill(ctx, db, &bill))

	affected, err := repo.UpdateStatus(ctx, db, bill.ID, domain.BillStatusDeferred, domain.BillStatusPaid, now)
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = repo.UpdateStatus(ctx, db, bill.ID, domain.BillStatusUnpaid, domain.BillStatusPaid, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	stored, err := repo.FindBill(ctx, db, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, stored.Status)
	require.NotNil(t, stored.PaidAt)

	missing, err := repo.FindBill(ctx, db, node.Generate())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
