package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/smallbiznis/tapledger/internal/billing/domain"
	"github.com/smallbiznis/tapledger/internal/billing/domain/mock"
	"github.com/smallbiznis/tapledger/internal/billing/repository"
	"github.com/smallbiznis/tapledger/internal/clock"
	"github.com/smallbiznis/tapledger/internal/config"
	memberdomain "github.com/smallbiznis/tapledger/internal/member/domain"
	memberrepository "github.com/smallbiznis/tapledger/internal/member/repository"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	orderrepository "github.com/smallbiznis/tapledger/internal/order/repository"
	"github.com/smallbiznis/tapledger/internal/testutil"
	"github.com/smallbiznis/tapledger/pkg/db/pagination"
	pkgrepository "github.com/smallbiznis/tapledger/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var runAt = time.Date(2024, 3, 31, 4, 0, 0, 0, time.UTC)

type fixture struct {
	db     *gorm.DB
	svc    domain.Service
	ledger *testutil.Ledger
	clock  *clock.FakeClock
}

func newFixture(t *testing.T, repo domain.Repository) fixture {
	t.Helper()
	db := testutil.NewDB(t,
		&memberdomain.Member{}, &orderdomain.Drink{}, &orderdomain.Order{},
		&domain.Bill{}, &domain.BillItem{}, &domain.Fee{}, &domain.BillingRun{},
	)
	node := testutil.NewNode(t)
	if repo == nil {
		repo = repository.Provide()
	}
	fc := clock.NewFakeClock(runAt)
	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fc,
		Config:     config.NewStaticLedgerConfigHolder(config.DefaultLedgerConfig()),
		Repo:       repo,
		Bills:      pkgrepository.ProvideStore[domain.Bill](db),
		OrderRepo:  orderrepository.Provide(),
		MemberRepo: memberrepository.Provide(),
	})
	return fixture{db: db, svc: svc, ledger: testutil.NewLedger(db, node), clock: fc}
}

func (f fixture) count(t *testing.T, model any, where ...any) int64 {
	t.Helper()
	var n int64
	stmt := f.db.Model(model)
	if len(where) > 0 {
		stmt = stmt.Where(where[0], where[1:]...)
	}
	require.NoError(t, stmt.Count(&n).Error)
	return n
}

func at(day int) time.Time {
	return time.Date(2024, 3, day, 20, 0, 0, 0, time.UTC)
}

func TestRunMergesLinesAtSamePrice(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.ledger.Member(ctx, "Alice")
	bier := f.ledger.Drink(ctx, "Bier", "0.5", 300)

	f.ledger.Order(ctx, alice, bier, 2, 250, "", at(1))
	f.ledger.Order(ctx, alice, bier, 3, 250, "", at(2))
	f.ledger.Order(ctx, alice, bier, 1, 300, "", at(3))

	result, err := f.svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Bills, 1)

	detail, err := f.svc.Get(ctx, result.Bills[0].ID.String())
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, int64(5), detail.Items[0].Quantity)
	assert.Equal(t, int64(1250), detail.Items[0].SubtotalCents)
	assert.Equal(t, int64(1), detail.Items[1].Quantity)
	assert.Equal(t, int64(300), detail.Items[1].UnitPriceCents)
	assert.Equal(t, int64(1550), detail.Bill.DrinksTotalCents)
	assert.Equal(t, int64(1550), detail.Bill.TotalCents)
	assert.Equal(t, domain.BillStatusUnpaid, detail.Bill.Status)
	assert.Equal(t, "TAP-202403-0001", detail.Bill.Number)
	assert.Equal(t, "2024-03", detail.Bill.Period)
}

func TestRunBillsEveryOrderExactlyOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.ledger.Member(ctx, "Alice")
	bob := f.ledger.Member(ctx, "Bob")
	bier := f.ledger.Drink(ctx, "Bier", "0.5", 250)
	cola := f.ledger.Drink(ctx, "Cola", "0.33", 150)

	orders := []orderdomain.Order{
		f.ledger.Order(ctx, alice, bier, 2, 250, "", at(1)),
		f.ledger.Order(ctx, bob, cola, 1, 150, "", at(2)),
		f.ledger.Order(ctx, bob, bier, 10, 250, "Sommerfest", at(3)),
		f.ledger.Order(ctx, alice, cola, 4, 150, "Sommerfest", at(4)),
	}

	result, err := f.svc.Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, result.Run)
	require.Len(t, result.Bills, 3)
	assert.Equal(t, 4, result.Run.OrderCount)
	assert.Equal(t, 3, result.Run.BillCount)
	assert.NotEmpty(t, result.Run.Reference)

	billIDs := map[string]bool{}
	for _, bill := range result.Bills {
		billIDs[bill.ID.String()] = true
	}
	for _, order := range orders {
		var stored orderdomain.Order
		require.NoError(t, f.db.First(&stored, "id = ?", order.ID).Error)
		assert.True(t, stored.Billed)
		require.NotNil(t, stored.BillID)
		assert.True(t, billIDs[stored.BillID.String()], "order billed into a bill of this run")
	}

	event := result.Bills[2]
	assert.Equal(t, orderdomain.SubjectEvent, event.SubjectType)
	assert.Equal(t, "Sommerfest", event.EventLabel)
	assert.Equal(t, "Bob", event.DisplayName)
	assert.Nil(t, event.MemberID)
	assert.Equal(t, int64(3100), event.TotalCents)
	assert.Equal(t, "sommerfest", event.Metadata["event_key"])

	again, err := f.svc.Run(ctx)
	require.NoError(t, err)
	assert.Nil(t, again.Run)
	assert.Empty(t, again.Bills)
	assert.Equal(t, int64(3), f.count(t, &domain.Bill{}))
	assert.Equal(t, int64(1), f.count(t, &domain.BillingRun{}))
}

func TestRunAddsFeesAndCarryOver(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.ledger.Member(ctx, "Alice")
	bier := f.ledger.Drink(ctx, "Bier", "0.5", 250)
	f.ledger.Order(ctx, alice, bier, 4, 250, "", at(5))

	fee, err := f.svc.AddFee(ctx, domain.AddFeeRequest{
		MemberID: alice.ID.String(), AmountCents: 500, Description: "Semester fee",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.SetBalance(ctx, domain.SetBalanceRequest{
		MemberID: alice.ID.String(), BalanceCents: -200,
	}))

	result, err := f.svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Bills, 1)
	bill := result.Bills[0]
	assert.Equal(t, int64(1000), bill.DrinksTotalCents)
	assert.Equal(t, int64(500), bill.FeesCents)
	assert.Equal(t, int64(-200), bill.OldBalanceCents)
	assert.Equal(t, int64(1300), bill.TotalCents)

	var storedFee domain.Fee
	require.NoError(t, f.db.First(&storedFee, "id = ?", fee.ID).Error)
	assert.True(t, storedFee.Billed)
	assert.Equal(t, bill.ID, *storedFee.BillID)

	var member memberdomain.Member
	require.NoError(t, f.db.First(&member, "id = ?", alice.ID).Error)
	assert.Zero(t, member.BalanceCents)
}

func TestRunNumbersBillsPerPeriod(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.ledger.Member(ctx, "Alice")
	bob := f.ledger.Member(ctx, "Bob")
	bier := f.ledger.Drink(ctx, "Bier", "0.5", 250)

	f.ledger.Order(ctx, alice, bier, 1, 250, "", at(1))
	first, err := f.svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, first.Bills, 1)

	f.ledger.Order(ctx, bob, bier, 1, 250, "", at(30))
	second, err := f.svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, second.Bills, 1)
	assert.Equal(t, "TAP-202403-0002", second.Bills[0].Number)

	f.clock.Set(time.Date(2024, 4, 30, 4, 0, 0, 0, time.UTC))
	f.ledger.Order(ctx, alice, bier, 1, 250, "", time.Date(2024, 4, 10, 20, 0, 0, 0, time.UTC))
	third, err := f.svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, third.Bills, 1)
	assert.Equal(t, "TAP-202404-0001", third.Bills[0].Number)
}

func TestRunRollsBackOnFailure(t *testing.T) {
	store := repository.Provide()
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)

	repo.EXPECT().NextSequence(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.NextSequence).AnyTimes()
	repo.EXPECT().PendingFees(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.PendingFees).AnyTimes()
	repo.EXPECT().InsertBill(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.InsertBill).AnyTimes()
	repo.EXPECT().MarkFeesBilled(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.MarkFeesBilled).AnyTimes()
	repo.EXPECT().InsertFee(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.InsertFee).AnyTimes()

	calls := 0
	repo.EXPECT().InsertItems(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, db *gorm.DB, items []domain.BillItem) error {
			calls++
			if calls == 2 {
				return errors.New("disk full")
			}
			return store.InsertItems(ctx, db, items)
		}).AnyTimes()
	repo.EXPECT().InsertRun(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	f := newFixture(t, repo)
	ctx := context.Background()
	alice := f.ledger.Member(ctx, "Alice")
	bob := f.ledger.Member(ctx, "Bob")
	bier := f.ledger.Drink(ctx, "Bier", "0.5", 250)
	f.ledger.Order(ctx, alice, bier, 1, 250, "", at(1))
	f.ledger.Order(ctx, bob, bier, 2, 250, "", at(2))
	_, err := f.svc.AddFee(ctx, domain.AddFeeRequest{MemberID: alice.ID.String(), AmountCents: 300, Description: "Glass"})
	require.NoError(t, err)
	require.NoError(t, f.svc.SetBalance(ctx, domain.SetBalanceRequest{MemberID: alice.ID.String(), BalanceCents: 100}))

	_, err = f.svc.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBillingRunFailed)

	assert.Zero(t, f.count(t, &domain.Bill{}))
	assert.Zero(t, f.count(t, &domain.BillItem{}))
	assert.Zero(t, f.count(t, &orderdomain.Order{}, "billed = ?", true))
	assert.Zero(t, f.count(t, &domain.Fee{}, "billed = ?", true))

	var member memberdomain.Member
	require.NoError(t, f.db.First(&member, "id = ?", alice.ID).Error)
	assert.Equal(t, int64(100), member.BalanceCents)
}

func TestCurrentDoesNotPersist(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.ledger.Member(ctx, "Alice")
	bier := f.ledger.Drink(ctx, "Bier", "0.5", 250)
	f.ledger.Order(ctx, alice, bier, 2, 250, "", at(1))
	_, err := f.svc.AddFee(ctx, domain.AddFeeRequest{MemberID: alice.ID.String(), AmountCents: 300, Description: "Glass"})
	require.NoError(t, err)

	statements, err := f.svc.Current(ctx)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Equal(t, int64(500), statements[0].TotalCents, "fees are not part of the current view")
	assert.Zero(t, f.count(t, &domain.Bill{}))
	assert.Zero(t, f.count(t, &orderdomain.Order{}, "billed = ?", true))
}

func TestBillLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.ledger.Member(ctx, "Alice")
	bob := f.ledger.Member(ctx, "Bob")
	bier := f.ledger.Drink(ctx, "Bier", "0.5", 250)
	f.ledger.Order(ctx, alice, bier, 1, 250, "", at(1))
	f.ledger.Order(ctx, bob, bier, 1, 250, "", at(1))

	result, err := f.svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Bills, 2)
	first, second := result.Bills[0].ID.String(), result.Bills[1].ID.String()

	paid, err := f.svc.MarkPaid(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = f.svc.Defer(ctx, first)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.svc.MarkPaid(ctx, first)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	deferred, err := f.svc.Defer(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusDeferred, deferred.Status)
	paid, err = f.svc.MarkPaid(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, paid.Status)

	_, err = f.svc.MarkPaid(ctx, "12345")
	assert.ErrorIs(t, err, domain.ErrBillNotFound)
	_, err = f.svc.MarkPaid(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	detail, err := f.svc.Get(ctx, first)
	require.NoError(t, err)
	assert.Len(t, detail.Items, 1, "status changes keep the items")
}

func TestCompensateIssuesCreditBill(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.ledger.Member(ctx, "Alice")
	bier := f.ledger.Drink(ctx, "Bier", "0.5", 250)
	f.ledger.Order(ctx, alice, bier, 3, 250, "", at(1))

	result, err := f.svc.Run(ctx)
	require.NoError(t, err)
	original := result.Bills[0]

	_, err = f.svc.Compensate(ctx, domain.CompensateRequest{BillID: original.ID.String()})
	assert.ErrorIs(t, err, domain.ErrInvalidReason)

	f.clock.Advance(time.Hour)
	credit, err := f.svc.Compensate(ctx, domain.CompensateRequest{BillID: original.ID.String(), Reason: "double entry"})
	require.NoError(t, err)
	require.NotNil(t, credit.Bill.CompensatesBillID)
	assert.Equal(t, original.ID, *credit.Bill.CompensatesBillID)
	assert.Equal(t, -original.TotalCents, credit.Bill.TotalCents)
	require.Len(t, credit.Items, 1)
	assert.Equal(t, int64(-3), credit.Items[0].Quantity)
	assert.Equal(t, int64(-750), credit.Items[0].SubtotalCents)
	assert.Equal(t, "TAP-202403-0002", credit.Bill.Number)

	unchanged, err := f.svc.Get(ctx, original.ID.String())
	require.NoError(t, err)
	assert.Equal(t, original.TotalCents, unchanged.Bill.TotalCents)
	assert.Equal(t, int64(3), unchanged.Items[0].Quantity)

	_, err = f.svc.Compensate(ctx, domain.CompensateRequest{BillID: original.ID.String(), Reason: "again"})
	assert.ErrorIs(t, err, domain.ErrAlreadyCompensated)
	_, err = f.svc.Compensate(ctx, domain.CompensateRequest{BillID: credit.Bill.ID.String(), Reason: "undo"})
	assert.ErrorIs(t, err, domain.ErrAlreadyCompensated)
}

func passThroughRepo(t *testing.T, nextSequence func(context.Context, *gorm.DB, string) (int64, error)) *mock.MockRepository {
	t.Helper()
	store := repository.Provide()
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().InsertBill(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.InsertBill).AnyTimes()
	repo.EXPECT().InsertItems(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.InsertItems).AnyTimes()
	repo.EXPECT().FindBill(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.FindBill).AnyTimes()
	repo.EXPECT().LockBill(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.LockBill).AnyTimes()
	repo.EXPECT().ItemsByBill(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.ItemsByBill).AnyTimes()
	repo.EXPECT().BillsByRun(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.BillsByRun).AnyTimes()
	repo.EXPECT().CompensationOf(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.CompensationOf).AnyTimes()
	repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.UpdateStatus).AnyTimes()
	repo.EXPECT().NextSequence(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(nextSequence).AnyTimes()
	repo.EXPECT().InsertFee(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.InsertFee).AnyTimes()
	repo.EXPECT().PendingFees(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.PendingFees).AnyTimes()
	repo.EXPECT().MarkFeesBilled(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.MarkFeesBilled).AnyTimes()
	repo.EXPECT().InsertRun(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.InsertRun).AnyTimes()
	repo.EXPECT().FindRun(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(store.FindRun).AnyTimes()
	return repo
}

func TestCompensateRetriesTakenSequence(t *testing.T) {
	store := repository.Provide()
	stale := 0
	calls := 0
	repo := passThroughRepo(t, func(ctx context.Context, db *gorm.DB, period string) (int64, error) {
		calls++
		if stale > 0 {
			// Another writer committed a bill between the read and the insert.
			stale--
			return 1, nil
		}
		return store.NextSequence(ctx, db, period)
	})

	f := newFixture(t, repo)
	ctx := context.Background()
	alice := f.ledger.Member(ctx, "Alice")
	bob := f.ledger.Member(ctx, "Bob")
	bier := f.ledger.Drink(ctx, "Bier", "0.5", 250)
	f.ledger.Order(ctx, alice, bier, 1, 250, "", at(1))
	f.ledger.Order(ctx, bob, bier, 2, 250, "", at(2))

	result, err := f.svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Bills, 2)

	stale, calls = 1, 0
	credit, err := f.svc.Compensate(ctx, domain.CompensateRequest{BillID: result.Bills[0].ID.String(), Reason: "double entry"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "the sequence is read again after the collision")
	assert.Equal(t, int64(3), credit.Bill.Sequence)
	assert.Equal(t, "TAP-202403-0003", credit.Bill.Number)
	assert.Equal(t, int64(1), f.count(t, &domain.Bill{}, "compensates_bill_id IS NOT NULL"))

	stale, calls = 2, 0
	_, err = f.svc.Compensate(ctx, domain.CompensateRequest{BillID: result.Bills[1].ID.String(), Reason: "double entry"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAlreadyCompensated)
	assert.Equal(t, 2, calls, "a single retry")
	assert.Equal(t, int64(3), f.count(t, &domain.Bill{}), "the failed attempts leave nothing behind")
	assert.Equal(t, int64(3), f.count(t, &domain.BillItem{}))
}

func TestListBillsPaginates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	bier := f.ledger.Drink(ctx, "Bier", "0.5", 250)
	var alice memberdomain.Member
	for i, name := range []string{"Alice", "Bob", "Carol"} {
		m := f.ledger.Member(ctx, name)
		if i == 0 {
			alice = m
		}
		f.ledger.Order(ctx, m, bier, 1, 250, "", at(i+1))
	}
	result, err := f.svc.Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Bills, 3)

	page, err := f.svc.List(ctx, domain.ListBillsRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	assert.Len(t, page.Bills, 2)
	assert.True(t, page.PageInfo.HasMore)

	rest, err := f.svc.List(ctx, domain.ListBillsRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: page.PageInfo.NextPageToken}})
	require.NoError(t, err)
	assert.Len(t, rest.Bills, 1)
	assert.False(t, rest.PageInfo.HasMore)

	mine, err := f.svc.List(ctx, domain.ListBillsRequest{MemberID: alice.ID.String()})
	require.NoError(t, err)
	require.Len(t, mine.Bills, 1)
	assert.Equal(t, alice.ID, *mine.Bills[0].MemberID)

	bogus := domain.BillStatus("VOID")
	_, err = f.svc.List(ctx, domain.ListBillsRequest{Status: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestAddFeeValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.ledger.Member(ctx, "Alice")

	_, err := f.svc.AddFee(ctx, domain.AddFeeRequest{MemberID: alice.ID.String(), Description: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.svc.AddFee(ctx, domain.AddFeeRequest{MemberID: alice.ID.String(), AmountCents: 100, Description: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidDescription)
	_, err = f.svc.AddFee(ctx, domain.AddFeeRequest{MemberID: "987654321", AmountCents: 100, Description: "x"})
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
	err = f.svc.SetBalance(ctx, domain.SetBalanceRequest{MemberID: "987654321", BalanceCents: 1})
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestDocuments(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.ledger.Member(ctx, "Alice")
	bier := f.ledger.Drink(ctx, "Bier", "0.5", 250)
	f.ledger.Order(ctx, alice, bier, 2, 250, "", at(1))
	result, err := f.svc.Run(ctx)
	require.NoError(t, err)

	var pdf bytes.Buffer
	bill, err := f.svc.RenderPDF(ctx, result.Bills[0].ID.String(), &pdf)
	require.NoError(t, err)
	assert.Equal(t, result.Bills[0].Number, bill.Number)
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")))

	var xlsx bytes.Buffer
	run, err := f.svc.ExportRunXLSX(ctx, result.Run.ID.String(), &xlsx)
	require.NoError(t, err)
	assert.Equal(t, result.Run.Reference, run.Reference)
	assert.NotZero(t, xlsx.Len())

	_, err = f.svc.ExportRunXLSX(ctx, "123", &xlsx)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}
