package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/tapledger/internal/billing/aggregate"
	"github.com/smallbiznis/tapledger/internal/billing/domain"
	"github.com/smallbiznis/tapledger/internal/billing/format"
	"github.com/smallbiznis/tapledger/internal/config"
	"github.com/smallbiznis/tapledger/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"github.com/smallbiznis/tapledger/internal/ratelimit"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	billingRunLockKey = "billing:run"
	billingRunJob     = "billing_run"
	lockGrace         = 30 * time.Second
)

var errStaleRows = errors.New("rows changed during billing run")

// Run closes the current period: every unbilled order ends up in exactly one
// new bill, or nothing changes at all.
func (s *Service) Run(ctx context.Context) (domain.RunResult, error) {
	cfg := s.config.Get()
	timeout := time.Duration(cfg.BillingTimeout) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	var result domain.RunResult
	err := s.locker.WithLock(ctx, billingRunLockKey, timeout+lockGrace, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var err error
		result, err = s.run(ctx, cfg)
		return err
	})
	switch {
	case errors.Is(err, ratelimit.ErrLockHeld):
		s.metrics.RecordBillingRun(ctx, "skipped")
		return domain.RunResult{}, domain.ErrBillingInProgress
	case err != nil:
		s.metrics.RecordBillingRun(ctx, "failed")
		s.log.Error("billing run rolled back", zap.Error(err))
		if errors.Is(err, domain.ErrBillingRunFailed) {
			return domain.RunResult{}, err
		}
		return domain.RunResult{}, fmt.Errorf("%w: %w", domain.ErrBillingRunFailed, err)
	}

	if result.Run == nil {
		s.metrics.RecordBillingRun(ctx, "empty")
		return result, nil
	}
	s.metrics.RecordBillingRun(ctx, "success")
	counts := map[orderdomain.SubjectType]int{}
	for _, bill := range result.Bills {
		counts[bill.SubjectType]++
	}
	for subject, count := range counts {
		s.metrics.RecordBillsCreated(ctx, string(subject), count)
	}
	s.scheduler.AddBatchProcessed(billingRunJob, "orders", result.Run.OrderCount)
	s.scheduler.AddBatchProcessed(billingRunJob, "bills", result.Run.BillCount)
	return result, nil
}

func (s *Service) run(ctx context.Context, cfg config.LedgerConfig) (domain.RunResult, error) {
	ref := s.clock.Now().UTC()
	period := format.Period(ref)

	var result domain.RunResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockStarted := time.Now()
		orders, err := s.orderRepo.OrdersUnbilled(ctx, tx, true)
		s.scheduler.ObserveDBLockWait(metrics.LockResourceUnbilledOrders, time.Since(lockStarted))
		if err != nil {
			return fmt.Errorf("load unbilled orders: %w", err)
		}
		if len(orders) == 0 {
			return nil
		}

		statements := aggregate.Group(orders)
		seq, err := s.repo.NextSequence(ctx, tx, period)
		if err != nil {
			return fmt.Errorf("next bill sequence: %w", err)
		}

		run := domain.BillingRun{
			ID:          s.genID.Generate(),
			Reference:   ulid.MustNew(ulid.Timestamp(ref), ulid.DefaultEntropy()).String(),
			Period:      period,
			ReferenceAt: ref,
			OrderCount:  len(orders),
			CreatedAt:   ref,
		}

		bills := make([]domain.Bill, 0, len(statements))
		for _, statement := range statements {
			bill, err := s.billStatement(ctx, tx, cfg, run, statement, seq)
			if err != nil {
				return err
			}
			bills = append(bills, bill)
			run.TotalCents += bill.TotalCents
			seq++
		}
		run.BillCount = len(bills)

		if err := s.repo.InsertRun(ctx, tx, &run); err != nil {
			return fmt.Errorf("insert billing run: %w", err)
		}

		totals := aggregate.Totals(statements)
		s.log.Info("billing run committed",
			zap.String("period", period),
			zap.String("reference", run.Reference),
			zap.Int("bills", run.BillCount),
			zap.Int("orders", run.OrderCount),
			zap.Int64("member_drinks_cents", totals[orderdomain.SubjectMember]),
			zap.Int64("event_drinks_cents", totals[orderdomain.SubjectEvent]),
		)
		result = domain.RunResult{Run: &run, Bills: bills}
		return nil
	}, s.txOptions())
	if err != nil {
		return domain.RunResult{}, err
	}
	return result, nil
}

// billStatement persists one statement as a bill and marks its orders,
// fees and carry-over balance as consumed.
func (s *Service) billStatement(ctx context.Context, tx *gorm.DB, cfg config.LedgerConfig, run domain.BillingRun, statement domain.Statement, seq int64) (domain.Bill, error) {
	number, err := format.BillNumber(cfg.BillNumberFormat, run.ReferenceAt, seq)
	if err != nil {
		return domain.Bill{}, err
	}

	runID := run.ID
	bill := domain.Bill{
		ID:               s.genID.Generate(),
		Number:           number,
		Period:           run.Period,
		Sequence:         seq,
		RunID:            &runID,
		SubjectType:      statement.SubjectType,
		DisplayName:      statement.DisplayName,
		DrinksTotalCents: statement.TotalCents,
		Currency:         cfg.Currency,
		Status:           domain.BillStatusUnpaid,
		Metadata: datatypes.JSONMap{
			"run_reference": run.Reference,
		},
		CreatedAt: run.ReferenceAt,
		UpdatedAt: run.ReferenceAt,
	}

	var feeIDs []snowflake.ID
	switch statement.SubjectType {
	case orderdomain.SubjectEvent:
		bill.EventLabel = statement.EventLabel
		bill.Metadata["event_key"] = slug.Make(statement.EventLabel)
	default:
		memberID := statement.MemberID
		bill.MemberID = &memberID

		lockStarted := time.Now()
		fees, err := s.repo.PendingFees(ctx, tx, memberID, true)
		s.scheduler.ObserveDBLockWait(metrics.LockResourcePendingFees, time.Since(lockStarted))
		if err != nil {
			return domain.Bill{}, fmt.Errorf("load pending fees: %w", err)
		}
		for _, fee := range fees {
			bill.FeesCents += fee.AmountCents
			feeIDs = append(feeIDs, fee.ID)
		}

		member, err := s.memberRepo.LockByID(ctx, tx, memberID)
		if err != nil {
			return domain.Bill{}, fmt.Errorf("load member balance: %w", err)
		}
		if member != nil {
			bill.OldBalanceCents = member.BalanceCents
		}
	}
	bill.TotalCents = bill.DrinksTotalCents + bill.FeesCents + bill.OldBalanceCents

	if err := s.repo.InsertBill(ctx, tx, &bill); err != nil {
		return domain.Bill{}, fmt.Errorf("insert bill %s: %w", number, err)
	}

	items := make([]domain.BillItem, 0, len(statement.Items))
	for i, line := range statement.Items {
		items = append(items, domain.BillItem{
			ID:             s.genID.Generate(),
			BillID:         bill.ID,
			Position:       i,
			DrinkName:      line.DrinkName,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			SubtotalCents:  line.SubtotalCents,
			CreatedAt:      run.ReferenceAt,
		})
	}
	if err := s.repo.InsertItems(ctx, tx, items); err != nil {
		return domain.Bill{}, fmt.Errorf("insert bill items: %w", err)
	}

	orderIDs := statement.OrderIDs()
	affected, err := s.orderRepo.MarkOrdersBilled(ctx, tx, bill.ID, orderIDs)
	if err != nil {
		return domain.Bill{}, fmt.Errorf("mark orders billed: %w", err)
	}
	if affected != int64(len(orderIDs)) {
		return domain.Bill{}, fmt.Errorf("mark orders billed: %w", errStaleRows)
	}

	affected, err = s.repo.MarkFeesBilled(ctx, tx, bill.ID, feeIDs)
	if err != nil {
		return domain.Bill{}, fmt.Errorf("mark fees billed: %w", err)
	}
	if affected != int64(len(feeIDs)) {
		return domain.Bill{}, fmt.Errorf("mark fees billed: %w", errStaleRows)
	}

	if bill.MemberID != nil && bill.OldBalanceCents != 0 {
		if _, err := s.memberRepo.SetBalance(ctx, tx, *bill.MemberID, 0, run.ReferenceAt); err != nil {
			return domain.Bill{}, fmt.Errorf("reset balance: %w", err)
		}
	}
	return bill, nil
}

// txOptions asks for serializable isolation on postgres. Other dialects rely
// on row locks or, for sqlite, on the single writer.
func (s *Service) txOptions() *sql.TxOptions {
	if s.db.Dialector != nil && s.db.Dialector.Name() == "postgres" {
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return nil
}
