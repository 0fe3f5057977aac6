package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tapledger/internal/billing/domain"
	"github.com/smallbiznis/tapledger/internal/billing/format"
	"github.com/smallbiznis/tapledger/internal/observability/metrics"
	pkgdb "github.com/smallbiznis/tapledger/pkg/db"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Compensate issues a credit bill that negates every line of an existing
// bill. The original bill and its items stay as they are.
func (s *Service) Compensate(ctx context.Context, req domain.CompensateRequest) (domain.BillDetail, error) {
	billID, err := parseID(req.BillID)
	if err != nil {
		return domain.BillDetail{}, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.BillDetail{}, domain.ErrInvalidReason
	}

	var created domain.BillDetail
	for attempt := 1; ; attempt++ {
		created, err = s.compensateOnce(ctx, billID, reason)
		if err == nil || attempt > compensateRetries || !isSequenceRace(err) {
			break
		}
		s.log.Warn("bill sequence taken, retrying compensation",
			zap.String("bill_id", billID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	if err != nil {
		return domain.BillDetail{}, err
	}

	s.log.Info("bill compensated",
		zap.String("bill_id", billID.String()),
		zap.String("credit_number", created.Bill.Number),
	)
	return created, nil
}

// compensateRetries bounds how often a compensation re-reads the period
// sequence after a concurrent writer took the same number.
const compensateRetries = 1

// isSequenceRace reports a concurrent bill insert in the same period. The
// transaction is rolled back, so running it again reads a fresh MAX(sequence).
func isSequenceRace(err error) bool {
	return pkgdb.IsDuplicateKeyErr(err) || pkgdb.IsRetryableTxErr(err)
}

func (s *Service) compensateOnce(ctx context.Context, billID snowflake.ID, reason string) (domain.BillDetail, error) {
	cfg := s.config.Get()

	var created domain.BillDetail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockStarted := time.Now()
		original, err := s.repo.LockBill(ctx, tx, billID)
		s.scheduler.ObserveDBLockWait(metrics.LockResourceBill, time.Since(lockStarted))
		if err != nil {
			return err
		}
		if original == nil {
			return domain.ErrBillNotFound
		}
		if original.CompensatesBillID != nil {
			return domain.ErrAlreadyCompensated
		}
		existing, err := s.repo.CompensationOf(ctx, tx, billID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyCompensated
		}

		items, err := s.repo.ItemsByBill(ctx, tx, billID)
		if err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		period := format.Period(now)
		seq, err := s.repo.NextSequence(ctx, tx, period)
		if err != nil {
			return err
		}
		number, err := format.BillNumber(cfg.BillNumberFormat, now, seq)
		if err != nil {
			return err
		}

		originalID := original.ID
		credit := domain.Bill{
			ID:                s.genID.Generate(),
			Number:            number,
			Period:            period,
			Sequence:          seq,
			SubjectType:       original.SubjectType,
			MemberID:          original.MemberID,
			EventLabel:        original.EventLabel,
			DisplayName:       original.DisplayName,
			DrinksTotalCents:  -original.DrinksTotalCents,
			FeesCents:         -original.FeesCents,
			OldBalanceCents:   -original.OldBalanceCents,
			TotalCents:        -original.TotalCents,
			Currency:          original.Currency,
			Status:            domain.BillStatusUnpaid,
			CompensatesBillID: &originalID,
			Metadata: datatypes.JSONMap{
				"reason":          reason,
				"original_number": original.Number,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.InsertBill(ctx, tx, &credit); err != nil {
			return fmt.Errorf("insert credit bill: %w", err)
		}

		negated := make([]domain.BillItem, 0, len(items))
		for _, item := range items {
			negated = append(negated, domain.BillItem{
				ID:             s.genID.Generate(),
				BillID:         credit.ID,
				Position:       item.Position,
				DrinkName:      item.DrinkName,
				Quantity:       -item.Quantity,
				UnitPriceCents: item.UnitPriceCents,
				SubtotalCents:  -item.SubtotalCents,
				CreatedAt:      now,
			})
		}
		if err := s.repo.InsertItems(ctx, tx, negated); err != nil {
			return fmt.Errorf("insert credit items: %w", err)
		}

		created = domain.BillDetail{Bill: credit, Items: negated}
		return nil
	})
	return created, err
}
