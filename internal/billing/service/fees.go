package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/tapledger/internal/billing/domain"
	"gorm.io/gorm"
)

// AddFee records a charge the member's next bill picks up.
func (s *Service) AddFee(ctx context.Context, req domain.AddFeeRequest) (domain.Fee, error) {
	memberID, err := parseID(req.MemberID)
	if err != nil {
		return domain.Fee{}, err
	}
	if req.AmountCents == 0 {
		return domain.Fee{}, domain.ErrInvalidAmount
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.Fee{}, domain.ErrInvalidDescription
	}

	var fee domain.Fee
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.memberRepo.FindByID(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if member == nil {
			return domain.ErrMemberNotFound
		}
		fee = domain.Fee{
			ID:          s.genID.Generate(),
			MemberID:    memberID,
			AmountCents: req.AmountCents,
			Description: description,
			CreatedAt:   s.clock.Now(),
		}
		return s.repo.InsertFee(ctx, tx, &fee)
	})
	if err != nil {
		return domain.Fee{}, err
	}
	return fee, nil
}

// SetBalance overwrites the carry-over the member's next bill starts from.
func (s *Service) SetBalance(ctx context.Context, req domain.SetBalanceRequest) error {
	memberID, err := parseID(req.MemberID)
	if err != nil {
		return err
	}
	affected, err := s.memberRepo.SetBalance(ctx, s.db, memberID, req.BalanceCents, s.clock.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}
