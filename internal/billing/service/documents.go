package service

import (
	"context"
	"io"
	"time"

	"github.com/smallbiznis/tapledger/internal/billing/domain"
	"github.com/smallbiznis/tapledger/internal/billing/render"
	"github.com/smallbiznis/tapledger/internal/observability/tracing"
	"go.opentelemetry.io/otel/attribute"
)

func (s *Service) RenderPDF(ctx context.Context, id string, w io.Writer) (domain.Bill, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return domain.Bill{}, err
	}
	ctx, span := tracing.StartSpan(ctx, "tapledger/billing", "billing.render_pdf",
		attribute.Int("items", len(detail.Items)),
	)
	defer span.End()

	started := time.Now()
	if err := render.BillPDF(w, detail, s.config.Get().Issuer); err != nil {
		span.RecordError(tracing.SafeError(err))
		return domain.Bill{}, err
	}
	s.scheduler.ObserveAggregation("bill_pdf", time.Since(started))
	s.metrics.RecordAggregation(ctx, "bill_pdf")
	return detail.Bill, nil
}

func (s *Service) ExportRunXLSX(ctx context.Context, runID string, w io.Writer) (domain.BillingRun, error) {
	id, err := parseID(runID)
	if err != nil {
		return domain.BillingRun{}, err
	}
	run, err := s.repo.FindRun(ctx, s.db, id)
	if err != nil {
		return domain.BillingRun{}, err
	}
	if run == nil {
		return domain.BillingRun{}, domain.ErrRunNotFound
	}

	bills, err := s.repo.BillsByRun(ctx, s.db, id)
	if err != nil {
		return domain.BillingRun{}, err
	}
	details := make([]domain.BillDetail, 0, len(bills))
	for _, bill := range bills {
		items, err := s.repo.ItemsByBill(ctx, s.db, bill.ID)
		if err != nil {
			return domain.BillingRun{}, err
		}
		details = append(details, domain.BillDetail{Bill: bill, Items: items})
	}

	if err := render.RunXLSX(w, *run, details); err != nil {
		return domain.BillingRun{}, err
	}
	return *run, nil
}
