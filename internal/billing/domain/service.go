package domain

import (
	"context"
	"io"

	"github.com/smallbiznis/tapledger/pkg/db/pagination"
)

type ListBillsRequest struct {
	Status   *BillStatus
	MemberID string
	Period   string
	pagination.Pagination
}

type ListBillsResponse struct {
	Bills    []Bill              `json:"bills"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

// RunResult summarises a billing run. Run is nil when nothing was billed.
type RunResult struct {
	Run   *BillingRun `json:"run"`
	Bills []Bill      `json:"bills"`
}

type CompensateRequest struct {
	BillID string
	Reason string
}

type AddFeeRequest struct {
	MemberID    string
	AmountCents int64
	Description string
}

type SetBalanceRequest struct {
	MemberID     string
	BalanceCents int64
}

type Service interface {
	// Run bills every unbilled order in one transaction.
	Run(ctx context.Context) (RunResult, error)
	// Current groups unbilled orders without persisting anything.
	Current(ctx context.Context) ([]Statement, error)

	Get(ctx context.Context, id string) (BillDetail, error)
	List(ctx context.Context, req ListBillsRequest) (ListBillsResponse, error)
	MarkPaid(ctx context.Context, id string) (Bill, error)
	Defer(ctx context.Context, id string) (Bill, error)
	Compensate(ctx context.Context, req CompensateRequest) (BillDetail, error)

	AddFee(ctx context.Context, req AddFeeRequest) (Fee, error)
	SetBalance(ctx context.Context, req SetBalanceRequest) error

	RenderPDF(ctx context.Context, id string, w io.Writer) (Bill, error)
	ExportRunXLSX(ctx context.Context, runID string, w io.Writer) (BillingRun, error)
}
