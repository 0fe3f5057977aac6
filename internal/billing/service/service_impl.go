package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tapledger/internal/billing/aggregate"
	"github.com/smallbiznis/tapledger/internal/billing/domain"
	"github.com/smallbiznis/tapledger/internal/clock"
	"github.com/smallbiznis/tapledger/internal/config"
	memberdomain "github.com/smallbiznis/tapledger/internal/member/domain"
	"github.com/smallbiznis/tapledger/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"github.com/smallbiznis/tapledger/internal/ratelimit"
	"github.com/smallbiznis/tapledger/pkg/db/option"
	"github.com/smallbiznis/tapledger/pkg/db/pagination"
	"github.com/smallbiznis/tapledger/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 250
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Config     *config.LedgerConfigHolder
	Repo       domain.Repository
	Bills      repository.Repository[domain.Bill]
	OrderRepo  orderdomain.Repository
	MemberRepo memberdomain.Repository
	Locker     *ratelimit.Locker         `optional:"true"`
	Metrics    *metrics.Metrics          `optional:"true"`
	Scheduler  *metrics.SchedulerMetrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	config     *config.LedgerConfigHolder
	repo       domain.Repository
	bills      repository.Repository[domain.Bill]
	orderRepo  orderdomain.Repository
	memberRepo memberdomain.Repository
	locker     *ratelimit.Locker
	metrics    *metrics.Metrics
	scheduler  *metrics.SchedulerMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("billing.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		config:     p.Config,
		repo:       p.Repo,
		bills:      p.Bills,
		orderRepo:  p.OrderRepo,
		memberRepo: p.MemberRepo,
		locker:     p.Locker,
		metrics:    p.Metrics,
		scheduler:  p.Scheduler,
	}
}

func (s *Service) Current(ctx context.Context) ([]domain.Statement, error) {
	orders, err := s.orderRepo.OrdersUnbilled(ctx, s.db, false)
	if err != nil {
		return nil, err
	}
	return aggregate.Group(orders), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.BillDetail, error) {
	billID, err := parseID(id)
	if err != nil {
		return domain.BillDetail{}, err
	}
	return s.detail(ctx, s.db, billID)
}

func (s *Service) List(ctx context.Context, req domain.ListBillsRequest) (domain.ListBillsResponse, error) {
	filter := &domain.Bill{Period: strings.TrimSpace(req.Period)}
	if req.Status != nil {
		switch *req.Status {
		case domain.BillStatusUnpaid, domain.BillStatusPaid, domain.BillStatusDeferred:
			filter.Status = *req.Status
		default:
			return domain.ListBillsResponse{}, domain.ErrInvalidStatus
		}
	}
	if strings.TrimSpace(req.MemberID) != "" {
		memberID, err := parseID(req.MemberID)
		if err != nil {
			return domain.ListBillsResponse{}, err
		}
		filter.MemberID = &memberID
	}

	page := req.Pagination
	if page.PageSize <= 0 {
		page.PageSize = defaultPageSize
	}
	if page.PageSize > maxPageSize {
		page.PageSize = maxPageSize
	}

	items, err := s.bills.Find(ctx, filter,
		option.WithSortBy(option.WithQuerySortBy("created_at", "desc", map[string]bool{"created_at": true})),
		option.ApplyPagination(page),
	)
	if err != nil {
		return domain.ListBillsResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, page.PageSize, func(b *domain.Bill) string {
		return b.ID.String()
	})
	bills := make([]domain.Bill, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		bills = append(bills, *item)
	}
	return domain.ListBillsResponse{Bills: bills, PageInfo: pageInfo}, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string) (domain.Bill, error) {
	return s.transition(ctx, id, domain.BillStatusPaid)
}

func (s *Service) Defer(ctx context.Context, id string) (domain.Bill, error) {
	return s.transition(ctx, id, domain.BillStatusDeferred)
}

func (s *Service) transition(ctx context.Context, id string, to domain.BillStatus) (domain.Bill, error) {
	billID, err := parseID(id)
	if err != nil {
		return domain.Bill{}, err
	}

	var (
		updated domain.Bill
		from    domain.BillStatus
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockStarted := time.Now()
		bill, err := s.repo.LockBill(ctx, tx, billID)
		s.scheduler.ObserveDBLockWait(metrics.LockResourceBill, time.Since(lockStarted))
		if err != nil {
			return err
		}
		if bill == nil {
			return domain.ErrBillNotFound
		}
		from = bill.Status
		if err := domain.Transition(from, to); err != nil {
			return err
		}

		now := s.clock.Now()
		affected, err := s.repo.UpdateStatus(ctx, tx, billID, from, to, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Another writer moved the bill after our read.
			return domain.ErrInvalidTransition
		}

		reloaded, err := s.repo.FindBill(ctx, tx, billID)
		if err != nil {
			return err
		}
		updated = *reloaded
		return nil
	})
	if err != nil {
		return domain.Bill{}, err
	}

	s.metrics.RecordBillTransition(ctx, string(from), string(to))
	s.scheduler.IncBillTransition(string(from), string(to))
	s.log.Info("bill status changed",
		zap.String("bill_id", billID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return updated, nil
}

func (s *Service) detail(ctx context.Context, db *gorm.DB, billID snowflake.ID) (domain.BillDetail, error) {
	bill, err := s.repo.FindBill(ctx, db, billID)
	if err != nil {
		return domain.BillDetail{}, err
	}
	if bill == nil {
		return domain.BillDetail{}, domain.ErrBillNotFound
	}
	items, err := s.repo.ItemsByBill(ctx, db, billID)
	if err != nil {
		return domain.BillDetail{}, err
	}
	return domain.BillDetail{Bill: *bill, Items: items}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
