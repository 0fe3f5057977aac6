package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tapledger/internal/clock"
	"github.com/smallbiznis/tapledger/internal/config"
	memberdomain "github.com/smallbiznis/tapledger/internal/member/domain"
	"github.com/smallbiznis/tapledger/internal/observability/metrics"
	"github.com/smallbiznis/tapledger/internal/observability/tracing"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"github.com/smallbiznis/tapledger/internal/stats/aggregate"
	"github.com/smallbiznis/tapledger/internal/stats/domain"
	"github.com/smallbiznis/tapledger/internal/stats/window"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxMonths           = 36
	maxLeaderboardLimit = 100
	tracerName          = "tapledger/stats"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	OrderRepo  orderdomain.Repository
	MemberRepo memberdomain.Repository
	Config     *config.LedgerConfigHolder
	Cache      domain.LeaderboardCache   `optional:"true"`
	Metrics    *metrics.Metrics          `optional:"true"`
	Scheduler  *metrics.SchedulerMetrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	orderRepo  orderdomain.Repository
	memberRepo memberdomain.Repository
	config     *config.LedgerConfigHolder
	cache      domain.LeaderboardCache
	metrics    *metrics.Metrics
	scheduler  *metrics.SchedulerMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("stats.service"),
		clock:      p.Clock,
		orderRepo:  p.OrderRepo,
		memberRepo: p.MemberRepo,
		config:     p.Config,
		cache:      p.Cache,
		metrics:    p.Metrics,
		scheduler:  p.Scheduler,
	}
}

func (s *Service) Consumption(ctx context.Context, req domain.ConsumptionRequest) (domain.ConsumptionResponse, error) {
	cfg := s.config.Get()
	months := req.Months
	if months == 0 {
		months = cfg.TrendMonths
	}
	if months < 1 || months > maxMonths {
		return domain.ConsumptionResponse{}, domain.ErrInvalidMonths
	}

	filter := orderdomain.OrderFilter{ExcludeEventOrders: true}
	if memberID := strings.TrimSpace(req.MemberID); memberID != "" {
		id, err := snowflake.ParseString(memberID)
		if err != nil || id <= 0 {
			return domain.ConsumptionResponse{}, domain.ErrInvalidMember
		}
		filter.MemberID = &id
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "stats.consumption",
		attribute.Int("months", months),
		attribute.Bool("per_drink", req.PerDrink),
	)
	defer span.End()
	defer s.observe(ctx, "consumption", time.Now())

	ref := window.NewReference(s.clock.Now())
	buckets := window.MonthlyBuckets(ref, months)
	outer := window.Outer(buckets)

	orders, err := s.orderRepo.OrdersInRange(ctx, s.db, outer.Start, outer.End, filter)
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		return domain.ConsumptionResponse{}, err
	}

	result := aggregate.Consumption(orders, buckets, aggregate.ConsumptionOptions{PerDrink: req.PerDrink})
	return domain.ConsumptionResponse{
		Reference: ref.Now,
		Points:    result.Points,
		Legend:    result.Legend,
	}, nil
}

func (s *Service) Leaderboard(ctx context.Context, req domain.LeaderboardRequest) (domain.LeaderboardResponse, error) {
	cfg := s.config.Get()
	limit := req.Limit
	if limit == 0 {
		limit = cfg.LeaderboardLimit
	}
	if limit < 1 || limit > maxLeaderboardLimit {
		return domain.LeaderboardResponse{}, domain.ErrInvalidLimit
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "stats.leaderboard", attribute.Int("limit", limit))
	defer span.End()

	ref := window.NewReference(s.clock.Now())
	key := leaderboardCacheKey(ref, cfg, limit)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("leaderboard cache read failed", zap.Error(err))
		} else if ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return *cached, nil
		}
	}

	defer s.observe(ctx, "leaderboard", time.Now())
	opts := aggregate.LeaderboardOptions{Months: cfg.TrendMonths, Days: cfg.WindowDays, Limit: limit}
	orders, err := s.loadOrders(ctx, ref, opts.Months, opts.Days)
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		return domain.LeaderboardResponse{}, err
	}
	resp, err := s.leaderboard(ctx, orders, ref, opts)
	if err != nil {
		return domain.LeaderboardResponse{}, err
	}

	if s.cache != nil && cfg.LeaderboardTTL > 0 {
		ttl := time.Duration(cfg.LeaderboardTTL) * time.Second
		if err := s.cache.Set(ctx, key, resp, ttl); err != nil {
			s.log.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

func (s *Service) CommunityGrowth(ctx context.Context) (domain.GrowthResponse, error) {
	cfg := s.config.Get()
	ctx, span := tracing.StartSpan(ctx, tracerName, "stats.growth")
	defer span.End()
	defer s.observe(ctx, "growth", time.Now())

	ref := window.NewReference(s.clock.Now())
	w := window.RollingWindows(ref, cfg.WindowDays)
	outer := window.Span(w.Current, w.Previous)
	orders, err := s.orderRepo.OrdersInRange(ctx, s.db, outer.Start, outer.End, orderdomain.OrderFilter{ExcludeEventOrders: true})
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		return domain.GrowthResponse{}, err
	}
	return aggregate.CommunityGrowth(orders, ref, cfg.WindowDays), nil
}

// Overview derives all three figures from one reference and one order load,
// so the figures agree with each other.
func (s *Service) Overview(ctx context.Context) (domain.OverviewResponse, error) {
	cfg := s.config.Get()
	ctx, span := tracing.StartSpan(ctx, tracerName, "stats.overview")
	defer span.End()
	defer s.observe(ctx, "overview", time.Now())

	ref := window.NewReference(s.clock.Now())
	opts := aggregate.LeaderboardOptions{Months: cfg.TrendMonths, Days: cfg.WindowDays, Limit: cfg.LeaderboardLimit}
	orders, err := s.loadOrders(ctx, ref, opts.Months, opts.Days)
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		return domain.OverviewResponse{}, err
	}

	buckets := window.MonthlyBuckets(ref, opts.Months)
	consumption := aggregate.Consumption(orders, buckets, aggregate.ConsumptionOptions{PerDrink: true})
	leaderboard, err := s.leaderboard(ctx, orders, ref, opts)
	if err != nil {
		return domain.OverviewResponse{}, err
	}

	return domain.OverviewResponse{
		Reference: ref.Now,
		Consumption: domain.ConsumptionResponse{
			Reference: ref.Now,
			Points:    consumption.Points,
			Legend:    consumption.Legend,
		},
		Leaderboard: leaderboard,
		Growth:      aggregate.CommunityGrowth(orders, ref, opts.Days),
	}, nil
}

// loadOrders reads personal orders covering both the monthly buckets and the
// rolling windows of ref.
func (s *Service) loadOrders(ctx context.Context, ref window.Reference, months, days int) ([]orderdomain.Order, error) {
	w := window.RollingWindows(ref, days)
	covered := window.Span(window.Outer(window.MonthlyBuckets(ref, months)), w.Current, w.Previous)
	return s.orderRepo.OrdersInRange(ctx, s.db, covered.Start, covered.End, orderdomain.OrderFilter{ExcludeEventOrders: true})
}

func (s *Service) leaderboard(ctx context.Context, orders []orderdomain.Order, ref window.Reference, opts aggregate.LeaderboardOptions) (domain.LeaderboardResponse, error) {
	profiles, err := s.profiles(ctx, orders)
	if err != nil {
		return domain.LeaderboardResponse{}, err
	}
	entries, windows := aggregate.Leaderboard(orders, ref, opts, profiles)
	return domain.LeaderboardResponse{
		Reference: ref.Now,
		Windows:   windows,
		Entries:   entries,
	}, nil
}

func (s *Service) profiles(ctx context.Context, orders []orderdomain.Order) (map[snowflake.ID]domain.Profile, error) {
	seen := map[snowflake.ID]struct{}{}
	ids := make([]snowflake.ID, 0)
	for _, order := range orders {
		if _, ok := seen[order.MemberID]; ok {
			continue
		}
		seen[order.MemberID] = struct{}{}
		ids = append(ids, order.MemberID)
	}
	if len(ids) == 0 {
		return map[snowflake.ID]domain.Profile{}, nil
	}

	members, err := s.memberRepo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	profiles := make(map[snowflake.ID]domain.Profile, len(members))
	for _, member := range members {
		profiles[member.ID] = domain.Profile{Name: member.Name, Avatar: member.Avatar}
	}
	return profiles, nil
}

func (s *Service) observe(ctx context.Context, kind string, started time.Time) {
	s.metrics.RecordAggregation(ctx, kind)
	s.scheduler.ObserveAggregation(kind, time.Since(started))
}

func leaderboardCacheKey(ref window.Reference, cfg config.LedgerConfig, limit int) string {
	return fmt.Sprintf("%s:m%d:d%d:l%d",
		ref.Now.Truncate(time.Minute).Format("200601021504"),
		cfg.TrendMonths, cfg.WindowDays, limit,
	)
}
