package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/robfig/cron/v3"
	"github.com/smallbiznis/tapledger/internal/authorization"
	billingdomain "github.com/smallbiznis/tapledger/internal/billing/domain"
	"github.com/smallbiznis/tapledger/internal/clock"
	obsmetrics "github.com/smallbiznis/tapledger/internal/observability/metrics"
	statsdomain "github.com/smallbiznis/tapledger/internal/stats/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrInvalidConfig = errors.New("invalid_scheduler_config")
	ErrUnknownJob    = errors.New("unknown_job")
)

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	BillingSvc billingdomain.Service
	StatsSvc   statsdomain.Service
	AuthzSvc   authorization.Service
	Metrics    *obsmetrics.SchedulerMetrics `optional:"true"`
	Config     Config                       `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	genID      *snowflake.Node
	clock      clock.Clock
	billingSvc billingdomain.Service
	statsSvc   statsdomain.Service
	authzSvc   authorization.Service
	metrics    *obsmetrics.SchedulerMetrics
	cron       *cron.Cron
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.BillingSvc == nil || p.StatsSvc == nil || p.AuthzSvc == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	metrics := p.Metrics
	if metrics == nil {
		metrics = obsmetrics.Scheduler()
	}
	log := p.Log.Named("scheduler").With(zap.String("component", "scheduler"))
	return &Scheduler{
		log:        log,
		cfg:        cfg,
		genID:      p.GenID,
		clock:      p.Clock,
		billingSvc: p.BillingSvc,
		statsSvc:   p.StatsSvc,
		authzSvc:   p.AuthzSvc,
		metrics:    metrics,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger{log: log.Sugar()}),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: log.Sugar()})),
		),
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run := s.newJobRun(ctx, name)
	s.logJobStart(ctx, run)
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)
	s.metrics.IncJobRun(name)

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if err != nil && run.errorCount == 0 {
		run.IncError()
	}
	s.logJobFinish(ctx, run)
	if err == nil {
		return nil
	}

	// deadline is a soft timeout; the next tick retries
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		s.metrics.IncJobTimeout(name)
	}
	s.metrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce executes a single named job immediately, outside the cron schedule.
func (s *Scheduler) RunOnce(ctx context.Context, job string) error {
	switch job {
	case JobBillingRun:
		return s.runJob(ctx, job, s.cfg.BillingTimeout, s.BillingRunJob)
	case JobLeaderboardWarmup:
		return s.runJob(ctx, job, s.cfg.WarmupTimeout, s.LeaderboardWarmupJob)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}
}

// Start registers the enabled jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	jobs := []struct {
		Name     string
		Enabled  bool
		Schedule string
	}{
		{JobBillingRun, s.cfg.BillingEnabled, s.cfg.BillingSchedule},
		{JobLeaderboardWarmup, s.cfg.WarmupEnabled, s.cfg.WarmupSchedule},
	}
	for _, job := range jobs {
		if !job.Enabled {
			s.log.Info("scheduler job disabled", zap.String("job", job.Name))
			continue
		}
		name := job.Name
		if _, err := s.cron.AddFunc(job.Schedule, func() {
			if err := s.RunOnce(context.Background(), name); err != nil {
				s.log.Error("scheduler job failed", zap.String("job", name), zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule %s: %w", name, err)
		}
		s.log.Info("scheduler job registered",
			zap.String("job", name),
			zap.String("schedule", job.Schedule),
		)
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) BillingRunJob(ctx context.Context) error {
	if err := s.authorizeSystem(ctx, authorization.ObjectBilling, authorization.ActionWrite); err != nil {
		s.logJobError(ctx, JobBillingRun, err)
		return err
	}

	result, err := s.billingSvc.Run(ctx)
	if errors.Is(err, billingdomain.ErrBillingInProgress) {
		s.logger(ctx).Info("billing run skipped, another run holds the lock")
		return nil
	}
	if err != nil {
		s.logJobError(ctx, JobBillingRun, err)
		return err
	}

	run := jobRunFromContext(ctx)
	run.AddProcessed(len(result.Bills))
	s.metrics.AddBatchProcessed(JobBillingRun, "bill", len(result.Bills))
	return nil
}

func (s *Scheduler) LeaderboardWarmupJob(ctx context.Context) error {
	if err := s.authorizeSystem(ctx, authorization.ObjectStats, authorization.ActionRead); err != nil {
		s.logJobError(ctx, JobLeaderboardWarmup, err)
		return err
	}

	resp, err := s.statsSvc.Leaderboard(ctx, statsdomain.LeaderboardRequest{})
	if err != nil {
		s.logJobError(ctx, JobLeaderboardWarmup, err)
		return err
	}
	jobRunFromContext(ctx).AddProcessed(len(resp.Entries))
	return nil
}

func (s *Scheduler) authorizeSystem(ctx context.Context, object string, action string) error {
	if s.authzSvc == nil {
		return authorization.ErrForbidden
	}
	return s.authzSvc.Authorize(ctx, authorization.RoleSystem, object, action)
}
