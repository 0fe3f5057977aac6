package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/tapledger/internal/authorization"
	"github.com/smallbiznis/tapledger/internal/billing"
	billingdomain "github.com/smallbiznis/tapledger/internal/billing/domain"
	"github.com/smallbiznis/tapledger/internal/cache"
	"github.com/smallbiznis/tapledger/internal/config"
	"github.com/smallbiznis/tapledger/internal/member"
	memberdomain "github.com/smallbiznis/tapledger/internal/member/domain"
	"github.com/smallbiznis/tapledger/internal/observability"
	obslogger "github.com/smallbiznis/tapledger/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/tapledger/internal/observability/metrics"
	obstracing "github.com/smallbiznis/tapledger/internal/observability/tracing"
	"github.com/smallbiznis/tapledger/internal/order"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"github.com/smallbiznis/tapledger/internal/ratelimit"
	"github.com/smallbiznis/tapledger/internal/stats"
	statsdomain "github.com/smallbiznis/tapledger/internal/stats/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	ratelimit.Module,
	cache.Module,
	member.Module,
	order.Module,
	stats.Module,
	billing.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	authzSvc     authorization.Service
	memberSvc    memberdomain.Service
	orderSvc     orderdomain.Service
	statsSvc     statsdomain.Service
	billingSvc   billingdomain.Service
	orderLimiter *ratelimit.OrderLimiter
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	AuthzSvc     authorization.Service
	MemberSvc    memberdomain.Service
	OrderSvc     orderdomain.Service
	StatsSvc     statsdomain.Service
	BillingSvc   billingdomain.Service
	OrderLimiter *ratelimit.OrderLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		authzSvc:     p.AuthzSvc,
		memberSvc:    p.MemberSvc,
		orderSvc:     p.OrderSvc,
		statsSvc:     p.StatsSvc,
		billingSvc:   p.BillingSvc,
		orderLimiter: p.OrderLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(ActorContext())

	// -------- Drinks --------
	api.GET("/drinks", s.authorize(authorization.ObjectDrink, authorization.ActionRead), s.ListDrinks)
	api.POST("/drinks", s.authorize(authorization.ObjectDrink, authorization.ActionWrite), s.CreateDrink)
	api.PATCH("/drinks/:id/price", s.authorize(authorization.ObjectDrink, authorization.ActionWrite), s.UpdateDrinkPrice)

	// -------- Orders --------
	api.POST("/orders", s.authorize(authorization.ObjectOrder, authorization.ActionWrite), s.OrderRateLimit(), s.PlaceOrder)
	api.DELETE("/orders/:id", s.authorize(authorization.ObjectOrder, authorization.ActionWrite), s.DeleteOrder)

	// -------- Stats --------
	stats := api.Group("/stats", s.authorize(authorization.ObjectStats, authorization.ActionRead))
	{
		stats.GET("/consumption", s.GetConsumption)
		stats.GET("/leaderboard", s.GetLeaderboard)
		stats.GET("/growth", s.GetCommunityGrowth)
		stats.GET("/overview", s.GetOverview)
	}

	// -------- Billing --------
	api.GET("/billing/current", s.authorize(authorization.ObjectBilling, authorization.ActionRead), s.GetCurrentStatements)
	api.POST("/billing/runs", s.authorize(authorization.ObjectBilling, authorization.ActionWrite), s.RunBilling)
	api.GET("/billing/runs/:id/export.xlsx", s.authorize(authorization.ObjectBilling, authorization.ActionRead), s.ExportBillingRun)

	api.GET("/bills", s.authorize(authorization.ObjectBilling, authorization.ActionRead), s.ListBills)
	api.GET("/bills/:id", s.authorize(authorization.ObjectBilling, authorization.ActionRead), s.GetBill)
	api.GET("/bills/:id/pdf", s.authorize(authorization.ObjectBilling, authorization.ActionRead), s.RenderBillPDF)
	api.POST("/bills/:id/pay", s.authorize(authorization.ObjectBilling, authorization.ActionWrite), s.MarkBillPaid)
	api.POST("/bills/:id/defer", s.authorize(authorization.ObjectBilling, authorization.ActionWrite), s.DeferBill)
	api.POST("/bills/:id/compensate", s.authorize(authorization.ObjectBilling, authorization.ActionWrite), s.CompensateBill)

	// -------- Members --------
	api.GET("/members", s.authorize(authorization.ObjectMember, authorization.ActionRead), s.ListMembers)
	api.POST("/members", s.authorize(authorization.ObjectMember, authorization.ActionWrite), s.CreateMember)
	api.GET("/members/:id", s.authorize(authorization.ObjectMember, authorization.ActionRead), s.GetMember)
	api.POST("/members/:id/fees", s.authorize(authorization.ObjectBilling, authorization.ActionWrite), s.AddMemberFee)
	api.PUT("/members/:id/balance", s.authorize(authorization.ObjectBilling, authorization.ActionWrite), s.SetMemberBalance)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
