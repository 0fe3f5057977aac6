package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tapledger/internal/authorization"
	billingdomain "github.com/smallbiznis/tapledger/internal/billing/domain"
	billingrepository "github.com/smallbiznis/tapledger/internal/billing/repository"
	billingservice "github.com/smallbiznis/tapledger/internal/billing/service"
	"github.com/smallbiznis/tapledger/internal/clock"
	"github.com/smallbiznis/tapledger/internal/config"
	memberdomain "github.com/smallbiznis/tapledger/internal/member/domain"
	memberrepository "github.com/smallbiznis/tapledger/internal/member/repository"
	memberservice "github.com/smallbiznis/tapledger/internal/member/service"
	"github.com/smallbiznis/tapledger/internal/observability"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	orderrepository "github.com/smallbiznis/tapledger/internal/order/repository"
	orderservice "github.com/smallbiznis/tapledger/internal/order/service"
	statsservice "github.com/smallbiznis/tapledger/internal/stats/service"
	"github.com/smallbiznis/tapledger/internal/testutil"
	pkgrepository "github.com/smallbiznis/tapledger/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var openedAt = time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	clock  *clock.FakeClock
	ledger *testutil.Ledger
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t,
		&memberdomain.Member{}, &orderdomain.Drink{}, &orderdomain.Order{},
		&billingdomain.Bill{}, &billingdomain.BillItem{}, &billingdomain.Fee{}, &billingdomain.BillingRun{},
	)
	node := testutil.NewNode(t)
	fc := clock.NewFakeClock(openedAt)
	log := zap.NewNop()
	ledgerCfg := config.NewStaticLedgerConfigHolder(config.DefaultLedgerConfig())

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)

	memberRepo := memberrepository.Provide()
	orderRepo := orderrepository.Provide()

	engine := NewEngine(observability.Config{}, nil)
	NewServer(ServerParams{
		Gin:      engine,
		Cfg:      config.Config{Environment: "test"},
		AuthzSvc: authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer}),
		MemberSvc: memberservice.New(memberservice.Params{
			DB: db, Log: log, GenID: node, Clock: fc, Repo: memberRepo,
		}),
		OrderSvc: orderservice.New(orderservice.Params{
			DB: db, Log: log, GenID: node, Clock: fc, Repo: orderRepo,
			Drinks:     pkgrepository.ProvideStore[orderdomain.Drink](db),
			MemberRepo: memberRepo,
		}),
		StatsSvc: statsservice.New(statsservice.Params{
			DB: db, Log: log, Clock: fc, OrderRepo: orderRepo, MemberRepo: memberRepo, Config: ledgerCfg,
		}),
		BillingSvc: billingservice.New(billingservice.Params{
			DB: db, Log: log, GenID: node, Clock: fc, Config: ledgerCfg,
			Repo:       billingrepository.Provide(),
			Bills:      pkgrepository.ProvideStore[billingdomain.Bill](db),
			OrderRepo:  orderRepo,
			MemberRepo: memberRepo,
		}),
	})

	return testServer{engine: engine, db: db, clock: fc, ledger: testutil.NewLedger(db, node)}
}

type caller struct {
	memberID string
	role     string
}

func (s testServer) do(t *testing.T, as caller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as.memberID != "" {
		req.Header.Set(headerMemberID, as.memberID)
	}
	if as.role != "" {
		req.Header.Set(headerMemberRole, as.role)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error
}

func TestHealthAndFallback(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, caller{}, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, caller{}, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Type)
}

func TestAPIRequiresActor(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, caller{}, http.MethodGet, "/api/drinks", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)
}

func TestPlaceOrderForSelfOnly(t *testing.T) {
	s := newTestServer(t)
	ctx := t.Context()
	alice := s.ledger.Member(ctx, "Alice")
	bob := s.ledger.Member(ctx, "Bob")
	bier := s.ledger.Drink(ctx, "Bier", "0.5", 250)

	asAlice := caller{memberID: alice.ID.String()}
	rec := s.do(t, asAlice, http.MethodPost, "/api/orders", map[string]any{
		"drink_id": bier.ID.String(),
		"quantity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decodeData[orderdomain.Order](t, rec)
	assert.Equal(t, alice.ID, order.MemberID)
	assert.Equal(t, int64(500), order.TotalCents)

	rec = s.do(t, asAlice, http.MethodPost, "/api/orders", map[string]any{
		"member_id": bob.ID.String(),
		"drink_id":  bier.ID.String(),
		"quantity":  1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, caller{memberID: "1", role: authorization.RoleTreasurer}, http.MethodPost, "/api/orders", map[string]any{
		"member_id": bob.ID.String(),
		"drink_id":  bier.ID.String(),
		"quantity":  1,
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestPlaceOrderValidation(t *testing.T) {
	s := newTestServer(t)
	alice := s.ledger.Member(t.Context(), "Alice")

	rec := s.do(t, caller{memberID: alice.ID.String()}, http.MethodPost, "/api/orders", map[string]any{
		"drink_id": "123",
		"quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_quantity", payload.Errors[0].Code)
	assert.Equal(t, "quantity", payload.Errors[0].Field)

	bier := s.ledger.Drink(t.Context(), "Bier", "0.5", 250)
	for _, qty := range []int64{orderdomain.MaxOrderQuantity + 1, 40000000000000000} {
		rec = s.do(t, caller{memberID: alice.ID.String()}, http.MethodPost, "/api/orders", map[string]any{
			"drink_id": bier.ID.String(),
			"quantity": qty,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		assert.Equal(t, "invalid_quantity", decodeError(t, rec).Errors[0].Code)
	}

	var count int64
	require.NoError(t, s.db.Model(&orderdomain.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBillingWritesRequirePolicy(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, caller{memberID: "1"}, http.MethodPost, "/api/billing/runs", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeError(t, rec).Type)
}

func TestBillingFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := t.Context()
	alice := s.ledger.Member(ctx, "Alice")
	bier := s.ledger.Drink(ctx, "Bier", "0.5", 250)
	order := s.ledger.Order(ctx, alice, bier, 3, 250, "", openedAt.Add(-time.Hour))

	treasurer := caller{memberID: "1", role: authorization.RoleTreasurer}
	asAlice := caller{memberID: alice.ID.String()}

	rec := s.do(t, asAlice, http.MethodGet, "/api/billing/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	statements := decodeData[[]billingdomain.Statement](t, rec)
	require.Len(t, statements, 1)
	assert.Equal(t, int64(750), statements[0].TotalCents)

	rec = s.do(t, treasurer, http.MethodPost, "/api/billing/runs", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decodeData[billingdomain.RunResult](t, rec)
	require.NotNil(t, result.Run)
	require.Len(t, result.Bills, 1)
	bill := result.Bills[0]
	assert.Equal(t, "TAP-202403-0001", bill.Number)

	rec = s.do(t, treasurer, http.MethodPost, "/api/billing/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeData[billingdomain.RunResult](t, rec).Run)

	rec = s.do(t, asAlice, http.MethodDelete, "/api/orders/"+order.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, asAlice, http.MethodGet, "/api/bills?status=unpaid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeData[billingdomain.ListBillsResponse](t, rec)
	require.Len(t, listed.Bills, 1)

	rec = s.do(t, asAlice, http.MethodGet, "/api/bills/"+bill.ID.String()+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypePDF, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tap-202403-0001.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = s.do(t, treasurer, http.MethodGet, "/api/billing/runs/"+result.Run.ID.String()+"/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))

	path := "/api/bills/" + bill.ID.String() + "/pay"
	rec = s.do(t, treasurer, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, billingdomain.BillStatusPaid, decodeData[billingdomain.Bill](t, rec).Status)

	rec = s.do(t, treasurer, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec).Type)

	rec = s.do(t, treasurer, http.MethodPost, "/api/bills/"+bill.ID.String()+"/compensate", map[string]any{"reason": "double booked"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	credit := decodeData[billingdomain.BillDetail](t, rec)
	assert.Equal(t, int64(-750), credit.Bill.TotalCents)
}

func TestBillNotFoundAndBadStatus(t *testing.T) {
	s := newTestServer(t)
	asMember := caller{memberID: "1"}

	rec := s.do(t, asMember, http.MethodGet, "/api/bills/"+snowflake.ID(42).String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, asMember, http.MethodGet, "/api/bills?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, asMember, http.MethodGet, "/api/bills?page_token=not-a-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemberFeesAndBalance(t *testing.T) {
	s := newTestServer(t)
	alice := s.ledger.Member(t.Context(), "Alice")
	treasurer := caller{memberID: "1", role: authorization.RoleTreasurer}

	rec := s.do(t, treasurer, http.MethodPost, "/api/members/"+alice.ID.String()+"/fees", map[string]any{
		"amount_cents": 500,
		"description":  "Glass broken",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, treasurer, http.MethodPost, "/api/members/"+alice.ID.String()+"/fees", map[string]any{
		"amount_cents": 500,
		"description":  "  ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, treasurer, http.MethodPut, "/api/members/"+alice.ID.String()+"/balance", map[string]any{
		"balance_cents": -200,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, treasurer, http.MethodPut, "/api/members/"+snowflake.ID(42).String()+"/balance", map[string]any{
		"balance_cents": 0,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := t.Context()
	alice := s.ledger.Member(ctx, "Alice")
	bier := s.ledger.Drink(ctx, "Bier", "0.5", 250)
	s.ledger.Order(ctx, alice, bier, 2, 250, "", openedAt.AddDate(0, 0, -3))
	asAlice := caller{memberID: alice.ID.String()}

	for _, path := range []string{
		"/api/stats/consumption?months=3&per_drink=true",
		"/api/stats/leaderboard",
		"/api/stats/growth",
		"/api/stats/overview",
	} {
		rec := s.do(t, asAlice, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := s.do(t, asAlice, http.MethodGet, "/api/stats/leaderboard?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, asAlice, http.MethodGet, "/api/stats/consumption?months=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "invalid_months"))
}
