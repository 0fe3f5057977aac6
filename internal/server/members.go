package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/tapledger/internal/billing/domain"
	memberdomain "github.com/smallbiznis/tapledger/internal/member/domain"
)

type createMemberRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type addFeeRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
}

type setBalanceRequest struct {
	BalanceCents *int64 `json:"balance_cents"`
}

func (s *Server) ListMembers(c *gin.Context) {
	resp, err := s.memberSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateMember(c *gin.Context) {
	var req createMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.memberSvc.Create(c.Request.Context(), memberdomain.CreateMemberRequest{
		Name:   strings.TrimSpace(req.Name),
		Avatar: strings.TrimSpace(req.Avatar),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetMember(c *gin.Context) {
	resp, err := s.memberSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddMemberFee(c *gin.Context) {
	var req addFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.AddFee(c.Request.Context(), billingdomain.AddFeeRequest{
		MemberID:    strings.TrimSpace(c.Param("id")),
		AmountCents: req.AmountCents,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) SetMemberBalance(c *gin.Context) {
	var req setBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BalanceCents == nil {
		AbortWithError(c, newValidationError("balance_cents", "required", "balance_cents is required"))
		return
	}

	if err := s.billingSvc.SetBalance(c.Request.Context(), billingdomain.SetBalanceRequest{
		MemberID:     strings.TrimSpace(c.Param("id")),
		BalanceCents: *req.BalanceCents,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
