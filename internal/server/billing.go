package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	billingdomain "github.com/smallbiznis/tapledger/internal/billing/domain"
	"github.com/smallbiznis/tapledger/pkg/db/pagination"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type compensateBillRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) GetCurrentStatements(c *gin.Context) {
	resp, err := s.billingSvc.Current(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RunBilling(c *gin.Context) {
	resp, err := s.billingSvc.Run(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusCreated
	if resp.Run == nil {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"data": resp})
}

func (s *Server) ExportBillingRun(c *gin.Context) {
	var buf bytes.Buffer
	run, err := s.billingSvc.ExportRunXLSX(c.Request.Context(), strings.TrimSpace(c.Param("id")), &buf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("billing-run-%s.xlsx", slug.Make(run.Period))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

func (s *Server) ListBills(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status   string `form:"status"`
		MemberID string `form:"member_id"`
		Period   string `form:"period"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status, err := parseOptionalBillStatus(query.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.billingSvc.List(c.Request.Context(), billingdomain.ListBillsRequest{
		Status:     status,
		MemberID:   strings.TrimSpace(query.MemberID),
		Period:     strings.TrimSpace(query.Period),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBill(c *gin.Context) {
	resp, err := s.billingSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RenderBillPDF(c *gin.Context) {
	var buf bytes.Buffer
	bill, err := s.billingSvc.RenderPDF(c.Request.Context(), strings.TrimSpace(c.Param("id")), &buf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("%s.pdf", slug.Make(bill.Number))
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, contentTypePDF, buf.Bytes())
}

func (s *Server) MarkBillPaid(c *gin.Context) {
	resp, err := s.billingSvc.MarkPaid(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeferBill(c *gin.Context) {
	resp, err := s.billingSvc.Defer(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompensateBill(c *gin.Context) {
	var req compensateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.Compensate(c.Request.Context(), billingdomain.CompensateRequest{
		BillID: strings.TrimSpace(c.Param("id")),
		Reason: strings.TrimSpace(req.Reason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}
