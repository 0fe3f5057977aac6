package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
)

type createDrinkRequest struct {
	Name         string           `json:"name"`
	VolumeLitres *decimal.Decimal `json:"volume_litres"`
	PriceCents   int64            `json:"price_cents"`
	Available    *bool            `json:"available"`
}

type updateDrinkPriceRequest struct {
	PriceCents int64 `json:"price_cents"`
}

func (s *Server) ListDrinks(c *gin.Context) {
	available, err := parseOptionalBool(c.Query("available"))
	if err != nil {
		AbortWithError(c, newValidationError("available", "invalid_available", "invalid available"))
		return
	}

	resp, err := s.orderSvc.ListDrinks(c.Request.Context(), orderdomain.ListDrinksRequest{
		OnlyAvailable: available != nil && *available,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateDrink(c *gin.Context) {
	var req createDrinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.CreateDrink(c.Request.Context(), orderdomain.CreateDrinkRequest{
		Name:         strings.TrimSpace(req.Name),
		VolumeLitres: req.VolumeLitres,
		PriceCents:   req.PriceCents,
		Available:    req.Available,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateDrinkPrice(c *gin.Context) {
	var req updateDrinkPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.UpdateDrinkPrice(c.Request.Context(), orderdomain.UpdateDrinkPriceRequest{
		DrinkID:    strings.TrimSpace(c.Param("id")),
		PriceCents: req.PriceCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
