package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	statsdomain "github.com/smallbiznis/tapledger/internal/stats/domain"
)

func (s *Server) GetConsumption(c *gin.Context) {
	months, err := parseOptionalInt(c.Query("months"))
	if err != nil {
		AbortWithError(c, statsdomain.ErrInvalidMonths)
		return
	}
	perDrink, err := parseOptionalBool(c.Query("per_drink"))
	if err != nil {
		AbortWithError(c, newValidationError("per_drink", "invalid_per_drink", "invalid per_drink"))
		return
	}

	resp, err := s.statsSvc.Consumption(c.Request.Context(), statsdomain.ConsumptionRequest{
		Months:   months,
		PerDrink: perDrink != nil && *perDrink,
		MemberID: strings.TrimSpace(c.Query("member_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLeaderboard(c *gin.Context) {
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		AbortWithError(c, statsdomain.ErrInvalidLimit)
		return
	}

	resp, err := s.statsSvc.Leaderboard(c.Request.Context(), statsdomain.LeaderboardRequest{Limit: limit})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCommunityGrowth(c *gin.Context) {
	resp, err := s.statsSvc.CommunityGrowth(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOverview(c *gin.Context) {
	resp, err := s.statsSvc.Overview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
