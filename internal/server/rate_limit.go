package server

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tapledger/internal/observability/logger"
	"go.uber.org/zap"
)

// OrderRateLimit throttles order placement per acting member.
func (s *Server) OrderRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.orderLimiter.Enabled() {
			c.Next()
			return
		}

		actor, ok := actorFromContext(c)
		if !ok || actor.MemberID == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		result, err := s.orderLimiter.AllowMember(ctx, actor.MemberID)
		if err != nil {
			logger.FromContext(ctx).Warn("order rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !result.Allowed {
			logger.FromContext(ctx).Warn("order rate limit exceeded",
				zap.String("member_id", actor.MemberID),
				zap.Duration("retry_after", result.RetryAfter),
			)
			seconds := int(math.Ceil(result.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
