package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tapledger/internal/authorization"
	obscontext "github.com/smallbiznis/tapledger/internal/observability/context"
)

const (
	headerMemberID   = "X-Member-ID"
	headerMemberRole = "X-Member-Role"
)

// Actor is the caller as asserted by the upstream gateway.
type Actor struct {
	MemberID string
	Role     string
}

// Privileged reports whether the actor may act on behalf of other members.
func (a Actor) Privileged() bool {
	switch a.Role {
	case authorization.RoleTreasurer, authorization.RoleAdmin, authorization.RoleSystem:
		return true
	default:
		return false
	}
}

// ActorContext copies the gateway identity headers onto the request context.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID := strings.TrimSpace(c.GetHeader(headerMemberID))
		role := strings.ToLower(strings.TrimSpace(c.GetHeader(headerMemberRole)))
		if role == "" && memberID != "" {
			role = authorization.RoleMember
		}
		if role != "" {
			ctx := obscontext.WithActor(c.Request.Context(), memberID, role)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func actorFromContext(c *gin.Context) (Actor, bool) {
	memberID, role := obscontext.ActorFromContext(c.Request.Context())
	if role == "" {
		return Actor{}, false
	}
	return Actor{MemberID: memberID, Role: role}, true
}

func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if s.authzSvc == nil {
			AbortWithError(c, ErrForbidden)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), actor.Role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
