package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
)

type placeOrderRequest struct {
	MemberID   string  `json:"member_id"`
	DrinkID    string  `json:"drink_id"`
	Quantity   int64   `json:"quantity"`
	BookingFor *string `json:"booking_for"`
}

// PlaceOrder books for the calling member unless a privileged actor names
// another member.
func (s *Server) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	memberID, err := orderMemberID(c, req.MemberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.orderSvc.PlaceOrder(c.Request.Context(), orderdomain.PlaceOrderRequest{
		MemberID:   memberID,
		DrinkID:    strings.TrimSpace(req.DrinkID),
		Quantity:   req.Quantity,
		BookingFor: req.BookingFor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) DeleteOrder(c *gin.Context) {
	actor, _ := actorFromContext(c)
	owner := actor.MemberID
	if actor.Privileged() {
		owner = ""
	}

	if err := s.orderSvc.DeleteUnbilledOrder(c.Request.Context(), owner, strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func orderMemberID(c *gin.Context, requested string) (string, error) {
	actor, _ := actorFromContext(c)
	requested = strings.TrimSpace(requested)
	if requested == "" {
		if actor.MemberID == "" {
			return "", orderdomain.ErrInvalidMember
		}
		return actor.MemberID, nil
	}
	if requested != actor.MemberID && !actor.Privileged() {
		return "", ErrForbidden
	}
	return requested, nil
}
