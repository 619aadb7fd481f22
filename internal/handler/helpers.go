package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"channelpass/gatekeeper/internal/handler/middleware"
)

var ErrNoOperator = errors.New("operator id not found in context")

// operatorID returns the Telegram id of the authenticated admin, used as the audit actor.
func operatorID(c *gin.Context) (int64, error) {
	v, ok := c.Get(middleware.ContextKeyOperatorID)
	if !ok {
		return 0, ErrNoOperator
	}
	id, ok := v.(int64)
	if !ok {
		return 0, ErrNoOperator
	}
	return id, nil
}
