package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"channelpass/gatekeeper/internal/model"
	"channelpass/gatekeeper/internal/service"
	"channelpass/gatekeeper/pkg/response"
)

const defaultAuditLimit = 100

// Sweeper runs an on-demand expiry sweep.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (service.SweepReport, error)
}

type AdminHandler struct {
	codes         service.CodeRegistry
	subscriptions service.SubscriptionService
	sweeper       Sweeper
	audit         service.AuditLog
	now           func() time.Time
}

func NewAdminHandler(
	codes service.CodeRegistry,
	subscriptions service.SubscriptionService,
	sweeper Sweeper,
	audit service.AuditLog,
) *AdminHandler {
	return &AdminHandler{
		codes:         codes,
		subscriptions: subscriptions,
		sweeper:       sweeper,
		audit:         audit,
		now:           time.Now,
	}
}

type CreateCodeRequest struct {
	DurationDays int `json:"duration_days" binding:"required"`
}

// CreateCode mints a new redemption code.
func (h *AdminHandler) CreateCode(c *gin.Context) {
	actorID, err := operatorID(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req CreateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	code, err := h.codes.Issue(c.Request.Context(), req.DurationDays, actorID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDuration) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "failed to create code")
		return
	}

	response.Created(c, code)
}

// ListCodes returns all codes, newest first.
func (h *AdminHandler) ListCodes(c *gin.Context) {
	codes, err := h.codes.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list codes")
		return
	}

	response.Success(c, codes)
}

// ListSubscriptions returns subscriptions, optionally filtered by ?status=.
func (h *AdminHandler) ListSubscriptions(c *gin.Context) {
	status := model.SubscriptionStatus(c.Query("status"))
	switch status {
	case "", model.SubscriptionStatusActive, model.SubscriptionStatusExpired, model.SubscriptionStatusBanned:
	default:
		response.BadRequest(c, "unknown status")
		return
	}

	subs, err := h.subscriptions.List(c.Request.Context(), status)
	if err != nil {
		response.InternalError(c, "failed to list subscriptions")
		return
	}

	response.Success(c, subs)
}

// BanSubscription revokes a subscription and removes its holder from the channel.
func (h *AdminHandler) BanSubscription(c *gin.Context) {
	actorID, err := operatorID(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid subscription id")
		return
	}

	sub, err := h.subscriptions.Ban(c.Request.Context(), uint(id), actorID)
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			response.NotFound(c, "subscription not found")
			return
		}
		response.InternalError(c, "failed to ban subscription")
		return
	}

	response.Success(c, sub)
}

// RunSweep expires lapsed subscriptions now instead of waiting for the next tick.
func (h *AdminHandler) RunSweep(c *gin.Context) {
	report, err := h.sweeper.Sweep(c.Request.Context(), h.now())
	if err != nil {
		if errors.Is(err, service.ErrSweepInProgress) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, "sweep failed")
		return
	}

	response.Success(c, report)
}

// ListAudit returns the most recent audit entries, ?limit= capped by the service.
func (h *AdminHandler) ListAudit(c *gin.Context) {
	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, "failed to list audit entries")
		return
	}

	response.Success(c, entries)
}
