package api

import (
	"errors"
	"net/http"
	"time"

	"tenant_rewards/internal/middleware"
	"tenant_rewards/internal/model"
	"tenant_rewards/internal/service"
	"tenant_rewards/pkg/auth"
	"tenant_rewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type redemptionRoutes struct {
	rs service.RedemptionServiceI
	a  *auth.JWTAuth
}

func NewRedemptionRoutes(handler *gin.RouterGroup, rs service.RedemptionServiceI, a *auth.JWTAuth, authz *middleware.Authorization) {
	r := &redemptionRoutes{rs: rs, a: a}

	h := handler.Group("/redemptions")
	h.Use(a.AuthMiddleware())
	{
		h.POST("", r.CreateRedemption)
		h.GET("", r.ListOwnRedemptions)
		h.GET("/:redemption_id", r.GetRedemption)
	}

	admin := handler.Group("/admin/redemptions")
	admin.Use(a.AuthMiddleware(), authz.AdminOnly())
	{
		admin.GET("", r.ListRedemptions)
		admin.POST("/:redemption_id/approve", r.ApproveRedemption)
		admin.POST("/:redemption_id/complete", r.CompleteRedemption)
		admin.POST("/:redemption_id/reject", r.RejectRedemption)
	}
}

type CreateRedemptionRequest struct {
	PointsAmount int    `json:"points_amount"`
	Destination  string `json:"destination"`
}

type RedemptionResponse struct {
	RedemptionID    uuid.UUID  `json:"redemption_id"`
	UserID          uuid.UUID  `json:"user_id"`
	PointsAmount    int        `json:"points_amount"`
	PayoutCents     int64      `json:"payout_cents"`
	Destination     string     `json:"destination"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
}

func redemptionResponse(red *model.Redemption) RedemptionResponse {
	return RedemptionResponse{
		RedemptionID:    red.RedemptionID,
		UserID:          red.UserID,
		PointsAmount:    red.PointsAmount,
		PayoutCents:     red.PayoutCents,
		Destination:     red.Destination,
		Status:          string(red.Status),
		CreatedAt:       red.CreatedAt,
		ApprovedAt:      red.ApprovedAt,
		CompletedAt:     red.CompletedAt,
		RejectedAt:      red.RejectedAt,
		RejectionReason: red.RejectionReason,
	}
}

func (r *redemptionRoutes) CreateRedemption(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		log.Error("user id not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req CreateRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	red, err := r.rs.Create(c.Request.Context(), userID, req.PointsAmount, req.Destination)
	if err != nil {
		log.Error("failed to create redemption", zap.Error(err))
		respondRedemptionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, redemptionResponse(red))
}

func (r *redemptionRoutes) ListOwnRedemptions(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		log.Error("user id not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	list, err := r.rs.ListForUser(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to list redemptions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list redemptions"})
		return
	}

	out := make([]RedemptionResponse, len(list))
	for i, red := range list {
		out[i] = redemptionResponse(red)
	}

	c.JSON(http.StatusOK, out)
}

func (r *redemptionRoutes) GetRedemption(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		log.Error("user id not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	id, err := uuid.Parse(c.Param("redemption_id"))
	if err != nil {
		log.Error("failed to parse redemption_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid redemption_id"})
		return
	}

	red, err := r.rs.Get(c.Request.Context(), userID, id)
	if err != nil {
		log.Error("failed to get redemption", zap.Error(err))
		respondRedemptionError(c, err)
		return
	}

	c.JSON(http.StatusOK, redemptionResponse(red))
}

func (r *redemptionRoutes) ListRedemptions(c *gin.Context) {
	log := logger.Logger()

	var filter model.RedemptionFilter

	if status := c.Query("status"); status != "" {
		s := model.RedemptionStatus(status)
		switch s {
		case model.RedemptionPending, model.RedemptionApproved, model.RedemptionCompleted, model.RedemptionRejected:
			filter.Status = &s
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
	}

	if user := c.Query("user_id"); user != "" {
		userID, err := uuid.Parse(user)
		if err != nil {
			log.Error("failed to parse user_id", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		filter.UserID = &userID
	}

	list, err := r.rs.List(c.Request.Context(), filter)
	if err != nil {
		log.Error("failed to list redemptions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list redemptions"})
		return
	}

	out := make([]RedemptionResponse, len(list))
	for i, red := range list {
		out[i] = redemptionResponse(red)
	}

	c.JSON(http.StatusOK, out)
}

func (r *redemptionRoutes) ApproveRedemption(c *gin.Context) {
	r.transition(c, "approve", func(ctx *gin.Context, id uuid.UUID) (*model.Redemption, error) {
		return r.rs.Approve(ctx.Request.Context(), id)
	})
}

func (r *redemptionRoutes) CompleteRedemption(c *gin.Context) {
	r.transition(c, "complete", func(ctx *gin.Context, id uuid.UUID) (*model.Redemption, error) {
		return r.rs.Complete(ctx.Request.Context(), id)
	})
}

type RejectRedemptionRequest struct {
	Reason *string `json:"reason"`
}

func (r *redemptionRoutes) RejectRedemption(c *gin.Context) {
	log := logger.Logger()

	var req RejectRedemptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Error("failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	r.transition(c, "reject", func(ctx *gin.Context, id uuid.UUID) (*model.Redemption, error) {
		return r.rs.Reject(ctx.Request.Context(), id, req.Reason)
	})
}

func (r *redemptionRoutes) transition(c *gin.Context, name string, op func(*gin.Context, uuid.UUID) (*model.Redemption, error)) {
	log := logger.Logger()

	id, err := uuid.Parse(c.Param("redemption_id"))
	if err != nil {
		log.Error("failed to parse redemption_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid redemption_id"})
		return
	}

	red, err := op(c, id)
	if err != nil {
		log.Error("failed to "+name+" redemption", zap.Error(err))
		respondRedemptionError(c, err)
		return
	}

	c.JSON(http.StatusOK, redemptionResponse(red))
}

func respondRedemptionError(c *gin.Context, err error) {
	var transitionErr *service.StateTransitionError

	switch {
	case errors.Is(err, service.ErrAmountBelowMinimum),
		errors.Is(err, service.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": transitionErr.Error()})
	case errors.Is(err, service.ErrRedemptionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
