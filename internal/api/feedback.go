package api

import (
	"errors"
	"net/http"
	"time"

	"tenant_rewards/internal/model"
	"tenant_rewards/internal/service"
	"tenant_rewards/pkg/auth"
	"tenant_rewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultLanguage = "en"

type feedbackRoutes struct {
	fs service.FeedbackServiceI
	a  *auth.JWTAuth
}

func NewFeedbackRoutes(handler *gin.RouterGroup, fs service.FeedbackServiceI, a *auth.JWTAuth) {
	r := &feedbackRoutes{fs: fs, a: a}
	h := handler.Group("/feedback")
	h.Use(a.AuthMiddleware())
	{
		h.GET("", r.GetState)
		h.POST("/start", r.Start)
		h.POST("/answer", r.Answer)
		h.POST("/back", r.ReturnBack)
	}
}

type OptionResponse struct {
	Key   string `json:"key"`
	Order int    `json:"order"`
	Label string `json:"label"`
}

type StoredAnswerResponse struct {
	OptionKeys []string `json:"option_keys,omitempty"`
	Text       *string  `json:"text,omitempty"`
}

type QuestionResponse struct {
	QuestionID   uuid.UUID             `json:"question_id"`
	Type         string                `json:"type"`
	Order        int                   `json:"order"`
	Text         string                `json:"text"`
	Options      []OptionResponse      `json:"options,omitempty"`
	StoredAnswer *StoredAnswerResponse `json:"stored_answer,omitempty"`
}

type FeedbackStateResponse struct {
	Available         bool              `json:"available"`
	Reason            string            `json:"reason,omitempty"`
	SessionID         *uuid.UUID        `json:"session_id,omitempty"`
	ReceiptID         *uuid.UUID        `json:"receipt_id,omitempty"`
	Status            string            `json:"status,omitempty"`
	TotalQuestions    int               `json:"total_questions"`
	AnsweredQuestions int               `json:"answered_questions"`
	PointsValue       int               `json:"points_value"`
	CurrentQuestion   *QuestionResponse `json:"current_question,omitempty"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	LastAnswerResult  string            `json:"last_answer_result,omitempty"`
}

func feedbackStateResponse(state *model.FeedbackState) FeedbackStateResponse {
	out := FeedbackStateResponse{
		Available:         state.Available,
		Reason:            string(state.Reason),
		Status:            string(state.Status),
		TotalQuestions:    state.TotalQuestions,
		AnsweredQuestions: state.AnsweredQuestions,
		PointsValue:       state.PointsValue,
		CompletedAt:       state.CompletedAt,
		LastAnswerResult:  string(state.LastAnswer),
	}

	if state.Available {
		sessionID := state.SessionID
		receiptID := state.ReceiptID
		out.SessionID = &sessionID
		out.ReceiptID = &receiptID
	}

	if state.CurrentQuestion != nil {
		q := &QuestionResponse{
			QuestionID: state.CurrentQuestion.QuestionID,
			Type:       string(state.CurrentQuestion.Type),
			Order:      state.CurrentQuestion.Order,
			Text:       state.CurrentQuestion.Text,
			Options:    make([]OptionResponse, len(state.CurrentQuestion.Options)),
		}
		for i, opt := range state.CurrentQuestion.Options {
			q.Options[i] = OptionResponse{
				Key:   opt.Key,
				Order: opt.Order,
				Label: opt.Label,
			}
		}
		if stored := state.CurrentQuestion.StoredAnswer; stored != nil {
			q.StoredAnswer = &StoredAnswerResponse{
				OptionKeys: stored.OptionKeys,
				Text:       stored.Text,
			}
		}
		out.CurrentQuestion = q
	}

	return out
}

func (r *feedbackRoutes) GetState(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		log.Error("user id not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	state, err := r.fs.GetState(c.Request.Context(), userID, c.DefaultQuery("lang", defaultLanguage))
	if err != nil {
		log.Error("failed to get feedback state", zap.Error(err))
		respondFeedbackError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedbackStateResponse(state))
}

func (r *feedbackRoutes) Start(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		log.Error("user id not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	state, err := r.fs.Start(c.Request.Context(), userID, c.DefaultQuery("lang", defaultLanguage))
	if err != nil {
		log.Error("failed to start feedback", zap.Error(err))
		respondFeedbackError(c, err)
		return
	}

	c.JSON(http.StatusCreated, feedbackStateResponse(state))
}

type AnswerRequest struct {
	OptionKeys []string `json:"option_keys"`
	Text       *string  `json:"text"`
}

func (r *feedbackRoutes) Answer(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		log.Error("user id not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	state, err := r.fs.Answer(c.Request.Context(), userID, c.DefaultQuery("lang", defaultLanguage), req.OptionKeys, req.Text)
	if err != nil {
		log.Error("failed to submit answer", zap.Error(err))
		respondFeedbackError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedbackStateResponse(state))
}

func (r *feedbackRoutes) ReturnBack(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		log.Error("user id not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	state, err := r.fs.ReturnBack(c.Request.Context(), userID, c.DefaultQuery("lang", defaultLanguage))
	if err != nil {
		log.Error("failed to return back", zap.Error(err))
		respondFeedbackError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedbackStateResponse(state))
}

func respondFeedbackError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoPendingReceipt),
		errors.Is(err, service.ErrFeedbackProvided),
		errors.Is(err, service.ErrNoActiveFeedback),
		errors.Is(err, service.ErrInvalidAnswerOption),
		errors.Is(err, service.ErrDuplicateAnswers),
		errors.Is(err, service.ErrSingleOptionRequired),
		errors.Is(err, service.ErrTextNotAllowed),
		errors.Is(err, service.ErrFirstQuestion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoActiveSurvey),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrTranslationNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrFeedbackInProgress),
		errors.Is(err, service.ErrFeedbackStateChanged):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
