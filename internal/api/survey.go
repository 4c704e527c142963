package api

import (
	"errors"
	"net/http"

	"tenant_rewards/internal/middleware"
	"tenant_rewards/internal/model"
	"tenant_rewards/internal/service"
	"tenant_rewards/pkg/auth"
	"tenant_rewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type surveyRoutes struct {
	ss service.SurveyServiceI
	a  *auth.JWTAuth
}

func NewSurveyRoutes(handler *gin.RouterGroup, ss service.SurveyServiceI, a *auth.JWTAuth, authz *middleware.Authorization) {
	r := &surveyRoutes{ss: ss, a: a}
	h := handler.Group("/surveys")
	h.Use(a.AuthMiddleware(), authz.AdminOnly())
	{
		h.POST("", r.CreateSurvey)
		h.GET("/active", r.GetActiveSurvey)
	}
}

type CreateOptionRequest struct {
	Key    string            `json:"key"`
	Order  int               `json:"order"`
	Score  int               `json:"score"`
	Labels map[string]string `json:"labels"`
}

type CreateQuestionRequest struct {
	Type         string                `json:"type"`
	Order        int                   `json:"order"`
	Translations map[string]string     `json:"translations"`
	Options      []CreateOptionRequest `json:"options"`
}

type CreateSurveyRequest struct {
	Name            string                  `json:"name"`
	Active          bool                    `json:"active"`
	StartPoints     int                     `json:"start_points"`
	PointsPerAnswer int                     `json:"points_per_answer"`
	Questions       []CreateQuestionRequest `json:"questions"`
}

type CreateSurveyResponse struct {
	SurveyID uuid.UUID `json:"survey_id"`
}

func (r *surveyRoutes) CreateSurvey(c *gin.Context) {
	log := logger.Logger()

	var req CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	survey := &model.Survey{
		Name:            req.Name,
		Active:          req.Active,
		StartPoints:     req.StartPoints,
		PointsPerAnswer: req.PointsPerAnswer,
		Questions:       make([]model.Question, len(req.Questions)),
	}

	for i, q := range req.Questions {
		options := make([]model.QuestionOption, len(q.Options))
		for j, opt := range q.Options {
			options[j] = model.QuestionOption{
				Key:    opt.Key,
				Order:  opt.Order,
				Score:  opt.Score,
				Labels: opt.Labels,
			}
		}
		survey.Questions[i] = model.Question{
			Type:         model.QuestionType(q.Type),
			Order:        q.Order,
			Translations: q.Translations,
			Options:      options,
		}
	}

	surveyID, err := r.ss.CreateSurvey(c.Request.Context(), survey)
	if err != nil {
		log.Error("failed to create survey", zap.Error(err))
		if errors.Is(err, service.ErrInvalidSurvey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create survey"})
		return
	}

	c.JSON(http.StatusCreated, CreateSurveyResponse{SurveyID: surveyID})
}

type SurveyQuestionResponse struct {
	QuestionID   uuid.UUID             `json:"question_id"`
	Type         string                `json:"type"`
	Order        int                   `json:"order"`
	Translations map[string]string     `json:"translations"`
	Options      []CreateOptionRequest `json:"options,omitempty"`
}

type SurveyResponse struct {
	SurveyID        uuid.UUID                `json:"survey_id"`
	Name            string                   `json:"name"`
	Active          bool                     `json:"active"`
	StartPoints     int                      `json:"start_points"`
	PointsPerAnswer int                      `json:"points_per_answer"`
	Questions       []SurveyQuestionResponse `json:"questions"`
}

func (r *surveyRoutes) GetActiveSurvey(c *gin.Context) {
	log := logger.Logger()

	survey, err := r.ss.GetActiveSurvey(c.Request.Context())
	if err != nil {
		log.Error("failed to get active survey", zap.Error(err))
		if errors.Is(err, service.ErrNoActiveSurvey) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active survey"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get active survey"})
		return
	}

	out := SurveyResponse{
		SurveyID:        survey.SurveyID,
		Name:            survey.Name,
		Active:          survey.Active,
		StartPoints:     survey.StartPoints,
		PointsPerAnswer: survey.PointsPerAnswer,
		Questions:       make([]SurveyQuestionResponse, len(survey.Questions)),
	}

	for i, q := range survey.Questions {
		options := make([]CreateOptionRequest, len(q.Options))
		for j, opt := range q.Options {
			options[j] = CreateOptionRequest{
				Key:    opt.Key,
				Order:  opt.Order,
				Score:  opt.Score,
				Labels: opt.Labels,
			}
		}
		out.Questions[i] = SurveyQuestionResponse{
			QuestionID:   q.QuestionID,
			Type:         string(q.Type),
			Order:        q.Order,
			Translations: q.Translations,
			Options:      options,
		}
	}

	c.JSON(http.StatusOK, out)
}
