package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tenant_rewards/internal/model"
	"tenant_rewards/internal/repository"

	"github.com/google/uuid"
)

type SurveyService struct {
	repo SurveyRepository
}

func NewSurveyService(repo SurveyRepository) *SurveyService {
	return &SurveyService{
		repo: repo,
	}
}

// CreateSurvey validates and persists a new survey; when the survey is
// active, the previously active one is deactivated in the same transaction so
// at most one survey is ever active.
func (s *SurveyService) CreateSurvey(ctx context.Context, survey *model.Survey) (uuid.UUID, error) {
	if err := validateSurvey(survey); err != nil {
		return uuid.Nil, err
	}

	if survey.SurveyID == uuid.Nil {
		survey.SurveyID = uuid.New()
	}
	for i := range survey.Questions {
		if survey.Questions[i].QuestionID == uuid.Nil {
			survey.Questions[i].QuestionID = uuid.New()
		}
		survey.Questions[i].SurveyID = survey.SurveyID
	}
	if survey.CreatedAt.IsZero() {
		survey.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.CreateSurvey(ctx, survey); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create survey: %w", err)
	}

	return survey.SurveyID, nil
}

func (s *SurveyService) GetActiveSurvey(ctx context.Context) (*model.Survey, error) {
	survey, err := s.repo.GetActiveSurvey(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveSurvey
		}
		return nil, fmt.Errorf("failed to get active survey: %w", err)
	}
	return survey, nil
}

func validateSurvey(survey *model.Survey) error {
	if survey.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSurvey)
	}
	if len(survey.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrInvalidSurvey)
	}
	if survey.StartPoints < 0 || survey.PointsPerAnswer < 0 {
		return fmt.Errorf("%w: point amounts must be non-negative", ErrInvalidSurvey)
	}

	orders := make(map[int]struct{}, len(survey.Questions))
	for _, q := range survey.Questions {
		if q.Order < 1 || q.Order > len(survey.Questions) {
			return fmt.Errorf("%w: question order must form a dense 1..N sequence", ErrInvalidSurvey)
		}
		if _, dup := orders[q.Order]; dup {
			return fmt.Errorf("%w: duplicate question order %d", ErrInvalidSurvey, q.Order)
		}
		orders[q.Order] = struct{}{}

		switch q.Type {
		case model.QuestionTypeSingle, model.QuestionTypeMultiple:
			if len(q.Options) == 0 {
				return fmt.Errorf("%w: choice question at order %d has no options", ErrInvalidSurvey, q.Order)
			}
		case model.QuestionTypeText:
			if len(q.Options) != 0 {
				return fmt.Errorf("%w: text question at order %d must not have options", ErrInvalidSurvey, q.Order)
			}
		default:
			return fmt.Errorf("%w: unknown question type %q", ErrInvalidSurvey, q.Type)
		}

		if len(q.Translations) == 0 {
			return fmt.Errorf("%w: question at order %d has no translations", ErrInvalidSurvey, q.Order)
		}

		keys := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if opt.Key == "" {
				return fmt.Errorf("%w: option key is required", ErrInvalidSurvey)
			}
			if _, dup := keys[opt.Key]; dup {
				return fmt.Errorf("%w: duplicate option key %q", ErrInvalidSurvey, opt.Key)
			}
			keys[opt.Key] = struct{}{}
			if opt.Score < 0 {
				return fmt.Errorf("%w: option score must be non-negative", ErrInvalidSurvey)
			}
		}
	}

	return nil
}
