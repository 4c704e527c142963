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

type FeedbackService struct {
	repo    FeedbackRepository
	catalog SurveyCatalog
	policy  AccrualPolicy
}

func NewFeedbackService(repo FeedbackRepository, catalog SurveyCatalog, policy AccrualPolicy) *FeedbackService {
	return &FeedbackService{
		repo:    repo,
		catalog: catalog,
		policy:  policy,
	}
}

// GetState returns the user's current feedback state, creating a session for
// the pending receipt when none exists yet.
func (s *FeedbackService) GetState(ctx context.Context, userID uuid.UUID, lang string) (*model.FeedbackState, error) {
	receipt, err := s.repo.GetPendingReceipt(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &model.FeedbackState{Available: false, Reason: model.ReasonNoPendingReceipt}, nil
		}
		return nil, fmt.Errorf("failed to get pending receipt: %w", err)
	}

	session, err := s.repo.GetSessionByReceipt(ctx, userID, receipt.ReceiptID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}

		state, err := s.createSession(ctx, userID, receipt.ReceiptID, lang)
		if !errors.Is(err, ErrFeedbackInProgress) {
			return state, err
		}

		// A concurrent request created the session first; serve its state.
		session, err = s.repo.GetSessionByReceipt(ctx, userID, receipt.ReceiptID)
		if err != nil {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
	}

	if session.Status == model.FeedbackCompleted {
		return &model.FeedbackState{Available: false, Reason: model.ReasonFeedbackProvided}, nil
	}

	state, err := s.buildState(ctx, session, lang)
	if err != nil {
		return nil, err
	}
	if err := s.attachStoredAnswer(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Start explicitly begins a feedback session for the user's pending receipt.
func (s *FeedbackService) Start(ctx context.Context, userID uuid.UUID, lang string) (*model.FeedbackState, error) {
	receipt, err := s.repo.GetPendingReceipt(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPendingReceipt
		}
		return nil, fmt.Errorf("failed to get pending receipt: %w", err)
	}

	session, err := s.repo.GetSessionByReceipt(ctx, userID, receipt.ReceiptID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session != nil {
		if session.Status == model.FeedbackCompleted {
			return nil, ErrFeedbackProvided
		}
		return nil, ErrFeedbackInProgress
	}

	return s.createSession(ctx, userID, receipt.ReceiptID, lang)
}

func (s *FeedbackService) createSession(ctx context.Context, userID, receiptID uuid.UUID, lang string) (*model.FeedbackState, error) {
	survey, err := s.catalog.GetActiveSurvey(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveSurvey
		}
		return nil, fmt.Errorf("failed to get active survey: %w", err)
	}
	if len(survey.Questions) == 0 {
		return nil, ErrNoActiveSurvey
	}

	first := survey.QuestionAtOrder(1)
	if first == nil {
		return nil, ErrNoActiveSurvey
	}

	session := &model.FeedbackSession{
		SessionID:         uuid.New(),
		UserID:            userID,
		ReceiptID:         receiptID,
		SurveyID:          survey.SurveyID,
		CurrentQuestionID: &first.QuestionID,
		TotalQuestions:    len(survey.Questions),
		AnsweredQuestions: 0,
		PointsValue:       s.policy.StartingPoints(survey),
		Status:            model.FeedbackInProgress,
		CreatedAt:         time.Now().UTC(),
	}

	err = s.repo.CreateSession(ctx, session)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// A concurrent start won the unique constraint race.
			return nil, ErrFeedbackInProgress
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.stateFromSurvey(session, survey, lang)
}

// Answer records the submitted answer for the current question (or skips it
// when no payload is supplied) and advances the session. Answering a question
// for the first time awards points via the accrual policy; re-answering
// overwrites without a second award.
func (s *FeedbackService) Answer(ctx context.Context, userID uuid.UUID, lang string, optionKeys []string, text *string) (*model.FeedbackState, error) {
	session, survey, err := s.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	question := survey.QuestionByID(*session.CurrentQuestionID)
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	if _, ok := question.Translations[lang]; !ok {
		return nil, ErrTranslationNotFound
	}

	if err := validateOptionKeys(question, optionKeys); err != nil {
		return nil, err
	}

	hasText := text != nil && *text != ""
	if hasText && question.Type != model.QuestionTypeText {
		return nil, ErrTextNotAllowed
	}
	hasPayload := len(optionKeys) > 0 || hasText

	var nextQuestionID *uuid.UUID
	if next := survey.QuestionAtOrder(question.Order + 1); next != nil {
		nextQuestionID = &next.QuestionID
	}

	sub := model.SubmitAnswer{
		SessionID:      session.SessionID,
		QuestionID:     question.QuestionID,
		OptionKeys:     optionKeys,
		Text:           text,
		HasPayload:     hasPayload,
		NextQuestionID: nextQuestionID,
		AwardPoints:    s.policy.AwardForAnswer(survey),
	}

	updated, kind, err := s.repo.SubmitAnswer(ctx, sub)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrSessionCompleted):
			return nil, ErrNoActiveFeedback
		case errors.Is(err, repository.ErrStaleSession):
			return nil, ErrFeedbackStateChanged
		default:
			return nil, fmt.Errorf("failed to submit answer: %w", err)
		}
	}

	state, err := s.stateFromSurvey(updated, survey, lang)
	if err != nil {
		return nil, err
	}
	state.LastAnswer = kind
	if err := s.attachStoredAnswer(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}

// ReturnBack moves the session pointer to the preceding question. Answers,
// counters and points are untouched; re-answering afterwards follows the
// ordinary overwrite rule.
func (s *FeedbackService) ReturnBack(ctx context.Context, userID uuid.UUID, lang string) (*model.FeedbackState, error) {
	session, survey, err := s.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	question := survey.QuestionByID(*session.CurrentQuestionID)
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	if question.Order <= 1 {
		return nil, ErrFirstQuestion
	}

	prev := survey.QuestionAtOrder(question.Order - 1)
	if prev == nil {
		// Survey composition changed under an in-progress session.
		return nil, ErrQuestionNotFound
	}

	updated, err := s.repo.SetCurrentQuestion(ctx, session.SessionID, question.QuestionID, prev.QuestionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrSessionCompleted):
			return nil, ErrNoActiveFeedback
		case errors.Is(err, repository.ErrStaleSession):
			return nil, ErrFeedbackStateChanged
		default:
			return nil, fmt.Errorf("failed to move current question: %w", err)
		}
	}

	state, err := s.stateFromSurvey(updated, survey, lang)
	if err != nil {
		return nil, err
	}
	if err := s.attachStoredAnswer(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}

func (s *FeedbackService) activeSession(ctx context.Context, userID uuid.UUID) (*model.FeedbackSession, *model.Survey, error) {
	receipt, err := s.repo.GetPendingReceipt(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNoActiveFeedback
		}
		return nil, nil, fmt.Errorf("failed to get pending receipt: %w", err)
	}

	session, err := s.repo.GetSessionByReceipt(ctx, userID, receipt.ReceiptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNoActiveFeedback
		}
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Status != model.FeedbackInProgress || session.CurrentQuestionID == nil {
		return nil, nil, ErrNoActiveFeedback
	}

	survey, err := s.catalog.GetSurveyByID(ctx, session.SurveyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNoActiveSurvey
		}
		return nil, nil, fmt.Errorf("failed to get pinned survey: %w", err)
	}

	return session, survey, nil
}

// attachStoredAnswer loads the saved answer for the state's current question,
// if one exists. A revisited question carries its previous answer so clients
// can pre-fill it.
func (s *FeedbackService) attachStoredAnswer(ctx context.Context, state *model.FeedbackState) error {
	if state.CurrentQuestion == nil {
		return nil
	}

	answer, err := s.repo.GetAnswer(ctx, state.SessionID, state.CurrentQuestion.QuestionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get stored answer: %w", err)
	}

	state.CurrentQuestion.StoredAnswer = answer

	return nil
}

func validateOptionKeys(question *model.Question, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if question.OptionByKey(key) == nil {
			return ErrInvalidAnswerOption
		}
		if _, dup := seen[key]; dup {
			return ErrDuplicateAnswers
		}
		seen[key] = struct{}{}
	}

	if question.Type == model.QuestionTypeSingle && len(keys) != 1 {
		return ErrSingleOptionRequired
	}

	return nil
}

func (s *FeedbackService) buildState(ctx context.Context, session *model.FeedbackSession, lang string) (*model.FeedbackState, error) {
	survey, err := s.catalog.GetSurveyByID(ctx, session.SurveyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveSurvey
		}
		return nil, fmt.Errorf("failed to get pinned survey: %w", err)
	}

	return s.stateFromSurvey(session, survey, lang)
}

func (s *FeedbackService) stateFromSurvey(session *model.FeedbackSession, survey *model.Survey, lang string) (*model.FeedbackState, error) {
	state := &model.FeedbackState{
		Available:         true,
		SessionID:         session.SessionID,
		ReceiptID:         session.ReceiptID,
		Status:            session.Status,
		TotalQuestions:    session.TotalQuestions,
		AnsweredQuestions: session.AnsweredQuestions,
		PointsValue:       session.PointsValue,
		CompletedAt:       session.CompletedAt,
	}

	if session.CurrentQuestionID == nil {
		return state, nil
	}

	question := survey.QuestionByID(*session.CurrentQuestionID)
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	text, ok := question.Translations[lang]
	if !ok {
		return nil, ErrTranslationNotFound
	}

	view := &model.QuestionView{
		QuestionID: question.QuestionID,
		Type:       question.Type,
		Order:      question.Order,
		Text:       text,
		Options:    make([]model.OptionView, len(question.Options)),
	}

	for i, opt := range question.Options {
		label, ok := opt.Labels[lang]
		if !ok {
			label = opt.Key
		}
		view.Options[i] = model.OptionView{
			Key:   opt.Key,
			Order: opt.Order,
			Label: label,
		}
	}

	state.CurrentQuestion = view

	return state, nil
}
