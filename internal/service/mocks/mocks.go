package mocks

import (
	"context"

	"tenant_rewards/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) GetPendingReceipt(ctx context.Context, userID uuid.UUID) (*model.Receipt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

func (m *MockFeedbackRepository) GetSessionByReceipt(ctx context.Context, userID, receiptID uuid.UUID) (*model.FeedbackSession, error) {
	args := m.Called(ctx, userID, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FeedbackSession), args.Error(1)
}

func (m *MockFeedbackRepository) CreateSession(ctx context.Context, session *model.FeedbackSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockFeedbackRepository) SubmitAnswer(ctx context.Context, sub model.SubmitAnswer) (*model.FeedbackSession, model.AnswerUpsertKind, error) {
	args := m.Called(ctx, sub)
	var session *model.FeedbackSession
	if args.Get(0) != nil {
		session = args.Get(0).(*model.FeedbackSession)
	}
	return session, args.Get(1).(model.AnswerUpsertKind), args.Error(2)
}

func (m *MockFeedbackRepository) SetCurrentQuestion(ctx context.Context, sessionID, expectedCurrent, target uuid.UUID) (*model.FeedbackSession, error) {
	args := m.Called(ctx, sessionID, expectedCurrent, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FeedbackSession), args.Error(1)
}

func (m *MockFeedbackRepository) GetAnswer(ctx context.Context, sessionID, questionID uuid.UUID) (*model.Answer, error) {
	args := m.Called(ctx, sessionID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Answer), args.Error(1)
}

type MockSurveyCatalog struct {
	mock.Mock
}

func (m *MockSurveyCatalog) GetActiveSurvey(ctx context.Context) (*model.Survey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Survey), args.Error(1)
}

func (m *MockSurveyCatalog) GetSurveyByID(ctx context.Context, surveyID uuid.UUID) (*model.Survey, error) {
	args := m.Called(ctx, surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Survey), args.Error(1)
}

type MockSurveyRepository struct {
	MockSurveyCatalog
}

func (m *MockSurveyRepository) CreateSurvey(ctx context.Context, survey *model.Survey) error {
	args := m.Called(ctx, survey)
	return args.Error(0)
}

type MockRedemptionRepository struct {
	mock.Mock
}

func (m *MockRedemptionRepository) CreateRedemption(ctx context.Context, red *model.Redemption) error {
	args := m.Called(ctx, red)
	return args.Error(0)
}

func (m *MockRedemptionRepository) TransitionRedemption(ctx context.Context, id uuid.UUID, tr model.RedemptionTransition) (*model.Redemption, error) {
	args := m.Called(ctx, id, tr)
	var red *model.Redemption
	if args.Get(0) != nil {
		red = args.Get(0).(*model.Redemption)
	}
	return red, args.Error(1)
}

func (m *MockRedemptionRepository) GetRedemptionByID(ctx context.Context, id uuid.UUID) (*model.Redemption, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Redemption), args.Error(1)
}

func (m *MockRedemptionRepository) ListRedemptions(ctx context.Context, filter model.RedemptionFilter) ([]*model.Redemption, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Redemption), args.Error(1)
}
