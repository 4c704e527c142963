package service

import (
	"context"
	"testing"
	"time"

	"tenant_rewards/internal/model"
	"tenant_rewards/internal/repository"
	"tenant_rewards/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func strPtr(s string) *string { return &s }

type feedbackFixture struct {
	userID    uuid.UUID
	receiptID uuid.UUID
	survey    *model.Survey
}

func newFeedbackFixture(startPoints, pointsPerAnswer int) *feedbackFixture {
	surveyID := uuid.New()
	questions := make([]model.Question, 3)
	for i := 0; i < 3; i++ {
		questions[i] = model.Question{
			QuestionID:   uuid.New(),
			SurveyID:     surveyID,
			Type:         model.QuestionTypeSingle,
			Order:        i + 1,
			Translations: map[string]string{"en": "How satisfied are you?"},
			Options: []model.QuestionOption{
				{Key: "good", Order: 1, Score: 2, Labels: map[string]string{"en": "Good"}},
				{Key: "bad", Order: 2, Score: 0, Labels: map[string]string{"en": "Bad"}},
			},
		}
	}

	return &feedbackFixture{
		userID:    uuid.New(),
		receiptID: uuid.New(),
		survey: &model.Survey{
			SurveyID:        surveyID,
			Name:            "Tenant satisfaction",
			Active:          true,
			StartPoints:     startPoints,
			PointsPerAnswer: pointsPerAnswer,
			Questions:       questions,
		},
	}
}

func (f *feedbackFixture) receipt() *model.Receipt {
	return &model.Receipt{
		ReceiptID:  f.receiptID,
		UserID:     f.userID,
		Status:     model.ReceiptPending,
		UploadedAt: time.Now(),
	}
}

func (f *feedbackFixture) session(currentOrder int, answered int, points int) *model.FeedbackSession {
	session := &model.FeedbackSession{
		SessionID:         uuid.New(),
		UserID:            f.userID,
		ReceiptID:         f.receiptID,
		SurveyID:          f.survey.SurveyID,
		TotalQuestions:    len(f.survey.Questions),
		AnsweredQuestions: answered,
		PointsValue:       points,
		Status:            model.FeedbackInProgress,
		CreatedAt:         time.Now(),
	}
	if currentOrder > 0 {
		session.CurrentQuestionID = &f.survey.QuestionAtOrder(currentOrder).QuestionID
	} else {
		now := time.Now()
		session.Status = model.FeedbackCompleted
		session.CompletedAt = &now
	}
	return session
}

func TestFeedbackService_GetState(t *testing.T) {
	fixture := newFeedbackFixture(0, 10)

	tests := []struct {
		name       string
		mockSetup  func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog)
		checkState func(t *testing.T, state *model.FeedbackState)
	}{
		{
			name: "No pending receipt",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(nil, repository.ErrNotFound)
			},
			checkState: func(t *testing.T, state *model.FeedbackState) {
				assert.False(t, state.Available)
				assert.Equal(t, model.ReasonNoPendingReceipt, state.Reason)
			},
		},
		{
			name: "Feedback already provided",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(fixture.session(0, 3, 30), nil)
			},
			checkState: func(t *testing.T, state *model.FeedbackState) {
				assert.False(t, state.Available)
				assert.Equal(t, model.ReasonFeedbackProvided, state.Reason)
			},
		},
		{
			name: "In-progress session is returned",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(fixture.session(2, 1, 10), nil)
				catalog.On("GetSurveyByID", mock.Anything, fixture.survey.SurveyID).
					Return(fixture.survey, nil)
				repo.On("GetAnswer", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, repository.ErrNotFound)
			},
			checkState: func(t *testing.T, state *model.FeedbackState) {
				assert.True(t, state.Available)
				assert.Equal(t, model.FeedbackInProgress, state.Status)
				assert.Equal(t, 1, state.AnsweredQuestions)
				assert.Equal(t, 10, state.PointsValue)
				assert.NotNil(t, state.CurrentQuestion)
				assert.Equal(t, 2, state.CurrentQuestion.Order)
				assert.Len(t, state.CurrentQuestion.Options, 2)
				assert.Equal(t, "Good", state.CurrentQuestion.Options[0].Label)
			},
		},
		{
			name: "Concurrent create serves the winner's session",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(nil, repository.ErrNotFound).Once()
				catalog.On("GetActiveSurvey", mock.Anything).
					Return(fixture.survey, nil)
				repo.On("CreateSession", mock.Anything, mock.Anything).
					Return(repository.ErrAlreadyExists)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(fixture.session(1, 0, 0), nil)
				catalog.On("GetSurveyByID", mock.Anything, fixture.survey.SurveyID).
					Return(fixture.survey, nil)
				repo.On("GetAnswer", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, repository.ErrNotFound)
			},
			checkState: func(t *testing.T, state *model.FeedbackState) {
				assert.True(t, state.Available)
				assert.Equal(t, model.FeedbackInProgress, state.Status)
				assert.Equal(t, 1, state.CurrentQuestion.Order)
			},
		},
		{
			name: "Missing session is created",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(nil, repository.ErrNotFound)
				catalog.On("GetActiveSurvey", mock.Anything).
					Return(fixture.survey, nil)
				repo.On("CreateSession", mock.Anything, mock.MatchedBy(func(s *model.FeedbackSession) bool {
					return s.UserID == fixture.userID &&
						s.ReceiptID == fixture.receiptID &&
						s.SurveyID == fixture.survey.SurveyID &&
						s.TotalQuestions == 3 &&
						s.AnsweredQuestions == 0 &&
						s.CurrentQuestionID != nil &&
						*s.CurrentQuestionID == fixture.survey.QuestionAtOrder(1).QuestionID
				})).Return(nil)
			},
			checkState: func(t *testing.T, state *model.FeedbackState) {
				assert.True(t, state.Available)
				assert.Equal(t, model.FeedbackInProgress, state.Status)
				assert.Equal(t, 1, state.CurrentQuestion.Order)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockFeedbackRepository{}
			mockCatalog := &mocks.MockSurveyCatalog{}
			service := NewFeedbackService(mockRepo, mockCatalog, SurveyConfigPolicy{})

			tt.mockSetup(mockRepo, mockCatalog)

			state, err := service.GetState(context.Background(), fixture.userID, "en")

			assert.NoError(t, err)
			assert.NotNil(t, state)
			tt.checkState(t, state)

			mockRepo.AssertExpectations(t)
			mockCatalog.AssertExpectations(t)
		})
	}
}

func TestFeedbackService_Start(t *testing.T) {
	fixture := newFeedbackFixture(5, 10)

	tests := []struct {
		name          string
		mockSetup     func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog)
		expectedError error
		checkState    func(t *testing.T, state *model.FeedbackState)
	}{
		{
			name: "No pending receipt",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrNoPendingReceipt,
		},
		{
			name: "Feedback already provided",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(fixture.session(0, 3, 35), nil)
			},
			expectedError: ErrFeedbackProvided,
		},
		{
			name: "Feedback already in progress",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(fixture.session(1, 0, 5), nil)
			},
			expectedError: ErrFeedbackInProgress,
		},
		{
			name: "No active survey",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(nil, repository.ErrNotFound)
				catalog.On("GetActiveSurvey", mock.Anything).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrNoActiveSurvey,
		},
		{
			name: "Concurrent start loses the uniqueness race",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(nil, repository.ErrNotFound)
				catalog.On("GetActiveSurvey", mock.Anything).
					Return(fixture.survey, nil)
				repo.On("CreateSession", mock.Anything, mock.Anything).
					Return(repository.ErrAlreadyExists)
			},
			expectedError: ErrFeedbackInProgress,
		},
		{
			name: "Successful start applies starting points",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(nil, repository.ErrNotFound)
				catalog.On("GetActiveSurvey", mock.Anything).
					Return(fixture.survey, nil)
				repo.On("CreateSession", mock.Anything, mock.MatchedBy(func(s *model.FeedbackSession) bool {
					return s.PointsValue == 5 && s.Status == model.FeedbackInProgress
				})).Return(nil)
			},
			checkState: func(t *testing.T, state *model.FeedbackState) {
				assert.True(t, state.Available)
				assert.Equal(t, 5, state.PointsValue)
				assert.Equal(t, 3, state.TotalQuestions)
				assert.Equal(t, 1, state.CurrentQuestion.Order)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockFeedbackRepository{}
			mockCatalog := &mocks.MockSurveyCatalog{}
			service := NewFeedbackService(mockRepo, mockCatalog, SurveyConfigPolicy{})

			tt.mockSetup(mockRepo, mockCatalog)

			state, err := service.Start(context.Background(), fixture.userID, "en")

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, state)
			if tt.checkState != nil {
				tt.checkState(t, state)
			}

			mockRepo.AssertExpectations(t)
			mockCatalog.AssertExpectations(t)
		})
	}
}

func TestFeedbackService_Answer(t *testing.T) {
	fixture := newFeedbackFixture(0, 10)
	q1 := fixture.survey.QuestionAtOrder(1)
	q2 := fixture.survey.QuestionAtOrder(2)
	q3 := fixture.survey.QuestionAtOrder(3)

	setupActiveSession := func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog, session *model.FeedbackSession) {
		repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
			Return(fixture.receipt(), nil)
		repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
			Return(session, nil)
		catalog.On("GetSurveyByID", mock.Anything, fixture.survey.SurveyID).
			Return(fixture.survey, nil)
		repo.On("GetAnswer", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, repository.ErrNotFound).Maybe()
	}

	tests := []struct {
		name          string
		lang          string
		optionKeys    []string
		text          *string
		mockSetup     func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog)
		expectedError error
		checkState    func(t *testing.T, state *model.FeedbackState)
	}{
		{
			name:       "Answer first question advances and awards",
			optionKeys: []string{"good"},
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				setupActiveSession(repo, catalog, fixture.session(1, 0, 0))
				updated := fixture.session(2, 1, 10)
				repo.On("SubmitAnswer", mock.Anything, mock.MatchedBy(func(sub model.SubmitAnswer) bool {
					return sub.QuestionID == q1.QuestionID &&
						sub.HasPayload &&
						sub.AwardPoints == 10 &&
						sub.NextQuestionID != nil &&
						*sub.NextQuestionID == q2.QuestionID
				})).Return(updated, model.AnswerNew, nil)
			},
			checkState: func(t *testing.T, state *model.FeedbackState) {
				assert.Equal(t, 1, state.AnsweredQuestions)
				assert.Equal(t, 10, state.PointsValue)
				assert.Equal(t, 2, state.CurrentQuestion.Order)
				assert.Equal(t, model.AnswerNew, state.LastAnswer)
			},
		},
		{
			name:       "Re-answer overwrites without moving counters",
			optionKeys: []string{"bad"},
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				setupActiveSession(repo, catalog, fixture.session(1, 1, 10))
				updated := fixture.session(2, 1, 10)
				repo.On("SubmitAnswer", mock.Anything, mock.MatchedBy(func(sub model.SubmitAnswer) bool {
					return sub.QuestionID == q1.QuestionID && sub.HasPayload
				})).Return(updated, model.AnswerOverwrite, nil)
			},
			checkState: func(t *testing.T, state *model.FeedbackState) {
				assert.Equal(t, 1, state.AnsweredQuestions)
				assert.Equal(t, 10, state.PointsValue)
				assert.Equal(t, model.AnswerOverwrite, state.LastAnswer)
			},
		},
		{
			name:       "Answer last question completes the session",
			optionKeys: []string{"good"},
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				setupActiveSession(repo, catalog, fixture.session(3, 2, 20))
				updated := fixture.session(0, 3, 30)
				repo.On("SubmitAnswer", mock.Anything, mock.MatchedBy(func(sub model.SubmitAnswer) bool {
					return sub.QuestionID == q3.QuestionID &&
						sub.HasPayload &&
						sub.NextQuestionID == nil
				})).Return(updated, model.AnswerNew, nil)
			},
			checkState: func(t *testing.T, state *model.FeedbackState) {
				assert.Equal(t, model.FeedbackCompleted, state.Status)
				assert.Equal(t, 30, state.PointsValue)
				assert.Nil(t, state.CurrentQuestion)
				assert.NotNil(t, state.CompletedAt)
			},
		},
		{
			name: "Skip submits no payload",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				setupActiveSession(repo, catalog, fixture.session(1, 0, 0))
				updated := fixture.session(2, 0, 0)
				repo.On("SubmitAnswer", mock.Anything, mock.MatchedBy(func(sub model.SubmitAnswer) bool {
					return !sub.HasPayload && sub.QuestionID == q1.QuestionID
				})).Return(updated, model.AnswerSkipped, nil)
			},
			checkState: func(t *testing.T, state *model.FeedbackState) {
				assert.Equal(t, 0, state.AnsweredQuestions)
				assert.Equal(t, 0, state.PointsValue)
				assert.Equal(t, 2, state.CurrentQuestion.Order)
				assert.Equal(t, model.AnswerSkipped, state.LastAnswer)
			},
		},
		{
			name: "Free text on a choice question",
			text: strPtr("the hallway lights flicker"),
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				setupActiveSession(repo, catalog, fixture.session(1, 0, 0))
			},
			expectedError: ErrTextNotAllowed,
		},
		{
			name:       "Invalid option key",
			optionKeys: []string{"nonsense"},
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				setupActiveSession(repo, catalog, fixture.session(1, 0, 0))
			},
			expectedError: ErrInvalidAnswerOption,
		},
		{
			name:       "Duplicate option keys",
			optionKeys: []string{"good", "good"},
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				setupActiveSession(repo, catalog, fixture.session(1, 0, 0))
			},
			expectedError: ErrDuplicateAnswers,
		},
		{
			name:       "Single choice rejects two keys",
			optionKeys: []string{"good", "bad"},
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				setupActiveSession(repo, catalog, fixture.session(1, 0, 0))
			},
			expectedError: ErrSingleOptionRequired,
		},
		{
			name:       "Missing translation",
			lang:       "de",
			optionKeys: []string{"good"},
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				setupActiveSession(repo, catalog, fixture.session(1, 0, 0))
			},
			expectedError: ErrTranslationNotFound,
		},
		{
			name: "No active feedback",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(fixture.session(0, 3, 30), nil)
			},
			expectedError: ErrNoActiveFeedback,
		},
		{
			name:       "Duplicate request raced past by its twin",
			optionKeys: []string{"good"},
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				setupActiveSession(repo, catalog, fixture.session(1, 0, 0))
				repo.On("SubmitAnswer", mock.Anything, mock.Anything).
					Return(nil, model.AnswerSkipped, repository.ErrStaleSession)
			},
			expectedError: ErrFeedbackStateChanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockFeedbackRepository{}
			mockCatalog := &mocks.MockSurveyCatalog{}
			service := NewFeedbackService(mockRepo, mockCatalog, SurveyConfigPolicy{})

			tt.mockSetup(mockRepo, mockCatalog)

			lang := tt.lang
			if lang == "" {
				lang = "en"
			}

			state, err := service.Answer(context.Background(), fixture.userID, lang, tt.optionKeys, tt.text)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, state)
			if tt.checkState != nil {
				tt.checkState(t, state)
			}

			mockRepo.AssertExpectations(t)
			mockCatalog.AssertExpectations(t)
		})
	}
}

func TestFeedbackService_ReturnBack(t *testing.T) {
	fixture := newFeedbackFixture(0, 10)
	q1 := fixture.survey.QuestionAtOrder(1)
	q2 := fixture.survey.QuestionAtOrder(2)

	tests := []struct {
		name          string
		mockSetup     func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog)
		expectedError error
		checkState    func(t *testing.T, state *model.FeedbackState)
	}{
		{
			name: "Cannot go back from the first question",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(fixture.session(1, 0, 0), nil)
				catalog.On("GetSurveyByID", mock.Anything, fixture.survey.SurveyID).
					Return(fixture.survey, nil)
			},
			expectedError: ErrFirstQuestion,
		},
		{
			name: "Back from the second question lands on the first with its stored answer",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				session := fixture.session(2, 1, 10)
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(session, nil)
				catalog.On("GetSurveyByID", mock.Anything, fixture.survey.SurveyID).
					Return(fixture.survey, nil)
				moved := fixture.session(1, 1, 10)
				repo.On("SetCurrentQuestion", mock.Anything, session.SessionID, q2.QuestionID, q1.QuestionID).
					Return(moved, nil)
				repo.On("GetAnswer", mock.Anything, moved.SessionID, q1.QuestionID).
					Return(&model.Answer{
						SessionID:  moved.SessionID,
						QuestionID: q1.QuestionID,
						OptionKeys: []string{"good"},
					}, nil)
			},
			checkState: func(t *testing.T, state *model.FeedbackState) {
				assert.Equal(t, 1, state.CurrentQuestion.Order)
				// Going back never touches counters or points.
				assert.Equal(t, 1, state.AnsweredQuestions)
				assert.Equal(t, 10, state.PointsValue)
				assert.NotNil(t, state.CurrentQuestion.StoredAnswer)
				assert.Equal(t, []string{"good"}, state.CurrentQuestion.StoredAnswer.OptionKeys)
			},
		},
		{
			name: "Completed session cannot go back",
			mockSetup: func(repo *mocks.MockFeedbackRepository, catalog *mocks.MockSurveyCatalog) {
				repo.On("GetPendingReceipt", mock.Anything, fixture.userID).
					Return(fixture.receipt(), nil)
				repo.On("GetSessionByReceipt", mock.Anything, fixture.userID, fixture.receiptID).
					Return(fixture.session(0, 3, 30), nil)
			},
			expectedError: ErrNoActiveFeedback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockFeedbackRepository{}
			mockCatalog := &mocks.MockSurveyCatalog{}
			service := NewFeedbackService(mockRepo, mockCatalog, SurveyConfigPolicy{})

			tt.mockSetup(mockRepo, mockCatalog)

			state, err := service.ReturnBack(context.Background(), fixture.userID, "en")

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, state)
			if tt.checkState != nil {
				tt.checkState(t, state)
			}

			mockRepo.AssertExpectations(t)
			mockCatalog.AssertExpectations(t)
		})
	}
}
