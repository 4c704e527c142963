package repository

import (
	"testing"
	"time"

	"tenant_rewards/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAdvanceSession(t *testing.T) {
	next := uuid.New()
	now := time.Now().UTC()

	session := func(answered, points int) *feedbackSession {
		return &feedbackSession{
			SessionID:         uuid.New(),
			TotalQuestions:    3,
			AnsweredQuestions: answered,
			PointsValue:       points,
			Status:            string(model.FeedbackInProgress),
		}
	}

	tests := []struct {
		name             string
		session          *feedbackSession
		kind             model.AnswerUpsertKind
		sub              model.SubmitAnswer
		expectedAnswered int
		expectedPoints   int
		expectedStatus   model.FeedbackStatus
	}{
		{
			name:             "First answer moves both counters",
			session:          session(1, 10),
			kind:             model.AnswerNew,
			sub:              model.SubmitAnswer{NextQuestionID: &next, AwardPoints: 10},
			expectedAnswered: 2,
			expectedPoints:   20,
			expectedStatus:   model.FeedbackInProgress,
		},
		{
			name:             "Re-answer leaves counters untouched",
			session:          session(2, 20),
			kind:             model.AnswerOverwrite,
			sub:              model.SubmitAnswer{NextQuestionID: &next, AwardPoints: 10},
			expectedAnswered: 2,
			expectedPoints:   20,
			expectedStatus:   model.FeedbackInProgress,
		},
		{
			name:             "Skip leaves counters untouched",
			session:          session(0, 0),
			kind:             model.AnswerSkipped,
			sub:              model.SubmitAnswer{NextQuestionID: &next, AwardPoints: 10},
			expectedAnswered: 0,
			expectedPoints:   0,
			expectedStatus:   model.FeedbackInProgress,
		},
		{
			name:             "First answer to the last question completes with the award",
			session:          session(2, 20),
			kind:             model.AnswerNew,
			sub:              model.SubmitAnswer{NextQuestionID: nil, AwardPoints: 10},
			expectedAnswered: 3,
			expectedPoints:   30,
			expectedStatus:   model.FeedbackCompleted,
		},
		{
			name:             "Skipping the last question completes without award",
			session:          session(2, 20),
			kind:             model.AnswerSkipped,
			sub:              model.SubmitAnswer{NextQuestionID: nil, AwardPoints: 10},
			expectedAnswered: 2,
			expectedPoints:   20,
			expectedStatus:   model.FeedbackCompleted,
		},
		{
			name:             "Re-answering the last question completes without a second award",
			session:          session(3, 30),
			kind:             model.AnswerOverwrite,
			sub:              model.SubmitAnswer{NextQuestionID: nil, AwardPoints: 10},
			expectedAnswered: 3,
			expectedPoints:   30,
			expectedStatus:   model.FeedbackCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := advanceSession(tt.session, tt.kind, tt.sub, now)

			assert.Equal(t, tt.expectedAnswered, adv.Answered)
			assert.Equal(t, tt.expectedPoints, adv.Points)
			assert.Equal(t, tt.expectedStatus, adv.Status)

			if tt.expectedStatus == model.FeedbackCompleted {
				assert.NotNil(t, adv.CompletedAt)
				assert.Equal(t, now, *adv.CompletedAt)
			} else {
				assert.Nil(t, adv.CompletedAt)
			}
		})
	}
}
