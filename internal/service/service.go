package service

import (
	"context"
	"errors"
	"fmt"

	"tenant_rewards/internal/model"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	ErrNoActiveSurvey     = errors.New("no active survey")
	ErrNoPendingReceipt   = errors.New("no pending receipt")
	ErrFeedbackProvided   = errors.New("feedback already provided")
	ErrFeedbackInProgress = errors.New("feedback already in progress")

	ErrNoActiveFeedback     = errors.New("no active feedback")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrTranslationNotFound  = errors.New("translation not found")
	ErrInvalidAnswerOption  = errors.New("invalid answer option")
	ErrDuplicateAnswers     = errors.New("duplicate answers")
	ErrSingleOptionRequired = errors.New("single choice question requires exactly one answer")
	ErrTextNotAllowed       = errors.New("free text is not allowed for choice questions")
	ErrFirstQuestion        = errors.New("can't go back from the first question")
	ErrFeedbackStateChanged = errors.New("feedback state changed, fetch the current state")

	ErrRedemptionNotFound  = errors.New("redemption not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAmountBelowMinimum  = errors.New("points amount below the redemption minimum")

	ErrInvalidSurvey = errors.New("invalid survey definition")
)

// StateTransitionError reports a redemption operation attempted from a status
// it is not legal in, naming the statuses it requires.
type StateTransitionError struct {
	Operation string
	Required  []model.RedemptionStatus
	Current   model.RedemptionStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a redemption in status %q: requires status %v",
		e.Operation, e.Current, e.Required)
}

type Service struct {
	*UserService
	*FeedbackService
	*SurveyService
	*RedemptionService
}

func NewService(
	userService *UserService,
	feedbackService *FeedbackService,
	surveyService *SurveyService,
	redemptionService *RedemptionService,
) *Service {
	return &Service{
		UserService:       userService,
		FeedbackService:   feedbackService,
		SurveyService:     surveyService,
		RedemptionService: redemptionService,
	}
}

type UserServiceI interface {
	RegisterUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type FeedbackServiceI interface {
	GetState(ctx context.Context, userID uuid.UUID, lang string) (*model.FeedbackState, error)
	Start(ctx context.Context, userID uuid.UUID, lang string) (*model.FeedbackState, error)
	Answer(ctx context.Context, userID uuid.UUID, lang string, optionKeys []string, text *string) (*model.FeedbackState, error)
	ReturnBack(ctx context.Context, userID uuid.UUID, lang string) (*model.FeedbackState, error)
}

type FeedbackRepository interface {
	GetPendingReceipt(ctx context.Context, userID uuid.UUID) (*model.Receipt, error)
	GetSessionByReceipt(ctx context.Context, userID, receiptID uuid.UUID) (*model.FeedbackSession, error)
	CreateSession(ctx context.Context, session *model.FeedbackSession) error
	SubmitAnswer(ctx context.Context, sub model.SubmitAnswer) (*model.FeedbackSession, model.AnswerUpsertKind, error)
	SetCurrentQuestion(ctx context.Context, sessionID, expectedCurrent, target uuid.UUID) (*model.FeedbackSession, error)
	GetAnswer(ctx context.Context, sessionID, questionID uuid.UUID) (*model.Answer, error)
}

type SurveyCatalog interface {
	GetActiveSurvey(ctx context.Context) (*model.Survey, error)
	GetSurveyByID(ctx context.Context, surveyID uuid.UUID) (*model.Survey, error)
}

type SurveyServiceI interface {
	CreateSurvey(ctx context.Context, survey *model.Survey) (uuid.UUID, error)
	GetActiveSurvey(ctx context.Context) (*model.Survey, error)
}

type SurveyRepository interface {
	CreateSurvey(ctx context.Context, survey *model.Survey) error
	GetActiveSurvey(ctx context.Context) (*model.Survey, error)
	GetSurveyByID(ctx context.Context, surveyID uuid.UUID) (*model.Survey, error)
}

type RedemptionServiceI interface {
	Create(ctx context.Context, userID uuid.UUID, points int, destination string) (*model.Redemption, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Redemption, error)
	Approve(ctx context.Context, id uuid.UUID) (*model.Redemption, error)
	Complete(ctx context.Context, id uuid.UUID) (*model.Redemption, error)
	Reject(ctx context.Context, id uuid.UUID, reason *string) (*model.Redemption, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Redemption, error)
	List(ctx context.Context, filter model.RedemptionFilter) ([]*model.Redemption, error)
}

type RedemptionRepository interface {
	CreateRedemption(ctx context.Context, red *model.Redemption) error
	TransitionRedemption(ctx context.Context, id uuid.UUID, tr model.RedemptionTransition) (*model.Redemption, error)
	GetRedemptionByID(ctx context.Context, id uuid.UUID) (*model.Redemption, error)
	ListRedemptions(ctx context.Context, filter model.RedemptionFilter) ([]*model.Redemption, error)
}
