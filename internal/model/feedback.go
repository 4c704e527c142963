package model

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackStatus string

const (
	FeedbackInProgress FeedbackStatus = "in_progress"
	FeedbackCompleted  FeedbackStatus = "completed"
)

type FeedbackSession struct {
	SessionID         uuid.UUID
	UserID            uuid.UUID
	ReceiptID         uuid.UUID
	SurveyID          uuid.UUID
	CurrentQuestionID *uuid.UUID
	TotalQuestions    int
	AnsweredQuestions int
	PointsValue       int
	Status            FeedbackStatus
	CompletedAt       *time.Time
	CreatedAt         time.Time
}

type Answer struct {
	SessionID  uuid.UUID
	QuestionID uuid.UUID
	OptionKeys []string
	Text       *string
	UpdatedAt  time.Time
}

// AnswerUpsertKind tells the caller what the answer upsert actually did,
// so accrual can branch on an explicit value instead of re-querying.
type AnswerUpsertKind string

const (
	AnswerNew       AnswerUpsertKind = "new"
	AnswerOverwrite AnswerUpsertKind = "overwrite"
	AnswerSkipped   AnswerUpsertKind = "skipped"
)

// SubmitAnswer is the atomic advancement unit applied to a session: the
// optional answer payload, the precomputed next question (nil completes the
// session) and the points to award if the answer turns out to be new.
type SubmitAnswer struct {
	SessionID      uuid.UUID
	QuestionID     uuid.UUID
	OptionKeys     []string
	Text           *string
	HasPayload     bool
	NextQuestionID *uuid.UUID
	AwardPoints    int
}

// UnavailableReason explains why no feedback session can be served.
type UnavailableReason string

const (
	ReasonNoPendingReceipt UnavailableReason = "no_pending_receipt"
	ReasonFeedbackProvided UnavailableReason = "feedback_provided"
)

type QuestionView struct {
	QuestionID uuid.UUID
	Type       QuestionType
	Order      int
	Text       string
	Options    []OptionView

	// StoredAnswer is the previously saved answer for this question, if any,
	// so clients can pre-fill after back navigation.
	StoredAnswer *Answer
}

type OptionView struct {
	Key   string
	Order int
	Label string
}

// FeedbackState is the caller-facing view of a session.
type FeedbackState struct {
	Available         bool
	Reason            UnavailableReason
	SessionID         uuid.UUID
	ReceiptID         uuid.UUID
	Status            FeedbackStatus
	TotalQuestions    int
	AnsweredQuestions int
	PointsValue       int
	CurrentQuestion   *QuestionView
	CompletedAt       *time.Time

	// LastAnswer reports what the submission that produced this state did
	// (new, overwrite or skipped); empty for states not produced by one.
	LastAnswer AnswerUpsertKind
}
