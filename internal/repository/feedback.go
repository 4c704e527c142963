package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tenant_rewards/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type feedbackSession struct {
	SessionID         uuid.UUID  `db:"session_id"`
	UserID            uuid.UUID  `db:"user_id"`
	ReceiptID         uuid.UUID  `db:"receipt_id"`
	SurveyID          uuid.UUID  `db:"survey_id"`
	CurrentQuestionID *uuid.UUID `db:"current_question_id"`
	TotalQuestions    int        `db:"total_questions"`
	AnsweredQuestions int        `db:"answered_questions"`
	PointsValue       int        `db:"points_value"`
	Status            string     `db:"status"`
	CompletedAt       *time.Time `db:"completed_at"`
	CreatedAt         time.Time  `db:"created_at"`
}

func (s *feedbackSession) toModel() *model.FeedbackSession {
	return &model.FeedbackSession{
		SessionID:         s.SessionID,
		UserID:            s.UserID,
		ReceiptID:         s.ReceiptID,
		SurveyID:          s.SurveyID,
		CurrentQuestionID: s.CurrentQuestionID,
		TotalQuestions:    s.TotalQuestions,
		AnsweredQuestions: s.AnsweredQuestions,
		PointsValue:       s.PointsValue,
		Status:            model.FeedbackStatus(s.Status),
		CompletedAt:       s.CompletedAt,
		CreatedAt:         s.CreatedAt,
	}
}

// CreateSession inserts a new feedback session. The UNIQUE(user_id,
// receipt_id) constraint rejects a concurrent second start for the same
// receipt, surfaced as ErrAlreadyExists.
func (r *Repository) CreateSession(ctx context.Context, session *model.FeedbackSession) error {
	query, args, err := squirrel.
		Insert("feedback_sessions").
		SetMap(map[string]interface{}{
			"session_id":          session.SessionID,
			"user_id":             session.UserID,
			"receipt_id":          session.ReceiptID,
			"survey_id":           session.SurveyID,
			"current_question_id": session.CurrentQuestionID,
			"total_questions":     session.TotalQuestions,
			"answered_questions":  session.AnsweredQuestions,
			"points_value":        session.PointsValue,
			"status":              session.Status,
			"created_at":          session.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build session insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

func (r *Repository) GetSessionByReceipt(ctx context.Context, userID, receiptID uuid.UUID) (*model.FeedbackSession, error) {
	var session feedbackSession
	query, args, err := squirrel.
		Select("*").
		From("feedback_sessions").
		Where(squirrel.Eq{"user_id": userID, "receipt_id": receiptID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &session, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return session.toModel(), nil
}

func (r *Repository) lockSessionWithTx(ctx context.Context, tx *sqlx.Tx, sessionID uuid.UUID) (*feedbackSession, error) {
	var session feedbackSession
	query, args, err := squirrel.
		Select("*").
		From("feedback_sessions").
		Where(squirrel.Eq{"session_id": sessionID}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = tx.GetContext(ctx, &session, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &session, nil
}

func answerExistsWithTx(ctx context.Context, tx *sqlx.Tx, sessionID, questionID uuid.UUID) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		From("feedback_answers").
		Where(squirrel.Eq{"session_id": sessionID, "question_id": questionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = tx.GetContext(ctx, &one, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func upsertAnswerWithTx(ctx context.Context, tx *sqlx.Tx, sub model.SubmitAnswer) error {
	query, args, err := squirrel.
		Insert("feedback_answers").
		SetMap(map[string]interface{}{
			"session_id":  sub.SessionID,
			"question_id": sub.QuestionID,
			"option_keys": pq.StringArray(sub.OptionKeys),
			"answer_text": sub.Text,
			"updated_at":  time.Now().UTC(),
		}).
		Suffix("ON CONFLICT (session_id, question_id) DO UPDATE SET " +
			"option_keys = EXCLUDED.option_keys, " +
			"answer_text = EXCLUDED.answer_text, " +
			"updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build answer upsert query: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}

	return nil
}

// sessionAdvance is the computed outcome of one submission step.
type sessionAdvance struct {
	Answered    int
	Points      int
	Status      model.FeedbackStatus
	CompletedAt *time.Time
}

// advanceSession computes the session's counters and status after one
// submission step. Only a first-time answer moves the counters; overwrites
// and skips leave them untouched. A nil next question completes the session.
func advanceSession(session *feedbackSession, kind model.AnswerUpsertKind, sub model.SubmitAnswer, now time.Time) sessionAdvance {
	adv := sessionAdvance{
		Answered: session.AnsweredQuestions,
		Points:   session.PointsValue,
		Status:   model.FeedbackInProgress,
	}

	if kind == model.AnswerNew {
		adv.Answered++
		adv.Points += sub.AwardPoints
	}

	if sub.NextQuestionID == nil {
		adv.Status = model.FeedbackCompleted
		adv.CompletedAt = &now
	}

	return adv
}

// SubmitAnswer applies one advancement step as a single transaction: upsert
// the answer (when a payload was supplied), move the current-question pointer
// or complete the session, and on completion credit the accumulated points to
// the user's balance. The session row is locked for the whole unit, so the
// counters never race and a completed session cannot miss its credit.
func (r *Repository) SubmitAnswer(ctx context.Context, sub model.SubmitAnswer) (*model.FeedbackSession, model.AnswerUpsertKind, error) {
	var (
		updated *model.FeedbackSession
		kind    = model.AnswerSkipped
	)

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		session, err := r.lockSessionWithTx(ctx, tx, sub.SessionID)
		if err != nil {
			return err
		}

		if session.Status != string(model.FeedbackInProgress) {
			return ErrSessionCompleted
		}
		if session.CurrentQuestionID == nil || *session.CurrentQuestionID != sub.QuestionID {
			return ErrStaleSession
		}

		exists, err := answerExistsWithTx(ctx, tx, sub.SessionID, sub.QuestionID)
		if err != nil {
			return err
		}

		if sub.HasPayload {
			if err := upsertAnswerWithTx(ctx, tx, sub); err != nil {
				return err
			}
			if exists {
				kind = model.AnswerOverwrite
			} else {
				kind = model.AnswerNew
			}
		} else {
			kind = model.AnswerSkipped
		}

		adv := advanceSession(session, kind, sub, time.Now().UTC())

		updates := map[string]interface{}{
			"answered_questions":  adv.Answered,
			"points_value":        adv.Points,
			"current_question_id": sub.NextQuestionID,
		}
		if adv.Status == model.FeedbackCompleted {
			updates["status"] = adv.Status
			updates["completed_at"] = adv.CompletedAt
		}

		query, args, err := squirrel.
			Update("feedback_sessions").
			SetMap(updates).
			Where(squirrel.Eq{"session_id": sub.SessionID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build session update query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		if adv.Status == model.FeedbackCompleted && adv.Points > 0 {
			if err := addUserPointsWithTx(ctx, tx, session.UserID, adv.Points); err != nil {
				return fmt.Errorf("failed to credit user balance: %w", err)
			}
		}

		updated = &model.FeedbackSession{
			SessionID:         session.SessionID,
			UserID:            session.UserID,
			ReceiptID:         session.ReceiptID,
			SurveyID:          session.SurveyID,
			CurrentQuestionID: sub.NextQuestionID,
			TotalQuestions:    session.TotalQuestions,
			AnsweredQuestions: adv.Answered,
			PointsValue:       adv.Points,
			Status:            adv.Status,
			CompletedAt:       adv.CompletedAt,
			CreatedAt:         session.CreatedAt,
		}

		return nil
	})
	if err != nil {
		return nil, kind, err
	}

	return updated, kind, nil
}

// SetCurrentQuestion moves the session pointer backwards. The expected
// current question guards against a duplicate request that already moved it.
func (r *Repository) SetCurrentQuestion(ctx context.Context, sessionID, expectedCurrent, target uuid.UUID) (*model.FeedbackSession, error) {
	var updated *model.FeedbackSession

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		session, err := r.lockSessionWithTx(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		if session.Status != string(model.FeedbackInProgress) {
			return ErrSessionCompleted
		}
		if session.CurrentQuestionID == nil || *session.CurrentQuestionID != expectedCurrent {
			return ErrStaleSession
		}

		query, args, err := squirrel.
			Update("feedback_sessions").
			Set("current_question_id", target).
			Where(squirrel.Eq{"session_id": sessionID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update current question: %w", err)
		}

		m := session.toModel()
		m.CurrentQuestionID = &target
		updated = m

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// GetAnswer returns the stored answer for (session, question), if any.
func (r *Repository) GetAnswer(ctx context.Context, sessionID, questionID uuid.UUID) (*model.Answer, error) {
	var row struct {
		SessionID  uuid.UUID      `db:"session_id"`
		QuestionID uuid.UUID      `db:"question_id"`
		OptionKeys pq.StringArray `db:"option_keys"`
		Text       *string        `db:"answer_text"`
		UpdatedAt  time.Time      `db:"updated_at"`
	}

	query, args, err := squirrel.
		Select("session_id", "question_id", "option_keys", "answer_text", "updated_at").
		From("feedback_answers").
		Where(squirrel.Eq{"session_id": sessionID, "question_id": questionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.Answer{
		SessionID:  row.SessionID,
		QuestionID: row.QuestionID,
		OptionKeys: row.OptionKeys,
		Text:       row.Text,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
