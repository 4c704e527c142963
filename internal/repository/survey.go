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
)

type Survey struct {
	SurveyID        uuid.UUID `db:"survey_id"`
	Name            string    `db:"name"`
	Active          bool      `db:"active"`
	StartPoints     int       `db:"start_points"`
	PointsPerAnswer int       `db:"points_per_answer"`
	CreatedAt       time.Time `db:"created_at"`
}

type question struct {
	QuestionID uuid.UUID `db:"question_id"`
	SurveyID   uuid.UUID `db:"survey_id"`
	Type       string    `db:"question_type"`
	Order      int       `db:"ord"`
}

type questionTranslation struct {
	QuestionID uuid.UUID `db:"question_id"`
	Lang       string    `db:"lang"`
	Text       string    `db:"text"`
}

type questionOption struct {
	QuestionID uuid.UUID `db:"question_id"`
	OptionKey  string    `db:"option_key"`
	Order      int       `db:"ord"`
	Score      int       `db:"score"`
}

type optionTranslation struct {
	QuestionID uuid.UUID `db:"question_id"`
	OptionKey  string    `db:"option_key"`
	Lang       string    `db:"lang"`
	Label      string    `db:"label"`
}

// CreateSurvey inserts a survey with its questions, options and translations
// and atomically deactivates the previously active survey.
func (r *Repository) CreateSurvey(ctx context.Context, survey *model.Survey) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if survey.Active {
			deactivateQuery, deactivateArgs, err := squirrel.
				Update("surveys").
				Set("active", false).
				Where(squirrel.Eq{"active": true}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build survey deactivate query: %w", err)
			}

			_, err = tx.ExecContext(ctx, deactivateQuery, deactivateArgs...)
			if err != nil {
				return fmt.Errorf("failed to deactivate previous survey: %w", err)
			}
		}

		query, args, err := squirrel.
			Insert("surveys").
			SetMap(map[string]interface{}{
				"survey_id":         survey.SurveyID,
				"name":              survey.Name,
				"active":            survey.Active,
				"start_points":      survey.StartPoints,
				"points_per_answer": survey.PointsPerAnswer,
				"created_at":        survey.CreatedAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build survey insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert survey: %w", err)
		}

		questionBuilder := squirrel.
			Insert("questions").
			Columns("question_id", "survey_id", "question_type", "ord")

		translationBuilder := squirrel.
			Insert("question_translations").
			Columns("question_id", "lang", "text")
		translationCount := 0

		optionBuilder := squirrel.
			Insert("question_options").
			Columns("question_id", "option_key", "ord", "score")
		optionCount := 0

		labelBuilder := squirrel.
			Insert("option_translations").
			Columns("question_id", "option_key", "lang", "label")
		labelCount := 0

		for _, q := range survey.Questions {
			questionBuilder = questionBuilder.Values(q.QuestionID, survey.SurveyID, q.Type, q.Order)

			for lang, text := range q.Translations {
				translationBuilder = translationBuilder.Values(q.QuestionID, lang, text)
				translationCount++
			}

			for _, opt := range q.Options {
				optionBuilder = optionBuilder.Values(q.QuestionID, opt.Key, opt.Order, opt.Score)
				optionCount++

				for lang, label := range opt.Labels {
					labelBuilder = labelBuilder.Values(q.QuestionID, opt.Key, lang, label)
					labelCount++
				}
			}
		}

		query, args, err = questionBuilder.PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build questions insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert questions: %w", err)
		}

		if translationCount > 0 {
			query, args, err = translationBuilder.PlaceholderFormat(squirrel.Dollar).ToSql()
			if err != nil {
				return fmt.Errorf("failed to build translations insert query: %w", err)
			}

			_, err = tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("failed to insert question translations: %w", err)
			}
		}

		if optionCount > 0 {
			query, args, err = optionBuilder.PlaceholderFormat(squirrel.Dollar).ToSql()
			if err != nil {
				return fmt.Errorf("failed to build options insert query: %w", err)
			}

			_, err = tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("failed to insert question options: %w", err)
			}
		}

		if labelCount > 0 {
			query, args, err = labelBuilder.PlaceholderFormat(squirrel.Dollar).ToSql()
			if err != nil {
				return fmt.Errorf("failed to build option labels insert query: %w", err)
			}

			_, err = tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("failed to insert option labels: %w", err)
			}
		}

		return nil
	})
}

// GetActiveSurvey loads the single active survey with its ordered questions.
func (r *Repository) GetActiveSurvey(ctx context.Context) (*model.Survey, error) {
	return r.getSurvey(ctx, squirrel.Eq{"active": true})
}

// GetSurveyByID loads a survey by id regardless of its active flag; sessions
// pin the survey id at creation and keep reading it after deactivation.
func (r *Repository) GetSurveyByID(ctx context.Context, surveyID uuid.UUID) (*model.Survey, error) {
	return r.getSurvey(ctx, squirrel.Eq{"survey_id": surveyID})
}

func (r *Repository) getSurvey(ctx context.Context, where squirrel.Eq) (*model.Survey, error) {
	var survey Survey
	query, args, err := squirrel.
		Select("survey_id", "name", "active", "start_points", "points_per_answer", "created_at").
		From("surveys").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &survey, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	questions, err := r.loadQuestions(ctx, survey.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey questions: %w", err)
	}

	return &model.Survey{
		SurveyID:        survey.SurveyID,
		Name:            survey.Name,
		Active:          survey.Active,
		StartPoints:     survey.StartPoints,
		PointsPerAnswer: survey.PointsPerAnswer,
		CreatedAt:       survey.CreatedAt,
		Questions:       questions,
	}, nil
}

func (r *Repository) loadQuestions(ctx context.Context, surveyID uuid.UUID) ([]model.Question, error) {
	query, args, err := squirrel.
		Select("question_id", "survey_id", "question_type", "ord").
		From("questions").
		Where(squirrel.Eq{"survey_id": surveyID}).
		OrderBy("ord ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []question
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, err
	}

	questions := make([]model.Question, len(rows))
	index := make(map[uuid.UUID]*model.Question, len(rows))
	questionIDs := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		questions[i] = model.Question{
			QuestionID:   row.QuestionID,
			SurveyID:     row.SurveyID,
			Type:         model.QuestionType(row.Type),
			Order:        row.Order,
			Translations: make(map[string]string),
		}
		index[row.QuestionID] = &questions[i]
		questionIDs[i] = row.QuestionID
	}

	if len(questions) == 0 {
		return questions, nil
	}

	query, args, err = squirrel.
		Select("question_id", "lang", "text").
		From("question_translations").
		Where(squirrel.Eq{"question_id": questionIDs}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var translations []questionTranslation
	err = r.db.SelectContext(ctx, &translations, query, args...)
	if err != nil {
		return nil, err
	}

	for _, tr := range translations {
		if q, ok := index[tr.QuestionID]; ok {
			q.Translations[tr.Lang] = tr.Text
		}
	}

	query, args, err = squirrel.
		Select("question_id", "option_key", "ord", "score").
		From("question_options").
		Where(squirrel.Eq{"question_id": questionIDs}).
		OrderBy("ord ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var options []questionOption
	err = r.db.SelectContext(ctx, &options, query, args...)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		if q, ok := index[opt.QuestionID]; ok {
			q.Options = append(q.Options, model.QuestionOption{
				Key:    opt.OptionKey,
				Order:  opt.Order,
				Score:  opt.Score,
				Labels: make(map[string]string),
			})
		}
	}

	query, args, err = squirrel.
		Select("question_id", "option_key", "lang", "label").
		From("option_translations").
		Where(squirrel.Eq{"question_id": questionIDs}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var labels []optionTranslation
	err = r.db.SelectContext(ctx, &labels, query, args...)
	if err != nil {
		return nil, err
	}

	for _, label := range labels {
		q, ok := index[label.QuestionID]
		if !ok {
			continue
		}
		if opt := q.OptionByKey(label.OptionKey); opt != nil {
			opt.Labels[label.Lang] = label.Label
		}
	}

	return questions, nil
}
