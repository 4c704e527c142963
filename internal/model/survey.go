package model

import (
	"time"

	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "single"
	QuestionTypeMultiple QuestionType = "multiple"
	QuestionTypeText     QuestionType = "text"
)

type Survey struct {
	SurveyID        uuid.UUID
	Name            string
	Active          bool
	StartPoints     int
	PointsPerAnswer int
	CreatedAt       time.Time

	// Questions are ordered by their dense 1..N survey order.
	Questions []Question
}

type Question struct {
	QuestionID uuid.UUID
	SurveyID   uuid.UUID
	Type       QuestionType
	Order      int

	// Translations maps a language code to the question text.
	Translations map[string]string
	Options      []QuestionOption
}

type QuestionOption struct {
	Key    string
	Order  int
	Score  int
	Labels map[string]string
}

// QuestionByID returns the question with the given id, or nil.
func (s *Survey) QuestionByID(id uuid.UUID) *Question {
	for i := range s.Questions {
		if s.Questions[i].QuestionID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// QuestionAtOrder returns the question at the given survey order, or nil.
func (s *Survey) QuestionAtOrder(order int) *Question {
	for i := range s.Questions {
		if s.Questions[i].Order == order {
			return &s.Questions[i]
		}
	}
	return nil
}

// OptionByKey returns the option with the given key, or nil.
func (q *Question) OptionByKey(key string) *QuestionOption {
	for i := range q.Options {
		if q.Options[i].Key == key {
			return &q.Options[i]
		}
	}
	return nil
}
