package service

import "tenant_rewards/internal/model"

// AccrualPolicy decides how many points a session starts with and how many a
// newly answered question is worth. The policy is injected so deployments
// (and tests) can swap the award scheme without touching the state machine.
type AccrualPolicy interface {
	StartingPoints(survey *model.Survey) int
	AwardForAnswer(survey *model.Survey) int
}

// SurveyConfigPolicy awards the amounts configured on the survey itself.
type SurveyConfigPolicy struct{}

func (SurveyConfigPolicy) StartingPoints(survey *model.Survey) int {
	return survey.StartPoints
}

func (SurveyConfigPolicy) AwardForAnswer(survey *model.Survey) int {
	return survey.PointsPerAnswer
}

// FlatRatePolicy awards a fixed amount per answered question regardless of
// survey configuration.
type FlatRatePolicy struct {
	PerAnswer int
}

func (FlatRatePolicy) StartingPoints(*model.Survey) int { return 0 }

func (p FlatRatePolicy) AwardForAnswer(*model.Survey) int { return p.PerAnswer }
