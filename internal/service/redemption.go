package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tenant_rewards/internal/model"
	"tenant_rewards/internal/repository"

	"github.com/google/uuid"
)

const (
	// MinRedemptionPoints is the smallest amount a payout request may lock.
	MinRedemptionPoints = 100

	// payoutCentsPerPoint is the fixed conversion rate applied once at
	// redemption creation and never recomputed.
	payoutCentsPerPoint = 1
)

type RedemptionService struct {
	repo     RedemptionRepository
	notifier *Notifier
}

func NewRedemptionService(repo RedemptionRepository, notifier *Notifier) *RedemptionService {
	return &RedemptionService{
		repo:     repo,
		notifier: notifier,
	}
}

// Create locks the requested amount out of the user's balance and opens a
// pending payout request.
func (s *RedemptionService) Create(ctx context.Context, userID uuid.UUID, points int, destination string) (*model.Redemption, error) {
	if points < MinRedemptionPoints {
		return nil, ErrAmountBelowMinimum
	}

	red := &model.Redemption{
		RedemptionID: uuid.New(),
		UserID:       userID,
		PointsAmount: points,
		PayoutCents:  int64(points) * payoutCentsPerPoint,
		Destination:  destination,
		Status:       model.RedemptionPending,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.repo.CreateRedemption(ctx, red)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrInsufficientBalance):
			return nil, ErrInsufficientBalance
		default:
			return nil, fmt.Errorf("failed to create redemption: %w", err)
		}
	}

	s.notifier.Publish(Message{
		Type: "REDEMPTION_CREATED",
		Payload: map[string]any{
			"redemption_id": red.RedemptionID,
			"user_id":       red.UserID,
			"points_amount": red.PointsAmount,
		},
	})

	return red, nil
}

func (s *RedemptionService) Approve(ctx context.Context, id uuid.UUID) (*model.Redemption, error) {
	return s.transition(ctx, id, "approve", model.RedemptionTransition{
		From: []model.RedemptionStatus{model.RedemptionPending},
		To:   model.RedemptionApproved,
	})
}

func (s *RedemptionService) Complete(ctx context.Context, id uuid.UUID) (*model.Redemption, error) {
	return s.transition(ctx, id, "complete", model.RedemptionTransition{
		From: []model.RedemptionStatus{model.RedemptionApproved},
		To:   model.RedemptionCompleted,
	})
}

// Reject returns the locked amount to the user's balance. The status guard
// makes the refund happen exactly once: a rejected redemption is no longer in
// a rejectable status.
func (s *RedemptionService) Reject(ctx context.Context, id uuid.UUID, reason *string) (*model.Redemption, error) {
	return s.transition(ctx, id, "reject", model.RedemptionTransition{
		From:         []model.RedemptionStatus{model.RedemptionPending, model.RedemptionApproved},
		To:           model.RedemptionRejected,
		Reason:       reason,
		RefundPoints: true,
	})
}

func (s *RedemptionService) transition(ctx context.Context, id uuid.UUID, operation string, tr model.RedemptionTransition) (*model.Redemption, error) {
	red, err := s.repo.TransitionRedemption(ctx, id, tr)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrRedemptionNotFound
		case errors.Is(err, repository.ErrIllegalTransition):
			return nil, &StateTransitionError{
				Operation: operation,
				Required:  tr.From,
				Current:   red.Status,
			}
		default:
			return nil, fmt.Errorf("failed to %s redemption: %w", operation, err)
		}
	}

	s.notifier.Publish(Message{
		Type: "REDEMPTION_" + strings.ToUpper(string(tr.To)),
		Payload: map[string]any{
			"redemption_id": red.RedemptionID,
			"user_id":       red.UserID,
			"status":        red.Status,
		},
	})

	return red, nil
}

// Get returns the user's own redemption. A redemption belonging to another
// user is reported as not found rather than forbidden.
func (s *RedemptionService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Redemption, error) {
	red, err := s.repo.GetRedemptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRedemptionNotFound
		}
		return nil, fmt.Errorf("failed to get redemption: %w", err)
	}
	if red.UserID != userID {
		return nil, ErrRedemptionNotFound
	}
	return red, nil
}

func (s *RedemptionService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Redemption, error) {
	list, err := s.repo.ListRedemptions(ctx, model.RedemptionFilter{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	return list, nil
}

func (s *RedemptionService) List(ctx context.Context, filter model.RedemptionFilter) ([]*model.Redemption, error) {
	list, err := s.repo.ListRedemptions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	return list, nil
}
