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

type redemption struct {
	RedemptionID    uuid.UUID  `db:"redemption_id"`
	UserID          uuid.UUID  `db:"user_id"`
	PointsAmount    int        `db:"points_amount"`
	PayoutCents     int64      `db:"payout_cents"`
	Destination     string     `db:"destination"`
	Status          string     `db:"status"`
	CreatedAt       time.Time  `db:"created_at"`
	ApprovedAt      *time.Time `db:"approved_at"`
	CompletedAt     *time.Time `db:"completed_at"`
	RejectedAt      *time.Time `db:"rejected_at"`
	RejectionReason *string    `db:"rejection_reason"`
}

func (r *redemption) toModel() *model.Redemption {
	return &model.Redemption{
		RedemptionID:    r.RedemptionID,
		UserID:          r.UserID,
		PointsAmount:    r.PointsAmount,
		PayoutCents:     r.PayoutCents,
		Destination:     r.Destination,
		Status:          model.RedemptionStatus(r.Status),
		CreatedAt:       r.CreatedAt,
		ApprovedAt:      r.ApprovedAt,
		CompletedAt:     r.CompletedAt,
		RejectedAt:      r.RejectedAt,
		RejectionReason: r.RejectionReason,
	}
}

// CreateRedemption locks the user's balance row, re-checks sufficiency,
// decrements the balance and inserts the pending redemption in one
// transaction. Two concurrent requests therefore serialize on the user row
// and the second one sees the already-decremented balance.
func (r *Repository) CreateRedemption(ctx context.Context, red *model.Redemption) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		user, err := r.lockUserWithTx(ctx, tx, red.UserID)
		if err != nil {
			return err
		}

		if user.Points < red.PointsAmount {
			return ErrInsufficientBalance
		}

		if err := addUserPointsWithTx(ctx, tx, red.UserID, -red.PointsAmount); err != nil {
			return fmt.Errorf("failed to lock points: %w", err)
		}

		query, args, err := squirrel.
			Insert("redemptions").
			SetMap(map[string]interface{}{
				"redemption_id": red.RedemptionID,
				"user_id":       red.UserID,
				"points_amount": red.PointsAmount,
				"payout_cents":  red.PayoutCents,
				"destination":   red.Destination,
				"status":        red.Status,
				"created_at":    red.CreatedAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build redemption insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert redemption: %w", err)
		}

		return nil
	})
}

// TransitionRedemption applies a guarded status change under a row lock. On
// an illegal prior state it returns the loaded redemption together with
// ErrIllegalTransition so the caller can name the offending status. A reject
// transition refunds the locked amount in the same transaction.
func (r *Repository) TransitionRedemption(ctx context.Context, id uuid.UUID, tr model.RedemptionTransition) (*model.Redemption, error) {
	var out *model.Redemption

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		var row redemption
		query, args, err := squirrel.
			Select("*").
			From("redemptions").
			Where(squirrel.Eq{"redemption_id": id}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		err = tx.GetContext(ctx, &row, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		allowed := false
		for _, from := range tr.From {
			if row.Status == string(from) {
				allowed = true
				break
			}
		}
		if !allowed {
			out = row.toModel()
			return ErrIllegalTransition
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status": tr.To,
		}

		switch tr.To {
		case model.RedemptionApproved:
			updates["approved_at"] = now
			row.ApprovedAt = &now
		case model.RedemptionCompleted:
			updates["completed_at"] = now
			row.CompletedAt = &now
		case model.RedemptionRejected:
			updates["rejected_at"] = now
			updates["rejection_reason"] = tr.Reason
			row.RejectedAt = &now
			row.RejectionReason = tr.Reason
		}

		query, args, err = squirrel.
			Update("redemptions").
			SetMap(updates).
			Where(squirrel.Eq{"redemption_id": id}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build redemption update query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update redemption: %w", err)
		}

		if tr.RefundPoints {
			if err := addUserPointsWithTx(ctx, tx, row.UserID, row.PointsAmount); err != nil {
				return fmt.Errorf("failed to refund points: %w", err)
			}
		}

		row.Status = string(tr.To)
		out = row.toModel()

		return nil
	})
	if err != nil && !errors.Is(err, ErrIllegalTransition) {
		return nil, err
	}

	return out, err
}

func (r *Repository) GetRedemptionByID(ctx context.Context, id uuid.UUID) (*model.Redemption, error) {
	var row redemption
	query, args, err := squirrel.
		Select("*").
		From("redemptions").
		Where(squirrel.Eq{"redemption_id": id}).
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

	return row.toModel(), nil
}

func (r *Repository) ListRedemptions(ctx context.Context, filter model.RedemptionFilter) ([]*model.Redemption, error) {
	builder := squirrel.
		Select("*").
		From("redemptions").
		OrderBy("created_at DESC")

	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.UserID != nil {
		builder = builder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []redemption
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}

	out := make([]*model.Redemption, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}

	return out, nil
}
