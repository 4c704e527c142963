package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tenant_rewards/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type Receipt struct {
	ReceiptID  uuid.UUID `db:"receipt_id"`
	UserID     uuid.UUID `db:"user_id"`
	Status     string    `db:"status"`
	UploadedAt time.Time `db:"uploaded_at"`
}

// GetPendingReceipt returns the user's most recent receipt in pending status.
func (r *Repository) GetPendingReceipt(ctx context.Context, userID uuid.UUID) (*model.Receipt, error) {
	var receipt Receipt
	query, args, err := squirrel.
		Select("receipt_id", "user_id", "status", "uploaded_at").
		From("receipts").
		Where(squirrel.Eq{"user_id": userID, "status": model.ReceiptPending}).
		OrderBy("uploaded_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &receipt, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.Receipt{
		ReceiptID:  receipt.ReceiptID,
		UserID:     receipt.UserID,
		Status:     model.ReceiptStatus(receipt.Status),
		UploadedAt: receipt.UploadedAt,
	}, nil
}
