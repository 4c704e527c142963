package model

import (
	"time"

	"github.com/google/uuid"
)

type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionApproved  RedemptionStatus = "approved"
	RedemptionCompleted RedemptionStatus = "completed"
	RedemptionRejected  RedemptionStatus = "rejected"
)

type Redemption struct {
	RedemptionID    uuid.UUID
	UserID          uuid.UUID
	PointsAmount    int
	PayoutCents     int64
	Destination     string
	Status          RedemptionStatus
	CreatedAt       time.Time
	ApprovedAt      *time.Time
	CompletedAt     *time.Time
	RejectedAt      *time.Time
	RejectionReason *string
}

// RedemptionTransition describes a guarded status change: the statuses the
// redemption must currently be in, the status to move to, and whether the
// locked points go back to the user's balance.
type RedemptionTransition struct {
	From         []RedemptionStatus
	To           RedemptionStatus
	Reason       *string
	RefundPoints bool
}

type RedemptionFilter struct {
	Status *RedemptionStatus
	UserID *uuid.UUID
}
