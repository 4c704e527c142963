package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	UserID           uuid.UUID
	Username         string
	Email            string
	Points           int
	RegistrationDate time.Time
	AuthDate         time.Time
}

type ReceiptStatus string

const (
	ReceiptPending  ReceiptStatus = "pending"
	ReceiptApproved ReceiptStatus = "approved"
	ReceiptRejected ReceiptStatus = "rejected"
)

type Receipt struct {
	ReceiptID  uuid.UUID
	UserID     uuid.UUID
	Status     ReceiptStatus
	UploadedAt time.Time
}
