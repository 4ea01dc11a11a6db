package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"

	PaymentStatusCompleted = "completed"
	PaymentStatusRefunded  = "refunded"

	RefundStatusPending   = "pending"
	RefundStatusApproved  = "approved"
	RefundStatusRejected  = "rejected"
	RefundStatusCompleted = "completed"

	WalletTxDeposit = "deposit"
	WalletTxDebit   = "debit"

	// WalletMethod is the internal payment method every booking payment is recorded against
	WalletMethod = "wallet"
)

// Field represents a bookable resource with an hourly rate
type Field struct {
	Id           string          `db:"id"`
	Name         string          `db:"name"`
	PricePerHour decimal.Decimal `db:"price_per_hour"`
	OwnerUserId  string          `db:"owner_user_id"`
	CreatedAt    time.Time       `db:"created_at"`
}

// FieldOwner is the business profile attached to a user that lists fields
type FieldOwner struct {
	Id           string    `db:"id"`
	UserId       string    `db:"user_id"`
	BusinessName string    `db:"business_name"`
	CreatedAt    time.Time `db:"created_at"`
}

// Booking is a reservation of one field for a time range on a date
type Booking struct {
	Id              string    `db:"id"`
	UserId          string    `db:"user_id"`
	FieldId         string    `db:"field_id"`
	BookingDate     string    `db:"booking_date"` // YYYY-MM-DD
	StartTime       string    `db:"start_time"`   // HH:MM
	EndTime         string    `db:"end_time"`     // HH:MM
	BookingDatetime time.Time `db:"booking_datetime"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Wallet holds a user's prepaid balance (current state)
type Wallet struct {
	UserId          string          `db:"user_id"`
	Balance         decimal.Decimal `db:"balance"`
	PreferredMethod string          `db:"preferred_method"`
	CardLast4       string          `db:"card_last4"`
	CardExpMonth    int             `db:"card_exp_month"`
	CardExpYear     int             `db:"card_exp_year"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// WalletTransaction is an immutable ledger row; Amount is always positive and Type carries the sign
type WalletTransaction struct {
	Id           string          `db:"id"`
	UserId       string          `db:"user_id"`
	Amount       decimal.Decimal `db:"amount"`
	Type         string          `db:"type"`
	Reference    string          `db:"reference"`
	BalanceAfter decimal.Decimal `db:"balance_after"`
	CreatedAt    time.Time       `db:"created_at"`
}

// Payment records the wallet charge for one booking
type Payment struct {
	Id              string          `db:"id"`
	BookingId       string          `db:"booking_id"`
	UserId          string          `db:"user_id"`
	MethodId        string          `db:"method_id"`
	Amount          decimal.Decimal `db:"amount"`
	Status          string          `db:"status"`
	RefundReference string          `db:"refund_reference"`
	CreatedAt       time.Time       `db:"created_at"`
	RefundedAt      *time.Time      `db:"refunded_at"`
}

// Refund is an explicit refund request and its lifecycle
type Refund struct {
	Id          string          `db:"id"`
	BookingId   string          `db:"booking_id"`
	UserId      string          `db:"user_id"`
	PaymentId   string          `db:"payment_id"`
	Amount      decimal.Decimal `db:"amount"`
	Reason      string          `db:"reason"`
	Status      string          `db:"status"`
	RequestedBy string          `db:"requested_by"`
	RequestedAt time.Time       `db:"requested_at"`
	ProcessedAt *time.Time      `db:"processed_at"`
}
