package store

import (
	"context"
	"errors"

	"field-booking-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrValidation             = errors.New("validation failed")
	ErrSlotConflict           = errors.New("time slot already booked")
	ErrFieldNotFound          = errors.New("field not found")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrRefundNotFound         = errors.New("refund not found")
	ErrWalletNotFound         = errors.New("wallet not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInvalidRange           = errors.New("invalid time range")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrPaymentAlreadyRefunded = errors.New("payment already refunded")
)

// errorKinds maps each sentinel to the name callers see in structured results.
var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrValidation, "ValidationError"},
	{ErrSlotConflict, "SlotConflict"},
	{ErrFieldNotFound, "FieldNotFound"},
	{ErrBookingNotFound, "BookingNotFound"},
	{ErrRefundNotFound, "RefundNotFound"},
	{ErrWalletNotFound, "WalletNotFound"},
	{ErrPaymentNotFound, "PaymentNotFound"},
	{ErrInsufficientBalance, "InsufficientBalance"},
	{ErrInvalidRange, "InvalidRange"},
	{ErrInvalidTransition, "InvalidTransition"},
	{ErrPaymentAlreadyRefunded, "PaymentAlreadyRefunded"},
}

// ErrorKind classifies err. Errors that wrap no sentinel are storage failures and
// report as InternalError. A nil error has no kind.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "InternalError"
}

// CreateBookingParams holds a validated, normalized booking request.
// Date is YYYY-MM-DD, Start and End are HH:MM.
type CreateBookingParams struct {
	UserId  string
	FieldId string
	Date    string
	Start   string
	End     string
	Status  string
}

// BookingFieldsParams are the columns rewritten by a full update.
type BookingFieldsParams struct {
	UserId  string
	FieldId string
	Date    string
	Start   string
	End     string
}

// UpdateBookingParams selects full update (Full != nil) or status-only update.
// Status may be nil on a full update, in which case the current status is kept.
type UpdateBookingParams struct {
	BookingId string
	Status    *string
	Full      *BookingFieldsParams
}

// CreateRefundParams contains the parameters for opening a refund request.
type CreateRefundParams struct {
	BookingId   string
	UserId      string
	PaymentId   string
	Amount      decimal.Decimal
	Reason      string
	RequestedBy string
}

// DepositParams contains a validated wallet top-up.
type DepositParams struct {
	UserId       string
	Amount       decimal.Decimal
	Method       string
	CardLast4    string
	CardExpMonth int
	CardExpYear  int
}

// FieldParams describes a field to seed into the catalog.
type FieldParams struct {
	Id           string
	Name         string
	PricePerHour decimal.Decimal
	OwnerUserId  string
	BusinessName string
}

// BookingStore defines the contract that every backend (SQLite, MySQL) must satisfy.
type BookingStore interface {
	// --- Fields ---
	UpsertField(ctx context.Context, params FieldParams) (*models.Field, error)
	GetField(ctx context.Context, fieldId string) (*models.Field, error)

	// --- Bookings ---
	CreateBooking(ctx context.Context, params CreateBookingParams) (*models.BookingResult, error)
	UpdateBooking(ctx context.Context, params UpdateBookingParams) (*models.UpdateBookingResult, error)
	GetBooking(ctx context.Context, bookingId string) (*models.Booking, error)
	GetPaymentByBooking(ctx context.Context, bookingId string) (*models.Payment, error)
	ListPayments(ctx context.Context, userId string) ([]models.Payment, error)

	// --- Refunds ---
	CreateRefundRequest(ctx context.Context, params CreateRefundParams) (string, error)
	ProcessRefund(ctx context.Context, refundId, status string) error
	GetRefund(ctx context.Context, refundId string) (*models.Refund, error)
	ListRefunds(ctx context.Context, userId string) ([]models.Refund, error)

	// --- Wallet ---
	Deposit(ctx context.Context, params DepositParams) (*models.DepositResult, error)
	GetWallet(ctx context.Context, userId string) (*models.Wallet, error)
	GetWalletTransactions(ctx context.Context, userId string, limit, offset int) ([]models.WalletTransaction, error)
	ListWalletUsers(ctx context.Context) ([]string, error)
	ReconcileWallet(ctx context.Context, userId string) error

	// --- Lifecycle ---
	Close()
}
