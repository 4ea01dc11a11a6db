package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"field-booking-go/internal/models"
	"field-booking-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// resolveWalletMethod returns the id of the internal wallet payment method, creating it on first use.
func (s *Service) resolveWalletMethod(ctx context.Context, tx *sql.Tx) (string, error) {
	if _, err := tx.ExecContext(ctx, s.dialect.ensureWalletMethod, uuid.New().String(), models.WalletMethod); err != nil {
		return "", fmt.Errorf("failed to ensure wallet payment method: %w", err)
	}

	var methodId string
	if err := tx.QueryRowContext(ctx, queryGetPaymentMethodByName, models.WalletMethod).Scan(&methodId); err != nil {
		return "", fmt.Errorf("failed to resolve wallet payment method: %w", err)
	}
	return methodId, nil
}

func (s *Service) insertPayment(ctx context.Context, tx *sql.Tx, bookingId, userId string, amount decimal.Decimal) (string, error) {
	methodId, err := s.resolveWalletMethod(ctx, tx)
	if err != nil {
		return "", err
	}

	paymentId := uuid.New().String()
	_, err = tx.ExecContext(ctx, queryInsertPayment,
		paymentId, bookingId, userId, methodId, formatAmount(amount), models.PaymentStatusCompleted, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert payment: %w", err)
	}
	return paymentId, nil
}

// markPaymentRefunded flips a completed payment to refunded. The flag is one-way:
// a payment that is already refunded yields ErrPaymentAlreadyRefunded and must not be credited again.
func (s *Service) markPaymentRefunded(ctx context.Context, tx *sql.Tx, paymentId, reference string) error {
	res, err := tx.ExecContext(ctx, queryMarkPaymentRefunded, reference, time.Now().UTC(), paymentId)
	if err != nil {
		return fmt.Errorf("failed to mark payment refunded: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Nothing changed: either the payment is gone or it was refunded earlier
	if _, err := s.getPaymentTx(ctx, tx, paymentId); err != nil {
		return err
	}
	zap.L().Warn("Payment already refunded",
		zap.String("payment_id", paymentId),
		zap.String("reference", reference))
	return fmt.Errorf("%w: payment %s", store.ErrPaymentAlreadyRefunded, paymentId)
}

func (s *Service) getPaymentTx(ctx context.Context, tx *sql.Tx, paymentId string) (*models.Payment, error) {
	payment, err := scanPayment(tx.QueryRowContext(ctx, queryGetPaymentById, paymentId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrPaymentNotFound, paymentId)
	}
	return payment, err
}

// getPaymentByBookingTx returns nil without error when the booking has no payment.
func (s *Service) getPaymentByBookingTx(ctx context.Context, tx *sql.Tx, bookingId string) (*models.Payment, error) {
	payment, err := scanPayment(tx.QueryRowContext(ctx, queryGetPaymentByBooking, bookingId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return payment, err
}

// GetPaymentByBooking returns the wallet charge recorded for a booking
func (s *Service) GetPaymentByBooking(ctx context.Context, bookingId string) (*models.Payment, error) {
	payment, err := scanPayment(s.db.QueryRowContext(ctx, queryGetPaymentByBooking, bookingId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: booking %s", store.ErrPaymentNotFound, bookingId)
	}
	return payment, err
}

// ListPayments returns wallet charges newest first, limited to one user when userId is set
func (s *Service) ListPayments(ctx context.Context, userId string) ([]models.Payment, error) {
	var rows *sql.Rows
	var err error
	if userId == "" {
		rows, err = s.db.QueryContext(ctx, queryListPayments)
	} else {
		rows, err = s.db.QueryContext(ctx, queryListPaymentsByUser, userId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer closeRows(rows)

	var payments []models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, nil
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var payment models.Payment
	var amountStr string
	var refundReference sql.NullString
	var refundedAt sql.NullTime

	err := row.Scan(&payment.Id, &payment.BookingId, &payment.UserId, &payment.MethodId, &amountStr,
		&payment.Status, &refundReference, &payment.CreatedAt, &refundedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	if payment.Amount, err = parseAmount("amount", amountStr); err != nil {
		return nil, err
	}
	payment.RefundReference = refundReference.String
	if refundedAt.Valid {
		payment.RefundedAt = &refundedAt.Time
	}
	return &payment, nil
}
