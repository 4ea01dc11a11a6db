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
	"go.uber.org/zap"
)

var refundTransitions = map[string][]string{
	models.RefundStatusPending:  {models.RefundStatusApproved, models.RefundStatusRejected},
	models.RefundStatusApproved: {models.RefundStatusCompleted, models.RefundStatusRejected},
}

// CreateRefundRequest opens a pending refund against a booking's payment. No money moves until
// the request is processed to completed.
func (s *Service) CreateRefundRequest(ctx context.Context, params store.CreateRefundParams) (string, error) {
	if params.BookingId == "" || params.UserId == "" || params.PaymentId == "" ||
		params.Reason == "" || params.RequestedBy == "" {
		return "", fmt.Errorf("%w: booking, user, payment, reason and requester are required", store.ErrValidation)
	}
	if !params.Amount.IsPositive() {
		return "", fmt.Errorf("%w: refund amount must be positive, got %s", store.ErrValidation, params.Amount.String())
	}

	refundId := uuid.New().String()
	err := s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.getBookingTx(ctx, tx, params.BookingId); err != nil {
			return err
		}

		payment, err := s.getPaymentTx(ctx, tx, params.PaymentId)
		if err != nil {
			return err
		}
		if payment.BookingId != params.BookingId {
			return fmt.Errorf("%w: payment %s does not belong to booking %s",
				store.ErrValidation, params.PaymentId, params.BookingId)
		}
		if payment.UserId != params.UserId {
			return fmt.Errorf("%w: payment %s was not made by user %s",
				store.ErrValidation, params.PaymentId, params.UserId)
		}
		if payment.Status == models.PaymentStatusRefunded {
			return fmt.Errorf("%w: payment %s", store.ErrPaymentAlreadyRefunded, params.PaymentId)
		}
		if params.Amount.GreaterThan(payment.Amount) {
			return fmt.Errorf("%w: refund %s exceeds payment %s", store.ErrValidation,
				formatAmount(params.Amount), formatAmount(payment.Amount))
		}

		_, err = tx.ExecContext(ctx, queryInsertRefund,
			refundId, params.BookingId, params.UserId, params.PaymentId, formatAmount(params.Amount),
			params.Reason, models.RefundStatusPending, params.RequestedBy, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to insert refund: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	zap.L().Info("Refund requested",
		zap.String("refund_id", refundId),
		zap.String("booking_id", params.BookingId),
		zap.String("payment_id", params.PaymentId),
		zap.String("amount", formatAmount(params.Amount)),
		zap.String("requested_by", params.RequestedBy))
	return refundId, nil
}

// ProcessRefund moves a refund along its lifecycle. Completing it marks the payment refunded
// and credits the refund amount to the requester's wallet in the same transaction.
func (s *Service) ProcessRefund(ctx context.Context, refundId, status string) error {
	err := s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		refund, err := scanRefund(tx.QueryRowContext(ctx, s.dialect.lockRefund, refundId))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", store.ErrRefundNotFound, refundId)
		}
		if err != nil {
			return err
		}

		if err := checkRefundTransition(refund.Status, status); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, queryUpdateRefundStatus, status, time.Now().UTC(), refund.Id); err != nil {
			return fmt.Errorf("failed to update refund status: %w", err)
		}

		if status != models.RefundStatusCompleted {
			return nil
		}

		reference := "refund:" + refund.Id
		if err := s.ensureWallet(ctx, tx, refund.UserId); err != nil {
			return err
		}
		if err := s.markPaymentRefunded(ctx, tx, refund.PaymentId, reference); err != nil {
			return err
		}
		if _, err := s.credit(ctx, tx, refund.UserId, refund.Amount, reference); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		zap.L().Info("Refund not processed",
			zap.String("refund_id", refundId),
			zap.String("status", status),
			zap.Error(err))
		return err
	}

	zap.L().Info("Refund processed", zap.String("refund_id", refundId), zap.String("status", status))
	return nil
}

func (s *Service) GetRefund(ctx context.Context, refundId string) (*models.Refund, error) {
	refund, err := scanRefund(s.db.QueryRowContext(ctx, queryGetRefundById, refundId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrRefundNotFound, refundId)
	}
	return refund, err
}

// ListRefunds returns refunds newest first, limited to one user when userId is set
func (s *Service) ListRefunds(ctx context.Context, userId string) ([]models.Refund, error) {
	var rows *sql.Rows
	var err error
	if userId == "" {
		rows, err = s.db.QueryContext(ctx, queryListRefunds)
	} else {
		rows, err = s.db.QueryContext(ctx, queryListRefundsByUser, userId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}
	defer closeRows(rows)

	var refunds []models.Refund
	for rows.Next() {
		refund, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, *refund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating refund rows: %w", err)
	}
	return refunds, nil
}

func scanRefund(row rowScanner) (*models.Refund, error) {
	var refund models.Refund
	var amountStr string
	var processedAt sql.NullTime

	err := row.Scan(&refund.Id, &refund.BookingId, &refund.UserId, &refund.PaymentId, &amountStr,
		&refund.Reason, &refund.Status, &refund.RequestedBy, &refund.RequestedAt, &processedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan refund: %w", err)
	}

	if refund.Amount, err = parseAmount("amount", amountStr); err != nil {
		return nil, err
	}
	if processedAt.Valid {
		refund.ProcessedAt = &processedAt.Time
	}
	return &refund, nil
}

func checkRefundTransition(from, to string) error {
	switch to {
	case models.RefundStatusApproved, models.RefundStatusRejected, models.RefundStatusCompleted:
	default:
		return fmt.Errorf("%w: refunds cannot be moved to %q", store.ErrValidation, to)
	}

	for _, next := range refundTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: refund %s -> %s", store.ErrInvalidTransition, from, to)
}
