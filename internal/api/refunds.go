package api

import (
	"context"
	"fmt"
	"strings"

	"field-booking-go/internal/models"
	"field-booking-go/internal/store"

	"go.uber.org/zap"
)

// CreateRefundRequest opens a pending refund; the wallet is credited only on completion
func (s *BookingService) CreateRefundRequest(ctx context.Context, req models.CreateRefundRequest) (string, error) {
	params := store.CreateRefundParams{
		BookingId:   strings.TrimSpace(req.BookingId),
		UserId:      strings.TrimSpace(req.UserId),
		PaymentId:   strings.TrimSpace(req.PaymentId),
		Amount:      req.Amount,
		Reason:      strings.TrimSpace(req.Reason),
		RequestedBy: strings.TrimSpace(req.RequestedBy),
	}

	if params.BookingId == "" || params.UserId == "" || params.PaymentId == "" ||
		params.Reason == "" || params.RequestedBy == "" {
		return "", fmt.Errorf("%w: booking_id, user_id, payment_id, reason and requested_by are required", store.ErrValidation)
	}
	if !params.Amount.IsPositive() {
		return "", fmt.Errorf("%w: amount must be positive, got %s", store.ErrValidation, params.Amount.String())
	}

	refundId, err := s.store.CreateRefundRequest(ctx, params)
	if err != nil {
		zap.L().Info("Refund request rejected",
			zap.String("booking_id", params.BookingId),
			zap.String("payment_id", params.PaymentId),
			zap.Error(err))
		return "", err
	}
	return refundId, nil
}

// ProcessRefund moves a refund to approved, rejected or completed
func (s *BookingService) ProcessRefund(ctx context.Context, refundId, status string) error {
	refundId = strings.TrimSpace(refundId)
	status = strings.ToLower(strings.TrimSpace(status))
	if refundId == "" {
		return fmt.Errorf("%w: refund_id is required", store.ErrValidation)
	}

	switch status {
	case models.RefundStatusApproved, models.RefundStatusRejected, models.RefundStatusCompleted:
	default:
		return fmt.Errorf("%w: status must be approved, rejected or completed, got %q", store.ErrValidation, status)
	}

	return s.store.ProcessRefund(ctx, refundId, status)
}

func (s *BookingService) GetRefund(ctx context.Context, refundId string) (*models.Refund, error) {
	if refundId == "" {
		return nil, fmt.Errorf("%w: refund_id is required", store.ErrValidation)
	}
	return s.store.GetRefund(ctx, refundId)
}

// ListRefunds returns every refund, or one user's when userId is set
func (s *BookingService) ListRefunds(ctx context.Context, userId string) ([]models.Refund, error) {
	return s.store.ListRefunds(ctx, strings.TrimSpace(userId))
}
