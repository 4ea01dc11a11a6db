package api

import (
	"context"
	"fmt"
	"strings"

	"field-booking-go/internal/models"
	"field-booking-go/internal/pricing"
	"field-booking-go/internal/store"

	"go.uber.org/zap"
)

// CreateBooking validates and normalizes the request, then books and pays in one store call
func (s *BookingService) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingResult, error) {
	slot, err := normalizeSlot(req.UserId, req.FieldId, req.Date, req.Start, req.End)
	if err != nil {
		zap.L().Info("Rejected booking request",
			zap.String("user_id", req.UserId),
			zap.String("field_id", req.FieldId),
			zap.Error(err))
		return nil, err
	}

	status := strings.TrimSpace(req.Status)
	switch status {
	case "":
		status = models.BookingStatusPending
	case models.BookingStatusPending, models.BookingStatusConfirmed:
	default:
		return nil, fmt.Errorf("%w: new bookings must be pending or confirmed, got %q", store.ErrValidation, req.Status)
	}

	return s.store.CreateBooking(ctx, store.CreateBookingParams{
		UserId:  slot.UserId,
		FieldId: slot.FieldId,
		Date:    slot.Date,
		Start:   slot.Start,
		End:     slot.End,
		Status:  status,
	})
}

// UpdateBooking runs a full update when req.Full is set and a status-only update otherwise
func (s *BookingService) UpdateBooking(ctx context.Context, req models.UpdateBookingRequest) (*models.UpdateBookingResult, error) {
	if strings.TrimSpace(req.BookingId) == "" {
		return nil, fmt.Errorf("%w: booking_id is required", store.ErrValidation)
	}

	params := store.UpdateBookingParams{BookingId: req.BookingId}

	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if !isBookingStatus(status) {
			return nil, fmt.Errorf("%w: unknown booking status %q", store.ErrValidation, *req.Status)
		}
		params.Status = &status
	}

	if req.Full != nil {
		slot, err := normalizeSlot(req.Full.UserId, req.Full.FieldId, req.Full.Date, req.Full.Start, req.Full.End)
		if err != nil {
			return nil, err
		}
		params.Full = &slot
	} else if params.Status == nil {
		return nil, fmt.Errorf("%w: status or full booking details are required", store.ErrValidation)
	}

	return s.store.UpdateBooking(ctx, params)
}

func (s *BookingService) GetBooking(ctx context.Context, bookingId string) (*models.Booking, error) {
	if bookingId == "" {
		return nil, fmt.Errorf("%w: booking_id is required", store.ErrValidation)
	}
	return s.store.GetBooking(ctx, bookingId)
}

func (s *BookingService) GetPayment(ctx context.Context, bookingId string) (*models.Payment, error) {
	if bookingId == "" {
		return nil, fmt.Errorf("%w: booking_id is required", store.ErrValidation)
	}
	return s.store.GetPaymentByBooking(ctx, bookingId)
}

// ListPayments returns every wallet charge, or one user's when userId is set
func (s *BookingService) ListPayments(ctx context.Context, userId string) ([]models.Payment, error) {
	return s.store.ListPayments(ctx, strings.TrimSpace(userId))
}

// normalizeSlot checks every booking column is present and rewrites date and times
// into the stored YYYY-MM-DD and HH:MM forms
func normalizeSlot(userId, fieldId, date, start, end string) (store.BookingFieldsParams, error) {
	var slot store.BookingFieldsParams

	userId = strings.TrimSpace(userId)
	fieldId = strings.TrimSpace(fieldId)
	if userId == "" || fieldId == "" || strings.TrimSpace(date) == "" ||
		strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return slot, fmt.Errorf("%w: user_id, field_id, date, start_time and end_time are required", store.ErrValidation)
	}

	normalizedDate, err := pricing.NormalizeDate(date)
	if err != nil {
		return slot, err
	}
	normalizedStart, err := pricing.NormalizeClock(start)
	if err != nil {
		return slot, err
	}
	normalizedEnd, err := pricing.NormalizeClock(end)
	if err != nil {
		return slot, err
	}
	if normalizedEnd <= normalizedStart {
		return slot, fmt.Errorf("%w: end %s is not after start %s", store.ErrInvalidRange, normalizedEnd, normalizedStart)
	}

	return store.BookingFieldsParams{
		UserId:  userId,
		FieldId: fieldId,
		Date:    normalizedDate,
		Start:   normalizedStart,
		End:     normalizedEnd,
	}, nil
}

func isBookingStatus(status string) bool {
	switch status {
	case models.BookingStatusPending, models.BookingStatusConfirmed, models.BookingStatusCancelled:
		return true
	}
	return false
}
