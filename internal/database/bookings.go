/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"field-booking-go/internal/models"
	"field-booking-go/internal/pricing"
	"field-booking-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// bookingTransitions lists the allowed status moves. Staying on the same status is always allowed.
var bookingTransitions = map[string][]string{
	models.BookingStatusPending:   {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed: {models.BookingStatusCancelled},
}

// CreateBooking reserves the slot, debits the wallet and records the payment in one transaction.
// Any failure leaves no booking, no payment and an unchanged balance.
func (s *Service) CreateBooking(ctx context.Context, params store.CreateBookingParams) (*models.BookingResult, error) {
	status := params.Status
	if status == "" {
		status = models.BookingStatusPending
	}
	if status != models.BookingStatusPending && status != models.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: new bookings must be pending or confirmed, got %q", store.ErrValidation, status)
	}

	bookingTime, err := pricing.BookingTimestamp(params.Date, params.Start)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Creating booking",
		zap.String("user_id", params.UserId),
		zap.String("field_id", params.FieldId),
		zap.String("date", params.Date),
		zap.String("start", params.Start),
		zap.String("end", params.End))

	var result *models.BookingResult
	err = s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.lockSlot(ctx, tx, params.FieldId, params.Date); err != nil {
			return err
		}

		conflict, err := s.hasConflict(ctx, tx, params.FieldId, params.Date, params.Start, params.End, "")
		if err != nil {
			return err
		}
		if conflict {
			return fmt.Errorf("%w: field %s on %s %s-%s", store.ErrSlotConflict,
				params.FieldId, params.Date, params.Start, params.End)
		}

		field, err := s.getFieldTx(ctx, tx, params.FieldId)
		if err != nil {
			return err
		}

		amount, err := pricing.ComputeAmount(params.Start, params.End, field.PricePerHour)
		if err != nil {
			return err
		}

		if err := s.ensureWallet(ctx, tx, params.UserId); err != nil {
			return err
		}
		balance, err := s.lockAndGetBalance(ctx, tx, params.UserId)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return fmt.Errorf("%w: balance %s, required %s", store.ErrInsufficientBalance,
				formatAmount(balance), formatAmount(amount))
		}

		bookingId := uuid.New().String()
		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx, queryInsertBooking,
			bookingId, params.UserId, params.FieldId, params.Date, params.Start, params.End,
			bookingTime, status, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}

		if _, err := s.debit(ctx, tx, params.UserId, amount, "booking:"+bookingId); err != nil {
			return err
		}

		paymentId, err := s.insertPayment(ctx, tx, bookingId, params.UserId, amount)
		if err != nil {
			return err
		}

		result = &models.BookingResult{
			BookingId: bookingId,
			PaymentId: paymentId,
			Amount:    amount,
		}
		return nil
	})
	if err != nil {
		zap.L().Info("Booking not created",
			zap.String("user_id", params.UserId),
			zap.String("field_id", params.FieldId),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("Booking created",
		zap.String("booking_id", result.BookingId),
		zap.String("payment_id", result.PaymentId),
		zap.String("amount", formatAmount(result.Amount)),
		zap.String("status", status))
	return result, nil
}

// UpdateBooking applies a full rewrite (params.Full set) or a status-only change.
// Moving a booking to cancelled returns its payment to the payer's wallet once.
func (s *Service) UpdateBooking(ctx context.Context, params store.UpdateBookingParams) (*models.UpdateBookingResult, error) {
	if params.Full == nil && params.Status == nil {
		return nil, fmt.Errorf("%w: nothing to update", store.ErrValidation)
	}

	var result *models.UpdateBookingResult
	err := s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current, err := s.getBookingTx(ctx, tx, params.BookingId)
		if err != nil {
			return err
		}

		target := current.Status
		if params.Status != nil {
			target = *params.Status
		}
		if err := checkBookingTransition(current.Status, target); err != nil {
			return err
		}

		result = &models.UpdateBookingResult{
			BookingId:      current.Id,
			PreviousStatus: current.Status,
			Status:         target,
		}

		if params.Full != nil {
			if err := s.rewriteBooking(ctx, tx, current.Id, *params.Full, target); err != nil {
				return err
			}
		} else {
			if target == current.Status {
				return nil
			}
			if _, err := tx.ExecContext(ctx, queryUpdateBookingStatus, target, time.Now().UTC(), current.Id); err != nil {
				return fmt.Errorf("failed to update booking status: %w", err)
			}
		}

		if target == models.BookingStatusCancelled && current.Status != models.BookingStatusCancelled {
			amount, refunded, err := s.refundBookingPayment(ctx, tx, current.Id)
			if err != nil {
				return err
			}
			result.Refunded = refunded
			result.RefundAmount = amount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Booking updated",
		zap.String("booking_id", result.BookingId),
		zap.String("previous_status", result.PreviousStatus),
		zap.String("status", result.Status),
		zap.Bool("full_update", params.Full != nil),
		zap.Bool("refunded", result.Refunded))
	return result, nil
}

// rewriteBooking overwrites every column of a booking. The slot is rechecked,
// ignoring the booking itself, unless the result is cancelled.
func (s *Service) rewriteBooking(ctx context.Context, tx *sql.Tx, bookingId string, fields store.BookingFieldsParams, status string) error {
	if _, err := s.getFieldTx(ctx, tx, fields.FieldId); err != nil {
		return err
	}

	startMinutes, err := pricing.ParseClock(fields.Start)
	if err != nil {
		return err
	}
	endMinutes, err := pricing.ParseClock(fields.End)
	if err != nil {
		return err
	}
	if endMinutes <= startMinutes {
		return fmt.Errorf("%w: end %s is not after start %s", store.ErrInvalidRange, fields.End, fields.Start)
	}

	bookingTime, err := pricing.BookingTimestamp(fields.Date, fields.Start)
	if err != nil {
		return err
	}

	if isActiveBooking(status) {
		if err := s.lockSlot(ctx, tx, fields.FieldId, fields.Date); err != nil {
			return err
		}
		conflict, err := s.hasConflict(ctx, tx, fields.FieldId, fields.Date, fields.Start, fields.End, bookingId)
		if err != nil {
			return err
		}
		if conflict {
			return fmt.Errorf("%w: field %s on %s %s-%s", store.ErrSlotConflict,
				fields.FieldId, fields.Date, fields.Start, fields.End)
		}
	}

	_, err = tx.ExecContext(ctx, queryUpdateBookingFull,
		fields.UserId, fields.FieldId, fields.Date, fields.Start, fields.End,
		bookingTime, status, time.Now().UTC(), bookingId)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

// refundBookingPayment credits the booking's payment back to the payer. A payment that
// was already refunded, for example through a completed refund request, is left alone.
func (s *Service) refundBookingPayment(ctx context.Context, tx *sql.Tx, bookingId string) (decimal.Decimal, bool, error) {
	payment, err := s.getPaymentByBookingTx(ctx, tx, bookingId)
	if err != nil {
		return decimal.Zero, false, err
	}
	if payment == nil {
		zap.L().Warn("Cancelled booking has no payment", zap.String("booking_id", bookingId))
		return decimal.Zero, false, nil
	}
	if payment.Status != models.PaymentStatusCompleted {
		zap.L().Info("Payment already refunded, skipping credit",
			zap.String("booking_id", bookingId),
			zap.String("payment_id", payment.Id),
			zap.String("refund_reference", payment.RefundReference))
		return decimal.Zero, false, nil
	}

	reference := "refund:booking:" + bookingId
	if err := s.ensureWallet(ctx, tx, payment.UserId); err != nil {
		return decimal.Zero, false, err
	}
	if err := s.markPaymentRefunded(ctx, tx, payment.Id, reference); err != nil {
		return decimal.Zero, false, err
	}
	if _, err := s.credit(ctx, tx, payment.UserId, payment.Amount, reference); err != nil {
		return decimal.Zero, false, err
	}
	return payment.Amount, true, nil
}

func (s *Service) GetBooking(ctx context.Context, bookingId string) (*models.Booking, error) {
	booking, err := scanBooking(s.db.QueryRowContext(ctx, queryGetBookingById, bookingId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrBookingNotFound, bookingId)
	}
	return booking, err
}

func (s *Service) getBookingTx(ctx context.Context, tx *sql.Tx, bookingId string) (*models.Booking, error) {
	booking, err := scanBooking(tx.QueryRowContext(ctx, queryGetBookingById, bookingId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrBookingNotFound, bookingId)
	}
	return booking, err
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var booking models.Booking
	err := row.Scan(&booking.Id, &booking.UserId, &booking.FieldId, &booking.BookingDate,
		&booking.StartTime, &booking.EndTime, &booking.BookingDatetime, &booking.Status,
		&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return &booking, nil
}

func checkBookingTransition(from, to string) error {
	switch to {
	case models.BookingStatusPending, models.BookingStatusConfirmed, models.BookingStatusCancelled:
	default:
		return fmt.Errorf("%w: unknown booking status %q", store.ErrValidation, to)
	}

	if from == to {
		return nil
	}
	for _, next := range bookingTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: booking %s -> %s", store.ErrInvalidTransition, from, to)
}

func isActiveBooking(status string) bool {
	return status == models.BookingStatusPending || status == models.BookingStatusConfirmed
}
