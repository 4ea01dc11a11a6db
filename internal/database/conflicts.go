package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// lockSlot serializes every booking write that touches the same field and date.
// The row is created on first use and held until the surrounding transaction ends,
// so a concurrent writer waits here instead of passing the conflict check.
func (s *Service) lockSlot(ctx context.Context, tx *sql.Tx, fieldId, date string) error {
	if _, err := tx.ExecContext(ctx, s.dialect.ensureSlotLock, fieldId, date); err != nil {
		return fmt.Errorf("failed to create slot lock: %w", err)
	}

	var locked string
	if err := tx.QueryRowContext(ctx, s.dialect.lockSlot, fieldId, date).Scan(&locked); err != nil {
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	return nil
}

// hasConflict reports whether [start, end) overlaps an active (pending or confirmed)
// booking on the same field and date. excludingId skips one booking, used when a
// booking is rewritten in place. start and end must already be normalized HH:MM.
func (s *Service) hasConflict(ctx context.Context, tx *sql.Tx, fieldId, date, start, end, excludingId string) (bool, error) {
	var existingId string
	err := tx.QueryRowContext(ctx, queryFindConflictingBooking, fieldId, date, end, start, excludingId).Scan(&existingId)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check booking conflicts: %w", err)
	}

	zap.L().Info("Booking conflict detected",
		zap.String("field_id", fieldId),
		zap.String("date", date),
		zap.String("start", start),
		zap.String("end", end),
		zap.String("existing_booking_id", existingId))
	return true, nil
}
