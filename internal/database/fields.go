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
	"go.uber.org/zap"
)

// UpsertField creates the field or rewrites its name, price and owner. When an owner is
// given, the owner's business profile is created first if missing.
func (s *Service) UpsertField(ctx context.Context, params store.FieldParams) (*models.Field, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("%w: field name is required", store.ErrValidation)
	}
	if !params.PricePerHour.IsPositive() || !params.PricePerHour.Equal(params.PricePerHour.Round(pricing.Places)) {
		return nil, fmt.Errorf("%w: price_per_hour must be positive with at most %d decimal places, got %s",
			store.ErrValidation, pricing.Places, params.PricePerHour.String())
	}
	if params.Id == "" {
		params.Id = uuid.New().String()
	}

	err := s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if params.OwnerUserId != "" {
			if err := s.ensureOwnerProfile(ctx, tx, params.OwnerUserId, params.BusinessName); err != nil {
				return err
			}
		}

		_, err := s.getFieldTx(ctx, tx, params.Id)
		switch {
		case errors.Is(err, store.ErrFieldNotFound):
			_, err = tx.ExecContext(ctx, queryInsertField,
				params.Id, params.Name, formatAmount(params.PricePerHour), params.OwnerUserId, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("failed to insert field: %w", err)
			}
		case err != nil:
			return err
		default:
			_, err = tx.ExecContext(ctx, queryUpdateField,
				params.Name, formatAmount(params.PricePerHour), params.OwnerUserId, params.Id)
			if err != nil {
				return fmt.Errorf("failed to update field: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Field saved",
		zap.String("field_id", params.Id),
		zap.String("name", params.Name),
		zap.String("price_per_hour", formatAmount(params.PricePerHour)))

	return s.GetField(ctx, params.Id)
}

// ensureOwnerProfile gives a user that lists fields exactly one business profile
func (s *Service) ensureOwnerProfile(ctx context.Context, tx *sql.Tx, userId, businessName string) error {
	var ownerId string
	err := tx.QueryRowContext(ctx, queryGetFieldOwnerByUser, userId).Scan(&ownerId)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to look up field owner: %w", err)
	}

	if businessName == "" {
		businessName = fmt.Sprintf("Field Business - User %s", userId)
	}
	ownerId = uuid.New().String()
	if _, err := tx.ExecContext(ctx, queryInsertFieldOwner, ownerId, userId, businessName, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to create field owner: %w", err)
	}

	zap.L().Info("Created field owner profile",
		zap.String("user_id", userId),
		zap.String("owner_id", ownerId),
		zap.String("business_name", businessName))
	return nil
}

func (s *Service) GetField(ctx context.Context, fieldId string) (*models.Field, error) {
	field, err := scanField(s.db.QueryRowContext(ctx, queryGetFieldById, fieldId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrFieldNotFound, fieldId)
	}
	return field, err
}

func (s *Service) getFieldTx(ctx context.Context, tx *sql.Tx, fieldId string) (*models.Field, error) {
	field, err := scanField(tx.QueryRowContext(ctx, queryGetFieldById, fieldId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrFieldNotFound, fieldId)
	}
	return field, err
}

func scanField(row rowScanner) (*models.Field, error) {
	var field models.Field
	var priceStr string
	if err := row.Scan(&field.Id, &field.Name, &priceStr, &field.OwnerUserId, &field.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan field: %w", err)
	}

	price, err := parseAmount("price_per_hour", priceStr)
	if err != nil {
		return nil, err
	}
	field.PricePerHour = price
	return &field, nil
}
