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

package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"field-booking-go/internal/models"
	"field-booking-go/internal/pricing"
	"field-booking-go/internal/store"

	"go.uber.org/zap"
)

const (
	MethodVisa       = "visa"
	MethodMastercard = "mastercard"
	MethodPaypal     = "paypal"
)

// Deposit tops up a user's wallet from an external payment method
func (s *BookingService) Deposit(ctx context.Context, req models.DepositRequest) (*models.DepositResult, error) {
	zap.L().Info("Processing wallet deposit",
		zap.String("user_id", req.UserId),
		zap.String("method", req.Method),
		zap.String("amount", req.Amount.String()))

	params, err := validateDeposit(req, time.Now().UTC())
	if err != nil {
		zap.L().Error("Invalid deposit parameters",
			zap.String("user_id", req.UserId),
			zap.String("method", req.Method),
			zap.String("amount", req.Amount.String()),
			zap.Error(err))
		return nil, err
	}

	result, err := s.store.Deposit(ctx, params)
	if err != nil {
		zap.L().Error("Deposit processing failed",
			zap.String("user_id", req.UserId),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

func validateDeposit(req models.DepositRequest, now time.Time) (store.DepositParams, error) {
	userId := strings.TrimSpace(req.UserId)
	if userId == "" {
		return store.DepositParams{}, fmt.Errorf("%w: user_id is required", store.ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return store.DepositParams{}, fmt.Errorf("%w: amount must be positive, got %s", store.ErrValidation, req.Amount.String())
	}
	if !req.Amount.Equal(req.Amount.Round(pricing.Places)) {
		return store.DepositParams{}, fmt.Errorf("%w: amount %s has more than %d decimal places",
			store.ErrValidation, req.Amount.String(), pricing.Places)
	}

	params := store.DepositParams{
		UserId: userId,
		Amount: req.Amount,
		Method: strings.ToLower(strings.TrimSpace(req.Method)),
	}

	switch params.Method {
	case MethodPaypal:
		return params, nil
	case MethodVisa, MethodMastercard:
	default:
		return store.DepositParams{}, fmt.Errorf("%w: unsupported payment method %q", store.ErrValidation, req.Method)
	}

	if len(req.CardLast4) != 4 || strings.Trim(req.CardLast4, "0123456789") != "" {
		return store.DepositParams{}, fmt.Errorf("%w: card_last4 must be 4 digits", store.ErrValidation)
	}
	if req.CardExpMonth < 1 || req.CardExpMonth > 12 {
		return store.DepositParams{}, fmt.Errorf("%w: card_exp_month must be between 1 and 12, got %d", store.ErrValidation, req.CardExpMonth)
	}
	if req.CardExpYear <= 0 {
		return store.DepositParams{}, fmt.Errorf("%w: card_exp_year is required", store.ErrValidation)
	}
	if req.CardExpYear < now.Year() || (req.CardExpYear == now.Year() && req.CardExpMonth < int(now.Month())) {
		return store.DepositParams{}, fmt.Errorf("%w: card expired %02d/%d", store.ErrValidation, req.CardExpMonth, req.CardExpYear)
	}

	params.CardLast4 = req.CardLast4
	params.CardExpMonth = req.CardExpMonth
	params.CardExpYear = req.CardExpYear
	return params, nil
}
