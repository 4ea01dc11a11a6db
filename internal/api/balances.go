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
	"errors"
	"fmt"

	"field-booking-go/internal/models"
	"field-booking-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetWallet returns the user's wallet. Users without a wallet yet get a zero balance.
func (s *BookingService) GetWallet(ctx context.Context, userId string) (*models.Wallet, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user_id is required", store.ErrValidation)
	}

	wallet, err := s.store.GetWallet(ctx, userId)
	if errors.Is(err, store.ErrWalletNotFound) {
		return &models.Wallet{UserId: userId, Balance: decimal.Zero}, nil
	}
	if err != nil {
		zap.L().Error("Failed to get wallet", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve wallet: %w", err)
	}
	return wallet, nil
}

// GetWalletHistory returns paginated ledger entries for a user, newest first
func (s *BookingService) GetWalletHistory(ctx context.Context, userId string, limit, offset int) ([]models.TransactionRecord, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user_id is required", store.ErrValidation)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.store.GetWalletTransactions(ctx, userId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get wallet history",
			zap.String("user_id", userId),
			zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve wallet history: %w", err)
	}

	result := make([]models.TransactionRecord, len(entries))
	for i, entry := range entries {
		result[i] = models.TransactionRecord{
			Id:           entry.Id,
			Type:         entry.Type,
			Amount:       entry.Amount,
			Reference:    entry.Reference,
			BalanceAfter: entry.BalanceAfter,
			CreatedAt:    entry.CreatedAt,
		}
	}

	return result, nil
}

func (s *BookingService) ListWalletUsers(ctx context.Context) ([]string, error) {
	return s.store.ListWalletUsers(ctx)
}

func (s *BookingService) ReconcileWallet(ctx context.Context, userId string) error {
	if userId == "" {
		return fmt.Errorf("%w: user_id is required", store.ErrValidation)
	}
	return s.store.ReconcileWallet(ctx, userId)
}
