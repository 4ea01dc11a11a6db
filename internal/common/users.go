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

package common

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// WalletLister is the slice of the booking service needed to enumerate wallet owners
type WalletLister interface {
	ListWalletUsers(ctx context.Context) ([]string, error)
}

// InitializeUsers returns the users a command should report on.
// If userFilter is provided only that user is returned, otherwise every wallet owner.
func InitializeUsers(ctx context.Context, lister WalletLister, userFilter string, logger *zap.Logger) ([]string, error) {
	if userFilter != "" {
		logger.Info("Reporting on a single user", zap.String("user_id", userFilter))
		return []string{userFilter}, nil
	}

	users, err := lister.ListWalletUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet users: %w", err)
	}

	logger.Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}
