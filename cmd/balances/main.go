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

package main

import (
	"context"
	"flag"
	"fmt"

	"field-booking-go/internal/api"
	"field-booking-go/internal/common"
	"field-booking-go/internal/config"
	"field-booking-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers      int
	usersWithFunds  int
	reconciled      int
	reconcileFailed []string
}

func formatReference(reference string) string {
	if len(reference) > 32 {
		return reference[:32] + "..."
	}
	return reference
}

func printEntry(entry models.TransactionRecord, isLast bool) {
	symbol := common.BoxPrefix(isLast)
	sign := "+"
	if entry.Type == models.WalletTxDebit {
		sign = "-"
	}

	fmt.Printf("%s %s%10s -> %10s  %-35s %s\n",
		symbol,
		sign,
		common.FormatAmount(entry.Amount),
		common.FormatAmount(entry.BalanceAfter),
		formatReference(entry.Reference),
		entry.CreatedAt.Format("2006-01-02 15:04:05"))
}

func printUserHeader(wallet *models.Wallet) {
	fmt.Printf("\n┌─ User: %s\n", wallet.UserId)
	fmt.Printf("│  Balance: %s\n", common.FormatAmount(wallet.Balance))
	if wallet.PreferredMethod != "" {
		method := wallet.PreferredMethod
		if wallet.CardLast4 != "" {
			method = fmt.Sprintf("%s •••• %s (%02d/%d)", method, wallet.CardLast4, wallet.CardExpMonth, wallet.CardExpYear)
		}
		fmt.Printf("│  Method: %s\n", method)
	}
	common.PrintBoxSeparator(78)
}

func printPayments(payments []models.Payment) {
	for i, payment := range payments {
		fmt.Printf("%s %-9s %10s  booking=%s %s\n",
			common.BoxPrefix(i == len(payments)-1),
			payment.Status,
			common.FormatAmount(payment.Amount),
			payment.BookingId,
			payment.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func processUser(ctx context.Context, userId string, service *api.BookingService, historyLimit int, showPayments bool) (*models.Wallet, error) {
	wallet, err := service.GetWallet(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	printUserHeader(wallet)

	if historyLimit > 0 {
		entries, err := service.GetWalletHistory(ctx, userId, historyLimit, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to get wallet history: %w", err)
		}
		for i, entry := range entries {
			printEntry(entry, i == len(entries)-1)
		}
	}

	if showPayments {
		payments, err := service.ListPayments(ctx, userId)
		if err != nil {
			return nil, fmt.Errorf("failed to list payments: %w", err)
		}
		printPayments(payments)
	}

	return wallet, nil
}

func processUsersAndGenerateReport(ctx context.Context, users []string, service *api.BookingService, historyLimit int, showPayments, reconcile bool, logger *zap.Logger) balanceStats {
	stats := balanceStats{}

	for _, userId := range users {
		stats.totalUsers++

		wallet, err := processUser(ctx, userId, service, historyLimit, showPayments)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", userId),
				zap.Error(err))
			continue
		}
		if wallet.Balance.IsPositive() {
			stats.usersWithFunds++
		}

		if !reconcile {
			continue
		}
		if err := service.ReconcileWallet(ctx, userId); err != nil {
			fmt.Printf("%s ✗ reconciliation failed: %v\n", common.BoxPrefix(true), err)
			stats.reconcileFailed = append(stats.reconcileFailed, userId)
			continue
		}
		fmt.Printf("%s ✓ ledger reconciles\n", common.BoxPrefix(true))
		stats.reconciled++
	}

	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "Filter by specific user id (optional)")
	historyFlag := flag.Int("history", 10, "Ledger entries to show per user (0 hides history)")
	paymentsFlag := flag.Bool("payments", false, "List booking payments per user")
	reconcileFlag := flag.Bool("reconcile", false, "Check every balance against its ledger")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database",
		zap.String("driver", cfg.Database.Driver),
		zap.String("path", cfg.Database.Path))
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer services.Close()

	users, err := common.InitializeUsers(ctx, services.BookingService, *userFlag, logger)
	if err != nil {
		logger.Fatal("Failed to initialize users", zap.Error(err))
	}

	common.PrintHeader("WALLET BALANCE REPORT", common.WideWidth)

	stats := processUsersAndGenerateReport(ctx, users, services.BookingService, *historyFlag, *paymentsFlag, *reconcileFlag, logger)

	summary := fmt.Sprintf("SUMMARY: %d users with funds (%d users queried)", stats.usersWithFunds, stats.totalUsers)
	if *reconcileFlag {
		summary += fmt.Sprintf(", %d reconciled, %d mismatched", stats.reconciled, len(stats.reconcileFailed))
	}
	common.PrintFooter(summary, common.WideWidth)

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_funds", stats.usersWithFunds),
		zap.Strings("reconcile_failed", stats.reconcileFailed))
	if len(stats.reconcileFailed) > 0 {
		logger.Fatal("Wallet reconciliation failed", zap.Strings("user_ids", stats.reconcileFailed))
	}
}
