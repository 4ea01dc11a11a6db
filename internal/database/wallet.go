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

// ensureWallet creates a zero-balance wallet for the user if none exists.
func (s *Service) ensureWallet(ctx context.Context, tx *sql.Tx, userId string) error {
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, s.dialect.ensureWallet, userId, now, now); err != nil {
		return fmt.Errorf("failed to ensure wallet: %w", err)
	}
	return nil
}

// lockAndGetBalance locks the user's wallet row until tx ends and returns its balance.
func (s *Service) lockAndGetBalance(ctx context.Context, tx *sql.Tx, userId string) (decimal.Decimal, error) {
	var balanceStr string
	err := tx.QueryRowContext(ctx, s.dialect.lockWallet, userId).Scan(&balanceStr)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: user %s", store.ErrWalletNotFound, userId)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return parseAmount("balance", balanceStr)
}

// debit removes amount from the wallet and appends a debit ledger row.
// The balance check runs under the wallet lock.
func (s *Service) debit(ctx context.Context, tx *sql.Tx, userId string, amount decimal.Decimal, reference string) (*models.WalletTransaction, error) {
	balance, err := s.lockAndGetBalance(ctx, tx, userId)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		return nil, fmt.Errorf("%w: balance %s, required %s", store.ErrInsufficientBalance,
			formatAmount(balance), formatAmount(amount))
	}
	return s.applyWalletChange(ctx, tx, userId, balance, amount, models.WalletTxDebit, reference)
}

// credit adds amount to the wallet and appends a deposit ledger row.
func (s *Service) credit(ctx context.Context, tx *sql.Tx, userId string, amount decimal.Decimal, reference string) (*models.WalletTransaction, error) {
	balance, err := s.lockAndGetBalance(ctx, tx, userId)
	if err != nil {
		return nil, err
	}
	return s.applyWalletChange(ctx, tx, userId, balance, amount, models.WalletTxDeposit, reference)
}

// applyWalletChange writes the new balance and the matching ledger row in the same transaction
func (s *Service) applyWalletChange(ctx context.Context, tx *sql.Tx, userId string, balance, amount decimal.Decimal, txType, reference string) (*models.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: ledger amount must be positive, got %s", store.ErrValidation, amount.String())
	}

	newBalance := balance.Add(amount)
	if txType == models.WalletTxDebit {
		newBalance = balance.Sub(amount)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, queryUpdateWalletBalance, formatAmount(newBalance), now, userId); err != nil {
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}

	entry := &models.WalletTransaction{
		Id:           uuid.New().String(),
		UserId:       userId,
		Amount:       amount,
		Type:         txType,
		Reference:    reference,
		BalanceAfter: newBalance,
		CreatedAt:    now,
	}
	_, err := tx.ExecContext(ctx, queryInsertWalletTransaction,
		entry.Id, entry.UserId, formatAmount(entry.Amount), entry.Type, entry.Reference,
		formatAmount(entry.BalanceAfter), entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert wallet transaction: %w", err)
	}

	zap.L().Info("Wallet updated",
		zap.String("user_id", userId),
		zap.String("type", txType),
		zap.String("amount", formatAmount(amount)),
		zap.String("reference", reference),
		zap.String("old_balance", formatAmount(balance)),
		zap.String("new_balance", formatAmount(newBalance)))

	return entry, nil
}

// Deposit tops up a wallet from an external method and remembers the method as preferred.
func (s *Service) Deposit(ctx context.Context, params store.DepositParams) (*models.DepositResult, error) {
	var result *models.DepositResult

	err := s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.ensureWallet(ctx, tx, params.UserId); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, queryUpdateWalletMethod,
			params.Method, nullString(params.CardLast4), nullInt(params.CardExpMonth), nullInt(params.CardExpYear),
			time.Now().UTC(), params.UserId)
		if err != nil {
			return fmt.Errorf("failed to store payment method: %w", err)
		}

		entry, err := s.credit(ctx, tx, params.UserId, params.Amount, params.Method)
		if err != nil {
			return err
		}

		result = &models.DepositResult{
			UserId:        params.UserId,
			TransactionId: entry.Id,
			Amount:        entry.Amount,
			NewBalance:    entry.BalanceAfter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Deposit processed successfully",
		zap.String("user_id", params.UserId),
		zap.String("method", params.Method),
		zap.String("amount", formatAmount(params.Amount)),
		zap.String("new_balance", formatAmount(result.NewBalance)))
	return result, nil
}

// GetWallet returns the wallet row. A user who never booked or deposited has none.
func (s *Service) GetWallet(ctx context.Context, userId string) (*models.Wallet, error) {
	var wallet models.Wallet
	var balanceStr string
	var method, last4 sql.NullString
	var expMonth, expYear sql.NullInt64

	err := s.db.QueryRowContext(ctx, queryGetWallet, userId).Scan(
		&wallet.UserId, &balanceStr, &method, &last4, &expMonth, &expYear,
		&wallet.CreatedAt, &wallet.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", store.ErrWalletNotFound, userId)
	}
	if err != nil {
		zap.L().Error("Failed to get wallet", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	wallet.Balance, err = parseAmount("balance", balanceStr)
	if err != nil {
		return nil, err
	}
	wallet.PreferredMethod = method.String
	wallet.CardLast4 = last4.String
	wallet.CardExpMonth = int(expMonth.Int64)
	wallet.CardExpYear = int(expYear.Int64)

	return &wallet, nil
}

// GetWalletTransactions returns the user's ledger, newest first
func (s *Service) GetWalletTransactions(ctx context.Context, userId string, limit, offset int) ([]models.WalletTransaction, error) {
	zap.L().Debug("Getting wallet transactions",
		zap.String("user_id", userId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	rows, err := s.db.QueryContext(ctx, queryGetWalletTransactions, userId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet transactions: %w", err)
	}
	defer closeRows(rows)

	var entries []models.WalletTransaction
	for rows.Next() {
		var entry models.WalletTransaction
		var amountStr, balanceAfterStr string
		if err := rows.Scan(&entry.Id, &entry.UserId, &amountStr, &entry.Type, &entry.Reference,
			&balanceAfterStr, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}

		if entry.Amount, err = parseAmount("amount", amountStr); err != nil {
			return nil, err
		}
		if entry.BalanceAfter, err = parseAmount("balance_after", balanceAfterStr); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during wallet transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating wallet transaction rows: %w", err)
	}

	return entries, nil
}

// ListWalletUsers returns every user that owns a wallet
func (s *Service) ListWalletUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, queryListWalletUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer closeRows(rows)

	var userIds []string
	for rows.Next() {
		var userId string
		if err := rows.Scan(&userId); err != nil {
			return nil, fmt.Errorf("failed to scan wallet user: %w", err)
		}
		userIds = append(userIds, userId)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet rows: %w", err)
	}
	return userIds, nil
}

// ReconcileWallet verifies that the stored balance equals deposits minus debits
func (s *Service) ReconcileWallet(ctx context.Context, userId string) error {
	zap.L().Info("Reconciling wallet", zap.String("user_id", userId))

	wallet, err := s.GetWallet(ctx, userId)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, queryGetWalletTransactionTotals, userId)
	if err != nil {
		return fmt.Errorf("failed to load wallet transactions: %w", err)
	}
	defer closeRows(rows)

	calculated := decimal.Zero
	for rows.Next() {
		var amountStr, txType string
		if err := rows.Scan(&amountStr, &txType); err != nil {
			return fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		amount, err := parseAmount("amount", amountStr)
		if err != nil {
			return err
		}
		switch txType {
		case models.WalletTxDeposit:
			calculated = calculated.Add(amount)
		case models.WalletTxDebit:
			calculated = calculated.Sub(amount)
		default:
			return fmt.Errorf("unknown wallet transaction type %q", txType)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating wallet transaction rows: %w", err)
	}

	// Exact decimal comparison
	if !wallet.Balance.Equal(calculated) {
		zap.L().Error("Wallet reconciliation failed",
			zap.String("user_id", userId),
			zap.String("current_balance", formatAmount(wallet.Balance)),
			zap.String("calculated_balance", formatAmount(calculated)),
			zap.String("difference", formatAmount(wallet.Balance.Sub(calculated))))
		return fmt.Errorf("balance mismatch: current=%s, calculated=%s", formatAmount(wallet.Balance), formatAmount(calculated))
	}

	zap.L().Info("Wallet reconciliation successful",
		zap.String("user_id", userId),
		zap.String("balance", formatAmount(wallet.Balance)))
	return nil
}

func parseAmount(column, value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s '%s': %w", column, value, err)
	}
	return amount, nil
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(pricing.Places)
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullInt(value int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(value), Valid: value != 0}
}
