package main

import (
	"context"
	"flag"
	"fmt"

	"field-booking-go/internal/common"
	"field-booking-go/internal/config"
	"field-booking-go/internal/models"
	"field-booking-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func parseFlags() (*models.DepositRequest, error) {
	userFlag := flag.String("user", "", "User id (required)")
	amountFlag := flag.String("amount", "", "Amount to deposit (required)")
	methodFlag := flag.String("method", "", "Payment method: visa, mastercard or paypal (required)")
	last4Flag := flag.String("last4", "", "Card last four digits (card methods)")
	expMonthFlag := flag.Int("exp-month", 0, "Card expiry month (card methods)")
	expYearFlag := flag.Int("exp-year", 0, "Card expiry year (card methods)")
	flag.Parse()

	if *userFlag == "" || *amountFlag == "" || *methodFlag == "" {
		return nil, fmt.Errorf("flags are required: --user, --amount, --method")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	return &models.DepositRequest{
		UserId:       *userFlag,
		Amount:       amount,
		Method:       *methodFlag,
		CardLast4:    *last4Flag,
		CardExpMonth: *expMonthFlag,
		CardExpYear:  *expYearFlag,
	}, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseFlags()
	if err != nil {
		logger.Fatal("Invalid arguments", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	result, err := services.BookingService.Deposit(ctx, *req)
	if err != nil {
		fmt.Printf("✗ Deposit failed (%s): %v\n", store.ErrorKind(err), err)
		logger.Fatal("Deposit failed", zap.String("kind", store.ErrorKind(err)), zap.Error(err))
	}

	fmt.Printf("✓ Deposited %s for %s via %s\n", common.FormatAmount(result.Amount), result.UserId, req.Method)
	fmt.Printf("  Transaction: %s\n", result.TransactionId)
	fmt.Printf("  New balance: %s\n", common.FormatAmount(result.NewBalance))
}
