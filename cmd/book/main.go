package main

import (
	"context"
	"flag"
	"fmt"

	"field-booking-go/internal/common"
	"field-booking-go/internal/config"
	"field-booking-go/internal/models"
	"field-booking-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "User id (required)")
	fieldFlag := flag.String("field", "", "Field id (required)")
	dateFlag := flag.String("date", "", "Booking date, YYYY-MM-DD (required)")
	startFlag := flag.String("start", "", "Start time, HH:MM (required)")
	endFlag := flag.String("end", "", "End time, HH:MM (required)")
	statusFlag := flag.String("status", "", "Initial status: pending (default) or confirmed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	result, err := services.BookingService.CreateBooking(ctx, models.CreateBookingRequest{
		UserId:  *userFlag,
		FieldId: *fieldFlag,
		Date:    *dateFlag,
		Start:   *startFlag,
		End:     *endFlag,
		Status:  *statusFlag,
	})
	if err != nil {
		fmt.Printf("✗ Booking failed (%s): %v\n", store.ErrorKind(err), err)
		logger.Fatal("Booking failed", zap.String("kind", store.ErrorKind(err)), zap.Error(err))
	}

	wallet, err := services.BookingService.GetWallet(ctx, *userFlag)
	if err != nil {
		logger.Warn("Failed to read balance after booking", zap.Error(err))
	}

	common.PrintHeader("BOOKING CONFIRMED", common.DefaultWidth)
	fmt.Printf("Booking: %s\n", result.BookingId)
	fmt.Printf("Payment: %s\n", result.PaymentId)
	fmt.Printf("Charged: %s\n", common.FormatAmount(result.Amount))
	if wallet != nil {
		fmt.Printf("Balance: %s\n", common.FormatAmount(wallet.Balance))
	}
	common.PrintSeparator("=", common.DefaultWidth)
}
