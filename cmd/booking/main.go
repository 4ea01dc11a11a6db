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

type updateFlags struct {
	id      string
	status  string
	userId  string
	fieldId string
	date    string
	start   string
	end     string
}

// request builds a full update when any booking column is given, otherwise a status-only update
func (f updateFlags) request() models.UpdateBookingRequest {
	req := models.UpdateBookingRequest{BookingId: f.id}
	if f.status != "" {
		status := f.status
		req.Status = &status
	}
	if f.userId != "" || f.fieldId != "" || f.date != "" || f.start != "" || f.end != "" {
		req.Full = &models.BookingFields{
			UserId:  f.userId,
			FieldId: f.fieldId,
			Date:    f.date,
			Start:   f.start,
			End:     f.end,
		}
	}
	return req
}

func printBooking(booking *models.Booking, payment *models.Payment) {
	fmt.Printf("\n┌─ Booking: %s\n", booking.Id)
	fmt.Printf("│  User:   %s\n", booking.UserId)
	fmt.Printf("│  Field:  %s\n", booking.FieldId)
	fmt.Printf("│  Slot:   %s\n", common.FormatSlot(booking.BookingDate, booking.StartTime, booking.EndTime))
	fmt.Printf("│  Status: %s\n", booking.Status)
	common.PrintBoxSeparator(78)
	if payment == nil {
		fmt.Printf("%s no payment\n", common.BoxPrefix(true))
		return
	}
	fmt.Printf("%s payment %s: %s (%s)\n", common.BoxPrefix(payment.RefundedAt == nil),
		payment.Id, common.FormatAmount(payment.Amount), payment.Status)
	if payment.RefundedAt != nil {
		fmt.Printf("%s refunded %s as %s\n", common.BoxPrefix(true),
			payment.RefundedAt.Format("2006-01-02 15:04:05"), payment.RefundReference)
	}
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	var f updateFlags
	flag.StringVar(&f.id, "id", "", "Booking id (required)")
	flag.StringVar(&f.status, "status", "", "New status: confirmed or cancelled")
	flag.StringVar(&f.userId, "user", "", "Full update: user id")
	flag.StringVar(&f.fieldId, "field", "", "Full update: field id")
	flag.StringVar(&f.date, "date", "", "Full update: date, YYYY-MM-DD")
	flag.StringVar(&f.start, "start", "", "Full update: start time, HH:MM")
	flag.StringVar(&f.end, "end", "", "Full update: end time, HH:MM")
	showFlag := flag.Bool("show", false, "Print the booking and its payment without changing it")
	flag.Parse()

	if f.id == "" {
		logger.Fatal("Missing required flag --id")
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

	if !*showFlag {
		result, err := services.BookingService.UpdateBooking(ctx, f.request())
		if err != nil {
			fmt.Printf("✗ Update failed (%s): %v\n", store.ErrorKind(err), err)
			logger.Fatal("Booking update failed", zap.String("kind", store.ErrorKind(err)), zap.Error(err))
		}
		fmt.Printf("✓ Booking %s: %s -> %s\n", result.BookingId, result.PreviousStatus, result.Status)
		if result.Refunded {
			fmt.Printf("  Refunded %s to wallet\n", common.FormatAmount(result.RefundAmount))
		}
	}

	booking, err := services.BookingService.GetBooking(ctx, f.id)
	if err != nil {
		logger.Fatal("Failed to load booking", zap.String("kind", store.ErrorKind(err)), zap.Error(err))
	}
	payment, err := services.BookingService.GetPayment(ctx, f.id)
	if err != nil {
		logger.Warn("Failed to load payment", zap.Error(err))
	}
	printBooking(booking, payment)
}
