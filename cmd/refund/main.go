package main

import (
	"context"
	"flag"
	"fmt"

	"field-booking-go/internal/api"
	"field-booking-go/internal/common"
	"field-booking-go/internal/config"
	"field-booking-go/internal/models"
	"field-booking-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func createRefund(ctx context.Context, service *api.BookingService, bookingId, userId, paymentId, amountStr, reason, requestedBy string) error {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return fmt.Errorf("%w: invalid amount format: %v", store.ErrValidation, err)
	}

	if paymentId == "" && bookingId != "" {
		payment, err := service.GetPayment(ctx, bookingId)
		if err != nil {
			return err
		}
		paymentId = payment.Id
	}
	if requestedBy == "" {
		requestedBy = userId
	}

	refundId, err := service.CreateRefundRequest(ctx, models.CreateRefundRequest{
		BookingId:   bookingId,
		UserId:      userId,
		PaymentId:   paymentId,
		Amount:      amount,
		Reason:      reason,
		RequestedBy: requestedBy,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Refund requested: %s (%s for payment %s)\n", refundId, common.FormatAmount(amount), paymentId)
	return nil
}

func processRefund(ctx context.Context, service *api.BookingService, refundId, status string) error {
	if err := service.ProcessRefund(ctx, refundId, status); err != nil {
		return err
	}

	refund, err := service.GetRefund(ctx, refundId)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Refund %s is now %s\n", refund.Id, refund.Status)
	if refund.Status == models.RefundStatusCompleted {
		wallet, err := service.GetWallet(ctx, refund.UserId)
		if err == nil {
			fmt.Printf("  Credited %s, balance %s\n", common.FormatAmount(refund.Amount), common.FormatAmount(wallet.Balance))
		}
	}
	return nil
}

func listRefunds(ctx context.Context, service *api.BookingService, userId string) error {
	refunds, err := service.ListRefunds(ctx, userId)
	if err != nil {
		return err
	}

	common.PrintHeader("REFUND REQUESTS", common.WideWidth)
	for i, refund := range refunds {
		isLast := i == len(refunds)-1
		fmt.Printf("%s %-36s %-10s %10s  user=%s booking=%s\n",
			common.BoxPrefix(isLast), refund.Id, refund.Status, common.FormatAmount(refund.Amount),
			refund.UserId, refund.BookingId)
		fmt.Printf("%s reason: %s (requested %s by %s)\n",
			common.BoxDetailPrefix(isLast), refund.Reason,
			refund.RequestedAt.Format("2006-01-02 15:04:05"), refund.RequestedBy)
	}
	common.PrintFooter(fmt.Sprintf("SUMMARY: %d refunds", len(refunds)), common.WideWidth)
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	actionFlag := flag.String("action", "list", "create, process or list")
	bookingFlag := flag.String("booking", "", "Booking id (create)")
	userFlag := flag.String("user", "", "User id (create; optional filter for list)")
	paymentFlag := flag.String("payment", "", "Payment id (create; defaults to the booking's payment)")
	amountFlag := flag.String("amount", "", "Refund amount (create)")
	reasonFlag := flag.String("reason", "", "Reason (create)")
	requestedByFlag := flag.String("requested-by", "", "Requester id (create; defaults to --user)")
	idFlag := flag.String("id", "", "Refund id (process)")
	statusFlag := flag.String("status", "", "approved, rejected or completed (process)")
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

	switch *actionFlag {
	case "create":
		err = createRefund(ctx, services.BookingService, *bookingFlag, *userFlag, *paymentFlag,
			*amountFlag, *reasonFlag, *requestedByFlag)
	case "process":
		err = processRefund(ctx, services.BookingService, *idFlag, *statusFlag)
	case "list":
		err = listRefunds(ctx, services.BookingService, *userFlag)
	default:
		err = fmt.Errorf("%w: unknown action %q", store.ErrValidation, *actionFlag)
	}

	if err != nil {
		fmt.Printf("✗ Refund %s failed (%s): %v\n", *actionFlag, store.ErrorKind(err), err)
		logger.Fatal("Refund command failed",
			zap.String("action", *actionFlag),
			zap.String("kind", store.ErrorKind(err)),
			zap.Error(err))
	}
}
