package database

import (
	"context"
	"errors"
	"testing"

	"field-booking-go/internal/models"
	"field-booking-go/internal/store"

	"github.com/shopspring/decimal"
)

func requestRefund(t *testing.T, service *Service, booking *models.BookingResult, userId, amount string) string {
	t.Helper()
	refundId, err := service.CreateRefundRequest(context.Background(), store.CreateRefundParams{
		BookingId:   booking.BookingId,
		UserId:      userId,
		PaymentId:   booking.PaymentId,
		Amount:      decimal.RequireFromString(amount),
		Reason:      "rain",
		RequestedBy: userId,
	})
	if err != nil {
		t.Fatalf("CreateRefundRequest failed: %v", err)
	}
	return refundId
}

func TestProcessRefund_CreditsExactlyOnce(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	depositFunds(t, service, "user1", "100.00")
	booking := bookSlot(t, service, "user1", "2025-06-01", "09:00", "10:30")
	assertBalance(t, service, "user1", "70.00")

	refundId := requestRefund(t, service, booking, "user1", "30.00")

	refund, err := service.GetRefund(ctx, refundId)
	if err != nil {
		t.Fatalf("GetRefund failed: %v", err)
	}
	if refund.Status != models.RefundStatusPending || refund.ProcessedAt != nil {
		t.Errorf("Expected unprocessed pending refund, got %s %v", refund.Status, refund.ProcessedAt)
	}
	assertBalance(t, service, "user1", "70.00")

	if err := service.ProcessRefund(ctx, refundId, models.RefundStatusApproved); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if err := service.ProcessRefund(ctx, refundId, models.RefundStatusCompleted); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	assertBalance(t, service, "user1", "100.00")

	err = service.ProcessRefund(ctx, refundId, models.RefundStatusCompleted)
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition on second completion, got %v", err)
	}
	assertBalance(t, service, "user1", "100.00")

	credits := countRows(t, service,
		"SELECT COUNT(*) FROM wallet_transactions WHERE type = 'deposit' AND reference = ?", "refund:"+refundId)
	if credits != 1 {
		t.Errorf("Expected 1 refund credit, got %d", credits)
	}

	refund, err = service.GetRefund(ctx, refundId)
	if err != nil {
		t.Fatalf("GetRefund failed: %v", err)
	}
	if refund.Status != models.RefundStatusCompleted || refund.ProcessedAt == nil {
		t.Errorf("Expected processed completed refund, got %s %v", refund.Status, refund.ProcessedAt)
	}

	payment, err := service.GetPaymentByBooking(ctx, booking.BookingId)
	if err != nil {
		t.Fatalf("GetPaymentByBooking failed: %v", err)
	}
	if payment.Status != models.PaymentStatusRefunded {
		t.Errorf("Expected payment refunded, got %s", payment.Status)
	}

	if err := service.ReconcileWallet(ctx, "user1"); err != nil {
		t.Errorf("Reconcile failed: %v", err)
	}
}

func TestProcessRefund_Lifecycle(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	depositFunds(t, service, "user1", "100.00")
	booking := bookSlot(t, service, "user1", "2025-06-01", "09:00", "10:00")

	refundId := requestRefund(t, service, booking, "user1", "10.00")

	if err := service.ProcessRefund(ctx, refundId, models.RefundStatusCompleted); !errors.Is(err, store.ErrInvalidTransition) {
		t.Errorf("Expected pending -> completed to fail, got %v", err)
	}
	if err := service.ProcessRefund(ctx, refundId, models.RefundStatusPending); !errors.Is(err, store.ErrValidation) {
		t.Errorf("Expected ErrValidation for pending target, got %v", err)
	}
	if err := service.ProcessRefund(ctx, refundId, models.RefundStatusRejected); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if err := service.ProcessRefund(ctx, refundId, models.RefundStatusApproved); !errors.Is(err, store.ErrInvalidTransition) {
		t.Errorf("Expected rejected to be terminal, got %v", err)
	}
	if err := service.ProcessRefund(ctx, "missing", models.RefundStatusApproved); !errors.Is(err, store.ErrRefundNotFound) {
		t.Errorf("Expected ErrRefundNotFound, got %v", err)
	}

	assertBalance(t, service, "user1", "80.00")
}

func TestProcessRefund_PartialAmount(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	depositFunds(t, service, "user1", "100.00")
	booking := bookSlot(t, service, "user1", "2025-06-01", "09:00", "11:00")

	refundId := requestRefund(t, service, booking, "user1", "15.00")
	if err := service.ProcessRefund(ctx, refundId, models.RefundStatusApproved); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if err := service.ProcessRefund(ctx, refundId, models.RefundStatusCompleted); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	assertBalance(t, service, "user1", "75.00")

	// The payment is settled by the partial refund, so cancelling credits nothing more
	cancelled := models.BookingStatusCancelled
	update, err := service.UpdateBooking(ctx, store.UpdateBookingParams{BookingId: booking.BookingId, Status: &cancelled})
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if update.Refunded {
		t.Error("Expected cancel after refund to skip the credit")
	}
	assertBalance(t, service, "user1", "75.00")
}

func TestCancelAfterRefundRequest_CreditsOnce(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	depositFunds(t, service, "user1", "100.00")
	booking := bookSlot(t, service, "user1", "2025-06-01", "09:00", "10:00")

	refundId := requestRefund(t, service, booking, "user1", "20.00")
	if err := service.ProcessRefund(ctx, refundId, models.RefundStatusApproved); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	cancelled := models.BookingStatusCancelled
	update, err := service.UpdateBooking(ctx, store.UpdateBookingParams{BookingId: booking.BookingId, Status: &cancelled})
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !update.Refunded {
		t.Fatal("Expected cancel to refund the payment")
	}
	assertBalance(t, service, "user1", "100.00")

	err = service.ProcessRefund(ctx, refundId, models.RefundStatusCompleted)
	if !errors.Is(err, store.ErrPaymentAlreadyRefunded) {
		t.Fatalf("Expected ErrPaymentAlreadyRefunded, got %v", err)
	}
	assertBalance(t, service, "user1", "100.00")

	// The failed completion rolled back its status change
	refund, err := service.GetRefund(ctx, refundId)
	if err != nil {
		t.Fatalf("GetRefund failed: %v", err)
	}
	if refund.Status != models.RefundStatusApproved {
		t.Errorf("Expected refund to stay approved, got %s", refund.Status)
	}
	if err := service.ProcessRefund(ctx, refundId, models.RefundStatusRejected); err != nil {
		t.Errorf("Reject after failed completion failed: %v", err)
	}

	if err := service.ReconcileWallet(ctx, "user1"); err != nil {
		t.Errorf("Reconcile failed: %v", err)
	}
}

func TestCreateRefundRequest_Validation(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	depositFunds(t, service, "user1", "100.00")
	depositFunds(t, service, "user2", "100.00")
	booking := bookSlot(t, service, "user1", "2025-06-01", "09:00", "10:00")
	other := bookSlot(t, service, "user2", "2025-06-01", "10:00", "11:00")

	valid := store.CreateRefundParams{
		BookingId:   booking.BookingId,
		UserId:      "user1",
		PaymentId:   booking.PaymentId,
		Amount:      decimal.RequireFromString("20.00"),
		Reason:      "rain",
		RequestedBy: "user1",
	}

	tests := []struct {
		name    string
		mutate  func(p *store.CreateRefundParams)
		wantErr error
	}{
		{"missing reason", func(p *store.CreateRefundParams) { p.Reason = "" }, store.ErrValidation},
		{"zero amount", func(p *store.CreateRefundParams) { p.Amount = decimal.Zero }, store.ErrValidation},
		{"exceeds payment", func(p *store.CreateRefundParams) { p.Amount = decimal.RequireFromString("20.01") }, store.ErrValidation},
		{"wrong user", func(p *store.CreateRefundParams) { p.UserId = "user2" }, store.ErrValidation},
		{"foreign payment", func(p *store.CreateRefundParams) { p.PaymentId = other.PaymentId }, store.ErrValidation},
		{"unknown payment", func(p *store.CreateRefundParams) { p.PaymentId = "missing" }, store.ErrPaymentNotFound},
		{"unknown booking", func(p *store.CreateRefundParams) { p.BookingId = "missing" }, store.ErrBookingNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.mutate(&params)
			if _, err := service.CreateRefundRequest(ctx, params); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if n := countRows(t, service, "SELECT COUNT(*) FROM refunds"); n != 0 {
		t.Errorf("Expected no refunds, got %d", n)
	}

	// Once the payment is refunded no new request can be opened
	cancelled := models.BookingStatusCancelled
	if _, err := service.UpdateBooking(ctx, store.UpdateBookingParams{BookingId: booking.BookingId, Status: &cancelled}); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, err := service.CreateRefundRequest(ctx, valid); !errors.Is(err, store.ErrPaymentAlreadyRefunded) {
		t.Errorf("Expected ErrPaymentAlreadyRefunded, got %v", err)
	}
}

func TestListRefunds(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	depositFunds(t, service, "user1", "100.00")
	depositFunds(t, service, "user2", "100.00")
	first := bookSlot(t, service, "user1", "2025-06-01", "09:00", "10:00")
	second := bookSlot(t, service, "user2", "2025-06-01", "10:00", "11:00")

	requestRefund(t, service, first, "user1", "5.00")
	requestRefund(t, service, second, "user2", "5.00")

	all, err := service.ListRefunds(ctx, "")
	if err != nil {
		t.Fatalf("ListRefunds failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 refunds, got %d", len(all))
	}

	mine, err := service.ListRefunds(ctx, "user2")
	if err != nil {
		t.Fatalf("ListRefunds failed: %v", err)
	}
	if len(mine) != 1 || mine[0].UserId != "user2" {
		t.Errorf("Expected one refund for user2, got %+v", mine)
	}
	if !mine[0].Amount.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("Expected amount 5.00, got %s", mine[0].Amount.String())
	}
}
