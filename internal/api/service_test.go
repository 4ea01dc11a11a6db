package api

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"field-booking-go/internal/models"
	"field-booking-go/internal/store"

	"github.com/shopspring/decimal"
)

// fakeStore records what reached the store so tests can check that invalid
// requests are rejected before any transaction would open.
type fakeStore struct {
	calls int

	createParams  store.CreateBookingParams
	updateParams  store.UpdateBookingParams
	depositParams store.DepositParams
	refundParams  store.CreateRefundParams
	historyLimit  int
	historyOffset int

	wallet    *models.Wallet
	walletErr error
	entries   []models.WalletTransaction

	listUser string
	listErr  error
}

var _ store.BookingStore = (*fakeStore)(nil)

func (f *fakeStore) UpsertField(ctx context.Context, params store.FieldParams) (*models.Field, error) {
	f.calls++
	return &models.Field{Id: params.Id, Name: params.Name, PricePerHour: params.PricePerHour}, nil
}

func (f *fakeStore) GetField(ctx context.Context, fieldId string) (*models.Field, error) {
	f.calls++
	return nil, store.ErrFieldNotFound
}

func (f *fakeStore) CreateBooking(ctx context.Context, params store.CreateBookingParams) (*models.BookingResult, error) {
	f.calls++
	f.createParams = params
	return &models.BookingResult{BookingId: "b1", PaymentId: "p1", Amount: decimal.RequireFromString("30.00")}, nil
}

func (f *fakeStore) UpdateBooking(ctx context.Context, params store.UpdateBookingParams) (*models.UpdateBookingResult, error) {
	f.calls++
	f.updateParams = params
	return &models.UpdateBookingResult{BookingId: params.BookingId}, nil
}

func (f *fakeStore) GetBooking(ctx context.Context, bookingId string) (*models.Booking, error) {
	f.calls++
	return nil, fmt.Errorf("%w: %s", store.ErrBookingNotFound, bookingId)
}

func (f *fakeStore) GetPaymentByBooking(ctx context.Context, bookingId string) (*models.Payment, error) {
	f.calls++
	return nil, fmt.Errorf("%w: %s", store.ErrPaymentNotFound, bookingId)
}

func (f *fakeStore) ListPayments(ctx context.Context, userId string) ([]models.Payment, error) {
	f.calls++
	f.listUser = userId
	return []models.Payment{{Id: "p1", UserId: userId}}, nil
}

func (f *fakeStore) CreateRefundRequest(ctx context.Context, params store.CreateRefundParams) (string, error) {
	f.calls++
	f.refundParams = params
	return "r1", nil
}

func (f *fakeStore) ProcessRefund(ctx context.Context, refundId, status string) error {
	f.calls++
	return nil
}

func (f *fakeStore) GetRefund(ctx context.Context, refundId string) (*models.Refund, error) {
	f.calls++
	return nil, store.ErrRefundNotFound
}

func (f *fakeStore) ListRefunds(ctx context.Context, userId string) ([]models.Refund, error) {
	f.calls++
	return nil, nil
}

func (f *fakeStore) Deposit(ctx context.Context, params store.DepositParams) (*models.DepositResult, error) {
	f.calls++
	f.depositParams = params
	return &models.DepositResult{UserId: params.UserId, Amount: params.Amount, NewBalance: params.Amount}, nil
}

func (f *fakeStore) GetWallet(ctx context.Context, userId string) (*models.Wallet, error) {
	f.calls++
	return f.wallet, f.walletErr
}

func (f *fakeStore) GetWalletTransactions(ctx context.Context, userId string, limit, offset int) ([]models.WalletTransaction, error) {
	f.calls++
	f.historyLimit = limit
	f.historyOffset = offset
	return f.entries, nil
}

func (f *fakeStore) ListWalletUsers(ctx context.Context) ([]string, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []string{"user1"}, nil
}

func (f *fakeStore) ReconcileWallet(ctx context.Context, userId string) error {
	f.calls++
	return nil
}

func (f *fakeStore) Close() {}

func TestCreateBooking_Normalizes(t *testing.T) {
	fake := &fakeStore{}
	service := NewBookingService(fake)

	_, err := service.CreateBooking(context.Background(), models.CreateBookingRequest{
		UserId:  " user1 ",
		FieldId: "field1",
		Date:    "2025-06-01T22:30:00-03:00",
		Start:   "9:00",
		End:     "10:30:00",
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	got := fake.createParams
	if got.UserId != "user1" || got.Date != "2025-06-02" || got.Start != "09:00" || got.End != "10:30" {
		t.Errorf("Unexpected normalized params: %+v", got)
	}
	if got.Status != models.BookingStatusPending {
		t.Errorf("Expected default status pending, got %s", got.Status)
	}
}

func TestCreateBooking_RejectsBeforeStore(t *testing.T) {
	valid := models.CreateBookingRequest{UserId: "user1", FieldId: "field1", Date: "2025-06-01", Start: "09:00", End: "10:00"}

	tests := []struct {
		name    string
		mutate  func(r *models.CreateBookingRequest)
		wantErr error
	}{
		{"missing user", func(r *models.CreateBookingRequest) { r.UserId = "" }, store.ErrValidation},
		{"missing field", func(r *models.CreateBookingRequest) { r.FieldId = " " }, store.ErrValidation},
		{"bad date", func(r *models.CreateBookingRequest) { r.Date = "01/06/2025" }, store.ErrValidation},
		{"bad start", func(r *models.CreateBookingRequest) { r.Start = "25:00" }, store.ErrValidation},
		{"zero duration", func(r *models.CreateBookingRequest) { r.End = "09:00" }, store.ErrInvalidRange},
		{"end before start", func(r *models.CreateBookingRequest) { r.End = "08:00" }, store.ErrInvalidRange},
		{"cancelled status", func(r *models.CreateBookingRequest) { r.Status = "cancelled" }, store.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeStore{}
			service := NewBookingService(fake)

			req := valid
			tt.mutate(&req)
			_, err := service.CreateBooking(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if fake.calls != 0 {
				t.Errorf("Expected no store calls, got %d", fake.calls)
			}
		})
	}
}

func TestUpdateBooking_Modes(t *testing.T) {
	fake := &fakeStore{}
	service := NewBookingService(fake)
	ctx := context.Background()

	confirmed := "confirmed"
	if _, err := service.UpdateBooking(ctx, models.UpdateBookingRequest{BookingId: "b1", Status: &confirmed}); err != nil {
		t.Fatalf("Status update failed: %v", err)
	}
	if fake.updateParams.Full != nil || fake.updateParams.Status == nil || *fake.updateParams.Status != "confirmed" {
		t.Errorf("Expected status-only params, got %+v", fake.updateParams)
	}

	_, err := service.UpdateBooking(ctx, models.UpdateBookingRequest{
		BookingId: "b1",
		Full:      &models.BookingFields{UserId: "user1", FieldId: "field1", Date: "2025-06-01", Start: "8:00", End: "9:15"},
	})
	if err != nil {
		t.Fatalf("Full update failed: %v", err)
	}
	if fake.updateParams.Full == nil || fake.updateParams.Full.Start != "08:00" || fake.updateParams.Status != nil {
		t.Errorf("Expected normalized full params without status, got %+v", fake.updateParams)
	}

	calls := fake.calls
	archived := "archived"
	if _, err := service.UpdateBooking(ctx, models.UpdateBookingRequest{BookingId: "b1", Status: &archived}); !errors.Is(err, store.ErrValidation) {
		t.Errorf("Expected ErrValidation for unknown status, got %v", err)
	}
	if _, err := service.UpdateBooking(ctx, models.UpdateBookingRequest{BookingId: "b1"}); !errors.Is(err, store.ErrValidation) {
		t.Errorf("Expected ErrValidation for empty update, got %v", err)
	}
	_, err = service.UpdateBooking(ctx, models.UpdateBookingRequest{
		BookingId: "b1",
		Full:      &models.BookingFields{UserId: "user1", FieldId: "field1", Date: "2025-06-01", Start: "08:00"},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Errorf("Expected ErrValidation for partial full update, got %v", err)
	}
	if fake.calls != calls {
		t.Errorf("Expected invalid updates to skip the store")
	}
}

func TestValidateDeposit(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	card := models.DepositRequest{
		UserId:       "user1",
		Amount:       decimal.RequireFromString("50.00"),
		Method:       "Visa",
		CardLast4:    "4242",
		CardExpMonth: 6,
		CardExpYear:  2025,
	}

	tests := []struct {
		name    string
		mutate  func(r *models.DepositRequest)
		wantErr bool
	}{
		{"valid card", func(r *models.DepositRequest) {}, false},
		{"paypal without card", func(r *models.DepositRequest) { r.Method = "paypal"; r.CardLast4 = "" }, false},
		{"zero amount", func(r *models.DepositRequest) { r.Amount = decimal.Zero }, true},
		{"negative amount", func(r *models.DepositRequest) { r.Amount = decimal.RequireFromString("-1") }, true},
		{"sub-cent amount", func(r *models.DepositRequest) { r.Amount = decimal.RequireFromString("1.005") }, true},
		{"unknown method", func(r *models.DepositRequest) { r.Method = "cash" }, true},
		{"short last4", func(r *models.DepositRequest) { r.CardLast4 = "424" }, true},
		{"letters in last4", func(r *models.DepositRequest) { r.CardLast4 = "42a2" }, true},
		{"bad month", func(r *models.DepositRequest) { r.CardExpMonth = 13 }, true},
		{"missing year", func(r *models.DepositRequest) { r.CardExpYear = 0 }, true},
		{"expired", func(r *models.DepositRequest) { r.CardExpMonth = 5 }, true},
		{"missing user", func(r *models.DepositRequest) { r.UserId = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := card
			tt.mutate(&req)
			params, err := validateDeposit(req, now)
			if tt.wantErr {
				if !errors.Is(err, store.ErrValidation) {
					t.Errorf("Expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if params.Method != "visa" && params.Method != "paypal" {
				t.Errorf("Expected lower-cased method, got %s", params.Method)
			}
		})
	}
}

func TestDeposit_PassesValidatedParams(t *testing.T) {
	fake := &fakeStore{}
	service := NewBookingService(fake)

	result, err := service.Deposit(context.Background(), models.DepositRequest{
		UserId: "user1",
		Amount: decimal.RequireFromString("12.50"),
		Method: "paypal",
	})
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if !result.NewBalance.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("Expected new balance 12.50, got %s", result.NewBalance.String())
	}
	if fake.depositParams.Method != "paypal" || fake.depositParams.CardLast4 != "" {
		t.Errorf("Unexpected deposit params: %+v", fake.depositParams)
	}
}

func TestGetWallet_MissingIsZero(t *testing.T) {
	fake := &fakeStore{walletErr: fmt.Errorf("%w: user user9", store.ErrWalletNotFound)}
	service := NewBookingService(fake)

	wallet, err := service.GetWallet(context.Background(), "user9")
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.Zero) || wallet.UserId != "user9" {
		t.Errorf("Expected zero wallet for user9, got %+v", wallet)
	}

	fake.walletErr = errors.New("disk I/O error")
	if _, err := service.GetWallet(context.Background(), "user9"); err == nil {
		t.Error("Expected store failure to surface")
	}
}

func TestGetWalletHistory(t *testing.T) {
	fake := &fakeStore{entries: []models.WalletTransaction{{
		Id:           "t1",
		Type:         models.WalletTxDebit,
		Amount:       decimal.RequireFromString("30.00"),
		Reference:    "booking:b1",
		BalanceAfter: decimal.RequireFromString("70.00"),
	}}}
	service := NewBookingService(fake)

	records, err := service.GetWalletHistory(context.Background(), "user1", 500, -3)
	if err != nil {
		t.Fatalf("GetWalletHistory failed: %v", err)
	}
	if fake.historyLimit != 20 || fake.historyOffset != 0 {
		t.Errorf("Expected clamped paging 20/0, got %d/%d", fake.historyLimit, fake.historyOffset)
	}
	if len(records) != 1 || records[0].Reference != "booking:b1" || !records[0].BalanceAfter.Equal(decimal.RequireFromString("70.00")) {
		t.Errorf("Unexpected history records: %+v", records)
	}
}

func TestRefunds_Validation(t *testing.T) {
	fake := &fakeStore{}
	service := NewBookingService(fake)
	ctx := context.Background()

	_, err := service.CreateRefundRequest(ctx, models.CreateRefundRequest{
		BookingId: "b1", UserId: "user1", PaymentId: "p1", Amount: decimal.RequireFromString("5"), RequestedBy: "user1",
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Errorf("Expected ErrValidation for missing reason, got %v", err)
	}

	refundId, err := service.CreateRefundRequest(ctx, models.CreateRefundRequest{
		BookingId: "b1", UserId: "user1", PaymentId: "p1", Amount: decimal.RequireFromString("5"),
		Reason: " rain ", RequestedBy: "user1",
	})
	if err != nil || refundId != "r1" {
		t.Fatalf("CreateRefundRequest failed: %v", err)
	}
	if fake.refundParams.Reason != "rain" {
		t.Errorf("Expected trimmed reason, got %q", fake.refundParams.Reason)
	}

	if err := service.ProcessRefund(ctx, "r1", "pending"); !errors.Is(err, store.ErrValidation) {
		t.Errorf("Expected ErrValidation for pending target, got %v", err)
	}
	if err := service.ProcessRefund(ctx, "r1", " Completed "); err != nil {
		t.Errorf("ProcessRefund failed: %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	if err := NewBookingService(&fakeStore{}).HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}

	dbErr := errors.New("database is locked")
	err := NewBookingService(&fakeStore{listErr: dbErr}).HealthCheck(ctx)
	if !errors.Is(err, dbErr) {
		t.Errorf("Expected wrapped store error, got %v", err)
	}
}

func TestListPayments_TrimsUser(t *testing.T) {
	fake := &fakeStore{}
	service := NewBookingService(fake)

	payments, err := service.ListPayments(context.Background(), " user1 ")
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if fake.listUser != "user1" {
		t.Errorf("Expected trimmed user filter, got %q", fake.listUser)
	}
	if len(payments) != 1 || payments[0].Id != "p1" {
		t.Errorf("Unexpected payments: %+v", payments)
	}
}
