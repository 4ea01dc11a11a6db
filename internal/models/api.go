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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBookingRequest is the caller-facing booking request
type CreateBookingRequest struct {
	UserId  string `json:"user_id"`
	FieldId string `json:"field_id"`
	Date    string `json:"date"`       // YYYY-MM-DD or RFC3339
	Start   string `json:"start_time"` // HH:MM
	End     string `json:"end_time"`   // HH:MM
	Status  string `json:"status,omitempty"`
}

// BookingResult is returned after a successful booking
type BookingResult struct {
	BookingId string          `json:"booking_id"`
	PaymentId string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// BookingFields carries every column rewritten by an administrative full update
type BookingFields struct {
	UserId  string `json:"user_id"`
	FieldId string `json:"field_id"`
	Date    string `json:"date"`
	Start   string `json:"start_time"`
	End     string `json:"end_time"`
}

// UpdateBookingRequest selects the update mode: Full set means full update,
// otherwise only Status is written.
type UpdateBookingRequest struct {
	BookingId string         `json:"booking_id"`
	Status    *string        `json:"status,omitempty"`
	Full      *BookingFields `json:"full,omitempty"`
}

// UpdateBookingResult reports what the update did
type UpdateBookingResult struct {
	BookingId      string          `json:"booking_id"`
	PreviousStatus string          `json:"previous_status"`
	Status         string          `json:"status"`
	Refunded       bool            `json:"refunded"`
	RefundAmount   decimal.Decimal `json:"refund_amount,omitempty"`
}

// CreateRefundRequest opens an explicit refund request
type CreateRefundRequest struct {
	BookingId   string          `json:"booking_id"`
	UserId      string          `json:"user_id"`
	PaymentId   string          `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	RequestedBy string          `json:"requested_by"`
}

// DepositRequest tops up a wallet from an external method
type DepositRequest struct {
	UserId       string          `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"` // visa, mastercard, paypal
	CardLast4    string          `json:"card_last4,omitempty"`
	CardExpMonth int             `json:"card_exp_month,omitempty"`
	CardExpYear  int             `json:"card_exp_year,omitempty"`
}

// DepositResult represents the result of processing a deposit
type DepositResult struct {
	UserId        string          `json:"user_id"`
	TransactionId string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	NewBalance    decimal.Decimal `json:"new_balance"`
}

// TransactionRecord represents a ledger row in the user's history
type TransactionRecord struct {
	Id           string          `json:"id"`
	Type         string          `json:"type"` // "deposit", "debit"
	Amount       decimal.Decimal `json:"amount"`
	Reference    string          `json:"reference"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}
