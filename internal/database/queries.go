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

package database

const (
	// Field queries
	queryGetFieldById = `
		SELECT id, name, price_per_hour, owner_user_id, created_at
		FROM fields
		WHERE id = ?`

	queryInsertField = `
		INSERT INTO fields (id, name, price_per_hour, owner_user_id, created_at)
		VALUES (?, ?, ?, ?, ?)`

	queryUpdateField = `
		UPDATE fields SET name = ?, price_per_hour = ?, owner_user_id = ?
		WHERE id = ?`

	queryGetFieldOwnerByUser = `
		SELECT id FROM field_owners WHERE user_id = ?`

	queryInsertFieldOwner = `
		INSERT INTO field_owners (id, user_id, business_name, created_at)
		VALUES (?, ?, ?, ?)`

	// Slot lock queries (one row per field and date, locked before the conflict check)
	queryEnsureSlotLockTmpl = `
		%s INTO slot_locks (field_id, booking_date) VALUES (?, ?)%s`

	querySelectSlotLock = `
		SELECT field_id FROM slot_locks WHERE field_id = ? AND booking_date = ?`

	// Booking queries
	queryFindConflictingBooking = `
		SELECT id
		FROM bookings
		WHERE field_id = ?
		  AND booking_date = ?
		  AND status IN ('pending', 'confirmed')
		  AND start_time < ?
		  AND ? < end_time
		  AND id <> ?
		LIMIT 1`

	queryInsertBooking = `
		INSERT INTO bookings (
			id, user_id, field_id, booking_date, start_time, end_time,
			booking_datetime, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetBookingById = `
		SELECT id, user_id, field_id, booking_date, start_time, end_time,
		       booking_datetime, status, created_at, updated_at
		FROM bookings
		WHERE id = ?`

	queryUpdateBookingFull = `
		UPDATE bookings
		SET user_id = ?, field_id = ?, booking_date = ?, start_time = ?, end_time = ?,
		    booking_datetime = ?, status = ?, updated_at = ?
		WHERE id = ?`

	queryUpdateBookingStatus = `
		UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`

	// Wallet queries
	queryEnsureWalletTmpl = `
		%s INTO wallets (user_id, balance, created_at, updated_at) VALUES (?, '0.00', ?, ?)%s`

	queryGetWalletBalance = `
		SELECT balance FROM wallets WHERE user_id = ?`

	queryGetWallet = `
		SELECT user_id, balance, preferred_method, card_last4, card_exp_month, card_exp_year,
		       created_at, updated_at
		FROM wallets
		WHERE user_id = ?`

	queryListWalletUsers = `
		SELECT user_id FROM wallets ORDER BY user_id`

	queryUpdateWalletBalance = `
		UPDATE wallets SET balance = ?, updated_at = ? WHERE user_id = ?`

	queryUpdateWalletMethod = `
		UPDATE wallets
		SET preferred_method = ?, card_last4 = ?, card_exp_month = ?, card_exp_year = ?, updated_at = ?
		WHERE user_id = ?`

	queryInsertWalletTransaction = `
		INSERT INTO wallet_transactions (id, user_id, amount, type, reference, balance_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetWalletTransactions = `
		SELECT id, user_id, amount, type, reference, balance_after, created_at
		FROM wallet_transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	queryGetWalletTransactionTotals = `
		SELECT amount, type FROM wallet_transactions WHERE user_id = ?`

	// Payment queries
	queryEnsurePaymentMethodTmpl = `
		%s INTO payment_methods (id, method_name) VALUES (?, ?)`

	queryGetPaymentMethodByName = `
		SELECT id FROM payment_methods WHERE method_name = ?`

	queryInsertPayment = `
		INSERT INTO payments (id, booking_id, user_id, method_id, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryPaymentColumns = `
		SELECT id, booking_id, user_id, method_id, amount, status, refund_reference, created_at, refunded_at
		FROM payments`

	queryGetPaymentById = queryPaymentColumns + `
		WHERE id = ?`

	queryGetPaymentByBooking = queryPaymentColumns + `
		WHERE booking_id = ?`

	queryListPayments = queryPaymentColumns + `
		ORDER BY created_at DESC`

	queryListPaymentsByUser = queryPaymentColumns + `
		WHERE user_id = ?
		ORDER BY created_at DESC`

	// The status predicate makes the refunded flag one-way: a second attempt affects no rows.
	queryMarkPaymentRefunded = `
		UPDATE payments
		SET status = 'refunded', refund_reference = ?, refunded_at = ?
		WHERE id = ? AND status = 'completed'`

	// Refund queries
	queryInsertRefund = `
		INSERT INTO refunds (id, booking_id, user_id, payment_id, amount, reason, status, requested_by, requested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryRefundColumns = `
		SELECT id, booking_id, user_id, payment_id, amount, reason, status, requested_by, requested_at, processed_at
		FROM refunds`

	queryGetRefundById = queryRefundColumns + `
		WHERE id = ?`

	queryListRefunds = queryRefundColumns + `
		ORDER BY requested_at DESC`

	queryListRefundsByUser = queryRefundColumns + `
		WHERE user_id = ?
		ORDER BY requested_at DESC`

	queryUpdateRefundStatus = `
		UPDATE refunds SET status = ?, processed_at = ? WHERE id = ?`
)
