package common

import (
	"fmt"
	"strings"

	"field-booking-go/internal/pricing"

	"github.com/shopspring/decimal"
)

const (
	DefaultWidth = 80
	WideWidth    = 100
)

func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a title boxed by '=' lines, preceded by a blank line
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator opens the list section under a "┌─" header line
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

func BoxDetailPrefix(isLast bool) string {
	if isLast {
		return "   "
	}
	return "│  "
}

// FormatAmount renders money with the two places it is stored with
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(pricing.Places)
}

// FormatSlot renders a booking slot as "2025-06-01 09:00-10:30"
func FormatSlot(date, start, end string) string {
	return fmt.Sprintf("%s %s-%s", date, start, end)
}
