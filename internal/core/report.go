// Package core provides the expense entity and its text rendering.
//
// The formatting functions are pure: the same input always yields the same
// output, and amounts are rendered in their natural decimal form without
// rounding to a fixed number of digits.
package core

import (
	"strconv"
	"strings"
)

const (
	// EmptyReport is returned by FormatReport when there is nothing to list.
	EmptyReport = "No expenses recorded yet."

	// ReportHeader is the first line of a non-empty report.
	ReportHeader = "Expense Report:"
)

// FormatAmount renders an amount with the shortest decimal representation
// that round-trips, never using exponent notation.
//
// Examples:
//
//	FormatAmount(200)  -> "200"
//	FormatAmount(12.5) -> "12.5"
//	FormatAmount(0.30000000000000004) -> "0.30000000000000004"
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// FormatReport renders expenses one per line, in the given order.
func FormatReport(expenses []Expense) string {
	if len(expenses) == 0 {
		return EmptyReport
	}

	var b strings.Builder
	b.WriteString(ReportHeader)
	b.WriteByte('\n')
	for _, e := range expenses {
		b.WriteString(FormatLine(e))
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatLine renders a single report line: "{id}. {category} - ${amount}: {description}".
func FormatLine(e Expense) string {
	return strconv.FormatInt(e.ID, 10) + ". " + e.Category + " - $" + FormatAmount(e.Amount) + ": " + e.Description
}

// FormatAdded renders the confirmation returned after an expense is recorded.
func FormatAdded(category string, amount float64, description string) string {
	return "Expense added: " + description + " ($" + FormatAmount(amount) + ") in " + category
}
