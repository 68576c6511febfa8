package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatBRL renders a monetary value the way the receipt templates expect:
// "R$ " plus two decimals with a comma separator and no thousands grouping.
func FormatBRL(value float64) string {
	return "R$ " + strings.Replace(fmt.Sprintf("%.2f", value), ".", ",", 1)
}

// FormatDate renders a date as dd/mm/yyyy
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatQuantity renders a quantity without trailing zeros (2 not 2.00,
// 1.5 stays 1.5)
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// orDash substitutes "-" for empty field values
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
