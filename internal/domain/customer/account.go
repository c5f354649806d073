package customer

import "strings"

// DefaultAccountNumberWidth is the canonical account number length.
const DefaultAccountNumberWidth = 10

// NormalizeAccountNumber trims the value and restores leading zeros lost to spreadsheet
// numeric coercion. Only purely numeric values shorter than width are padded.
func NormalizeAccountNumber(raw string, width int) string {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) >= width || !isDigits(s) {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
