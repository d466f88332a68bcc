package observability

import (
	"strings"

	"github.com/qcbd/app-beneficiary/internal/logging"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

// MaskNID masks a national ID or birth registration number for logging,
// keeping the last four digits
func MaskNID(nid string) string {
	if len(nid) <= 4 {
		return strings.Repeat("*", len(nid))
	}
	return strings.Repeat("*", len(nid)-4) + nid[len(nid)-4:]
}

// MaskPhone masks a phone number for logging, keeping the country prefix
// and the last two digits
func MaskPhone(phone string) string {
	if len(phone) < 6 {
		return "****"
	}
	prefix := ""
	rest := phone
	if strings.HasPrefix(phone, "+880") {
		prefix, rest = "+880", phone[4:]
	}
	if len(rest) <= 2 {
		return prefix + "**"
	}
	return prefix + strings.Repeat("*", len(rest)-2) + rest[len(rest)-2:]
}
