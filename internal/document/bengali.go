package document

import (
	"strconv"
	"strings"
	"time"
)

var bengaliDigits = strings.NewReplacer(
	"0", "০", "1", "১", "2", "২", "3", "৩", "4", "৪",
	"5", "৫", "6", "৬", "7", "৭", "8", "৮", "9", "৯",
)

// BangladeshTime is Bangladesh Standard Time. Bangladesh has not observed
// daylight saving since 2009.
var BangladeshTime = time.FixedZone("BST", 6*60*60)

// toBengaliDigits replaces ASCII digits in s with Bengali digits
func toBengaliDigits(s string) string {
	return bengaliDigits.Replace(s)
}

// formatBengaliInt renders n with Bengali digits
func formatBengaliInt(n int) string {
	return toBengaliDigits(strconv.Itoa(n))
}

// formatBengaliIntPtr renders *n with Bengali digits, or "" when absent
func formatBengaliIntPtr(n *int) string {
	if n == nil {
		return ""
	}
	return formatBengaliInt(*n)
}

// formatBengaliDate renders t as D/M/YYYY in Bengali digits, or "" when absent
func formatBengaliDate(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	local := t.In(loc)
	return toBengaliDigits(strconv.Itoa(local.Day()) + "/" + strconv.Itoa(int(local.Month())) + "/" + strconv.Itoa(local.Year()))
}
