package validation

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// BangladeshPrefix is the mandated country-code prefix for guardian contacts
const BangladeshPrefix = "+880"

// IsBangladeshMobile reports whether value is a valid Bangladesh mobile
// number written with the +880 prefix.
func IsBangladeshMobile(value string) bool {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, BangladeshPrefix) {
		return false
	}

	num, err := phonenumbers.Parse(value, "BD")
	if err != nil {
		return false
	}
	if !phonenumbers.IsValidNumberForRegion(num, "BD") {
		return false
	}

	switch phonenumbers.GetNumberType(num) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return true
	default:
		return false
	}
}

// NormalizeBangladeshMobile formats a valid mobile number as E.164
func NormalizeBangladeshMobile(value string) (string, bool) {
	if !IsBangladeshMobile(value) {
		return "", false
	}
	num, err := phonenumbers.Parse(strings.TrimSpace(value), "BD")
	if err != nil {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}
