package notify

import (
	"net/url"
	"regexp"
	"strings"
)

const DefaultCountryCode = "55"

var nonDigits = regexp.MustCompile(`\D`)

// SanitizePhone drops every character that is not a digit.
func SanitizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// NormalizePhone turns a local number into the digits wa.me expects. Only
// 10 and 11 digit numbers (area code + number) get the country code; any
// other length is passed through as digits.
func NormalizePhone(phone, countryCode string) string {
	digits := SanitizePhone(phone)
	if len(digits) == 10 || len(digits) == 11 {
		return countryCode + digits
	}
	return digits
}

// EncodeText escapes text the way encodeURIComponent does for the parts that
// matter to wa.me: spaces become %20, not '+'.
func EncodeText(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// WhatsAppURL builds https://wa.me/<digits>?text=<encoded text>.
func WhatsAppURL(phoneDigits, text string) string {
	return "https://wa.me/" + phoneDigits + "?text=" + EncodeText(text)
}
