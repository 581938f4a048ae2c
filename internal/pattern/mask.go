package pattern

import (
	"regexp"
	"strings"
)

// MaxMaskedRunes bounds the length of a masked value before the ellipsis.
const MaxMaskedRunes = 50

var (
	emailMask      = regexp.MustCompile(`([A-Za-z0-9._%+-]+)@([A-Za-z0-9.-]+\.[A-Za-z]{2,})`)
	cardMask       = regexp.MustCompile(`(\d{4})-(\d{4})-(\d{4})-(\d{4})`)
	nationalIDMask = regexp.MustCompile(`(\d{6})-([1-4])(\d{6})`)
	phoneMask      = regexp.MustCompile(`(\d{2,3})-(\d{3,4})-(\d{4})`)
)

// Mask hides the identifying part of anything that looks like personal
// data and truncates the result. It is applied to every sample value
// shown in a report, matched or not.
//
// Card numbers are masked before phone numbers: a card number contains
// a phone-shaped substring and would otherwise keep its middle groups.
func Mask(value string) string {
	masked := emailMask.ReplaceAllStringFunc(value, maskEmail)
	masked = cardMask.ReplaceAllString(masked, "$1-****-****-$4")
	masked = nationalIDMask.ReplaceAllString(masked, "$1-$2******")
	masked = phoneMask.ReplaceAllString(masked, "$1-***-$3")
	return truncate(masked, MaxMaskedRunes)
}

func maskEmail(addr string) string {
	at := strings.LastIndexByte(addr, '@')
	if at < 0 {
		return addr
	}
	local, domain := addr[:at], addr[at+1:]
	if len(local) > 2 {
		local = local[:2]
	}
	return local + "***@" + domain
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
