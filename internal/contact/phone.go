package contact

import (
	"fmt"
	"regexp"
)

// Argentine phone shapes: international mobile, local with area code,
// and the legacy 15 mobile prefix.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+54\s*9?\s*\d{2,4}\s*\d{3,4}\s*\d{4}`), // +54 9 11 1234 5678
	regexp.MustCompile(`\(?\d{2,4}\)?\s*\d{3,4}[-\s]?\d{4}`),    // (11) 1234-5678
	regexp.MustCompile(`(?:15)?\s*\d{4}[-\s]?\d{4}`),            // 15 1234-5678
}

var (
	telHrefRe  = regexp.MustCompile(`(?i)href=["']tel:([^"']+)["']`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

// NormalizePhone coerces a raw Argentine phone number into the
// canonical +54 9 AA BBBB CCCC shape. Rewrite rules apply in priority
// order; when the digit string still ends up under 12 digits the
// original input is returned untouched rather than guessed at.
func NormalizePhone(phone string) string {
	digits := nonDigitRe.ReplaceAllString(phone, "")

	switch {
	case len(digits) >= 3 && digits[:3] == "549":
		// Already has country + mobile code.
	case len(digits) >= 2 && digits[:2] == "54":
		// Country code present, insert the mobile 9 unless complete.
		if len(digits) != 13 {
			digits = "549" + digits[2:]
		}
	case len(digits) >= 1 && digits[0] == '9':
		digits = "54" + digits
	case len(digits) >= 2 && digits[:2] == "15":
		// Legacy mobile prefix; assume Buenos Aires area code.
		digits = "5491" + digits[2:]
	case len(digits) == 10:
		digits = "549" + digits
	case len(digits) == 8:
		// Just the local number; assume Buenos Aires (11).
		digits = "54911" + digits
	}

	if len(digits) >= 12 {
		return fmt.Sprintf("+%s %s %s %s %s",
			digits[0:2], digits[2:3], digits[3:5], digits[5:9], digits[9:])
	}

	return phone
}

// ValidatePhone checks digit-count bounds and returns the normalized
// form. Numbers under 8 or over 15 digits are rejected.
func ValidatePhone(phone string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	if len(digits) < 8 || len(digits) > 15 {
		return "", false
	}
	return NormalizePhone(phone), true
}

// ExtractPhones pulls phone candidates from markup: the Argentine
// pattern battery plus tel: hrefs. Results are normalized and
// deduplicated by normalized form, preserving document order.
func ExtractPhones(html string) []string {
	var raw []string
	for _, re := range phonePatterns {
		raw = append(raw, re.FindAllString(html, -1)...)
	}
	for _, m := range telHrefRe.FindAllStringSubmatch(html, -1) {
		raw = append(raw, m[1])
	}

	var phones []string
	seen := map[string]bool{}
	for _, candidate := range raw {
		normalized, ok := ValidatePhone(candidate)
		if !ok || seen[normalized] {
			continue
		}
		phones = append(phones, normalized)
		seen[normalized] = true
	}
	return phones
}
