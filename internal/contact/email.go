package contact

import (
	"net/mail"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// assetExtensions are filename suffixes that produce email-shaped
// false positives in asset paths (e.g. image@2x.png).
var assetExtensions = []string{".png", ".jpg", ".gif", ".js", ".css"}

// genericPrefixes mark role-based mailboxes that are deprioritized
// when picking a primary contact.
var genericPrefixes = []string{
	"info@",
	"contacto@",
	"ventas@",
	"consultas@",
	"admin@",
	"administracion@",
	"recepcion@",
	"hola@",
	"contact@",
	"sales@",
	"support@",
}

// ValidEmail reports whether an address is syntactically deliverable.
// No network check is performed.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	// The domain must have a dot: "user@localhost" is parseable but
	// not a deliverable public address.
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}

// IsGenericEmail reports whether the address is a role-based mailbox.
func IsGenericEmail(email string) bool {
	emailLower := strings.ToLower(email)
	for _, prefix := range genericPrefixes {
		if strings.Contains(emailLower, prefix) {
			return true
		}
	}
	return false
}

// ExtractEmails pulls email addresses from markup, dropping
// asset-path false positives and invalid addresses, deduplicating
// case-insensitively while preserving document order.
func ExtractEmails(html string) []string {
	var emails []string
	seen := map[string]bool{}

	for _, match := range emailRe.FindAllString(html, -1) {
		email := strings.ToLower(strings.TrimSpace(match))

		skip := false
		for _, ext := range assetExtensions {
			if strings.HasSuffix(email, ext) {
				skip = true
				break
			}
		}
		if skip || seen[email] || !ValidEmail(email) {
			continue
		}

		emails = append(emails, email)
		seen[email] = true
	}

	return emails
}
