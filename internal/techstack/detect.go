package techstack

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Detectors are pure functions over the raw markup and/or parsed
// document. They never fail: absent input yields the not-found
// default. None depends on another's output, so they are safe to run
// in any order.

// ProviderMatch is the result of a provider-table lookup.
type ProviderMatch struct {
	Found    bool
	Provider string
}

// matchProviderTable scans lower-cased markup against an ordered
// signature table and returns the first matching provider.
func matchProviderTable(html string, table []signature) ProviderMatch {
	htmlLower := strings.ToLower(html)
	for _, sig := range table {
		for _, pattern := range sig.Patterns {
			if strings.Contains(htmlLower, strings.ToLower(pattern)) {
				return ProviderMatch{Found: true, Provider: sig.Provider}
			}
		}
	}
	return ProviderMatch{}
}

// DetectChatWidget reports whether a known chat widget is embedded
// and which provider it belongs to.
func DetectChatWidget(html string) ProviderMatch {
	return matchProviderTable(html, chatProviders)
}

// DetectCRMForms reports whether a known CRM form/tracking snippet is
// embedded and which provider it belongs to.
func DetectCRMForms(html string) ProviderMatch {
	return matchProviderTable(html, crmProviders)
}

var whatsappLinkRe = regexp.MustCompile(`(?i)wa\.me|api\.whatsapp\.com|whatsapp:`)

// DetectWhatsApp reports whether the page carries a WhatsApp
// link or button. Any single hit is sufficient.
func DetectWhatsApp(html string, doc *goquery.Document) bool {
	if whatsappLinkRe.MatchString(html) {
		return true
	}

	htmlLower := strings.ToLower(html)
	for _, hint := range whatsappClassHints {
		if strings.Contains(htmlLower, hint) {
			return true
		}
	}

	found := false
	if doc != nil {
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href := strings.ToLower(a.AttrOr("href", ""))
			if strings.Contains(href, "whatsapp") || strings.Contains(href, "wa.me") {
				found = true
				return false
			}
			return true
		})
	}
	return found
}

// DetectContactForm reports whether the page has a contact form. A
// form whose serialized contents mention a contact keyword counts;
// failing that, any form at all counts — a weak but deliberate
// fallback, since any form is some contact mechanism.
func DetectContactForm(doc *goquery.Document) bool {
	if doc == nil {
		return false
	}

	forms := doc.Find("form")
	matched := false
	forms.EachWithBreak(func(_ int, form *goquery.Selection) bool {
		serialized, err := goquery.OuterHtml(form)
		if err != nil {
			return true
		}
		serialized = strings.ToLower(serialized)
		for _, hint := range contactFormHints {
			if strings.Contains(serialized, hint) {
				matched = true
				return false
			}
		}
		return true
	})

	return matched || forms.Length() > 0
}

// SocialLinks holds detected social network presence.
type SocialLinks struct {
	HasFacebook  bool
	FacebookURL  string
	HasInstagram bool
	InstagramURL string
	HasLinkedIn  bool
	LinkedInURL  string
}

// DetectSocialMedia scans anchors for social network links and the
// fb:page_id meta tag. Facebook share widgets are excluded, and the
// Facebook URL is only captured when it points past the bare domain,
// so a generic share link is not mistaken for the business's page.
func DetectSocialMedia(doc *goquery.Document) SocialLinks {
	var links SocialLinks
	if doc == nil {
		return links
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")

		if strings.Contains(href, "facebook.com") && !strings.Contains(href, "/share") {
			links.HasFacebook = true
			if links.FacebookURL == "" &&
				(strings.Contains(href, "/pages/") || !strings.HasSuffix(href, "facebook.com")) {
				links.FacebookURL = href
			}
		}
		if strings.Contains(href, "instagram.com") {
			links.HasInstagram = true
			if links.InstagramURL == "" {
				links.InstagramURL = href
			}
		}
		if strings.Contains(href, "linkedin.com") {
			links.HasLinkedIn = true
			if links.LinkedInURL == "" {
				links.LinkedInURL = href
			}
		}
	})

	if doc.Find(`meta[property="fb:page_id"]`).Length() > 0 {
		links.HasFacebook = true
	}

	return links
}

// Trackers holds detected analytics/tracking scripts.
type Trackers struct {
	HasGoogleAnalytics  bool
	HasGoogleTagManager bool
	HasFacebookPixel    bool
}

// DetectAnalytics checks the literal markup for Google Analytics,
// Google Tag Manager and Facebook Pixel signatures. Each check
// short-circuits on the first match.
func DetectAnalytics(html string) Trackers {
	var t Trackers
	for _, pattern := range gaPatterns {
		if strings.Contains(html, pattern) {
			t.HasGoogleAnalytics = true
			break
		}
	}
	for _, pattern := range gtmPatterns {
		if strings.Contains(html, pattern) {
			t.HasGoogleTagManager = true
			break
		}
	}
	for _, pattern := range fbPixelPatterns {
		if strings.Contains(html, pattern) {
			t.HasFacebookPixel = true
			break
		}
	}
	return t
}

// DetectBlog reports whether the site has a blog section: either an
// anchor to a blog-like path, or WordPress markers in the markup
// (strong indirect evidence of a content-capable platform).
func DetectBlog(html string, doc *goquery.Document) bool {
	found := false
	if doc != nil {
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href := strings.ToLower(a.AttrOr("href", ""))
			for _, hint := range blogPathHints {
				if strings.Contains(href, hint) {
					found = true
					return false
				}
			}
			return true
		})
	}
	if found {
		return true
	}

	htmlLower := strings.ToLower(html)
	return strings.Contains(htmlLower, "wp-content") || strings.Contains(htmlLower, "wordpress")
}
