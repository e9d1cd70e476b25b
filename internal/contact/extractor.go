// Package contact mines email, phone and WhatsApp identifiers from
// lead websites.
package contact

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/prospectar/leadscan/internal/model"
	"github.com/prospectar/leadscan/internal/webfetch"
)

var (
	waMeRe      = regexp.MustCompile(`wa\.me/(\d+)`)
	waAPIRe     = regexp.MustCompile(`api\.whatsapp\.com/send\?phone=(\d+)`)
	contactHref = regexp.MustCompile(`(?i)contact|contacto`)
)

// ExtractWhatsApp returns the first WhatsApp number linked in the
// markup, formatted as +<digits>, or empty.
func ExtractWhatsApp(html string) string {
	if m := waMeRe.FindStringSubmatch(html); m != nil {
		return "+" + m[1]
	}
	if m := waAPIRe.FindStringSubmatch(html); m != nil {
		return "+" + m[1]
	}
	return ""
}

// Extractor mines contact info from a website: the homepage plus at
// most the first maxContactPages contact-like pages.
type Extractor struct {
	fetcher         *webfetch.Client
	maxContactPages int
}

// NewExtractor creates an Extractor. If fetcher is nil, a default
// webfetch client is created internally.
func NewExtractor(fetcher *webfetch.Client, maxContactPages int) *Extractor {
	if fetcher == nil {
		fetcher = webfetch.NewClient()
	}
	if maxContactPages <= 0 {
		maxContactPages = 2
	}
	return &Extractor{fetcher: fetcher, maxContactPages: maxContactPages}
}

// Extract fetches url and mines its contact identifiers. Failures on
// secondary contact pages are swallowed: the extractor degrades to
// whatever the homepage yielded. A homepage fetch failure returns an
// empty record, not an error.
func (e *Extractor) Extract(ctx context.Context, rawURL string) *model.ContactInfo {
	info := &model.ContactInfo{
		Emails: []string{},
		Phones: []string{},
	}

	baseURL := webfetch.NormalizeURL(rawURL)
	page, err := e.fetcher.Get(ctx, baseURL)
	if err != nil {
		zap.L().Debug("contact: homepage fetch failed",
			zap.String("url", baseURL),
			zap.Error(err),
		)
		return info
	}

	e.merge(info, page.HTML)

	for _, contactURL := range e.contactPageURLs(page.HTML, baseURL) {
		sub, err := e.fetcher.Get(ctx, contactURL)
		if err != nil {
			// Secondary pages are best-effort.
			zap.L().Debug("contact: contact page fetch failed",
				zap.String("url", contactURL),
				zap.Error(err),
			)
			continue
		}
		e.merge(info, sub.HTML)
	}

	e.pickPrimaries(info)
	return info
}

// merge folds newly found identifiers into the record, preserving
// order and deduplicating by value. WhatsApp keeps the first hit.
func (e *Extractor) merge(info *model.ContactInfo, html string) {
	for _, email := range ExtractEmails(html) {
		if !contains(info.Emails, email) {
			info.Emails = append(info.Emails, email)
		}
	}
	for _, phone := range ExtractPhones(html) {
		if !contains(info.Phones, phone) {
			info.Phones = append(info.Phones, phone)
		}
	}
	if info.WhatsApp == "" {
		info.WhatsApp = ExtractWhatsApp(html)
	}
}

// contactPageURLs finds the first maxContactPages anchors whose href
// looks contact-related, resolved against the base URL.
func (e *Extractor) contactPageURLs(html, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var urls []string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		if !contactHref.MatchString(href) {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		resolved := base.ResolveReference(ref).String()
		if resolved != baseURL && !contains(urls, resolved) {
			urls = append(urls, resolved)
		}
		return len(urls) < e.maxContactPages
	})
	return urls
}

// pickPrimaries fills the primary fields: the first non-generic email
// (falling back to the first at all), and the first phone found.
func (e *Extractor) pickPrimaries(info *model.ContactInfo) {
	for _, email := range info.Emails {
		if !IsGenericEmail(email) {
			info.PrimaryEmail = email
			break
		}
	}
	if info.PrimaryEmail == "" && len(info.Emails) > 0 {
		info.PrimaryEmail = info.Emails[0]
	}
	if len(info.Phones) > 0 {
		info.PrimaryPhone = info.Phones[0]
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
