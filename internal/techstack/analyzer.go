// Package techstack detects web technologies on lead websites by
// signature-matching their markup. Detection is best-effort: it runs
// over the served HTML only, without rendering JavaScript.
package techstack

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/prospectar/leadscan/internal/model"
	"github.com/prospectar/leadscan/internal/webfetch"
)

// Analyzer fetches a website and runs every detector over it. It is
// stateless across calls; concurrent analyses share nothing.
type Analyzer struct {
	fetcher *webfetch.Client
}

// NewAnalyzer creates an Analyzer. If fetcher is nil, a default
// webfetch client is created internally.
func NewAnalyzer(fetcher *webfetch.Client) *Analyzer {
	if fetcher == nil {
		fetcher = webfetch.NewClient()
	}
	return &Analyzer{fetcher: fetcher}
}

// Analyze fetches url and returns its feature vector. A transport
// failure is not an error: it yields a vector with HasWebsite=false
// and the failure message under DetectionDetails["error"].
func (a *Analyzer) Analyze(ctx context.Context, url string) *model.TechStack {
	stack := &model.TechStack{
		HasWebsite:       true,
		DetectionDetails: map[string]string{},
		AnalyzedAt:       time.Now().UTC(),
	}

	url = webfetch.NormalizeURL(url)
	stack.HasSSL = a.checkSSL(ctx, url)

	page, err := a.fetcher.Get(ctx, url)
	if err != nil {
		stack.HasWebsite = false
		stack.HasSSL = false
		stack.DetectionDetails["error"] = err.Error()
		zap.L().Debug("techstack: fetch failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return stack
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		// Unparseable markup: string-based detectors still run.
		stack.DetectionDetails["parse_error"] = err.Error()
		doc = nil
	}

	a.runDetectors(stack, page.HTML, doc)

	zap.L().Debug("techstack: analysis complete",
		zap.String("url", url),
		zap.Bool("ssl", stack.HasSSL),
		zap.Bool("chat", stack.HasChatWidget),
		zap.Bool("whatsapp", stack.HasWhatsAppButton),
	)

	return stack
}

// checkSSL determines HTTPS support. An https scheme short-circuits;
// an http URL gets a HEAD probe against its https variant. A bare
// successful connection counts: this conflates "listener on 443" with
// "valid certificate", which is accepted behavior here.
func (a *Analyzer) checkSSL(ctx context.Context, url string) bool {
	if strings.HasPrefix(url, "https://") {
		return true
	}
	httpsURL := strings.Replace(url, "http://", "https://", 1)
	return a.fetcher.Probe(ctx, httpsURL)
}

// runDetectors merges every detector's output into the vector.
func (a *Analyzer) runDetectors(stack *model.TechStack, html string, doc *goquery.Document) {
	chat := DetectChatWidget(html)
	stack.HasChatWidget = chat.Found
	stack.ChatProvider = chat.Provider

	stack.HasWhatsAppButton = DetectWhatsApp(html, doc)
	stack.HasContactForm = DetectContactForm(doc)

	social := DetectSocialMedia(doc)
	stack.HasFacebook = social.HasFacebook
	stack.FacebookURL = social.FacebookURL
	stack.HasInstagram = social.HasInstagram
	stack.InstagramURL = social.InstagramURL
	stack.HasLinkedIn = social.HasLinkedIn
	stack.LinkedInURL = social.LinkedInURL

	trackers := DetectAnalytics(html)
	stack.HasGoogleAnalytics = trackers.HasGoogleAnalytics
	stack.HasGoogleTagManager = trackers.HasGoogleTagManager
	stack.HasFacebookPixel = trackers.HasFacebookPixel

	crm := DetectCRMForms(html)
	stack.HasCRMForms = crm.Found
	stack.CRMProvider = crm.Provider

	stack.HasBlog = DetectBlog(html, doc)
}
