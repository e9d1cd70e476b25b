package techstack

// signature pairs a provider name with the markup substrings that
// identify it. Tables are ordered slices, not maps: when signatures
// overlap (e.g. hubspot appears in both chat and CRM tables) the
// first matching entry wins, so table order is a semantic tie-break.
type signature struct {
	Provider string
	Patterns []string
}

// chatProviders maps chat widget vendors to their script/domain
// signatures. Matched case-insensitively against the full markup.
var chatProviders = []signature{
	{"tidio", []string{"tidio", "tidiochat"}},
	{"drift", []string{"drift.com", "js.driftt.com"}},
	{"intercom", []string{"intercom", "intercomcdn"}},
	{"zendesk", []string{"zendesk", "zdassets"}},
	{"crisp", []string{"crisp.chat", "client.crisp.chat"}},
	{"livechat", []string{"livechatinc", "livechat"}},
	{"hubspot", []string{"js.hs-scripts", "hubspot"}},
	{"freshchat", []string{"freshchat", "wchat.freshchat"}},
	{"tawk", []string{"tawk.to", "embed.tawk.to"}},
	{"olark", []string{"olark"}},
	{"purechat", []string{"purechat"}},
	{"smartsupp", []string{"smartsupp"}},
	{"jivochat", []string{"jivo", "jivosite"}},
	{"chatra", []string{"chatra"}},
	{"cliengo", []string{"cliengo"}}, // popular in Argentina
}

// crmProviders maps CRM/form vendors to their signatures. Tokko,
// Properati and Navent are Argentine real-estate platforms.
var crmProviders = []signature{
	{"hubspot", []string{"hs-form", "hsforms", "hubspot"}},
	{"salesforce", []string{"salesforce", "pardot"}},
	{"zoho", []string{"zoho.com/crm", "zohocrm"}},
	{"pipedrive", []string{"pipedrive"}},
	{"activecampaign", []string{"activecampaign"}},
	{"mailchimp", []string{"mailchimp", "mc-embedded"}},
	{"tokko", []string{"tokkobroker", "tokko"}},
	{"properati", []string{"properati"}},
	{"navent", []string{"navent"}},
}

// whatsappClassHints are class/icon-name fragments that mark a
// WhatsApp button even without a wa.me link.
var whatsappClassHints = []string{
	"whatsapp",
	"wa-button",
	"whatsapp-button",
	"btn-whatsapp",
	"fab fa-whatsapp",
	"icon-whatsapp",
}

// contactFormHints flag a form as contact-related (English+Spanish).
var contactFormHints = []string{
	"contact",
	"contacto",
	"consulta",
	"mensaje",
	"email",
	"telefono",
	"nombre",
	"submit",
	"enviar",
}

// Literal analytics signatures, matched case-sensitively: the UA-/G-
// and GTM- prefixes are uppercase in real tracking IDs, and
// lowercasing would turn "ga('create'" hits into noise.
var (
	gaPatterns = []string{
		"google-analytics.com/analytics.js",
		"googletagmanager.com/gtag/js",
		"gtag('config'",
		"ga('create'",
		"_gaq.push",
		"UA-",
		"G-", // GA4
	}
	gtmPatterns = []string{
		"googletagmanager.com/gtm.js",
		"GTM-",
	}
	fbPixelPatterns = []string{
		"connect.facebook.net",
		"fbq('init'",
		"facebook.com/tr",
		"_fbq",
	}
)

// blogPathHints are href fragments that point at a blog section.
var blogPathHints = []string{
	"/blog",
	"/noticias",
	"/articulos",
	"/news",
	"/novedades",
}
