package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmails(t *testing.T) {
	html := `<p>Escribinos a ventas@acme.com.ar o a Maria.Lopez@acme.com.ar</p>`
	emails := ExtractEmails(html)
	assert.Equal(t, []string{"ventas@acme.com.ar", "maria.lopez@acme.com.ar"}, emails)
}

func TestExtractEmails_AssetPathsExcluded(t *testing.T) {
	// Filenames like image@2x.png look like emails but aren't.
	html := `<img src="/static/image@2x.png"><script src="/js/app@1.2.js"></script>
<a href="mailto:real@acme.com">mail</a>`
	emails := ExtractEmails(html)
	assert.Equal(t, []string{"real@acme.com"}, emails)
}

func TestExtractEmails_DedupCaseInsensitive(t *testing.T) {
	html := `INFO@acme.com info@acme.com Info@Acme.com`
	emails := ExtractEmails(html)
	assert.Len(t, emails, 1)
	assert.Equal(t, "info@acme.com", emails[0])
}

func TestExtractEmails_Empty(t *testing.T) {
	assert.Empty(t, ExtractEmails(`<p>sin mail</p>`))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("user@example.com"))
	assert.True(t, ValidEmail("user.name+tag@sub.example.com.ar"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("user@localhost"))
}

func TestIsGenericEmail(t *testing.T) {
	assert.True(t, IsGenericEmail("info@acme.com"))
	assert.True(t, IsGenericEmail("CONTACTO@acme.com"))
	assert.True(t, IsGenericEmail("ventas@acme.com.ar"))
	assert.False(t, IsGenericEmail("maria.lopez@acme.com"))
}
