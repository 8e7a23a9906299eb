package whatsapp

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink(t *testing.T) {
	testCases := []struct {
		name     string
		phone    string
		text     string
		expected string
	}{
		{"Plain", "541162634332", "hola", "https://wa.me/541162634332?text=hola"},
		{"Formatted Phone", "+57 300 123-4567", "a b", "https://wa.me/573001234567?text=a%20b"},
		{"Reserved Characters", "1", "50% & más?", "https://wa.me/1?text=50%25%20%26%20m%C3%A1s%3F"},
		{"Newlines", "1", "a\nb", "https://wa.me/1?text=a%0Ab"},
		{"Unreserved Marks", "1", "Hola! (hi) *x* 'y' ~z", "https://wa.me/1?text=Hola!%20(hi)%20*x*%20'y'%20~z"},
		{"Literal Plus", "1", "1+1", "https://wa.me/1?text=1%2B1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Link(tc.phone, tc.text))
		})
	}
}

func TestLinkRoundTrip(t *testing.T) {
	text := "🛍️ *PEDIDO*\n1. *Sauvage* - Dior\n💰 *TOTAL: $250.000*"
	u, err := url.Parse(Link("541162634332", text))
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, text, u.Query().Get("text"))
}

func TestContactMessage(t *testing.T) {
	msg, err := ContactMessage("Ana", "ana@example.com", "¿Tienen Sauvage?")
	require.NoError(t, err)
	assert.Equal(t, "Hola! Soy Ana (ana@example.com). ¿Tienen Sauvage?", msg)

	_, err = ContactMessage("Ana", " ", "hola")
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = ContactMessage("", "a@b.c", "hola")
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = ContactMessage("Ana", "a@b.c", "")
	assert.ErrorIs(t, err, ErrMissingField)
}
