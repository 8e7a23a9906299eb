// Package whatsapp builds the deep links that hand an order or a contact
// request over to the WhatsApp client.
package whatsapp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// ErrMissingField is returned when a contact form field is blank.
var ErrMissingField = errors.New("required field is empty")

// Link returns the wa.me URL that opens a chat with phone prefilled with
// text. Everything but digits is dropped from phone.
func Link(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits + "?text=" + encodeComponent(text)
}

// componentFixups turns QueryEscape output into encodeURIComponent output:
// spaces as %20 and the marks !'()* left literal. A literal '+' in the input
// is already %2B, so every '+' here is a space.
var componentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeComponent(s string) string {
	return componentFixups.Replace(url.QueryEscape(s))
}

// ContactMessage is the text sent from the contact form.
func ContactMessage(name, email, message string) (string, error) {
	fields := []struct{ label, value string }{
		{"name", name},
		{"email", email},
		{"message", message},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingField, f.label)
		}
	}
	return fmt.Sprintf("Hola! Soy %s (%s). %s",
		strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(message)), nil
}
