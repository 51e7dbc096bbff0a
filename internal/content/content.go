// Package content builds the canonical text payload encoded into each
// QR symbol.
package content

import (
	"fmt"
	"net/url"
)

// shareBase is the WhatsApp share endpoint; the payload goes in the
// text query parameter.
const shareBase = "https://wa.me/?text="

// Build returns the payload for a record: a fixed brand label, the code,
// description and personalization on one line each, followed by a share
// link embedding the same four lines percent-encoded. Deterministic for
// a given input triple.
func Build(code, description, personalization string) string {
	payload := fmt.Sprintf(
		"PROCHAP\nCódigo: %s\nDescripción: %s\nPersonalización: %s",
		code, description, personalization,
	)
	return payload + "\nCompartir por WhatsApp: " + shareBase + url.QueryEscape(payload)
}
