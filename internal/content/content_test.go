package content

import (
	"net/url"
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name            string
		code            string
		description     string
		personalization string
		wantPrefix      string
	}{
		{
			name:        "basic record",
			code:        "A1",
			description: "Box",
			wantPrefix:  "PROCHAP\nCódigo: A1\nDescripción: Box\nPersonalización: \n",
		},
		{
			name:            "with personalization",
			code:            "LL-20",
			description:     "Llavero metálico",
			personalization: "Grabado: María",
			wantPrefix:      "PROCHAP\nCódigo: LL-20\nDescripción: Llavero metálico\nPersonalización: Grabado: María\n",
		},
		{
			name:        "characters needing escaping",
			code:        "A&B=C",
			description: "50% descuento + envío",
			wantPrefix:  "PROCHAP\nCódigo: A&B=C\nDescripción: 50% descuento + envío\nPersonalización: \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.code, tt.description, tt.personalization)

			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Fatalf("Build() = %q, want prefix %q", got, tt.wantPrefix)
			}

			// Deterministic.
			if again := Build(tt.code, tt.description, tt.personalization); again != got {
				t.Error("Build is not deterministic for identical inputs")
			}

			// The last line carries the share link; its query value must
			// decode back to the four lines above it.
			lines := strings.Split(got, "\n")
			last := lines[len(lines)-1]
			const marker = "Compartir por WhatsApp: https://wa.me/?text="
			if !strings.HasPrefix(last, marker) {
				t.Fatalf("last line %q does not start with %q", last, marker)
			}

			decoded, err := url.QueryUnescape(strings.TrimPrefix(last, marker))
			if err != nil {
				t.Fatalf("share link query does not decode: %v", err)
			}
			wantPayload := strings.Join(lines[:len(lines)-1], "\n")
			if decoded != wantPayload {
				t.Errorf("decoded share text = %q, want %q", decoded, wantPayload)
			}
		})
	}
}
