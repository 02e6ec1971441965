package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Afternoon Program - RTSDA", "Afternoon Program - RTSDA"},
		{"trims", "  Primary  ", "Primary"},
		{"slashes", "AM/PM Service", "AM-PM Service"},
		{"backslash", `Choir\Band`, "Choir-Band"},
		{"control", "Tab\tTitle\n", "TabTitle"},
		{"pipe kept", "Title | December 27 2024", "Title | December 27 2024"},
		{"dot", "..", ""},
		{"empty", "   ", ""},
		// "e" followed by a combining acute accent composes to U+00E9.
		{"nfc", "Cafe\u0301", "Caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.in); got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
