package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/labportal/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Alice", "Alice"},
		{"trims", "  Bob  ", "Bob"},
		{"apostrophe survives", "Ann O'Brien", "Ann O'Brien"},
		{"ampersand survives", "Tom & Jerry", "Tom & Jerry"},
		{"strips tags", "<b>Carol</b>", "Carol"},
		{"drops script", "Dan<script>alert(1)</script>", "Dan"},
		{"only markup", "<img src=x onerror=alert(1)>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
