package logging

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestFormatValueQuotesArchiveNames(t *testing.T) {
	tests := []struct {
		name string
		in   slog.Value
		want string
	}{
		{"plain", slog.StringValue("done"), "done"},
		{"spaces", slog.StringValue("Primary | December 27 2024.mp4"), `"Primary | December 27 2024.mp4"`},
		{"empty", slog.StringValue(""), `""`},
		{"error", slog.AnyValue(errors.New("boom")), "boom"},
		{"int", slog.IntValue(42), "42"},
		{"duration", slog.DurationValue(90 * time.Second), "1m30s"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Fatalf("%s: formatValue = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestAttrStringLeavesPrefixFieldsUnquoted(t *testing.T) {
	if got := attrString(slog.StringValue("run id")); got != "run id" {
		t.Fatalf("attrString = %q, want unquoted", got)
	}
	if got := formatTimestamp(time.Time{}); got != "" {
		t.Fatalf("zero timestamp = %q, want empty", got)
	}
}
