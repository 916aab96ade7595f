package numerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey(t *testing.T) {
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"yearly reset", Config{Prefix: "PO", ResetPeriod: "year"}, "PO_2026"},
		{"monthly reset", Config{Prefix: "PO", ResetPeriod: "month"}, "PO_2026_03"},
		{"no reset", Config{Prefix: "PO", ResetPeriod: "never"}, "PO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildKey(tt.cfg, period))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  Config
		num  int64
		want string
	}{
		{"with year", Config{Prefix: "PO", IncludeYear: true, PadWidth: 5}, 7, "PO-2026-00007"},
		{"without year", Config{Prefix: "PO", PadWidth: 5}, 7, "PO-00007"},
		{"default pad width", Config{Prefix: "PO", IncludeYear: true}, 123, "PO-2026-00123"},
		{"wide number", Config{Prefix: "PO", IncludeYear: true, PadWidth: 3}, 123456, "PO-2026-123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatNumber(tt.cfg, period, tt.num))
		})
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(7), ParseNumber("PO-2026-00007"))
	assert.Equal(t, int64(42), ParseNumber("PO-00042"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}

func TestRoundTrip(t *testing.T) {
	cfg := DefaultConfig("PO")
	period := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, n := range []int64{1, 50, 99999, 100001} {
		formatted := formatNumber(cfg, period, n)
		assert.Equal(t, n, ParseNumber(formatted), "number %d", n)
	}
}
