package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Float(t *testing.T) {
	rec := Record{"a": 4.5, "b": "6.1", "c": "UNK", "d": 7}

	tests := []struct {
		key    string
		want   float64
		wantOK bool
	}{
		{"a", 4.5, true},
		{"b", 6.1, true},
		{"c", 0, false},
		{"d", 7, true},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := rec.Float(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRecord_String(t *testing.T) {
	rec := Record{"s": "  Alaska ", "f": 5.0, "n": nil}
	assert.Equal(t, "Alaska", rec.String("s"))
	assert.Equal(t, "5", rec.String("f"))
	assert.Empty(t, rec.String("n"))
	assert.Empty(t, rec.String("missing"))
}

func TestRecord_Strings(t *testing.T) {
	rec := Record{"list": []any{"a", 1, "b"}, "one": "x"}
	assert.Equal(t, []string{"a", "b"}, rec.Strings("list"))
	assert.Equal(t, []string{"x"}, rec.Strings("one"))
	assert.Nil(t, rec.Strings("missing"))
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input any
		ok    bool
	}{
		{"rfc3339", "2024-03-15T12:30:00Z", true},
		{"rfc3339 offset", "2024-03-15T14:30:00+02:00", true},
		{"naive iso", "2024-03-15T12:30:00", true},
		{"naive space millis", "2024-03-15 12:30:00.000", true},
		{"rss", "Fri, 15 Mar 2024 12:30:00 +0000", true},
		{"unix millis float", float64(want.UnixMilli()), true},
		{"unix millis string", "1710505800000", true},
		{"time value", want, true},
		{"empty", "", false},
		{"garbage", "yesterday-ish", false},
		{"nil", nil, false},
		{"zero millis", float64(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTime(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, want.Equal(got), "got %s", got)
			} else {
				assert.True(t, got.IsZero())
			}
		})
	}
}
