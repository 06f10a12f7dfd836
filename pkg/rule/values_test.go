package rule

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urmzd/hubpanel/pkg/device"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", 42.0},
		{" 42 ", 42.0},
		{"-3.5", -3.5},
		{"1e3", 1000.0},
		{"0x1F", 31.0},
		{"0b101", 5.0},
		{"ON", "ON"},
		{"on", "on"},
		{"", ""},
		{"   ", "   "},
		{"1_000", "1_000"},
		{"Infinity", "Infinity"},
		{"NaN", "NaN"},
		{"1e400", "1e400"},
		{"12abc", "12abc"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.in))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "42", FormatValue(42.0))
	assert.Equal(t, "0.5", FormatValue(0.5))
	assert.Equal(t, "ON", FormatValue("ON"))
	assert.Equal(t, "true", FormatValue(true))
}

func TestKeyDomain(t *testing.T) {
	d := device.Device{AvailableKeys: []string{"temperature", "state", "humidity", "temperature", ""}}
	assert.Equal(t, []string{"state", "humidity", "temperature"}, KeyDomain(d))

	assert.Equal(t, []string{"state"}, KeyDomain(device.Device{}))
}

func TestValidTime(t *testing.T) {
	for _, s := range []string{"00:00", "07:30", "23:59"} {
		assert.True(t, ValidTime(s), s)
	}
	for _, s := range []string{"24:00", "7:30", "12:60", "", "noon"} {
		assert.False(t, ValidTime(s), s)
	}
}

func TestSlugAndNewID(t *testing.T) {
	assert.Equal(t, "living-room-lights", Slug("  Living Room / Lights! "))
	assert.Equal(t, "item", Slug("!!!"))
	assert.LessOrEqual(t, len(Slug(strings.Repeat("ab ", 40))), 40)

	id := NewID("Morning lights")
	assert.True(t, strings.HasPrefix(id, "morning-lights-"))
	assert.Len(t, id, len("morning-lights-")+8)
	assert.NotEqual(t, id, NewID("Morning lights"))
}
