package obligation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  a \n\t b  ", "a b"},
		{"", ""},
		{"already clean", "already clean"},
		{"\n\n", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestStripLeadingMarker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(a) obtain consent", "obtain consent"},
		{"(12)notify", "notify"},
		{"1. To notify the Commission", "notify the Commission"},
		{"iv. keep records", "keep records"},
		{"to collect data", "collect data"},
		{"TO collect data", "collect data"},
		{"comply.", "comply."},
		{"tomorrow is fine", "tomorrow is fine"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripLeadingMarker(tt.in), "StripLeadingMarker(%q)", tt.in)
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Obtain", Capitalize("obtain"))
	assert.Equal(t, "Obtain", Capitalize("Obtain"))
	assert.Equal(t, "Élan", Capitalize("élan"))
	assert.Equal(t, "", Capitalize(""))
}
