package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Bakery", "bakery"},
		{"spaces and punctuation", "  Shoes & Bags!! ", "shoes-bags"},
		{"accents", "Crème Brûlée", "creme-brulee"},
		{"underscore kept", "fresh_fish", "fresh_fish"},
		{"digits", "24/7 Repairs", "24-7-repairs"},
		{"nothing usable", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMakeTruncates(t *testing.T) {
	got := Make(strings.Repeat("ab ", 150))
	assert.LessOrEqual(t, len(got), MaxLength)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"plain", "bakery", "bakery", nil},
		{"trimmed and lowered", "  Bakery \t", "bakery", nil},
		{"dashes", "home-decor", "home-decor", nil},
		{"empty", "   ", "", ErrEmpty},
		{"space inside", "home decor", "", ErrAlphabet},
		{"quote injection", `bakery"><script>`, "", ErrAlphabet},
		{"sql meta", "bakery';--", "", ErrAlphabet},
		{"unicode", "café", "", ErrAlphabet},
		{"too long", strings.Repeat("a", MaxLength+1), "", ErrTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
