package normalize_test

import (
	"testing"

	"github.com/clinika/clinika-backend/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"555112233", "555112233", true},
		{"0555112233", "555112233", true},
		{"996555112233", "555112233", true},
		{"+996 555 11-22-33", "555112233", true},
		{"8 996 555 112233", "555112233", true}, // trailing 9 digits win
		{"112233", "", false},
		{"", "", false},
		{"нет номера", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := normalize.NormalizePhone(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhoneRoundTrip(t *testing.T) {
	local := "555112233"

	intl := normalize.FormatInternational(local)
	assert.Equal(t, "+996555112233", intl)

	back, ok := normalize.NormalizePhone(intl)
	require.True(t, ok)
	assert.Equal(t, local, back)
}
