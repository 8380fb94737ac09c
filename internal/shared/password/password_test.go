package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pw      string
		wantErr bool
	}{
		{"strong", "Str0ng!pass", false},
		{"unicode symbol", "Abcdef1€", false},
		{"too short", "Ab1!", true},
		{"no lowercase", "ABCDEFG1!", true},
		{"no uppercase", "abcdefg1!", true},
		{"no digit", "Abcdefgh!", true},
		{"no symbol", "Abcdefgh1", true},
		{"empty", "", true},
		{"exactly max bytes", "Aa1!" + strings.Repeat("x", MaxBytes-4), false},
		{"over max bytes", "Aa1!" + strings.Repeat("x", MaxBytes-3), true},
		{"multibyte over max bytes", "Aa1!" + strings.Repeat("€", 23), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.pw)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrWeakPassword), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHash_AcceptsEveryValidPassword(t *testing.T) {
	t.Parallel()

	longest := "Aa1!" + strings.Repeat("x", MaxBytes-4)
	require.NoError(t, Validate(longest))

	hash, err := Hash(longest)
	require.NoError(t, err)
	assert.True(t, Matches(hash, longest))
}

func TestHashAndMatches(t *testing.T) {
	t.Parallel()

	hash, err := Hash("Str0ng!pass")
	require.NoError(t, err)

	assert.NotEqual(t, "Str0ng!pass", hash)
	assert.True(t, Matches(hash, "Str0ng!pass"))
	assert.False(t, Matches(hash, "wrong"))
	assert.False(t, Matches("", "Str0ng!pass"))
}
