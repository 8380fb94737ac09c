package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	Name string `validate:"required,min=4,max=20,username"`
}

func TestRegisterOn_Username(t *testing.T) {
	t.Parallel()

	v := validator.New()
	require.NoError(t, RegisterOn(v))

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"letters and digits", "gopher42", false},
		{"underscore and hyphen", "go_pher-1", false},
		{"space", "go pher", true},
		{"symbol", "gopher!", true},
		{"too short", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Struct(probe{Name: tt.in})
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestRegister_Idempotent(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register())
}

func TestMessages(t *testing.T) {
	t.Parallel()

	v := validator.New()
	require.NoError(t, RegisterOn(v))

	err := v.Struct(probe{Name: "ab"})
	require.Error(t, err)
	assert.Equal(t, []string{"Name: failed on min=4"}, Messages(err))

	assert.Equal(t, []string{"boom"}, Messages(errors.New("boom")))
}
