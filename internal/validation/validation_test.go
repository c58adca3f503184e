package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"all lowercase", "abcdefgh", false},
		{"upper and special", "Abcdef!1", true},
		{"too short", "Ab!1", false},
		{"missing special", "Abcdefg1", false},
		{"missing uppercase", "abcdef!1", false},
		{"specials only", "!!!!!!!!", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StrongPassword(tt.password))
		})
	}
}

func TestCustomRules(t *testing.T) {
	v := New()

	type payload struct {
		Senha    string `json:"senha"    validate:"required,senha"`
		Telefone string `json:"telefone" validate:"required,telefone"`
		Status   string `json:"status"   validate:"required,order_status"`
	}

	err := v.Struct(payload{Senha: "Abcdef!1", Telefone: "11987654321", Status: "PENDING"})
	require.NoError(t, err)

	err = v.Struct(payload{Senha: "abcdefgh", Telefone: "123", Status: "SHIPPED"})
	require.Error(t, err)

	details := Details(err)
	assert.Len(t, details, 3)
	assert.Contains(t, details["senha"], "uppercase")
	assert.Contains(t, details["telefone"], "digits")
	assert.Contains(t, details["status"], "PENDING")
	assert.Contains(t, details["status"], "CANCELLED")
}

func TestDetailsWithUnexpectedError(t *testing.T) {
	details := Details(assert.AnError)
	assert.Equal(t, map[string]string{"body": "invalid payload"}, details)
}
