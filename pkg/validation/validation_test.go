package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Name  string `binding:"notblank"`
	Phone string `binding:"phone"`
}

func TestRegisteredTags(t *testing.T) {
	require.NoError(t, Register())
	v := binding.Validator.Engine().(*validator.Validate)

	assert.NoError(t, v.Struct(contact{Name: "Ana", Phone: "(11) 98765-4321"}))
	assert.Error(t, v.Struct(contact{Name: "Ana", Phone: "98765"}))
	assert.Error(t, v.Struct(contact{Name: "   ", Phone: "11987654321"}))
}

func TestDecimalWithin(t *testing.T) {
	max := decimal.RequireFromString("9999.99")

	tests := []struct {
		value string
		want  bool
	}{
		{"0", true},
		{"5", true},
		{"9999.99", true},
		{"10000", false},
		{"-1", false},
		{"1e30", false},
		{"1e5000000", false},
		{"1e-5000000", false},
		{"0.00000001", true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, DecimalWithin(decimal.RequireFromString(tc.value), max), tc.value)
	}
}
