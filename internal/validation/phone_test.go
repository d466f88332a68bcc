package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBangladeshMobile(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{phone: "+8801712345678", want: true},
		{phone: " +8801812345678 ", want: true},
		{phone: "01712345678", want: false},
		{phone: "8801712345678", want: false},
		{phone: "+880171234", want: false},
		{phone: "+5521987654321", want: false},
		{phone: "", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBangladeshMobile(tt.phone), tt.phone)
	}
}

func TestNormalizeBangladeshMobile(t *testing.T) {
	got, ok := NormalizeBangladeshMobile("+880 1712-345678")
	assert.True(t, ok)
	assert.Equal(t, "+8801712345678", got)

	_, ok = NormalizeBangladeshMobile("01712345678")
	assert.False(t, ok)
}
