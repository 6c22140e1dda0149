package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"brandflowAPI/internal/profile"
)

func TestValidUTR(t *testing.T) {
	tests := []struct {
		utr  string
		want bool
	}{
		{"123456789012", true},
		{"12345678901", false},
		{"1234567890123", false},
		{"12345678901a", false},
		{"１２３４５６７８９０１２", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidUTR(tt.utr), tt.utr)
	}
}

func TestFindPlan(t *testing.T) {
	p, ok := FindPlan("Enterprise")
	assert.True(t, ok)
	assert.Equal(t, 199, p.Price)

	_, ok = FindPlan(string(profile.StatusFree))
	assert.False(t, ok)

	plans := Plans()
	plans[0].Price = 1
	p, _ = FindPlan("Pro")
	assert.Equal(t, 99, p.Price)
}
