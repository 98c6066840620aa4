package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat_UsaSeparadoresLocales(t *testing.T) {
	got := Format(decimal.RequireFromString("1234567.5"))
	assert.True(t, strings.HasPrefix(got, "$ "))
	assert.Contains(t, got, "1.234.567")
	assert.True(t, strings.HasSuffix(got, ",50"), got)
}

func TestQuantity(t *testing.T) {
	assert.Equal(t, "12", Quantity(decimal.NewFromInt(12)))
	assert.Contains(t, Quantity(decimal.RequireFromString("2.5")), "2,50")
}
