package nit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDigit(t *testing.T) {
	dv, err := CheckDigit("800197268")
	require.NoError(t, err)
	assert.Equal(t, byte('4'), dv)

	dv, err = CheckDigit("900.123.456")
	require.NoError(t, err)
	assert.Equal(t, byte('8'), dv)

	_, err = CheckDigit("12345")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("900123456"))
	assert.NoError(t, Validate("900.123.456-8"))
	assert.NoError(t, Validate("8001972684"))
	assert.ErrorIs(t, Validate("900123456-1"), ErrInvalid)
	assert.ErrorIs(t, Validate("1234"), ErrInvalid)
	assert.ErrorIs(t, Validate(""), ErrInvalid)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "900.123.456-8", Format("900123456"))
	assert.Equal(t, "800.197.268-4", Format("800197268-4"))
	assert.Equal(t, "abc", Format("abc"))
}
