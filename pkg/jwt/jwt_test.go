package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "secreto-de-pruebas"

func TestGenerateAndParseAction(t *testing.T) {
	tok, err := GenerateAction(secret, "mayorista-api", "quote_accept", "q-1", time.Hour)
	require.NoError(t, err)

	action, subject, err := ParseAction(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "quote_accept", action)
	assert.Equal(t, "q-1", subject)
}

func TestParseAction_Expirado(t *testing.T) {
	tok, err := GenerateAction(secret, "mayorista-api", "quote_reject", "q-1", -time.Minute)
	require.NoError(t, err)
	_, _, err = ParseAction(secret, tok)
	assert.Error(t, err)
}

func TestParseAction_TokenDeSesionNoSirve(t *testing.T) {
	tok, err := Generate(secret, "u-1", "c-1", "admin", "mayorista-api", 5)
	require.NoError(t, err)
	_, _, err = ParseAction(secret, tok)
	assert.Error(t, err, "un token de sesión no lleva acción")
}

func TestGenerateAndParse_Sesion(t *testing.T) {
	tok, err := Generate(secret, "u-1", "c-1", "finanzas", "mayorista-api", 5)
	require.NoError(t, err)

	userID, companyID, role, err := Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "c-1", companyID)
	assert.Equal(t, "finanzas", role)
}

func TestParse_Rechazos(t *testing.T) {
	expired, err := Generate(secret, "u-1", "c-1", "admin", "mayorista-api", -1)
	require.NoError(t, err)
	_, _, _, err = Parse(secret, expired)
	assert.Error(t, err, "expirado")

	valid, err := Generate(secret, "u-1", "c-1", "admin", "mayorista-api", 5)
	require.NoError(t, err)
	_, _, _, err = Parse("otro-secreto", valid)
	assert.Error(t, err, "firma de otro secreto")

	_, _, _, err = Parse("", valid)
	assert.Error(t, err, "secreto vacío")
}
