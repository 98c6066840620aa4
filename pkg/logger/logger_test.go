package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("ruidoso"))
}

func TestNew_JSONConServicio(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Service: "mayorista-api", Output: &buf})

	l.Info().Str("order_id", "o-1").Msg("pedido confirmado")
	zl := l.Zerolog()
	zl.Debug().Msg("no se escribe")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "mayorista-api", line["service"])
	assert.Equal(t, "o-1", line["order_id"])
	assert.Equal(t, "pedido confirmado", line["message"])
}
