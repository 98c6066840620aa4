package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/domain"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("%PDF-1.4")
	require.NoError(t, s.Put(ctx, "c1/o1/factura.pdf", "application/pdf", data))
	data[0] = 'X'

	got, err := s.Get(ctx, "c1/o1/factura.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(got), "el contenido guardado no comparte memoria con el llamador")

	_, err = s.Get(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
