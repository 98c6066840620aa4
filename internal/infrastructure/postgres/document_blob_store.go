package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/application/billing"
	"github.com/jhoicas/Mayorista-api/internal/domain"
)

var _ billing.DocumentStore = (*DocumentBlobStore)(nil)

// DocumentBlobStore guarda el contenido de los PDF en la tabla document_blobs (sin bucket S3).
type DocumentBlobStore struct {
	q Querier
}

// NewDocumentBlobStore construye el almacenamiento.
func NewDocumentBlobStore(q Querier) *DocumentBlobStore {
	return &DocumentBlobStore{q: q}
}

func (s *DocumentBlobStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO document_blobs (storage_key, content_type, data, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (storage_key) DO UPDATE
		SET content_type = EXCLUDED.content_type, data = EXCLUDED.data, created_at = EXCLUDED.created_at`,
		key, contentType, data)
	if err != nil {
		return fmt.Errorf("put document blob: %w", err)
	}
	return nil
}

func (s *DocumentBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.q.QueryRow(ctx, `SELECT data FROM document_blobs WHERE storage_key = $1`, key).Scan(&data)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get document blob: %w", err)
	}
	return data, nil
}
