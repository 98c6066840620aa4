package entity

import "time"

// Tipos de documento generados por pedido.
const (
	DocumentInvoice     = "invoice"
	DocumentPackingList = "packing_list"
)

// Document metadatos de un PDF almacenado (S3 o tabla documents).
type Document struct {
	ID          string
	CompanyID   string
	OrderID     string
	Kind        string
	StorageKey  string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}
