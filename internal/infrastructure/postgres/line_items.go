package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// lineTable tabla de líneas y columna padre (quote_items/quote_id, order_items/order_id).
type lineTable struct {
	name   string
	parent string
}

var (
	quoteLines = lineTable{name: "quote_items", parent: "quote_id"}
	orderLines = lineTable{name: "order_items", parent: "order_id"}
)

func insertLines(ctx context.Context, q Querier, t lineTable, parentID string, items []entity.LineItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, %s, product_id, name, sku, quantity, unit_price, tax_rate, subtotal, tax, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, t.name, t.parent)
	for i := range items {
		it := &items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		_, err := q.Exec(ctx, query, it.ID, parentID, it.ProductID, it.Name, it.SKU,
			it.Quantity, it.UnitPrice, it.TaxRate, it.Subtotal, it.Tax, i)
		if err != nil {
			return fmt.Errorf("insert %s: %w", t.name, err)
		}
	}
	return nil
}

// loadLines carga las líneas de varios padres en una sola consulta.
func loadLines(ctx context.Context, q Querier, t lineTable, parentIDs []string) (map[string][]entity.LineItem, error) {
	out := make(map[string][]entity.LineItem, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}
	query := fmt.Sprintf(`
		SELECT %s, id, product_id, name, sku, quantity, unit_price, tax_rate, subtotal, tax
		FROM %s WHERE %s = ANY($1) ORDER BY %s, position`, t.parent, t.name, t.parent, t.parent)
	rows, err := q.Query(ctx, query, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var parent string
		var it entity.LineItem
		if err := rows.Scan(&parent, &it.ID, &it.ProductID, &it.Name, &it.SKU,
			&it.Quantity, &it.UnitPrice, &it.TaxRate, &it.Subtotal, &it.Tax); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		out[parent] = append(out[parent], it)
	}
	return out, rows.Err()
}
