// Package credit reglas de crédito: puntaje de elegibilidad, cupo sugerido,
// aplicación FIFO de pagos y detección de cartera vencida.
package credit

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// Límites aceptados al aprobar.
const (
	MinTermsDays = 1
	MaxTermsDays = 180
)

// History datos del cliente usados para el puntaje de elegibilidad.
type History struct {
	CustomerSince     time.Time
	DeliveredOrders   int
	SettledCharges    int // cargos ya saldados
	SettledOnTime     int // de los anteriores, saldados antes o en la fecha de vencimiento
	HasOverdue        bool
	AverageOrderTotal decimal.Decimal
}

// EligibilityScore puntaje 0..100:
// antigüedad (meses×2, máx 30) + pedidos entregados (×3, máx 30) + puntualidad (×30) + 10 sin vencidos.
// Un cliente sin cargos saldados no suma puntos de puntualidad.
func EligibilityScore(h History, now time.Time) int {
	score := min(monthsBetween(h.CustomerSince, now)*2, 30)
	score += min(h.DeliveredOrders*3, 30)
	if h.SettledCharges > 0 {
		score += int(decimal.NewFromInt(int64(h.SettledOnTime)).
			Div(decimal.NewFromInt(int64(h.SettledCharges))).
			Mul(decimal.NewFromInt(30)).
			Round(0).IntPart())
	}
	if !h.HasOverdue {
		score += 10
	}
	return max(0, min(score, 100))
}

// SuggestedLimit promedio de pedido × 3 × puntaje/100, redondeado a 2 decimales.
func SuggestedLimit(averageOrder decimal.Decimal, score int) decimal.Decimal {
	return averageOrder.Mul(decimal.NewFromInt(3)).
		Mul(decimal.NewFromInt(int64(score))).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

// Allocation parte de un pago aplicada a un cargo.
type Allocation struct {
	Entry  *entity.CreditLedgerEntry
	Amount decimal.Decimal
}

// AllocatePayment reparte amount sobre los cargos con saldo: primero el del pedido indicado,
// luego los más antiguos. Devuelve lo aplicado y el excedente (que no reduce el saldo).
func AllocatePayment(amount decimal.Decimal, charges []*entity.CreditLedgerEntry, orderID *string) ([]Allocation, decimal.Decimal, decimal.Decimal) {
	pending := make([]*entity.CreditLedgerEntry, 0, len(charges))
	for _, c := range charges {
		if c.Type == entity.LedgerCharge && c.Outstanding.IsPositive() {
			pending = append(pending, c)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		pi, pj := matchesOrder(pending[i], orderID), matchesOrder(pending[j], orderID)
		if pi != pj {
			return pi
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	remaining := amount
	applied := decimal.Zero
	var out []Allocation
	for _, c := range pending {
		if !remaining.IsPositive() {
			break
		}
		part := decimal.Min(remaining, c.Outstanding)
		out = append(out, Allocation{Entry: c, Amount: part})
		applied = applied.Add(part)
		remaining = remaining.Sub(part)
	}
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return out, applied, remaining
}

// IsOverdue informa si el cargo tiene saldo y su vencimiento es anterior a today.
func IsOverdue(c *entity.CreditLedgerEntry, today time.Time) bool {
	if c.Type != entity.LedgerCharge || !c.Outstanding.IsPositive() || c.DueDate == nil {
		return false
	}
	y, m, d := today.Date()
	startOfToday := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	return c.DueDate.Before(startOfToday)
}

func matchesOrder(c *entity.CreditLedgerEntry, orderID *string) bool {
	return orderID != nil && c.OrderID != nil && *c.OrderID == *orderID
}

func monthsBetween(from, to time.Time) int {
	if from.IsZero() || !to.After(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return max(months, 0)
}
