package credit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestEligibilityScore(t *testing.T) {
	h := History{
		CustomerSince:   now.AddDate(0, -8, 0), // 8 meses → 16
		DeliveredOrders: 4,                     // 12
		SettledCharges:  4,
		SettledOnTime:   3, // 0.75 × 30 = 22.5 → 23
		HasOverdue:      false,
	}
	assert.Equal(t, 16+12+23+10, EligibilityScore(h, now))
}

func TestEligibilityScore_Topes(t *testing.T) {
	h := History{
		CustomerSince:   now.AddDate(-5, 0, 0),
		DeliveredOrders: 40,
		SettledCharges:  10,
		SettledOnTime:   10,
	}
	assert.Equal(t, 100, EligibilityScore(h, now))

	h.HasOverdue = true
	assert.Equal(t, 90, EligibilityScore(h, now))

	assert.Equal(t, 10, EligibilityScore(History{CustomerSince: now}, now), "cliente nuevo sin historial")
}

func TestSuggestedLimit(t *testing.T) {
	got := SuggestedLimit(decimal.RequireFromString("1234.56"), 70)
	assert.True(t, got.Equal(decimal.RequireFromString("2592.58")), got.String())
}

func charge(id string, order string, outstanding string, created time.Time) *entity.CreditLedgerEntry {
	o := order
	return &entity.CreditLedgerEntry{
		ID:          id,
		Type:        entity.LedgerCharge,
		OrderID:     &o,
		Amount:      decimal.RequireFromString(outstanding),
		Outstanding: decimal.RequireFromString(outstanding),
		CreatedAt:   created,
	}
}

func TestAllocatePayment_PedidoPrimeroLuegoFIFO(t *testing.T) {
	c1 := charge("c1", "o1", "100", now.AddDate(0, 0, -30))
	c2 := charge("c2", "o2", "200", now.AddDate(0, 0, -20))
	c3 := charge("c3", "o3", "300", now.AddDate(0, 0, -10))
	target := "o3"

	allocs, applied, excess := AllocatePayment(decimal.NewFromInt(350), []*entity.CreditLedgerEntry{c2, c1, c3}, &target)
	require.Len(t, allocs, 2)
	assert.Equal(t, "c3", allocs[0].Entry.ID)
	assert.True(t, allocs[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "c1", allocs[1].Entry.ID, "luego el cargo más antiguo")
	assert.True(t, allocs[1].Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, applied.Equal(decimal.NewFromInt(350)))
	assert.True(t, excess.IsZero())
}

func TestAllocatePayment_ExcedenteNoSeAplica(t *testing.T) {
	c1 := charge("c1", "o1", "100", now)
	allocs, applied, excess := AllocatePayment(decimal.NewFromInt(150), []*entity.CreditLedgerEntry{c1}, nil)
	require.Len(t, allocs, 1)
	assert.True(t, applied.Equal(decimal.NewFromInt(100)))
	assert.True(t, excess.Equal(decimal.NewFromInt(50)))
}

func TestIsOverdue(t *testing.T) {
	due := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	c := charge("c1", "o1", "10", now)
	c.DueDate = &due
	assert.True(t, IsOverdue(c, now))

	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	c.DueDate = &today
	assert.False(t, IsOverdue(c, now), "vence hoy: aún no está vencido")

	c.DueDate = &due
	c.Outstanding = decimal.Zero
	assert.False(t, IsOverdue(c, now))
}
