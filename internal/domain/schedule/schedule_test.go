package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func ptr(v int) *int { return &v }

func TestNextDate_Weekly(t *testing.T) {
	// 2025-03-05 es miércoles (3).
	got, err := NextDate(entity.FrequencyWeekly, ptr(5), nil, d(2025, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, d(2025, 3, 7), got, "viernes siguiente")

	got, err = NextDate(entity.FrequencyWeekly, ptr(3), nil, d(2025, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, d(2025, 3, 12), got, "mismo día de semana salta 7 días")

	got, err = NextDate(entity.FrequencyWeekly, ptr(0), nil, d(2025, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, d(2025, 3, 9), got, "domingo")
}

func TestNextDate_Biweekly(t *testing.T) {
	got, err := NextDate(entity.FrequencyBiweekly, ptr(5), nil, d(2025, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, d(2025, 3, 14), got)

	got, err = NextDate(entity.FrequencyBiweekly, ptr(3), nil, d(2025, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, d(2025, 3, 19), got, "14 días cuando coincide el día")
}

func TestNextDate_Monthly(t *testing.T) {
	got, err := NextDate(entity.FrequencyMonthly, nil, ptr(15), d(2025, 3, 10))
	require.NoError(t, err)
	assert.Equal(t, d(2025, 3, 15), got)

	got, err = NextDate(entity.FrequencyMonthly, nil, ptr(15), d(2025, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, d(2025, 4, 15), got, "estrictamente posterior")

	got, err = NextDate(entity.FrequencyMonthly, nil, ptr(31), d(2025, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, d(2025, 2, 28), got, "31 se ajusta al fin de febrero")

	got, err = NextDate(entity.FrequencyMonthly, nil, ptr(31), d(2024, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, d(2024, 2, 29), got, "año bisiesto")

	got, err = NextDate(entity.FrequencyMonthly, nil, ptr(5), d(2025, 12, 20))
	require.NoError(t, err)
	assert.Equal(t, d(2026, 1, 5), got, "cambio de año")
}

func TestNextDate_Quarterly(t *testing.T) {
	got, err := NextDate(entity.FrequencyQuarterly, nil, ptr(10), d(2025, 1, 20))
	require.NoError(t, err)
	assert.Equal(t, d(2025, 4, 10), got)

	got, err = NextDate(entity.FrequencyQuarterly, nil, ptr(31), d(2025, 11, 30))
	require.NoError(t, err)
	assert.Equal(t, d(2026, 2, 28), got, "30-nov ya es el 31 ajustado: salta tres meses y ajusta a febrero")
}

func TestFirstRunDate_IncluyeInicio(t *testing.T) {
	// 2025-03-07 es viernes.
	got, err := FirstRunDate(entity.FrequencyWeekly, ptr(5), nil, d(2025, 3, 7))
	require.NoError(t, err)
	assert.Equal(t, d(2025, 3, 7), got)

	got, err = FirstRunDate(entity.FrequencyMonthly, nil, ptr(1), d(2025, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, d(2025, 3, 1), got)
}

func TestValidate(t *testing.T) {
	assert.True(t, errors.Is(Validate(entity.FrequencyWeekly, nil, ptr(3)), domain.ErrInvalidInput))
	assert.True(t, errors.Is(Validate(entity.FrequencyMonthly, nil, ptr(32)), domain.ErrInvalidInput))
	assert.True(t, errors.Is(Validate("daily", nil, nil), domain.ErrInvalidInput))
	assert.NoError(t, Validate(entity.FrequencyQuarterly, nil, ptr(31)))
}

func TestPastEnd(t *testing.T) {
	end := d(2025, 6, 30)
	assert.False(t, PastEnd(d(2025, 6, 30), &end))
	assert.True(t, PastEnd(d(2025, 7, 1), &end))
	assert.False(t, PastEnd(d(2030, 1, 1), nil))
}
