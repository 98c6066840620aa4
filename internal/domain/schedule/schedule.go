// Package schedule calcula las fechas de ejecución de los pedidos recurrentes.
// Todas las fechas se tratan como días calendario (hora 00:00 en la zona de la fecha recibida).
package schedule

import (
	"fmt"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// Validate comprueba que la frecuencia tenga el campo de día que necesita.
func Validate(frequency string, dayOfWeek, dayOfMonth *int) error {
	switch frequency {
	case entity.FrequencyWeekly, entity.FrequencyBiweekly:
		if dayOfWeek == nil || *dayOfWeek < 0 || *dayOfWeek > 6 {
			return fmt.Errorf("%w: day_of_week debe estar entre 0 y 6", domain.ErrInvalidInput)
		}
	case entity.FrequencyMonthly, entity.FrequencyQuarterly:
		if dayOfMonth == nil || *dayOfMonth < 1 || *dayOfMonth > 31 {
			return fmt.Errorf("%w: day_of_month debe estar entre 1 y 31", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: frecuencia %q", domain.ErrInvalidInput, frequency)
	}
	return nil
}

// NextDate devuelve la primera fecha estrictamente posterior a after según la frecuencia.
//   - weekly: siguiente día con ese día de semana (1..7 días).
//   - biweekly: siguiente día de semana + 7 (8..14 días).
//   - monthly: día dom del mes de after si es posterior, si no el del mes siguiente.
//   - quarterly: igual que monthly pero avanzando tres meses.
//
// Los días que no existen en el mes se ajustan al último día (31 → 28/29 de febrero).
func NextDate(frequency string, dayOfWeek, dayOfMonth *int, after time.Time) (time.Time, error) {
	if err := Validate(frequency, dayOfWeek, dayOfMonth); err != nil {
		return time.Time{}, err
	}
	base := Day(after)

	switch frequency {
	case entity.FrequencyWeekly:
		return base.AddDate(0, 0, daysUntil(base.Weekday(), *dayOfWeek)), nil
	case entity.FrequencyBiweekly:
		return base.AddDate(0, 0, daysUntil(base.Weekday(), *dayOfWeek)+7), nil
	case entity.FrequencyMonthly:
		return nextMonthly(base, *dayOfMonth, 1), nil
	default:
		return nextMonthly(base, *dayOfMonth, 3), nil
	}
}

// FirstRunDate primera ejecución de una plantilla que inicia en start (start incluido).
func FirstRunDate(frequency string, dayOfWeek, dayOfMonth *int, start time.Time) (time.Time, error) {
	return NextDate(frequency, dayOfWeek, dayOfMonth, Day(start).AddDate(0, 0, -1))
}

// PastEnd informa si next supera la fecha fin (la plantilla pasa a completed).
func PastEnd(next time.Time, end *time.Time) bool {
	return end != nil && Day(next).After(Day(*end))
}

// Day trunca t a medianoche conservando la zona horaria.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysUntil(from time.Weekday, target int) int {
	delta := (target - int(from) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return delta
}

func nextMonthly(base time.Time, dom, stepMonths int) time.Time {
	candidate := clampedDate(base.Year(), base.Month(), dom, base.Location())
	if candidate.After(base) {
		return candidate
	}
	return clampedDate(base.Year(), base.Month()+time.Month(stepMonths), dom, base.Location())
}

// clampedDate construye y-m-dom ajustando dom al último día del mes. Acepta meses > 12.
func clampedDate(y int, m time.Month, dom int, loc *time.Location) time.Time {
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1).Day()
	if dom > last {
		dom = last
	}
	return time.Date(first.Year(), first.Month(), dom, 0, 0, 0, 0, loc)
}
