package inventory

import (
	"time"

	"github.com/jhoicas/Ombor-api/internal/domain"
)

// Atajos de período aceptados en los listados (?days=).
const (
	WindowToday     = "today"
	WindowLastWeek  = "last-week"
	WindowLastMonth = "last-month"
)

// ResolveWindow traduce ?days= o un rango explícito a [from, to].
// days tiene prioridad; sin days ni rango completo devuelve nil, nil (sin filtro).
func ResolveWindow(days string, from, to *time.Time, now time.Time) (*time.Time, *time.Time, error) {
	switch days {
	case "":
	case WindowToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := start.Add(24*time.Hour - time.Nanosecond)
		return &start, &end, nil
	case WindowLastWeek:
		start := now.AddDate(0, 0, -7)
		return &start, &now, nil
	case WindowLastMonth:
		start := now.AddDate(0, -1, 0)
		return &start, &now, nil
	default:
		return nil, nil, domain.ErrInvalidInput
	}
	if from != nil && to != nil {
		if to.Before(*from) {
			return nil, nil, domain.ErrInvalidInput
		}
		return from, to, nil
	}
	return nil, nil, nil
}

// ReportWindow igual que ResolveWindow pero con el último mes como período por defecto.
// Con solo from o solo to, el otro extremo queda abierto (hasta ahora / desde el inicio).
func ReportWindow(from, to *time.Time, now time.Time) (time.Time, time.Time, error) {
	switch {
	case from == nil && to == nil:
		return now.AddDate(0, -1, 0), now, nil
	case from != nil && to == nil:
		return *from, now, nil
	case from == nil && to != nil:
		return time.Time{}, *to, nil
	}
	if to.Before(*from) {
		return time.Time{}, time.Time{}, domain.ErrInvalidInput
	}
	return *from, *to, nil
}
