package planner

import (
	"github.com/alexanderramin/planboard/internal/domain"
)

// GenerateDays lists every day from the first loaded week start through the
// last day of the last loaded week. pages must be in week order.
func GenerateDays(pages []domain.PlanPage) []domain.Day {
	if len(pages) == 0 {
		return nil
	}
	start := domain.DateOf(pages[0].WeekStart)
	end := domain.AddDays(pages[len(pages)-1].WeekStart, domain.DaysPerWeek-1)

	days := make([]domain.Day, 0, len(pages)*domain.DaysPerWeek)
	for d := start; !d.After(end); d = domain.AddDays(d, 1) {
		days = append(days, domain.NewDay(d))
	}
	return days
}
