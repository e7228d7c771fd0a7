package services

import (
	"fmt"
	"time"
)

// FinancialYear is an Indian fiscal year, Apr 1 through Mar 31. The label
// concatenates the starting calendar year with the two-digit ending year,
// e.g. FY 2025-26 => "202526".
type FinancialYear struct {
	Label     string
	StartDate time.Time
}

// FinancialYearFor maps a date to the fiscal year containing it. Dates in
// January through March belong to the fiscal year that started the
// previous April.
func FinancialYearFor(t time.Time) FinancialYear {
	startYear := t.Year()
	if t.Month() < time.April {
		startYear--
	}

	return FinancialYear{
		Label:     fmt.Sprintf("%d%02d", startYear, (startYear+1)%100),
		StartDate: time.Date(startYear, time.April, 1, 0, 0, 0, 0, t.Location()),
	}
}
