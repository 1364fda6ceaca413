// Package fiscal maps calendar dates onto company reporting quarters.
// The fiscal year runs April through March: April-June is Q1 and
// January-March belongs to Q4 of the previous fiscal year.
package fiscal

import (
	"fmt"
	"time"
)

type Quarter struct {
	Quarter    int //1..4
	FiscalYear int
}

// Clock lets callers pin "now" in tests.
type Clock func() time.Time

func Resolve(date time.Time) Quarter {
	year := date.Year()
	var q int

	switch m := date.Month(); {
	case m >= time.April && m <= time.June:
		q = 1
	case m >= time.July && m <= time.September:
		q = 2
	case m >= time.October && m <= time.December:
		q = 3
	default: //January - March
		q = 4
		year--
	}

	return Quarter{Quarter: q, FiscalYear: year}
}

// Current resolves the quarter for the injected clock, or the wall clock
// when none is given.
func Current(clock Clock) Quarter {
	if clock == nil {
		clock = time.Now
	}
	return Resolve(clock())
}

// Label renders the search-facing form, e.g. "Q1 FY2025-2026".
func (q Quarter) Label() string {
	return fmt.Sprintf("Q%d FY%d-%d", q.Quarter, q.FiscalYear, q.FiscalYear+1)
}
