// Package daterange resolves dashboard date presets and explicit ranges into
// half-open intervals with a comparable previous period.
package daterange

import (
	"fmt"
	"math"
	"strings"
	"time"

	"findash/internal/models"
)

// Preset names accepted by the resolver
const (
	LastMonth   = "last-month"
	LastQuarter = "last-quarter"
	LastYear    = "last-year"
	YearToDate  = "year-to-date"
)

// LastYearBehaviour selects what the last-year preset means for a call site
type LastYearBehaviour int

const (
	// LastYearTrailing is the trailing 365/366 days ending now (dashboard summary)
	LastYearTrailing LastYearBehaviour = iota
	// LastYearTaxYear is the previous complete UK tax year (tax estimate)
	LastYearTaxYear
)

// Request is an unresolved range: a preset or an explicit start/end pair
type Request struct {
	Preset string
	Start  string
	End    string
}

// IsZero reports whether nothing was requested
func (r Request) IsZero() bool {
	return strings.TrimSpace(r.Preset) == "" && strings.TrimSpace(r.Start) == "" && strings.TrimSpace(r.End) == ""
}

// Resolver turns requests into ranges relative to its clock
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// New creates a resolver in the given location. A nil location means UTC and
// a nil clock means time.Now.
func New(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{loc: loc, now: now}
}

// Resolve resolves a request for the dashboard-summary path, where last-year is
// the trailing twelve months.
func (rs *Resolver) Resolve(req Request) (models.Range, error) {
	return rs.resolve(req, LastYearTrailing)
}

// ResolveTax resolves a request for the tax path, where last-year is the
// previous complete UK tax year.
func (rs *Resolver) ResolveTax(req Request) (models.Range, error) {
	return rs.resolve(req, LastYearTaxYear)
}

func (rs *Resolver) resolve(req Request, lastYear LastYearBehaviour) (models.Range, error) {
	now := rs.now().In(rs.loc)

	if strings.TrimSpace(req.Start) != "" || strings.TrimSpace(req.End) != "" {
		return rs.explicit(req.Start, req.End)
	}

	preset := strings.ToLower(strings.TrimSpace(req.Preset))
	if preset == "" {
		preset = LastMonth
	}

	var start, end time.Time
	var label string
	var openEnded bool

	switch preset {
	case LastMonth:
		end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, rs.loc)
		start = end.AddDate(0, -1, 0)
		label = "Last month"
	case LastQuarter:
		qStartMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		end = time.Date(now.Year(), qStartMonth, 1, 0, 0, 0, 0, rs.loc)
		start = end.AddDate(0, -3, 0)
		label = "Last quarter"
	case LastYear:
		if lastYear == LastYearTaxYear {
			start, end = previousTaxYear(now, rs.loc)
			label = fmt.Sprintf("Previous tax year %d/%02d", start.Year(), (start.Year()+1)%100)
		} else {
			start = startOfDay(now.AddDate(-1, 0, 1))
			end = now
			label = "Last 12 months"
			openEnded = true
		}
	case YearToDate:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, rs.loc)
		end = now
		label = "Year to date"
		openEnded = true
	default:
		return models.Range{}, models.Errorf(models.InvalidRange, "unknown preset %q", req.Preset)
	}

	r := withPrevious(start, end)
	r.Label = label
	r.Mode = models.RangePreset
	r.Preset = preset
	r.OpenEnded = openEnded
	return r, nil
}

func (rs *Resolver) explicit(startStr, endStr string) (models.Range, error) {
	if strings.TrimSpace(startStr) == "" || strings.TrimSpace(endStr) == "" {
		return models.Range{}, models.Errorf(models.InvalidRange, "both start and end are required")
	}
	s, ok := parseIn(startStr, rs.loc)
	if !ok {
		return models.Range{}, models.Errorf(models.InvalidRange, "invalid start date %q", startStr)
	}
	e, ok := parseIn(endStr, rs.loc)
	if !ok {
		return models.Range{}, models.Errorf(models.InvalidRange, "invalid end date %q", endStr)
	}
	start, end := startOfDay(s), endOfDay(e)
	if end.Before(start) {
		return models.Range{}, models.Errorf(models.InvalidRange, "end %s is before start %s", endStr, startStr)
	}

	r := withPrevious(start, end)
	r.Label = fmt.Sprintf("%s to %s", start.Format("2 Jan 2006"), e.Format("2 Jan 2006"))
	r.Mode = models.RangeCustom
	return r, nil
}

// withPrevious computes the range length in whole days (minimum 1) and the
// comparable previous range ending at start.
func withPrevious(start, end time.Time) models.Range {
	days := LengthDays(start, end)
	return models.Range{
		Start:     start,
		End:       end,
		PrevStart: start.AddDate(0, 0, -days),
		PrevEnd:   start,
		Days:      days,
	}
}

// LengthDays returns the number of calendar days touched by [start, end), at
// least 1. Counting calendar dates keeps DST transitions from adding a day.
func LengthDays(start, end time.Time) int {
	end = end.In(start.Location())
	d := int(math.Round(civil(end).Sub(civil(start)).Hours() / 24))
	if !end.Equal(startOfDay(end)) {
		d++
	}
	if d < 1 {
		return 1
	}
	return d
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// previousTaxYear returns [6 Apr Y-1, 6 Apr Y) for the last complete UK tax year
func previousTaxYear(now time.Time, loc *time.Location) (time.Time, time.Time) {
	currentStart := time.Date(now.Year(), time.April, 6, 0, 0, 0, 0, loc)
	if now.Before(currentStart) {
		currentStart = currentStart.AddDate(-1, 0, 0)
	}
	return currentStart.AddDate(-1, 0, 0), currentStart
}

// TaxYearStart returns the start of the UK tax year containing t
func TaxYearStart(t time.Time) time.Time {
	start := time.Date(t.Year(), time.April, 6, 0, 0, 0, 0, t.Location())
	if t.Before(start) {
		start = start.AddDate(-1, 0, 0)
	}
	return start
}

func parseIn(s string, loc *time.Location) (time.Time, bool) {
	t, ok := models.ParseDate(s)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}
