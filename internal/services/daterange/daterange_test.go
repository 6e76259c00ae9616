package daterange

import (
	"testing"
	"time"

	"findash/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePresets(t *testing.T) {
	now := time.Date(2025, time.May, 14, 10, 30, 0, 0, time.UTC)
	rs := New(time.UTC, fixedClock(now))

	tests := []struct {
		preset    string
		wantStart time.Time
		wantEnd   time.Time
		wantDays  int
	}{
		{"", date(2025, time.April, 1), date(2025, time.May, 1), 30},
		{LastMonth, date(2025, time.April, 1), date(2025, time.May, 1), 30},
		{LastQuarter, date(2025, time.January, 1), date(2025, time.April, 1), 90},
		{LastYear, date(2024, time.May, 15), now, 365},
		{YearToDate, date(2025, time.January, 1), now, 134},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			r, err := rs.Resolve(Request{Preset: tt.preset})
			if err != nil {
				t.Fatalf("Resolve(%q) returned error: %v", tt.preset, err)
			}
			if !r.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", r.Start, tt.wantStart)
			}
			if !r.End.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", r.End, tt.wantEnd)
			}
			if r.Days != tt.wantDays {
				t.Errorf("days = %d, want %d", r.Days, tt.wantDays)
			}
			if r.Mode != models.RangePreset {
				t.Errorf("mode = %q, want preset", r.Mode)
			}
		})
	}
}

func TestLastQuarterAcrossYearBoundary(t *testing.T) {
	rs := New(time.UTC, fixedClock(time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)))
	r, err := rs.Resolve(Request{Preset: LastQuarter})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Start.Equal(date(2024, time.October, 1)) || !r.End.Equal(date(2025, time.January, 1)) {
		t.Errorf("got [%v, %v), want Q4 2024", r.Start, r.End)
	}
}

func TestLastYearHasTwoNamedBehaviours(t *testing.T) {
	now := time.Date(2025, time.May, 14, 10, 30, 0, 0, time.UTC)
	rs := New(time.UTC, fixedClock(now))

	trailing, err := rs.Resolve(Request{Preset: LastYear})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	taxYear, err := rs.ResolveTax(Request{Preset: LastYear})
	if err != nil {
		t.Fatalf("ResolveTax: %v", err)
	}

	if !trailing.End.Equal(now) {
		t.Errorf("trailing end = %v, want now", trailing.End)
	}
	if !taxYear.Start.Equal(date(2024, time.April, 6)) || !taxYear.End.Equal(date(2025, time.April, 6)) {
		t.Errorf("tax year = [%v, %v), want [2024-04-06, 2025-04-06)", taxYear.Start, taxYear.End)
	}
	if taxYear.Label != "Previous tax year 2024/25" {
		t.Errorf("label = %q", taxYear.Label)
	}
}

func TestTaxYearBeforeSixthApril(t *testing.T) {
	rs := New(time.UTC, fixedClock(time.Date(2025, time.April, 5, 12, 0, 0, 0, time.UTC)))
	r, err := rs.ResolveTax(Request{Preset: LastYear})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Start.Equal(date(2023, time.April, 6)) || !r.End.Equal(date(2024, time.April, 6)) {
		t.Errorf("got [%v, %v), want 2023/24 tax year", r.Start, r.End)
	}
}

func TestResolveExplicit(t *testing.T) {
	rs := New(time.UTC, fixedClock(time.Now()))

	r, err := rs.Resolve(Request{Start: "2025-01-01", End: "2025-01-31"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Start.Equal(date(2025, time.January, 1)) {
		t.Errorf("start = %v", r.Start)
	}
	if r.End.Day() != 31 || r.End.Hour() != 23 {
		t.Errorf("end = %v, want end of 31 Jan", r.End)
	}
	if r.Days != 31 {
		t.Errorf("days = %d, want 31", r.Days)
	}
	if r.Mode != models.RangeCustom {
		t.Errorf("mode = %q, want custom", r.Mode)
	}
	if r.Label != "1 Jan 2025 to 31 Jan 2025" {
		t.Errorf("label = %q", r.Label)
	}
}

func TestResolveInvalid(t *testing.T) {
	rs := New(time.UTC, nil)

	tests := []struct {
		name string
		req  Request
	}{
		{"bad start", Request{Start: "not-a-date", End: "2025-01-31"}},
		{"bad end", Request{Start: "2025-01-01", End: "31st"}},
		{"missing end", Request{Start: "2025-01-01"}},
		{"end before start", Request{Start: "2025-02-01", End: "2025-01-01"}},
		{"unknown preset", Request{Preset: "last-decade"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rs.Resolve(tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if kind := models.KindOf(err); kind != models.InvalidRange {
				t.Errorf("kind = %q, want InvalidRange", kind)
			}
		})
	}
}

func TestPreviousRangeMatchesLength(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	clocks := []time.Time{
		time.Date(2025, time.April, 2, 9, 0, 0, 0, london),   // last month spans the March DST change
		time.Date(2025, time.November, 2, 9, 0, 0, 0, london), // last month spans the October DST change
		time.Date(2024, time.March, 1, 0, 0, 0, 0, london),    // leap February
	}
	requests := []Request{
		{Preset: LastMonth}, {Preset: LastQuarter}, {Preset: LastYear}, {Preset: YearToDate},
		{Start: "2025-03-15", End: "2025-03-15"},
		{Start: "2024-12-01", End: "2025-02-28"},
	}

	for _, now := range clocks {
		rs := New(london, fixedClock(now))
		for _, req := range requests {
			r, err := rs.Resolve(req)
			if err != nil {
				t.Fatalf("Resolve(%+v): %v", req, err)
			}
			if r.Days < 1 {
				t.Errorf("%+v: days = %d, want >= 1", req, r.Days)
			}
			if !r.PrevEnd.Equal(r.Start) {
				t.Errorf("%+v: prevEnd %v != start %v", req, r.PrevEnd, r.Start)
			}
			if got := LengthDays(r.PrevStart, r.PrevEnd); got != r.Days {
				t.Errorf("%+v at %v: previous length = %d, want %d", req, now, got, r.Days)
			}
		}
	}
}

func TestLengthDaysMinimumOne(t *testing.T) {
	at := date(2025, time.June, 1)
	if got := LengthDays(at, at); got != 1 {
		t.Errorf("LengthDays(zero width) = %d, want 1", got)
	}
}

func TestOpenEndedPresetKeyIsStableWithinADay(t *testing.T) {
	morning := time.Date(2025, time.May, 14, 10, 30, 0, 123456789, time.UTC)
	later := morning.Add(3*time.Minute + 17*time.Nanosecond)
	tomorrow := morning.Add(24 * time.Hour)

	for _, preset := range []string{YearToDate, LastYear} {
		t.Run(preset, func(t *testing.T) {
			a, err := New(time.UTC, fixedClock(morning)).Resolve(Request{Preset: preset})
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			b, _ := New(time.UTC, fixedClock(later)).Resolve(Request{Preset: preset})
			c, _ := New(time.UTC, fixedClock(tomorrow)).Resolve(Request{Preset: preset})

			if !a.OpenEnded {
				t.Errorf("%s should be open-ended", preset)
			}
			if a.Key() != b.Key() {
				t.Errorf("keys differ within a day: %q vs %q", a.Key(), b.Key())
			}
			if a.Key() == c.Key() {
				t.Errorf("key %q reused on the next day", a.Key())
			}
			if !b.End.Equal(later) {
				t.Errorf("end = %v, want the resolution instant", b.End)
			}
		})
	}
}

func TestClosedRangesAreNotOpenEnded(t *testing.T) {
	rs := New(time.UTC, fixedClock(time.Date(2025, time.May, 14, 10, 30, 0, 0, time.UTC)))

	for _, req := range []Request{
		{Preset: LastMonth},
		{Preset: LastQuarter},
		{Start: "2025-01-01", End: "2025-03-31"},
	} {
		r, err := rs.Resolve(req)
		if err != nil {
			t.Fatalf("Resolve(%+v): %v", req, err)
		}
		if r.OpenEnded {
			t.Errorf("Resolve(%+v) is open-ended", req)
		}
	}

	tax, _ := rs.ResolveTax(Request{Preset: LastYear})
	if tax.OpenEnded {
		t.Error("previous tax year is open-ended")
	}
}
