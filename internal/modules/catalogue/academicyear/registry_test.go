package academicyear

import (
	"testing"
	"time"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

func years(from, to int) []*types.AcademicYear {
	var out []*types.AcademicYear
	for y := to; y >= from; y-- {
		out = append(out, &types.AcademicYear{
			ID:        uint(y),
			Year:      y,
			StartDate: time.Date(y, time.September, 15, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(y+1, time.September, 14, 23, 59, 59, 0, time.UTC),
		})
	}
	return out
}

func at(t time.Time) Option { return WithClock(func() time.Time { return t }) }

func TestCurrentUsesContainingRange(t *testing.T) {
	r := New(years(2020, 2030), at(time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)))
	cur, err := r.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.Year != 2024 {
		t.Fatalf("expected 2024, got %d", cur.Year)
	}
}

func TestCurrentFallsBackToCutoff(t *testing.T) {
	// Overlapping ranges: both 2024 and 2025 claim early September 2025.
	ys := years(2024, 2025)
	for _, y := range ys {
		y.StartDate = time.Date(y.Year, time.September, 1, 0, 0, 0, 0, time.UTC)
		y.EndDate = time.Date(y.Year+1, time.September, 30, 0, 0, 0, 0, time.UTC)
	}
	r := New(ys, at(time.Date(2025, time.September, 14, 12, 0, 0, 0, time.UTC)))
	cur, err := r.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.Year != 2024 {
		t.Fatalf("day before cut-off should be 2024, got %d", cur.Year)
	}

	r = New(ys, at(time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC)))
	cur, err = r.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.Year != 2025 {
		t.Fatalf("cut-off day should be 2025, got %d", cur.Year)
	}
}

func TestNavigation(t *testing.T) {
	r := New(years(2020, 2025))
	n, err := r.Next(2022)
	if err != nil || n.Year != 2023 {
		t.Fatalf("Next(2022)=%v,%v", n, err)
	}
	p, err := r.Prev(2022)
	if err != nil || p.Year != 2021 {
		t.Fatalf("Prev(2022)=%v,%v", p, err)
	}
	rg, err := r.Range(2021, 2024)
	if err != nil || len(rg) != 4 || rg[0].Year != 2021 || rg[3].Year != 2024 {
		t.Fatalf("Range(2021,2024)=%v,%v", rg, err)
	}
	if _, err := r.Next(2025); !domainagg.IsCode(err, domainagg.CodeUnknownYear) {
		t.Fatalf("Next past the end: expected unknown_year, got %v", err)
	}
	if _, err := r.Get(1999); !domainagg.IsCode(err, domainagg.CodeUnknownYear) {
		t.Fatalf("Get(1999): expected unknown_year, got %v", err)
	}
	if _, err := r.Range(2019, 2021); !domainagg.IsCode(err, domainagg.CodeUnknownYear) {
		t.Fatalf("Range outside registry: expected unknown_year, got %v", err)
	}
}

func TestHorizonClampsToLastYear(t *testing.T) {
	r := New(years(2020, 2027), at(time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)))
	h, err := r.Horizon(6)
	if err != nil {
		t.Fatalf("Horizon: %v", err)
	}
	if h != 2027 {
		t.Fatalf("expected 2027, got %d", h)
	}
	h, err = r.Horizon(2)
	if err != nil || h != 2026 {
		t.Fatalf("Horizon(2)=%d,%v", h, err)
	}
}
