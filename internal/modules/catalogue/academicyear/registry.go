package academicyear

import (
	"sort"
	"time"

	"github.com/osisteam/catalogue-backend/internal/data/repos"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
)

// CutoffMonth and CutoffDay mark the day an academic year starts when the
// registered date ranges do not settle which year "now" belongs to.
const (
	CutoffMonth = time.September
	CutoffDay   = 15
)

// Registry is an ordered, request-scoped view of the registered academic years.
type Registry struct {
	years []*types.AcademicYear
	index map[int]int
	byID  map[uint]*types.AcademicYear
	nowFn func() time.Time
}

type Option func(*Registry)

// WithClock overrides the time source used by Current.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.nowFn = now
		}
	}
}

func New(years []*types.AcademicYear, opts ...Option) *Registry {
	sorted := make([]*types.AcademicYear, 0, len(years))
	for _, y := range years {
		if y != nil {
			sorted = append(sorted, y)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	r := &Registry{
		years: sorted,
		index: make(map[int]int, len(sorted)),
		byID:  make(map[uint]*types.AcademicYear, len(sorted)),
		nowFn: time.Now,
	}
	for i, y := range sorted {
		r.index[y.Year] = i
		r.byID[y.ID] = y
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reads every academic year through repo.
func Load(dbc dbctx.Context, repo repos.AcademicYearRepo, opts ...Option) (*Registry, error) {
	rows, err := repo.ListAll(dbc)
	if err != nil {
		return nil, err
	}
	return New(rows, opts...), nil
}

func unknownYear(op string, year int) error {
	return domainagg.Errorf(domainagg.CodeUnknownYear, op, "academic year %d is not registered", year)
}

func (r *Registry) Len() int { return len(r.years) }

func (r *Registry) Get(year int) (*types.AcademicYear, error) {
	i, ok := r.index[year]
	if !ok {
		return nil, unknownYear("AcademicYear.Get", year)
	}
	return r.years[i], nil
}

func (r *Registry) ByID(id uint) (*types.AcademicYear, error) {
	y, ok := r.byID[id]
	if !ok {
		return nil, domainagg.Errorf(domainagg.CodeUnknownYear, "AcademicYear.ByID", "academic year id %d is not registered", id)
	}
	return y, nil
}

// Current returns the year whose range contains now. When no range (or more
// than one) matches, the September cut-off decides.
func (r *Registry) Current() (*types.AcademicYear, error) {
	return r.At(r.nowFn())
}

func (r *Registry) At(t time.Time) (*types.AcademicYear, error) {
	var match *types.AcademicYear
	n := 0
	for _, y := range r.years {
		if y.Contains(t) {
			match = y
			n++
		}
	}
	if n == 1 {
		return match, nil
	}
	year := CutoffYear(t)
	i, ok := r.index[year]
	if !ok {
		return nil, unknownYear("AcademicYear.Current", year)
	}
	return r.years[i], nil
}

// CutoffYear maps a date to an academic year number: a day before
// September 15 belongs to the previous year.
func CutoffYear(t time.Time) int {
	cut := time.Date(t.Year(), CutoffMonth, CutoffDay, 0, 0, 0, 0, t.Location())
	if t.Before(cut) {
		return t.Year() - 1
	}
	return t.Year()
}

func (r *Registry) Next(year int) (*types.AcademicYear, error) {
	i, ok := r.index[year]
	if !ok {
		return nil, unknownYear("AcademicYear.Next", year)
	}
	if i+1 >= len(r.years) {
		return nil, unknownYear("AcademicYear.Next", year+1)
	}
	return r.years[i+1], nil
}

func (r *Registry) Prev(year int) (*types.AcademicYear, error) {
	i, ok := r.index[year]
	if !ok {
		return nil, unknownYear("AcademicYear.Prev", year)
	}
	if i == 0 {
		return nil, unknownYear("AcademicYear.Prev", year-1)
	}
	return r.years[i-1], nil
}

// Plus returns year+k (k may be negative).
func (r *Registry) Plus(year, k int) (*types.AcademicYear, error) {
	i, ok := r.index[year]
	if !ok {
		return nil, unknownYear("AcademicYear.Plus", year)
	}
	j := i + k
	if j < 0 || j >= len(r.years) {
		return nil, unknownYear("AcademicYear.Plus", year+k)
	}
	return r.years[j], nil
}

// Range returns the registered years in [a, b], both bounds required to exist.
func (r *Registry) Range(a, b int) ([]*types.AcademicYear, error) {
	ia, ok := r.index[a]
	if !ok {
		return nil, unknownYear("AcademicYear.Range", a)
	}
	ib, ok := r.index[b]
	if !ok {
		return nil, unknownYear("AcademicYear.Range", b)
	}
	if ib < ia {
		return []*types.AcademicYear{}, nil
	}
	out := make([]*types.AcademicYear, ib-ia+1)
	copy(out, r.years[ia:ib+1])
	return out, nil
}

func (r *Registry) Last() (*types.AcademicYear, error) {
	if len(r.years) == 0 {
		return nil, domainagg.NewError(domainagg.CodeUnknownYear, "AcademicYear.Last", "no academic year registered", nil)
	}
	return r.years[len(r.years)-1], nil
}

// Horizon is the last year forward propagation may reach: current + span,
// clamped to the last registered year.
func (r *Registry) Horizon(span int) (int, error) {
	cur, err := r.Current()
	if err != nil {
		return 0, err
	}
	last, err := r.Last()
	if err != nil {
		return 0, err
	}
	h := cur.Year + span
	if h > last.Year {
		h = last.Year
	}
	return h, nil
}
