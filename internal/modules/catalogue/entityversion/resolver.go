package entityversion

import (
	"sort"
	"strings"
	"time"

	"github.com/osisteam/catalogue-backend/internal/data/repos"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
)

// maxDepth bounds parent walks; the forest is validated on insert but rows
// written by other tools are not.
const maxDepth = 64

// Resolver answers point-in-time questions about the entity forest. It is a
// request-scoped snapshot and is never mutated after construction.
type Resolver struct {
	byEntity map[uint][]*types.EntityVersion
}

func New(versions []*types.EntityVersion) *Resolver {
	r := &Resolver{byEntity: make(map[uint][]*types.EntityVersion)}
	for _, v := range versions {
		if v == nil {
			continue
		}
		r.byEntity[v.EntityID] = append(r.byEntity[v.EntityID], v)
	}
	for _, vs := range r.byEntity {
		sort.SliceStable(vs, func(i, j int) bool { return vs[i].StartDate.Before(vs[j].StartDate) })
	}
	return r
}

// Load reads the whole version history through repo.
func Load(dbc dbctx.Context, repo repos.EntityRepo) (*Resolver, error) {
	rows, err := repo.ListAllVersions(dbc)
	if err != nil {
		return nil, err
	}
	return New(rows), nil
}

// Versions returns the history of one entity ordered by start date.
func (r *Resolver) Versions(entityID uint) []*types.EntityVersion {
	return r.byEntity[entityID]
}

// At returns the version of entityID covering date, or nil.
func (r *Resolver) At(entityID uint, date time.Time) *types.EntityVersion {
	for _, v := range r.byEntity[entityID] {
		if v.Covers(date) {
			return v
		}
	}
	return nil
}

// ParentChain returns the version of entityID at date followed by its
// ancestors, nearest first.
func (r *Resolver) ParentChain(entityID uint, date time.Time) []*types.EntityVersion {
	var out []*types.EntityVersion
	seen := map[uint]bool{}
	id := entityID
	for depth := 0; depth < maxDepth; depth++ {
		if seen[id] {
			break
		}
		seen[id] = true
		v := r.At(id, date)
		if v == nil {
			break
		}
		out = append(out, v)
		if v.ParentID == nil {
			break
		}
		id = *v.ParentID
	}
	return out
}

// FindFaculty returns the nearest FACULTY in the chain of entityID (itself
// included) valid on the start date of the academic year.
func (r *Resolver) FindFaculty(entityID uint, ay *types.AcademicYear) *types.EntityVersion {
	if ay == nil {
		return nil
	}
	for _, v := range r.ParentChain(entityID, ay.StartDate) {
		if v.EntityType == types.EntityFaculty {
			return v
		}
	}
	return nil
}

// IsDescendant reports whether entityID sits strictly below ancestorID on date.
func (r *Resolver) IsDescendant(entityID, ancestorID uint, date time.Time) bool {
	chain := r.ParentChain(entityID, date)
	for i, v := range chain {
		if i == 0 {
			continue
		}
		if v.EntityID == ancestorID {
			return true
		}
	}
	return false
}

// Descendants returns every entity strictly below entityID on date.
func (r *Resolver) Descendants(entityID uint, date time.Time) []uint {
	children := map[uint][]uint{}
	for id := range r.byEntity {
		v := r.At(id, date)
		if v == nil || v.ParentID == nil {
			continue
		}
		children[*v.ParentID] = append(children[*v.ParentID], id)
	}
	var out []uint
	seen := map[uint]bool{entityID: true}
	queue := []uint{entityID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// WithDescendants returns entityID followed by its descendants on date.
func (r *Resolver) WithDescendants(entityID uint, date time.Time) []uint {
	return append([]uint{entityID}, r.Descendants(entityID, date)...)
}

// MostRecent returns the latest-starting version of entityID, or nil.
func (r *Resolver) MostRecent(entityID uint) *types.EntityVersion {
	vs := r.byEntity[entityID]
	if len(vs) == 0 {
		return nil
	}
	return vs[len(vs)-1]
}

// MostRecentAcronym is the acronym of MostRecent, or "".
func (r *Resolver) MostRecentAcronym(entityID uint) string {
	if v := r.MostRecent(entityID); v != nil {
		return v.Acronym
	}
	return ""
}

// FindByAcronym returns the entity whose version carrying acronym covers date.
func (r *Resolver) FindByAcronym(acronym string, date time.Time) *types.EntityVersion {
	acronym = strings.ToUpper(strings.TrimSpace(acronym))
	for _, vs := range r.byEntity {
		for _, v := range vs {
			if strings.ToUpper(v.Acronym) == acronym && v.Covers(date) {
				return v
			}
		}
	}
	return nil
}
