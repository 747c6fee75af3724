package entityversion

import (
	"strings"
	"time"

	"github.com/osisteam/catalogue-backend/internal/data/repos"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
)

// Check reports why v cannot join the forest, or nil. Rules: no overlap with
// another version of the same entity, no acronym shared with an overlapping
// version of another entity, and no parent cycle at any date v covers.
func (r *Resolver) Check(v *types.EntityVersion) error {
	const op = "EntityVersion.Insert"
	if v == nil || v.EntityID == 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, "entity is required", nil)
	}
	if strings.TrimSpace(v.Acronym) == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "acronym is required", nil)
	}
	if v.EndDate != nil && !v.EndDate.After(v.StartDate) {
		return domainagg.NewError(domainagg.CodeValidation, op, "end_date must be after start_date", nil)
	}
	if v.ParentID != nil && *v.ParentID == v.EntityID {
		return domainagg.Errorf(domainagg.CodeVersionConflict, op, "entity %d cannot be its own parent", v.EntityID)
	}

	for id, vs := range r.byEntity {
		for _, o := range vs {
			if !o.Overlaps(*v) {
				continue
			}
			if id == v.EntityID {
				return domainagg.Errorf(domainagg.CodeVersionConflict, op,
					"entity %d already has version %q from %s", v.EntityID, o.Acronym, o.StartDate.Format("2006-01-02"))
			}
			if strings.EqualFold(o.Acronym, v.Acronym) {
				return domainagg.Errorf(domainagg.CodeVersionConflict, op,
					"acronym %q is used by entity %d over the same period", v.Acronym, id)
			}
		}
	}

	if v.ParentID == nil {
		return nil
	}
	probe := r.with(v)
	for _, d := range probe.checkpoints(v) {
		if probe.hasCycle(v.EntityID, d) {
			return domainagg.Errorf(domainagg.CodeVersionConflict, op,
				"parent %d would create a cycle on %s", *v.ParentID, d.Format("2006-01-02"))
		}
	}
	return nil
}

func (r *Resolver) with(v *types.EntityVersion) *Resolver {
	all := make([]*types.EntityVersion, 0, 16)
	for _, vs := range r.byEntity {
		all = append(all, vs...)
	}
	return New(append(all, v))
}

// checkpoints are the dates inside v where the shape of the forest may change.
func (r *Resolver) checkpoints(v *types.EntityVersion) []time.Time {
	out := []time.Time{v.StartDate}
	for _, vs := range r.byEntity {
		for _, o := range vs {
			if o != v && v.Covers(o.StartDate) {
				out = append(out, o.StartDate)
			}
		}
	}
	return out
}

func (r *Resolver) hasCycle(entityID uint, date time.Time) bool {
	seen := map[uint]bool{}
	id := entityID
	for depth := 0; depth <= maxDepth; depth++ {
		if seen[id] {
			return true
		}
		seen[id] = true
		cur := r.At(id, date)
		if cur == nil || cur.ParentID == nil {
			return false
		}
		id = *cur.ParentID
	}
	return true
}

// Insert validates v against the stored history and persists it.
func Insert(dbc dbctx.Context, repo repos.EntityRepo, v *types.EntityVersion) (*types.EntityVersion, error) {
	r, err := Load(dbc, repo)
	if err != nil {
		return nil, err
	}
	if err := r.Check(v); err != nil {
		return nil, err
	}
	rows, err := repo.CreateVersions(dbc, []*types.EntityVersion{v})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}
