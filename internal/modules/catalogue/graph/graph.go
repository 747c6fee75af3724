// Package graph owns the per-year record bundle of a learning unit: the unit
// year, its container and attachments, components and volume repartitions.
package graph

import (
	"github.com/osisteam/catalogue-backend/internal/data/repos"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

// Graph is one learning unit year with everything hanging off it.
type Graph struct {
	LearningUnitYear  *types.LearningUnitYear
	Components        []*types.LearningComponentYear
	TeachingMaterials []*types.TeachingMaterial
}

func (g *Graph) Unit() *types.LearningUnit {
	if g == nil || g.LearningUnitYear == nil {
		return nil
	}
	return g.LearningUnitYear.LearningUnit
}

func (g *Graph) Container() *types.LearningContainerYear {
	if g == nil || g.LearningUnitYear == nil {
		return nil
	}
	return g.LearningUnitYear.LearningContainerYear
}

func (g *Graph) Year() int {
	if g == nil || g.LearningUnitYear == nil {
		return 0
	}
	return g.LearningUnitYear.Year()
}

// Attachments maps each present role to its entity id.
func (g *Graph) Attachments() map[types.EntityContainerYearType]uint {
	out := map[types.EntityContainerYearType]uint{}
	c := g.Container()
	if c == nil {
		return out
	}
	for _, ecy := range c.EntityContainerYears {
		if ecy != nil {
			out[ecy.Type] = ecy.EntityID
		}
	}
	return out
}

// Component returns the first component with the given (possibly nil) type.
func (g *Graph) Component(t *types.ComponentType) *types.LearningComponentYear {
	probe := types.LearningComponentYear{Type: t}
	for _, c := range g.Components {
		if c != nil && c.SameType(probe) {
			return c
		}
	}
	return nil
}

type Service struct {
	repos repos.Set
	log   *logger.Logger
}

func New(rs repos.Set, baseLog *logger.Logger) *Service {
	return &Service{repos: rs, log: baseLog.With("module", "LearningUnitGraph")}
}

func (s *Service) Load(dbc dbctx.Context, learningUnitYearID uint) (*Graph, error) {
	const op = "LearningUnitGraph.Load"
	luy, err := s.repos.LearningUnitYear.GetByID(dbc, learningUnitYearID)
	if err != nil {
		return nil, err
	}
	if luy == nil {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "learning unit year %d not found", learningUnitYearID)
	}
	return s.complete(dbc, luy)
}

// LoadForUnit returns the graph of a unit in one year, or nil when absent.
func (s *Service) LoadForUnit(dbc dbctx.Context, learningUnitID, academicYearID uint) (*Graph, error) {
	luy, err := s.repos.LearningUnitYear.GetByUnitAndYear(dbc, learningUnitID, academicYearID)
	if err != nil || luy == nil {
		return nil, err
	}
	return s.complete(dbc, luy)
}

func (s *Service) complete(dbc dbctx.Context, luy *types.LearningUnitYear) (*Graph, error) {
	comps, err := s.repos.LearningComponentYear.ListByLearningUnitYear(dbc, luy.ID)
	if err != nil {
		return nil, err
	}
	tms, err := s.repos.TeachingMaterial.ListByLearningUnitYear(dbc, luy.ID)
	if err != nil {
		return nil, err
	}
	return &Graph{LearningUnitYear: luy, Components: comps, TeachingMaterials: tms}, nil
}

// FullOf returns the FULL unit year sharing the container of luy (luy itself when FULL).
func (s *Service) FullOf(dbc dbctx.Context, luy *types.LearningUnitYear) (*types.LearningUnitYear, error) {
	if luy == nil {
		return nil, nil
	}
	if luy.IsFull() {
		return luy, nil
	}
	siblings, err := s.repos.LearningUnitYear.ListByContainer(dbc, luy.LearningContainerYearID)
	if err != nil {
		return nil, err
	}
	for _, sib := range siblings {
		if sib.IsFull() {
			return sib, nil
		}
	}
	return nil, nil
}

// PartimsOf returns the PARTIM unit years sharing the container of a FULL.
func (s *Service) PartimsOf(dbc dbctx.Context, luy *types.LearningUnitYear) ([]*types.LearningUnitYear, error) {
	out := []*types.LearningUnitYear{}
	if luy == nil || !luy.IsFull() {
		return out, nil
	}
	siblings, err := s.repos.LearningUnitYear.ListByContainer(dbc, luy.LearningContainerYearID)
	if err != nil {
		return nil, err
	}
	for _, sib := range siblings {
		if sib.IsPartim() {
			out = append(out, sib)
		}
	}
	return out, nil
}
