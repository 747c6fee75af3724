package graph

import (
	"regexp"
	"strings"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/volumes"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
)

// FindByAcronym matches acronyms against a case-insensitive regular
// expression. academicYearID 0 searches every year.
func (s *Service) FindByAcronym(dbc dbctx.Context, pattern string, academicYearID uint) ([]*types.LearningUnitYear, error) {
	const op = "LearningUnitGraph.FindByAcronym"
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, domainagg.Errorf(domainagg.CodeValidation, op, "invalid acronym pattern: %v", err)
	}
	rows, err := s.repos.LearningUnitYear.ListByAcronymPrefix(dbc, literalPrefix(pattern), academicYearID)
	if err != nil {
		return nil, err
	}
	out := make([]*types.LearningUnitYear, 0, len(rows))
	for _, r := range rows {
		if re.MatchString(r.Acronym) {
			out = append(out, r)
		}
	}
	return out, nil
}

// literalPrefix narrows the SQL scan for anchored patterns such as ^LBIR.
func literalPrefix(pattern string) string {
	if !strings.HasPrefix(pattern, "^") {
		return ""
	}
	re, err := regexp.Compile(pattern[1:])
	if err != nil {
		return ""
	}
	prefix, _ := re.LiteralPrefix()
	return prefix
}

func (s *Service) FindByRequirementEntities(dbc dbctx.Context, entityIDs []uint, academicYearID uint) ([]*types.LearningUnitYear, error) {
	return s.repos.LearningUnitYear.ListByRequirementEntities(dbc, entityIDs, academicYearID)
}

func (s *Service) FindByTitle(dbc dbctx.Context, substr string, academicYearID uint) ([]*types.LearningUnitYear, error) {
	return s.repos.LearningUnitYear.ListByTitle(dbc, substr, academicYearID)
}

func (s *Service) FindByYear(dbc dbctx.Context, academicYearID uint) ([]*types.LearningUnitYear, error) {
	return s.repos.LearningUnitYear.ListByAcademicYear(dbc, academicYearID)
}

func (s *Service) FindByUnitFromYear(dbc dbctx.Context, learningUnitID uint, minYear int) ([]*types.LearningUnitYear, error) {
	return s.repos.LearningUnitYear.ListByUnitFromYear(dbc, learningUnitID, minYear)
}

// VolumeWarnings runs the volume checks on g and its FULL/PARTIM relatives.
func (s *Service) VolumeWarnings(dbc dbctx.Context, g *Graph) ([]string, error) {
	if g == nil || g.LearningUnitYear == nil {
		return []string{}, nil
	}
	unit := toVolumeUnit(g.LearningUnitYear, g.Components)

	var relatives []*types.LearningUnitYear
	if g.LearningUnitYear.IsFull() {
		partims, err := s.PartimsOf(dbc, g.LearningUnitYear)
		if err != nil {
			return nil, err
		}
		relatives = partims
	} else {
		full, err := s.FullOf(dbc, g.LearningUnitYear)
		if err != nil {
			return nil, err
		}
		if full != nil {
			relatives = append(relatives, full)
		}
	}
	related := make([]volumes.Unit, 0, len(relatives))
	for _, r := range relatives {
		comps, err := s.repos.LearningComponentYear.ListByLearningUnitYear(dbc, r.ID)
		if err != nil {
			return nil, err
		}
		related = append(related, toVolumeUnit(r, comps))
	}
	return volumes.Check(unit, related...), nil
}

func toVolumeUnit(luy *types.LearningUnitYear, comps []*types.LearningComponentYear) volumes.Unit {
	u := volumes.Unit{Acronym: luy.Acronym, Subtype: luy.Subtype, Credits: luy.Credits}
	for _, c := range comps {
		u.Components = append(u.Components, volumes.FromModel(c))
	}
	return u
}
