package graph

import (
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
)

// Delete removes a unit year and its dependents. Deleting a FULL also
// removes the PARTIMs sharing its container and then the container. Fails
// with in_use when another subsystem still references any removed row.
// Returns the ids of the removed unit years.
func (s *Service) Delete(dbc dbctx.Context, learningUnitYearID uint) ([]uint, error) {
	const op = "LearningUnitGraph.Delete"
	luy, err := s.repos.LearningUnitYear.GetByID(dbc, learningUnitYearID)
	if err != nil {
		return nil, err
	}
	if luy == nil {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "learning unit year %d not found", learningUnitYearID)
	}
	victims := []*types.LearningUnitYear{}
	if luy.IsFull() {
		partims, err := s.PartimsOf(dbc, luy)
		if err != nil {
			return nil, err
		}
		victims = append(victims, partims...)
	}
	victims = append(victims, luy)

	ids := make([]uint, 0, len(victims))
	for _, v := range victims {
		ids = append(ids, v.ID)
	}
	if err := s.ensureUnreferenced(dbc, op, ids); err != nil {
		return nil, err
	}

	for _, v := range victims {
		if err := s.removeUnitYear(dbc, v); err != nil {
			return nil, err
		}
	}
	if luy.IsFull() {
		if err := s.removeContainer(dbc, luy.LearningContainerYearID); err != nil {
			return nil, err
		}
	}
	s.log.Debug("Deleted learning unit year graph", "acronym", luy.Acronym, "removed", len(ids))
	return ids, nil
}

// DeleteLearningUnit removes every year of a unit, then the unit itself.
func (s *Service) DeleteLearningUnit(dbc dbctx.Context, learningUnitID uint) error {
	const op = "LearningUnitGraph.DeleteLearningUnit"
	years, err := s.repos.LearningUnitYear.ListByUnitFromYear(dbc, learningUnitID, 0)
	if err != nil {
		return err
	}
	ids := make([]uint, 0, len(years))
	for _, y := range years {
		ids = append(ids, y.ID)
	}
	if err := s.ensureUnreferenced(dbc, op, ids); err != nil {
		return err
	}
	for _, y := range years {
		if _, err := s.Delete(dbc, y.ID); err != nil {
			return err
		}
	}
	return s.repos.LearningUnit.DeleteByID(dbc, learningUnitID)
}

func (s *Service) ensureUnreferenced(dbc dbctx.Context, op string, learningUnitYearIDs []uint) error {
	n, err := s.repos.Reference.CountByLearningUnitYears(dbc, learningUnitYearIDs)
	if err != nil {
		return err
	}
	if n > 0 {
		return domainagg.Errorf(domainagg.CodeInUse, op, "learning unit year is referenced by %d row(s) of other subsystems", n)
	}
	return nil
}

// removeUnitYear drops one unit year with its own components and materials.
// The container and its attachments are left alone.
func (s *Service) removeUnitYear(dbc dbctx.Context, luy *types.LearningUnitYear) error {
	links, err := s.repos.LearningUnitComponent.ListByLearningUnitYear(dbc, luy.ID)
	if err != nil {
		return err
	}
	compIDs := make([]uint, 0, len(links))
	for _, l := range links {
		compIDs = append(compIDs, l.LearningComponentYearID)
	}
	if err := s.repos.EntityComponentYear.DeleteByComponents(dbc, compIDs); err != nil {
		return err
	}
	if err := s.repos.LearningUnitComponent.DeleteByLearningUnitYear(dbc, luy.ID); err != nil {
		return err
	}
	if err := s.repos.LearningComponentYear.DeleteByIDs(dbc, compIDs); err != nil {
		return err
	}
	if err := s.repos.TeachingMaterial.DeleteByLearningUnitYears(dbc, []uint{luy.ID}); err != nil {
		return err
	}
	return s.repos.LearningUnitYear.DeleteByIDs(dbc, []uint{luy.ID})
}

func (s *Service) removeContainer(dbc dbctx.Context, learningContainerYearID uint) error {
	remaining, err := s.repos.LearningUnitYear.ListByContainer(dbc, learningContainerYearID)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return nil
	}
	comps, err := s.repos.LearningComponentYear.ListByContainer(dbc, learningContainerYearID)
	if err != nil {
		return err
	}
	compIDs := make([]uint, 0, len(comps))
	for _, c := range comps {
		compIDs = append(compIDs, c.ID)
	}
	if err := s.repos.EntityComponentYear.DeleteByComponents(dbc, compIDs); err != nil {
		return err
	}
	if err := s.repos.LearningComponentYear.DeleteByIDs(dbc, compIDs); err != nil {
		return err
	}
	if err := s.repos.EntityContainerYear.DeleteByContainers(dbc, []uint{learningContainerYearID}); err != nil {
		return err
	}
	return s.repos.LearningContainerYear.DeleteByIDs(dbc, []uint{learningContainerYearID})
}
