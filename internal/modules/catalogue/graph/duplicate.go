package graph

import (
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
)

// DuplicateTo deep-copies src into target. A unit year already present in
// target for the same unit is replaced: its components, repartitions and
// teaching materials are dropped, its container is rewritten in place and
// external references follow the new row. A PARTIM is copied into the
// container of its FULL in target, which must exist.
func (s *Service) DuplicateTo(dbc dbctx.Context, target *types.AcademicYear, src *Graph) (*Graph, error) {
	const op = "LearningUnitGraph.DuplicateTo"
	if target == nil || src == nil || src.LearningUnitYear == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "target year and source graph are required", nil)
	}
	srcLUY := src.LearningUnitYear
	if srcLUY.AcademicYearID == target.ID {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "cannot duplicate a learning unit year onto itself", nil)
	}

	existing, err := s.repos.LearningUnitYear.GetByUnitAndYear(dbc, srcLUY.LearningUnitID, target.ID)
	if err != nil {
		return nil, err
	}

	var lcyID uint
	if srcLUY.IsFull() {
		lcyID, err = s.copyContainer(dbc, target, src, existing)
		if err != nil {
			return nil, err
		}
	} else {
		full, err := s.FullOf(dbc, srcLUY)
		if err != nil {
			return nil, err
		}
		if full == nil {
			return nil, domainagg.Errorf(domainagg.CodeValidation, op, "partim %s has no FULL in its year", srcLUY.Acronym)
		}
		targetFull, err := s.repos.LearningUnitYear.GetByUnitAndYear(dbc, full.LearningUnitID, target.ID)
		if err != nil {
			return nil, err
		}
		if targetFull == nil {
			return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "FULL %s does not exist in %d", full.Acronym, target.Year)
		}
		lcyID = targetFull.LearningContainerYearID
	}

	var replacedID uint
	if existing != nil {
		replacedID = existing.ID
		if err := s.removeUnitYear(dbc, existing); err != nil {
			return nil, err
		}
	}

	luy := copyUnitYear(srcLUY)
	luy.AcademicYearID = target.ID
	luy.LearningContainerYearID = lcyID
	if _, err := s.repos.LearningUnitYear.Create(dbc, luy); err != nil {
		return nil, err
	}

	attachments, err := s.repos.EntityContainerYear.ListByContainer(dbc, lcyID)
	if err != nil {
		return nil, err
	}
	byType := make(map[types.EntityContainerYearType]*types.EntityContainerYear, len(attachments))
	for _, a := range attachments {
		byType[a.Type] = a
	}
	for _, sc := range src.Components {
		if err := s.copyComponent(dbc, luy.ID, lcyID, sc, byType); err != nil {
			return nil, err
		}
	}

	if len(src.TeachingMaterials) > 0 {
		tms := make([]*types.TeachingMaterial, 0, len(src.TeachingMaterials))
		for _, tm := range src.TeachingMaterials {
			tms = append(tms, &types.TeachingMaterial{
				LearningUnitYearID: luy.ID,
				Title:              tm.Title,
				Mandatory:          tm.Mandatory,
				Order:              tm.Order,
			})
		}
		if _, err := s.repos.TeachingMaterial.Create(dbc, tms); err != nil {
			return nil, err
		}
	}

	if replacedID != 0 {
		if err := s.repos.Reference.Repoint(dbc, replacedID, luy.ID); err != nil {
			return nil, err
		}
	}
	return s.Load(dbc, luy.ID)
}

// copyContainer writes the source container into target, reusing the
// container of existing when there is one, and returns its id.
func (s *Service) copyContainer(dbc dbctx.Context, target *types.AcademicYear, src *Graph, existing *types.LearningUnitYear) (uint, error) {
	sc := src.Container()
	if sc == nil {
		return 0, domainagg.NewError(domainagg.CodeInternal, "LearningUnitGraph.DuplicateTo", "source container not loaded", nil)
	}
	var lcyID uint
	if existing != nil && existing.LearningContainerYearID != 0 {
		lcyID = existing.LearningContainerYearID
		if err := s.repos.LearningContainerYear.UpdateFields(dbc, lcyID, containerFields(sc)); err != nil {
			return 0, err
		}
	} else {
		lcy := &types.LearningContainerYear{
			AcademicYearID:     target.ID,
			Acronym:            sc.Acronym,
			CommonTitle:        sc.CommonTitle,
			CommonTitleEnglish: sc.CommonTitleEnglish,
			ContainerType:      sc.ContainerType,
			InCharge:           sc.InCharge,
			LanguageID:         sc.LanguageID,
			CampusID:           sc.CampusID,
		}
		if _, err := s.repos.LearningContainerYear.Create(dbc, lcy); err != nil {
			return 0, err
		}
		lcyID = lcy.ID
	}
	if err := s.ReconcileAttachments(dbc, lcyID, src.Attachments()); err != nil {
		return 0, err
	}
	return lcyID, nil
}

func (s *Service) copyComponent(dbc dbctx.Context, luyID, lcyID uint, sc *types.LearningComponentYear, byType map[types.EntityContainerYearType]*types.EntityContainerYear) error {
	c := &types.LearningComponentYear{
		LearningContainerYearID: lcyID,
		Type:                    sc.Type,
		Acronym:                 sc.Acronym,
		PlannedClasses:          sc.PlannedClasses,
		HourlyVolumeTotalAnnual: sc.HourlyVolumeTotalAnnual,
		HourlyVolumePartialQ1:   sc.HourlyVolumePartialQ1,
		HourlyVolumePartialQ2:   sc.HourlyVolumePartialQ2,
	}
	if _, err := s.repos.LearningComponentYear.Create(dbc, c); err != nil {
		return err
	}
	if _, err := s.repos.LearningUnitComponent.Create(dbc, &types.LearningUnitComponent{
		LearningUnitYearID:      luyID,
		LearningComponentYearID: c.ID,
	}); err != nil {
		return err
	}

	copied := map[types.EntityContainerYearType]bool{}
	for _, ecoy := range sc.EntityComponentYears {
		if ecoy == nil || ecoy.EntityContainerYear == nil {
			continue
		}
		t := ecoy.EntityContainerYear.Type
		a := byType[t]
		if a == nil || !t.IsRequirement() || copied[t] {
			continue
		}
		if _, err := s.repos.EntityComponentYear.Create(dbc, &types.EntityComponentYear{
			EntityContainerYearID:   a.ID,
			LearningComponentYearID: c.ID,
			RepartitionVolume:       ecoy.RepartitionVolume,
		}); err != nil {
			return err
		}
		copied[t] = true
	}
	for t, a := range byType {
		if !t.IsRequirement() || copied[t] {
			continue
		}
		if err := s.ensureRepartitions(dbc, a, []*types.LearningComponentYear{c}); err != nil {
			return err
		}
	}
	return nil
}

func copyUnitYear(src *types.LearningUnitYear) *types.LearningUnitYear {
	return &types.LearningUnitYear{
		LearningUnitID:       src.LearningUnitID,
		Acronym:              src.Acronym,
		Subtype:              src.Subtype,
		SpecificTitle:        src.SpecificTitle,
		SpecificTitleEnglish: src.SpecificTitleEnglish,
		Credits:              src.Credits,
		Status:               src.Status,
		Session:              src.Session,
		Quadrimester:         src.Quadrimester,
		InternshipSubtype:    src.InternshipSubtype,
		LanguageID:           src.LanguageID,
		CampusID:             src.CampusID,
		AttributionProcedure: src.AttributionProcedure,
		Periodicity:          src.Periodicity,
	}
}

func containerFields(c *types.LearningContainerYear) map[string]interface{} {
	return map[string]interface{}{
		"acronym":              c.Acronym,
		"common_title":         c.CommonTitle,
		"common_title_english": c.CommonTitleEnglish,
		"container_type":       c.ContainerType,
		"in_charge":            c.InCharge,
		"language_id":          c.LanguageID,
		"campus_id":            c.CampusID,
	}
}
