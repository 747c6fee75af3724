package snapshot

import (
	"github.com/osisteam/catalogue-backend/internal/data/repos"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/graph"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
)

// Restorer writes snapshots back into the live graph.
type Restorer struct {
	repos repos.Set
	graph *graph.Service
}

func NewRestorer(rs repos.Set, g *graph.Service) *Restorer {
	return &Restorer{repos: rs, graph: g}
}

// Restore rewrites the snapshotted fields of the unit year, its container
// and unit, reconciles the attachments, then puts component volumes and
// repartitions back.
func (r *Restorer) Restore(dbc dbctx.Context, learningUnitYearID uint, s Snapshot) error {
	const op = "Snapshot.Restore"
	luy, err := r.repos.LearningUnitYear.GetByID(dbc, learningUnitYearID)
	if err != nil {
		return err
	}
	if luy == nil {
		return domainagg.Errorf(domainagg.CodeNotFound, op, "learning unit year %d not found", learningUnitYearID)
	}
	if s.LearningUnitYear.ID != 0 && s.LearningUnitYear.ID != luy.ID {
		return domainagg.Errorf(domainagg.CodeInternal, op, "snapshot belongs to learning unit year %d", s.LearningUnitYear.ID)
	}

	extended := s.Schema >= 2

	uy := s.LearningUnitYear
	luyUpdates := map[string]interface{}{
		"acronym":            uy.Acronym,
		"specific_title":     uy.SpecificTitle,
		"internship_subtype": uy.InternshipSubtype,
		"credits":            uy.CreditsDecimal(),
		"campus_id":          uy.Campus,
		"language_id":        uy.Language,
		"periodicity":        uy.Periodicity,
	}
	c := s.LearningContainerYear
	lcyUpdates := map[string]interface{}{
		"acronym":        c.Acronym,
		"common_title":   c.CommonTitle,
		"container_type": c.ContainerType,
		"in_charge":      c.InCharge,
	}
	u := s.LearningUnit
	luUpdates := map[string]interface{}{
		"end_year": u.EndYear,
	}
	if extended {
		luyUpdates["specific_title_english"] = uy.SpecificTitleEnglish
		luyUpdates["status"] = uy.Status
		luyUpdates["session"] = uy.Session
		luyUpdates["quadrimester"] = uy.Quadrimester
		luyUpdates["attribution_procedure"] = uy.AttributionProcedure
		lcyUpdates["common_title_english"] = c.CommonTitleEnglish
		luUpdates["periodicity"] = u.Periodicity
		luUpdates["faculty_remark"] = u.FacultyRemark
		luUpdates["other_remark"] = u.OtherRemark
	}

	if err := r.repos.LearningUnitYear.UpdateFields(dbc, luy.ID, luyUpdates); err != nil {
		return err
	}
	if err := r.repos.LearningContainerYear.UpdateFields(dbc, luy.LearningContainerYearID, lcyUpdates); err != nil {
		return err
	}
	if err := r.repos.LearningUnit.UpdateFields(dbc, luy.LearningUnitID, luUpdates); err != nil {
		return err
	}
	if err := r.graph.ReconcileAttachments(dbc, luy.LearningContainerYearID, s.Entities.Map()); err != nil {
		return err
	}
	if !extended {
		return nil
	}
	return r.restoreComponents(dbc, luy.ID, s.Components)
}

// restoreComponents runs after the attachments are back, so every
// requirement role of the snapshot has its repartition row again.
func (r *Restorer) restoreComponents(dbc dbctx.Context, learningUnitYearID uint, comps []Component) error {
	const op = "Snapshot.Restore"
	live, err := r.repos.LearningComponentYear.ListByLearningUnitYear(dbc, learningUnitYearID)
	if err != nil {
		return err
	}
	byID := make(map[uint]*types.LearningComponentYear, len(live))
	for _, lc := range live {
		byID[lc.ID] = lc
	}
	for _, sc := range comps {
		lc := byID[sc.ID]
		if lc == nil {
			return domainagg.Errorf(domainagg.CodeInternal, op, "component %d of the snapshot no longer exists", sc.ID)
		}
		if err := r.repos.LearningComponentYear.UpdateFields(dbc, lc.ID, map[string]interface{}{
			"planned_classes":            sc.PlannedClasses,
			"hourly_volume_total_annual": sc.Total,
			"hourly_volume_partial_q1":   sc.Q1,
			"hourly_volume_partial_q2":   sc.Q2,
		}); err != nil {
			return err
		}
		for _, ecoy := range lc.EntityComponentYears {
			if ecoy == nil || ecoy.EntityContainerYear == nil {
				continue
			}
			volume, ok := sc.Repartitions[ecoy.EntityContainerYear.Type]
			if !ok || volume.Equal(ecoy.RepartitionVolume) {
				continue
			}
			if err := r.repos.EntityComponentYear.UpdateVolume(dbc, ecoy.ID, volume); err != nil {
				return err
			}
		}
	}
	return nil
}
