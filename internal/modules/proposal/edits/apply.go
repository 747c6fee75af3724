package edits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/osisteam/catalogue-backend/internal/data/repos"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/graph"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"github.com/shopspring/decimal"
)

// Applier validates edits and writes them into a loaded graph.
type Applier struct {
	repos    repos.Set
	graph    *graph.Service
	validate *validator.Validate
	log      *logger.Logger
}

func NewApplier(rs repos.Set, g *graph.Service, baseLog *logger.Logger) *Applier {
	return &Applier{
		repos:    rs,
		graph:    g,
		validate: NewValidator(),
		log:      baseLog.With("module", "ProposalEdits"),
	}
}

// Validate runs the struct rules on v (edits or a creation payload).
func (a *Applier) Validate(op string, v interface{}) error {
	if err := a.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			parts := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return domainagg.NewError(domainagg.CodeValidation, op, strings.Join(parts, "; "), err)
		}
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	return nil
}

// Apply writes e into g and returns the reloaded graph with its volume warnings.
func (a *Applier) Apply(dbc dbctx.Context, g *graph.Graph, e Edits) (*graph.Graph, []string, error) {
	const op = "Edits.Apply"
	if g == nil || g.LearningUnitYear == nil {
		return nil, nil, domainagg.NewError(domainagg.CodeInternal, op, "graph not loaded", nil)
	}
	if err := a.Validate(op, e); err != nil {
		return nil, nil, err
	}
	luy := g.LearningUnitYear
	lcy := g.Container()
	if lcy == nil {
		return nil, nil, domainagg.Errorf(domainagg.CodeInternal, op, "learning unit year %d has no container", luy.ID)
	}

	luyUpdates := map[string]interface{}{}
	lcyUpdates := map[string]interface{}{}
	luUpdates := map[string]interface{}{}

	if e.Acronym != nil {
		acronym := graph.NormalizeAcronym(*e.Acronym)
		if acronym != luy.Acronym {
			if err := a.checkAcronym(dbc, op, g, acronym); err != nil {
				return nil, nil, err
			}
			luyUpdates["acronym"] = acronym
			if luy.IsFull() {
				lcyUpdates["acronym"] = acronym
			}
		}
	}
	if e.Credits != nil {
		if err := graph.ValidateCredits(op, *e.Credits); err != nil {
			return nil, nil, err
		}
		luyUpdates["credits"] = *e.Credits
	}
	if e.InternshipSubtype != nil {
		sub := strings.TrimSpace(*e.InternshipSubtype)
		if err := graph.ValidateInternshipSubtype(op, lcy.ContainerType, &sub); err != nil {
			return nil, nil, err
		}
		if sub == "" {
			luyUpdates["internship_subtype"] = nil
		} else {
			luyUpdates["internship_subtype"] = sub
		}
	}
	setString(luyUpdates, "specific_title", e.SpecificTitle)
	setString(luyUpdates, "specific_title_english", e.SpecificTitleEnglish)
	setString(luyUpdates, "session", e.Session)
	setString(luyUpdates, "quadrimester", e.Quadrimester)
	setString(luyUpdates, "attribution_procedure", e.AttributionProcedure)
	if e.Status != nil {
		luyUpdates["status"] = *e.Status
	}
	if e.LanguageID != nil {
		luyUpdates["language_id"] = *e.LanguageID
	}
	if e.CampusID != nil {
		luyUpdates["campus_id"] = *e.CampusID
	}
	if e.Periodicity != nil {
		luyUpdates["periodicity"] = *e.Periodicity
		luUpdates["periodicity"] = *e.Periodicity
	}

	setString(lcyUpdates, "common_title", e.CommonTitle)
	setString(lcyUpdates, "common_title_english", e.CommonTitleEnglish)
	if e.InCharge != nil {
		lcyUpdates["in_charge"] = *e.InCharge
	}

	setString(luUpdates, "faculty_remark", e.FacultyRemark)
	setString(luUpdates, "other_remark", e.OtherRemark)

	if len(luyUpdates) > 0 {
		if err := a.repos.LearningUnitYear.UpdateFields(dbc, luy.ID, luyUpdates); err != nil {
			return nil, nil, err
		}
	}
	if len(lcyUpdates) > 0 {
		if err := a.repos.LearningContainerYear.UpdateFields(dbc, lcy.ID, lcyUpdates); err != nil {
			return nil, nil, err
		}
	}
	if len(luUpdates) > 0 {
		if err := a.repos.LearningUnit.UpdateFields(dbc, luy.LearningUnitID, luUpdates); err != nil {
			return nil, nil, err
		}
	}

	if e.Attachments != nil {
		if err := graph.ValidateAttachments(op, e.Attachments); err != nil {
			return nil, nil, err
		}
		if err := a.graph.ReconcileAttachments(dbc, lcy.ID, e.Attachments); err != nil {
			return nil, nil, err
		}
	}

	if len(e.Components) > 0 {
		// Attachments may have changed above; component rows are re-read.
		fresh, err := a.graph.Load(dbc, luy.ID)
		if err != nil {
			return nil, nil, err
		}
		for _, ce := range e.Components {
			if err := a.applyComponent(dbc, op, fresh, ce); err != nil {
				return nil, nil, err
			}
		}
	}

	out, err := a.graph.Load(dbc, luy.ID)
	if err != nil {
		return nil, nil, err
	}
	warnings, err := a.graph.VolumeWarnings(dbc, out)
	if err != nil {
		return nil, nil, err
	}
	if len(warnings) > 0 {
		a.log.Debug("volume warnings after edit", "learning_unit_year_id", luy.ID, "count", len(warnings))
	}
	return out, warnings, nil
}

func (a *Applier) checkAcronym(dbc dbctx.Context, op string, g *graph.Graph, acronym string) error {
	luy := g.LearningUnitYear
	fullAcronym := ""
	if luy.IsPartim() {
		full, err := a.graph.FullOf(dbc, luy)
		if err != nil {
			return err
		}
		if full == nil {
			return domainagg.Errorf(domainagg.CodeNotFound, op, "FULL of %s not found", luy.Acronym)
		}
		fullAcronym = full.Acronym
	} else {
		partims, err := a.graph.PartimsOf(dbc, luy)
		if err != nil {
			return err
		}
		if len(partims) > 0 {
			return domainagg.Errorf(domainagg.CodeValidation, op, "cannot rename %s while it has %d partim(s)", luy.Acronym, len(partims))
		}
	}
	if err := graph.ValidateAcronym(op, acronym, luy.Subtype, fullAcronym); err != nil {
		return err
	}
	return a.graph.EnsureAcronymFree(dbc, op, acronym, luy.AcademicYearID, luy.LearningUnitID)
}

func (a *Applier) applyComponent(dbc dbctx.Context, op string, g *graph.Graph, ce ComponentEdit) error {
	c := g.Component(ce.Type)
	if c == nil {
		return domainagg.Errorf(domainagg.CodeValidation, op, "no %s component on %s", types.ComponentTypeLabel(ce.Type), g.LearningUnitYear.Acronym)
	}
	updates := map[string]interface{}{}
	if ce.PlannedClasses != nil {
		updates["planned_classes"] = *ce.PlannedClasses
	}
	if ce.Total != nil {
		updates["hourly_volume_total_annual"] = *ce.Total
	}
	if ce.Q1 != nil {
		updates["hourly_volume_partial_q1"] = *ce.Q1
	}
	if ce.Q2 != nil {
		updates["hourly_volume_partial_q2"] = *ce.Q2
	}
	for _, v := range []*decimal.Decimal{ce.Total, ce.Q1, ce.Q2} {
		if v != nil && v.IsNegative() {
			return domainagg.Errorf(domainagg.CodeValidation, op, "negative volume on %s", c.Acronym)
		}
	}
	if len(updates) > 0 {
		if err := a.repos.LearningComponentYear.UpdateFields(dbc, c.ID, updates); err != nil {
			return err
		}
	}
	for role, volume := range ce.Repartitions {
		if !role.IsRequirement() {
			return domainagg.Errorf(domainagg.CodeValidation, op, "%s carries no repartition volume", role)
		}
		if volume.IsNegative() {
			return domainagg.Errorf(domainagg.CodeValidation, op, "negative repartition volume for %s", role)
		}
		var target *types.EntityComponentYear
		for _, ecoy := range c.EntityComponentYears {
			if ecoy.EntityContainerYear != nil && ecoy.EntityContainerYear.Type == role {
				target = ecoy
			}
		}
		if target == nil {
			return domainagg.Errorf(domainagg.CodeValidation, op, "no %s attachment on %s", role, g.LearningUnitYear.Acronym)
		}
		if err := a.repos.EntityComponentYear.UpdateVolume(dbc, target.ID, volume); err != nil {
			return err
		}
	}
	return nil
}

func setString(m map[string]interface{}, column string, v *string) {
	if v != nil {
		m[column] = strings.TrimSpace(*v)
	}
}
