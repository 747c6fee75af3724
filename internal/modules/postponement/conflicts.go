package postponement

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/entityversion"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/graph"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
)

const noValue = "-"

func fieldDiff(field string, y int, v string, yNext int, vNext string) string {
	return fmt.Sprintf("The value of field '%s' is different between year %d - %s and year %d - %s", field, y, v, yNext, vNext)
}

func entityGone(acronym string, yNext int) string {
	return fmt.Sprintf("The entity '%s' doesn't exist anymore in %d", acronym, yNext)
}

func componentMissing(componentType, acronym string, missingYear, existingYear int) string {
	return fmt.Sprintf("There is not %s for the learning unit %s - %d but exist in %d", componentType, acronym, missingYear, existingYear)
}

// DetectConflicts lists the differences between a unit year and its
// counterpart in the following year. Both graphs must be fully loaded.
func DetectConflicts(entities *entityversion.Resolver, cur, next *graph.Graph) []string {
	out := []string{}
	if cur == nil || next == nil || cur.LearningUnitYear == nil || next.LearningUnitYear == nil {
		return out
	}
	y, yn := cur.Year(), next.Year()
	a, b := cur.LearningUnitYear, next.LearningUnitYear

	cmp := func(field, v, vn string) {
		if v != vn {
			out = append(out, fieldDiff(field, y, v, yn, vn))
		}
	}

	cmp("acronym", a.Acronym, b.Acronym)
	cmp("specific_title", a.SpecificTitle, b.SpecificTitle)
	cmp("specific_title_english", a.SpecificTitleEnglish, b.SpecificTitleEnglish)
	cmp("status", strconv.FormatBool(a.Status), strconv.FormatBool(b.Status))
	cmp("language", uintValue(a.LanguageID), uintValue(b.LanguageID))
	cmp("campus", uintValue(a.CampusID), uintValue(b.CampusID))

	if ca, cb := cur.Container(), next.Container(); ca != nil && cb != nil {
		cmp("common_title", ca.CommonTitle, cb.CommonTitle)
		cmp("common_title_english", ca.CommonTitleEnglish, cb.CommonTitleEnglish)
		cmp("container_type", string(ca.ContainerType), string(cb.ContainerType))
	}

	out = append(out, entityConflicts(entities, cur, next)...)
	out = append(out, componentConflicts(cur, next)...)
	return out
}

func entityConflicts(entities *entityversion.Resolver, cur, next *graph.Graph) []string {
	var out []string
	y, yn := cur.Year(), next.Year()
	ca, na := cur.Attachments(), next.Attachments()
	nextStart := next.LearningUnitYear.AcademicYear
	for _, role := range types.EntityContainerYearTypes {
		curID, hasCur := ca[role]
		nextID, hasNext := na[role]
		if !hasCur && !hasNext {
			continue
		}
		curAcr, nextAcr := noValue, noValue
		if hasCur {
			curAcr = entities.MostRecentAcronym(curID)
			if nextStart != nil && entities.At(curID, nextStart.StartDate) == nil {
				out = append(out, entityGone(curAcr, yn))
				continue
			}
		}
		if hasNext {
			nextAcr = entities.MostRecentAcronym(nextID)
		}
		if curAcr != nextAcr {
			out = append(out, fieldDiff(string(role), y, curAcr, yn, nextAcr))
		}
	}
	return out
}

func componentConflicts(cur, next *graph.Graph) []string {
	var out []string
	y, yn := cur.Year(), next.Year()
	acronym := cur.LearningUnitYear.Acronym

	byLabel := func(g *graph.Graph) map[string]*types.LearningComponentYear {
		m := map[string]*types.LearningComponentYear{}
		for _, c := range g.Components {
			m[types.ComponentTypeLabel(c.Type)] = c
		}
		return m
	}
	ca, cb := byLabel(cur), byLabel(next)

	labels := make([]string, 0, len(ca)+len(cb))
	seen := map[string]bool{}
	for _, m := range []map[string]*types.LearningComponentYear{ca, cb} {
		for l := range m {
			if !seen[l] {
				seen[l] = true
				labels = append(labels, l)
			}
		}
	}
	sort.Strings(labels)

	for _, label := range labels {
		a, okA := ca[label]
		b, okB := cb[label]
		switch {
		case okA && !okB:
			out = append(out, componentMissing(label, acronym, yn, y))
			continue
		case !okA && okB:
			out = append(out, componentMissing(label, acronym, y, yn))
			continue
		}
		va, vb := componentValues(a), componentValues(b)
		for _, f := range componentFields {
			if va[f] != vb[f] {
				out = append(out, fieldDiff(f, y, va[f], yn, vb[f]))
			}
		}
	}
	return out
}

var componentFields = []string{
	"volume_total",
	"volume_q1",
	"volume_q2",
	"volume_additional_requirement_entity_1",
	"volume_additional_requirement_entity_2",
	"planned_classes",
}

func componentValues(c *types.LearningComponentYear) map[string]string {
	m := map[string]string{
		"volume_total":                           decimalValue(c.HourlyVolumeTotalAnnual),
		"volume_q1":                              decimalValue(c.HourlyVolumePartialQ1),
		"volume_q2":                              decimalValue(c.HourlyVolumePartialQ2),
		"volume_additional_requirement_entity_1": noValue,
		"volume_additional_requirement_entity_2": noValue,
		"planned_classes":                        strconv.Itoa(c.PlannedClasses),
	}
	for _, ecoy := range c.EntityComponentYears {
		if ecoy.EntityContainerYear == nil {
			continue
		}
		switch ecoy.EntityContainerYear.Type {
		case types.AdditionalRequirementEntity1:
			m["volume_additional_requirement_entity_1"] = decimalValue(ecoy.RepartitionVolume)
		case types.AdditionalRequirementEntity2:
			m["volume_additional_requirement_entity_2"] = decimalValue(ecoy.RepartitionVolume)
		}
	}
	return m
}

func decimalValue(d decimal.Decimal) string { return d.StringFixed(2) }

func uintValue(p *uint) string {
	if p == nil {
		return noValue
	}
	return strconv.FormatUint(uint64(*p), 10)
}

// ConflictsWithNextYear loads the counterpart of a unit year in the following
// registered year and compares both. No counterpart means no conflict.
func (e *Engine) ConflictsWithNextYear(dbc dbctx.Context, entities *entityversion.Resolver, learningUnitYearID uint) ([]string, error) {
	cur, err := e.graph.Load(dbc, learningUnitYearID)
	if err != nil {
		return nil, err
	}
	nextRows, err := e.repos.LearningUnitYear.ListByUnitFromYear(dbc, cur.LearningUnitYear.LearningUnitID, cur.Year()+1)
	if err != nil {
		return nil, err
	}
	var target *types.LearningUnitYear
	for _, r := range nextRows {
		if r.Year() == cur.Year()+1 {
			target = r
		}
	}
	if target == nil {
		return []string{}, nil
	}
	next, err := e.graph.Load(dbc, target.ID)
	if err != nil {
		return nil, err
	}
	return DetectConflicts(entities, cur, next), nil
}
