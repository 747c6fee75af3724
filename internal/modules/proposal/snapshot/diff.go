package snapshot

import (
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

// Diff returns the names of snapshotted fields whose values differ. The
// container acronym follows the unit year acronym and both report as "acronym".
func Diff(current, initial Snapshot) []string {
	var out []string
	seen := map[string]bool{}
	add := func(name string, differ bool) {
		if differ && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	cu, iu := current.LearningUnitYear, initial.LearningUnitYear
	add("acronym", cu.Acronym != iu.Acronym)
	add("specific_title", cu.SpecificTitle != iu.SpecificTitle)
	add("internship_subtype", !eqString(cu.InternshipSubtype, iu.InternshipSubtype))
	add("credits", !cu.CreditsDecimal().Equal(iu.CreditsDecimal()))
	add("campus", !eqUint(cu.Campus, iu.Campus))
	add("language", !eqUint(cu.Language, iu.Language))
	add("periodicity", cu.Periodicity != iu.Periodicity)

	cc, ic := current.LearningContainerYear, initial.LearningContainerYear
	add("acronym", cc.Acronym != ic.Acronym)
	add("common_title", cc.CommonTitle != ic.CommonTitle)
	add("container_type", cc.ContainerType != ic.ContainerType)
	add("in_charge", cc.InCharge != ic.InCharge)

	add("end_year", !eqInt(current.LearningUnit.EndYear, initial.LearningUnit.EndYear))

	if initial.Schema != 1 {
		add("specific_title_english", cu.SpecificTitleEnglish != iu.SpecificTitleEnglish)
		add("status", cu.Status != iu.Status)
		add("session", cu.Session != iu.Session)
		add("quadrimester", cu.Quadrimester != iu.Quadrimester)
		add("attribution_procedure", cu.AttributionProcedure != iu.AttributionProcedure)
		add("common_title_english", cc.CommonTitleEnglish != ic.CommonTitleEnglish)
		add("periodicity", current.LearningUnit.Periodicity != initial.LearningUnit.Periodicity)
		add("faculty_remark", current.LearningUnit.FacultyRemark != initial.LearningUnit.FacultyRemark)
		add("other_remark", current.LearningUnit.OtherRemark != initial.LearningUnit.OtherRemark)
		add("components", !sameComponents(current.Components, initial.Components))
	}

	for _, t := range types.EntityContainerYearTypes {
		add(string(t), !eqUint(current.Entities.Get(t), initial.Entities.Get(t)))
	}
	return out
}

// DeriveType refines a proposal type from the differences between the live
// graph and the snapshot. CREATION and SUPPRESSION never change.
func DeriveType(initialType types.ProposalType, current, initial Snapshot) types.ProposalType {
	if initialType.Fixed() {
		return initialType
	}
	diff := Diff(current, initial)
	hasAcronym := false
	for _, f := range diff {
		if f == "acronym" {
			hasAcronym = true
		}
	}
	switch {
	case hasAcronym && len(diff) == 1:
		return types.ProposalTransformation
	case hasAcronym:
		return types.ProposalTransformationAndModification
	default:
		return types.ProposalModification
	}
}

func sameComponents(a, b []Component) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.PlannedClasses != y.PlannedClasses ||
			!x.Total.Equal(y.Total) || !x.Q1.Equal(y.Q1) || !x.Q2.Equal(y.Q2) ||
			len(x.Repartitions) != len(y.Repartitions) {
			return false
		}
		for role, v := range x.Repartitions {
			w, ok := y.Repartitions[role]
			if !ok || !v.Equal(w) {
				return false
			}
		}
	}
	return true
}

func eqUint(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func eqString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
