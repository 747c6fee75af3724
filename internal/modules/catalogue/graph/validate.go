package graph

import (
	"fmt"
	"regexp"
	"strings"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/shopspring/decimal"
)

var (
	fullAcronymRE = regexp.MustCompile(`^[A-Z][A-Z]{2,5}[0-9]{4}$`)
	maxCredits    = decimal.NewFromInt(60)
)

// NormalizeAcronym upper-cases and trims an acronym.
func NormalizeAcronym(acronym string) string {
	return strings.ToUpper(strings.TrimSpace(acronym))
}

// ValidateAcronym checks the shape of a FULL acronym, or that a PARTIM
// acronym extends fullAcronym by exactly one letter.
func ValidateAcronym(op, acronym string, subtype types.Subtype, fullAcronym string) error {
	acronym = NormalizeAcronym(acronym)
	switch subtype {
	case types.SubtypeFull:
		if !fullAcronymRE.MatchString(acronym) {
			return domainagg.Errorf(domainagg.CodeValidation, op, "invalid acronym %q", acronym)
		}
	case types.SubtypePartim:
		full := NormalizeAcronym(fullAcronym)
		if len(acronym) != len(full)+1 || !strings.HasPrefix(acronym, full) {
			return domainagg.Errorf(domainagg.CodeValidation, op, "partim acronym %q must extend %q by one letter", acronym, full)
		}
		last := acronym[len(acronym)-1]
		if last < 'A' || last > 'Z' {
			return domainagg.Errorf(domainagg.CodeValidation, op, "partim acronym %q must end with a letter", acronym)
		}
	default:
		return domainagg.Errorf(domainagg.CodeValidation, op, "invalid subtype %q", subtype)
	}
	return nil
}

// ValidateCredits enforces 0 < credits <= 60.
func ValidateCredits(op string, credits decimal.Decimal) error {
	if !credits.IsPositive() || credits.GreaterThan(maxCredits) {
		return domainagg.Errorf(domainagg.CodeValidation, op, "credits must be in ]0, 60], got %s", credits.String())
	}
	return nil
}

// ValidateAttachments requires one requirement and one allocation entity,
// and the second additional requirement entity only next to the first.
func ValidateAttachments(op string, att map[types.EntityContainerYearType]uint) error {
	var missing []string
	for _, t := range []types.EntityContainerYearType{types.RequirementEntity, types.AllocationEntity} {
		if att[t] == 0 {
			missing = append(missing, string(t))
		}
	}
	if len(missing) > 0 {
		return domainagg.Errorf(domainagg.CodeValidation, op, "missing attachment(s): %s", strings.Join(missing, ", "))
	}
	if att[types.AdditionalRequirementEntity2] != 0 && att[types.AdditionalRequirementEntity1] == 0 {
		return domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("%s requires %s", types.AdditionalRequirementEntity2, types.AdditionalRequirementEntity1), nil)
	}
	for t := range att {
		known := false
		for _, k := range types.EntityContainerYearTypes {
			if t == k {
				known = true
			}
		}
		if !known {
			return domainagg.Errorf(domainagg.CodeValidation, op, "unknown attachment role %q", t)
		}
	}
	return nil
}

// ValidateInternshipSubtype only lets container types that allow it carry one.
func ValidateInternshipSubtype(op string, ct types.ContainerType, subtype *string) error {
	if subtype == nil || strings.TrimSpace(*subtype) == "" {
		return nil
	}
	policy, ok := types.PolicyFor(ct)
	if !ok || !policy.AllowInternshipSubtype {
		return domainagg.Errorf(domainagg.CodeValidation, op, "internship subtype is not allowed for %s", ct)
	}
	return nil
}
