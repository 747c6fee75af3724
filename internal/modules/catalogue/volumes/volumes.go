// Package volumes checks hourly-volume consistency of learning components.
// Every finding is a warning: nothing here blocks a save.
package volumes

import (
	"fmt"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/shopspring/decimal"
)

type Component struct {
	Type           *types.ComponentType
	Acronym        string
	PlannedClasses int
	Total          decimal.Decimal
	Q1             decimal.Decimal
	Q2             decimal.Decimal
	// Repartitions holds repartition volumes keyed by the attachment role.
	Repartitions map[types.EntityContainerYearType]decimal.Decimal
}

// Global is the volume the requirement attachments must share.
func (c Component) Global() decimal.Decimal {
	return c.Total.Mul(decimal.NewFromInt(int64(c.PlannedClasses)))
}

func (c Component) RepartitionSum() decimal.Decimal {
	sum := decimal.Zero
	for role, v := range c.Repartitions {
		if role.IsRequirement() {
			sum = sum.Add(v)
		}
	}
	return sum
}

func (c Component) label() string {
	if c.Acronym != "" {
		return c.Acronym
	}
	return types.ComponentTypeLabel(c.Type)
}

type Unit struct {
	Acronym    string
	Subtype    types.Subtype
	Credits    decimal.Decimal
	Components []Component
}

// FromModel converts a component with its loaded repartitions.
func FromModel(c *types.LearningComponentYear) Component {
	out := Component{
		Type:           c.Type,
		Acronym:        c.Acronym,
		PlannedClasses: c.PlannedClasses,
		Total:          c.HourlyVolumeTotalAnnual,
		Q1:             c.HourlyVolumePartialQ1,
		Q2:             c.HourlyVolumePartialQ2,
		Repartitions:   map[types.EntityContainerYearType]decimal.Decimal{},
	}
	for _, ecoy := range c.EntityComponentYears {
		if ecoy == nil || ecoy.EntityContainerYear == nil {
			continue
		}
		out.Repartitions[ecoy.EntityContainerYear.Type] = ecoy.RepartitionVolume
	}
	return out
}

// CheckComponent returns the inconsistencies of a single component.
func CheckComponent(unitAcronym string, c Component) []string {
	var out []string
	name := unitAcronym + "/" + c.label()
	if !c.Q1.Add(c.Q2).Equal(c.Total) {
		out = append(out, fmt.Sprintf("%s: the sum of volumes Q1 and Q2 (%s) differs from the annual volume (%s)",
			name, c.Q1.Add(c.Q2).String(), c.Total.String()))
	}
	if c.PlannedClasses <= 0 {
		out = append(out, fmt.Sprintf("%s: planned classes must be greater than 0", name))
	}
	if sum := c.RepartitionSum(); !sum.Equal(c.Global()) {
		out = append(out, fmt.Sprintf("%s: the sum of repartition volumes (%s) differs from the global volume (%s)",
			name, sum.String(), c.Global().String()))
	}
	return out
}

// CheckPartim compares each PARTIM component with the FULL component of the same type.
func CheckPartim(full, partim Unit) []string {
	var out []string
	if partim.Credits.GreaterThan(full.Credits) {
		out = append(out, fmt.Sprintf("%s: credits (%s) exceed the credits of %s (%s)",
			partim.Acronym, partim.Credits.String(), full.Acronym, full.Credits.String()))
	}
	for _, pc := range partim.Components {
		fc, ok := matching(full.Components, pc)
		if !ok {
			continue
		}
		name := partim.Acronym + "/" + pc.label()
		for _, cmp := range []struct {
			field string
			p, f  decimal.Decimal
		}{
			{"volume_total", pc.Total, fc.Total},
			{"volume_q1", pc.Q1, fc.Q1},
			{"volume_q2", pc.Q2, fc.Q2},
			{"planned_classes", decimal.NewFromInt(int64(pc.PlannedClasses)), decimal.NewFromInt(int64(fc.PlannedClasses))},
		} {
			if cmp.p.GreaterThan(cmp.f) {
				out = append(out, fmt.Sprintf("%s: %s (%s) exceeds the value of %s (%s)",
					name, cmp.field, cmp.p.String(), full.Acronym, cmp.f.String()))
			}
		}
		for _, role := range types.RequirementTypes {
			pv, pok := pc.Repartitions[role]
			fv, fok := fc.Repartitions[role]
			if pok && fok && pv.GreaterThan(fv) {
				out = append(out, fmt.Sprintf("%s: volume of %s (%s) exceeds the value of %s (%s)",
					name, role, pv.String(), full.Acronym, fv.String()))
			}
		}
	}
	return out
}

func matching(components []Component, c Component) (Component, bool) {
	for _, o := range components {
		if sameType(o.Type, c.Type) {
			return o, true
		}
	}
	return Component{}, false
}

func sameType(a, b *types.ComponentType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Check aggregates the warnings of u. related holds the PARTIMs of a FULL
// unit, or the FULL of a PARTIM unit.
func Check(u Unit, related ...Unit) []string {
	out := []string{}
	for _, c := range u.Components {
		out = append(out, CheckComponent(u.Acronym, c)...)
	}
	for _, r := range related {
		switch {
		case u.Subtype == types.SubtypeFull && r.Subtype == types.SubtypePartim:
			out = append(out, CheckPartim(u, r)...)
		case u.Subtype == types.SubtypePartim && r.Subtype == types.SubtypeFull:
			out = append(out, CheckPartim(r, u)...)
		}
	}
	return out
}
