package volumes

import (
	"strings"
	"testing"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func lecturing() *types.ComponentType {
	t := types.ComponentLecturing
	return &t
}

func consistent() Component {
	return Component{
		Type: lecturing(), Acronym: "CM1", PlannedClasses: 2,
		Total: d(30), Q1: d(10), Q2: d(20),
		Repartitions: map[types.EntityContainerYearType]decimal.Decimal{
			types.RequirementEntity:            d(40),
			types.AdditionalRequirementEntity1: d(20),
		},
	}
}

func TestConsistentComponentHasNoWarning(t *testing.T) {
	if got := CheckComponent("LBIR1200", consistent()); len(got) != 0 {
		t.Fatalf("expected no warning, got %v", got)
	}
}

func TestComponentWarnings(t *testing.T) {
	c := consistent()
	c.Q2 = d(5)
	c.PlannedClasses = 0
	got := CheckComponent("LBIR1200", c)
	if len(got) != 3 {
		t.Fatalf("expected 3 warnings (q1+q2, planned classes, repartition), got %d: %v", len(got), got)
	}
	if !strings.Contains(got[0], "LBIR1200/CM1") {
		t.Fatalf("warning should name the component: %q", got[0])
	}
}

func TestAllocationDoesNotCountInRepartition(t *testing.T) {
	c := consistent()
	c.Repartitions[types.AllocationEntity] = d(1000)
	if got := CheckComponent("LBIR1200", c); len(got) != 0 {
		t.Fatalf("allocation volumes must be ignored, got %v", got)
	}
}

func TestPartimExceedingFull(t *testing.T) {
	full := Unit{Acronym: "LBIR1200", Subtype: types.SubtypeFull, Credits: d(5), Components: []Component{consistent()}}
	pc := consistent()
	pc.Total, pc.Q1, pc.Q2 = d(45), d(25), d(20)
	pc.Repartitions = map[types.EntityContainerYearType]decimal.Decimal{types.RequirementEntity: d(90)}
	partim := Unit{Acronym: "LBIR1200A", Subtype: types.SubtypePartim, Credits: d(6), Components: []Component{pc}}

	got := Check(full, partim)
	joined := strings.Join(got, "\n")
	for _, want := range []string{"credits (6)", "volume_total (45)", "volume_q1 (25)", "REQUIREMENT_ENTITY (90)"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %v", want, got)
		}
	}
	// Same findings from the PARTIM side.
	if back := Check(partim, full); len(back) < 4 {
		t.Fatalf("expected PARTIM-side check to report, got %v", back)
	}
}
