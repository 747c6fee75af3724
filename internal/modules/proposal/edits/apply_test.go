package edits

import (
	"context"
	"testing"

	"github.com/osisteam/catalogue-backend/internal/data/repos"
	"github.com/osisteam/catalogue-backend/internal/data/repos/testutil"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/graph"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/shopspring/decimal"
)

type fixture struct {
	dbc     dbctx.Context
	repos   repos.Set
	graph   *graph.Service
	applier *Applier
	years   map[int]*types.AcademicYear
	drt     *types.Entity
	espo    *types.Entity
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.DB(t)
	ctx := context.Background()
	rs := testutil.Repos(t, db)
	gs := graph.New(rs, testutil.Logger(t))
	return fixture{
		dbc:     dbctx.Context{Ctx: ctx},
		repos:   rs,
		graph:   gs,
		applier: NewApplier(rs, gs, testutil.Logger(t)),
		years:   testutil.SeedAcademicYears(t, ctx, db, 2024, 2025),
		drt:     testutil.SeedEntity(t, ctx, db, "DRT", types.EntityFaculty, nil),
		espo:    testutil.SeedEntity(t, ctx, db, "ESPO", types.EntityFaculty, nil),
	}
}

func (f fixture) create(t *testing.T, acronym string) *graph.Graph {
	t.Helper()
	g, err := f.graph.Create(f.dbc, graph.CreateInput{
		AcademicYear:  f.years[2024],
		Acronym:       acronym,
		SpecificTitle: "X",
		Credits:       decimal.NewFromInt(5),
		ContainerType: types.ContainerCourse,
		CommonTitle:   "Zoology",
		Attachments: map[types.EntityContainerYearType]uint{
			types.RequirementEntity: f.drt.ID,
			types.AllocationEntity:  f.drt.ID,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return g
}

func str(s string) *string { return &s }

func TestApplyScalarEdits(t *testing.T) {
	f := setup(t)
	g := f.create(t, "LBIR1200")
	seven := decimal.NewFromInt(7)
	biennial := types.PeriodicityBiennialEven

	out, _, err := f.applier.Apply(f.dbc, g, Edits{
		Acronym:       str("lbir1201"),
		SpecificTitle: str("Y"),
		Credits:       &seven,
		Periodicity:   &biennial,
		CommonTitle:   str("Botany"),
		FacultyRemark: str("moved"),
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	luy := out.LearningUnitYear
	if luy.Acronym != "LBIR1201" || luy.SpecificTitle != "Y" || !luy.Credits.Equal(seven) || luy.Periodicity != biennial {
		t.Fatalf("unexpected luy after edit: %+v", luy)
	}
	if c := out.Container(); c.Acronym != "LBIR1201" || c.CommonTitle != "Botany" {
		t.Fatalf("container not updated: %+v", c)
	}
	if lu := out.Unit(); lu.FacultyRemark != "moved" || lu.Periodicity != biennial {
		t.Fatalf("unit not updated: %+v", lu)
	}
}

func TestApplyRejectsInvalidEdits(t *testing.T) {
	f := setup(t)
	g := f.create(t, "LBIR1200")
	f.create(t, "LBIR1300")
	zero := decimal.Zero
	bad := types.Periodicity("WEEKLY")

	cases := []struct {
		name string
		e    Edits
	}{
		{"acronym shape", Edits{Acronym: str("LB12")}},
		{"acronym taken", Edits{Acronym: str("LBIR1300")}},
		{"credits", Edits{Credits: &zero}},
		{"periodicity", Edits{Periodicity: &bad}},
		{"quadrimester", Edits{Quadrimester: str("Q9")}},
		{"internship subtype on course", Edits{InternshipSubtype: str("TEACHING_INTERNSHIP")}},
		{"missing allocation", Edits{Attachments: map[types.EntityContainerYearType]uint{types.RequirementEntity: f.drt.ID}}},
		{"allocation repartition", Edits{Components: []ComponentEdit{{
			Type:         g.Components[0].Type,
			Repartitions: map[types.EntityContainerYearType]decimal.Decimal{types.AllocationEntity: decimal.NewFromInt(1)},
		}}}},
	}
	for _, tc := range cases {
		_, _, err := f.applier.Apply(f.dbc, g, tc.e)
		if !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestApplyComponentsReportsWarnings(t *testing.T) {
	f := setup(t)
	g := f.create(t, "LBIR1200")
	lecturing := types.ComponentLecturing
	thirty, ten := decimal.NewFromInt(30), decimal.NewFromInt(10)

	out, warnings, err := f.applier.Apply(f.dbc, g, Edits{
		Attachments: map[types.EntityContainerYearType]uint{
			types.RequirementEntity: f.espo.ID,
			types.AllocationEntity:  f.drt.ID,
		},
		Components: []ComponentEdit{{
			Type:         &lecturing,
			Total:        &thirty,
			Q1:           &ten,
			Q2:           &ten,
			Repartitions: map[types.EntityContainerYearType]decimal.Decimal{types.RequirementEntity: thirty},
		}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Attachments()[types.RequirementEntity] != f.espo.ID {
		t.Fatalf("requirement entity not replaced")
	}
	cm := out.Component(&lecturing)
	if cm == nil || !cm.HourlyVolumeTotalAnnual.Equal(thirty) {
		t.Fatalf("lecturing volume not applied: %+v", cm)
	}
	// q1+q2 = 20 != 30 must surface as a warning, never as an error.
	if len(warnings) == 0 {
		t.Fatalf("expected a volume warning")
	}
}

func TestEmpty(t *testing.T) {
	if !(Edits{}).Empty() {
		t.Fatalf("zero edits should be empty")
	}
	if (Edits{SpecificTitle: str("a")}).Empty() {
		t.Fatalf("edits with a title are not empty")
	}
}
