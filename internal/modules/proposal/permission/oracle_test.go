package permission

import (
	"testing"
	"time"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/entityversion"
)

var epoch = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

func ptr(v uint) *uint { return &v }

// Entity tree: 1 SST (sector) > 2 AGRO (faculty) > 3 BIR (school); 4 DRT (faculty).
func tree() *entityversion.Resolver {
	return entityversion.New([]*types.EntityVersion{
		{ID: 1, EntityID: 1, Acronym: "SST", EntityType: types.EntitySector, StartDate: epoch},
		{ID: 2, EntityID: 2, ParentID: ptr(1), Acronym: "AGRO", EntityType: types.EntityFaculty, StartDate: epoch},
		{ID: 3, EntityID: 3, ParentID: ptr(2), Acronym: "BIR", EntityType: types.EntitySchool, StartDate: epoch},
		{ID: 4, EntityID: 4, Acronym: "DRT", EntityType: types.EntityFaculty, StartDate: epoch},
	})
}

func unitYear(year int, requirement uint, subtype types.Subtype, ct types.ContainerType) *types.LearningUnitYear {
	return &types.LearningUnitYear{
		ID:           10,
		Subtype:      subtype,
		AcademicYear: &types.AcademicYear{Year: year, StartDate: time.Date(year, 9, 15, 0, 0, 0, 0, time.UTC)},
		LearningContainerYear: &types.LearningContainerYear{
			ContainerType: ct,
			EntityContainerYears: []*types.EntityContainerYear{
				{Type: types.RequirementEntity, EntityID: requirement},
				{Type: types.AllocationEntity, EntityID: requirement},
			},
		},
	}
}

func actor(id uint, role types.Role, attachments ...*types.PersonEntity) Actor {
	return Actor{Person: &types.Person{ID: id}, Roles: []types.Role{role}, Attachments: attachments}
}

func attach(entityID uint, withChild bool) *types.PersonEntity {
	return &types.PersonEntity{EntityID: entityID, WithChild: withChild}
}

func TestAttachmentRule(t *testing.T) {
	o := New(tree())
	luy := unitYear(2024, 3, types.SubtypeFull, types.ContainerCourse)
	s := Subject{LearningUnitYear: luy, CurrentYear: 2024}

	cases := []struct {
		name  string
		a     Actor
		allow bool
	}{
		{"direct", actor(1, types.RoleFacultyManager, attach(3, false)), true},
		{"ancestor with child", actor(1, types.RoleFacultyManager, attach(2, true)), true},
		{"grand ancestor with child", actor(1, types.RoleFacultyManager, attach(1, true)), true},
		{"ancestor without child", actor(1, types.RoleFacultyManager, attach(2, false)), false},
		{"unrelated", actor(1, types.RoleCentralManager, attach(4, true)), false},
		{"viewer", actor(1, types.RoleCatalogueViewer, attach(3, false)), false},
	}
	for _, tc := range cases {
		d := o.Decide(tc.a, ProposeModification, s)
		if d.Allowed != tc.allow {
			t.Fatalf("%s: allowed=%v want %v (%s)", tc.name, d.Allowed, tc.allow, d.Reason)
		}
	}
}

func TestProposeModificationRules(t *testing.T) {
	o := New(tree())
	a := actor(1, types.RoleFacultyManager, attach(2, true))

	cases := []struct {
		name string
		s    Subject
		code domainagg.ErrorCode
	}{
		{"ok", Subject{LearningUnitYear: unitYear(2024, 3, types.SubtypeFull, types.ContainerInternship), CurrentYear: 2024}, ""},
		{"partim", Subject{LearningUnitYear: unitYear(2024, 3, types.SubtypePartim, types.ContainerCourse), CurrentYear: 2024}, domainagg.CodePermissionDenied},
		{"thesis", Subject{LearningUnitYear: unitYear(2024, 3, types.SubtypeFull, types.ContainerMasterThesis), CurrentYear: 2024}, domainagg.CodePermissionDenied},
		{"past", Subject{LearningUnitYear: unitYear(2023, 3, types.SubtypeFull, types.ContainerCourse), CurrentYear: 2024}, domainagg.CodePermissionDenied},
		{"exists", Subject{LearningUnitYear: unitYear(2024, 3, types.SubtypeFull, types.ContainerCourse), CurrentYear: 2024, Proposal: &types.Proposal{}}, domainagg.CodeProposalExists},
	}
	for _, tc := range cases {
		err := o.Check("test", a, ProposeModification, tc.s)
		if tc.code == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if !domainagg.IsCode(err, tc.code) {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestProposeModificationNeedsContainer(t *testing.T) {
	o := New(tree())
	a := actor(1, types.RoleFacultyManager, attach(2, true))
	luy := unitYear(2024, 3, types.SubtypeFull, types.ContainerCourse)
	luy.LearningContainerYear = nil

	d := o.Decide(a, ProposeModification, Subject{LearningUnitYear: luy, CurrentYear: 2024, RequirementEntityID: 3})
	if d.Allowed || d.Reason != ReasonContainerType {
		t.Fatalf("a unit year without container must be denied on its type, got %+v", d)
	}
}

func TestSuppressionAndCreation(t *testing.T) {
	o := New(tree())
	fac := actor(1, types.RoleFacultyManager, attach(3, false))
	central := actor(2, types.RoleCentralManager, attach(1, true))

	s := Subject{LearningUnitYear: unitYear(2020, 3, types.SubtypeFull, types.ContainerMasterThesis), CurrentYear: 2024}
	if d := o.Decide(fac, ProposeSuppression, s); !d.Allowed {
		t.Fatalf("suppression of a past thesis should be allowed: %s", d.Reason)
	}
	s.LearningUnitYear.Subtype = types.SubtypePartim
	if d := o.Decide(fac, ProposeSuppression, s); d.Allowed {
		t.Fatalf("suppression of a partim must be denied")
	}

	c := Subject{RequirementEntityID: 3, CurrentYear: 2024}
	if d := o.Decide(fac, ProposeCreation, c); d.Allowed {
		t.Fatalf("creation is central only")
	}
	if d := o.Decide(central, ProposeCreation, c); !d.Allowed {
		t.Fatalf("central creation denied: %s", d.Reason)
	}
	c.RequirementEntityID = 4
	if d := o.Decide(central, ProposeCreation, c); d.Allowed {
		t.Fatalf("creation outside the actor's entities must be denied")
	}
}

func TestCancelAndEditByState(t *testing.T) {
	o := New(tree())
	fac := actor(1, types.RoleFacultyManager, attach(3, false))
	central := actor(2, types.RoleCentralManager, attach(1, true))
	luy := unitYear(2024, 3, types.SubtypeFull, types.ContainerCourse)

	for _, st := range []types.ProposalState{types.StateFaculty, types.StateCentral, types.StateSuspended, types.StateAccepted, types.StateRefused} {
		p := &types.Proposal{Type: types.ProposalModification, State: st, AuthorID: 1}
		s := Subject{LearningUnitYear: luy, Proposal: p}

		facCancel := o.Decide(fac, CancelProposal, s).Allowed
		if facCancel != (st == types.StateFaculty) {
			t.Fatalf("faculty cancel in %s: %v", st, facCancel)
		}
		centralCancel := o.Decide(central, CancelProposal, s).Allowed
		if centralCancel != (st != types.StateSuspended) {
			t.Fatalf("central cancel in %s: %v", st, centralCancel)
		}

		s.NewState = types.StateCentral
		if o.Decide(fac, EditProposal, s).Allowed {
			t.Fatalf("faculty manager moved a proposal out of FACULTY from %s", st)
		}
		if !o.Decide(central, EditProposal, s).Allowed {
			t.Fatalf("central manager could not set state from %s", st)
		}
	}
}

func TestConsolidateGuard(t *testing.T) {
	o := New(tree())
	fac := actor(1, types.RoleFacultyManager, attach(3, false))
	central := actor(2, types.RoleCentralManager, attach(1, true))
	luy := unitYear(2024, 3, types.SubtypeFull, types.ContainerCourse)

	s := Subject{LearningUnitYear: luy, Proposal: &types.Proposal{Type: types.ProposalModification, State: types.StateFaculty}}
	if err := o.Check("test", central, ConsolidateProposal, s); !domainagg.IsCode(err, domainagg.CodeIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
	s.Proposal.State = types.StateAccepted
	if err := o.Check("test", central, ConsolidateProposal, s); err != nil {
		t.Fatalf("consolidate accepted: %v", err)
	}
	if err := o.Check("test", fac, ConsolidateProposal, s); !domainagg.IsCode(err, domainagg.CodePermissionDenied) {
		t.Fatalf("expected permission denied for faculty manager, got %v", err)
	}
	if err := o.Check("test", central, ConsolidateProposal, Subject{LearningUnitYear: luy}); !domainagg.IsCode(err, domainagg.CodeNoProposal) {
		t.Fatalf("expected no_proposal, got %v", err)
	}
}

func TestCancelCreationOwnership(t *testing.T) {
	o := New(tree())
	luy := unitYear(2024, 3, types.SubtypeFull, types.ContainerCourse)
	p := &types.Proposal{Type: types.ProposalCreation, State: types.StateCentral, AuthorID: 9}
	s := Subject{LearningUnitYear: luy, Proposal: p, AuthorAttachments: []*types.PersonEntity{attach(2, true)}}

	sameFaculty := actor(1, types.RoleFacultyManager, attach(3, false))
	if d := o.Decide(sameFaculty, CancelProposal, s); !d.Allowed {
		t.Fatalf("faculty manager of the author's faculty denied: %s", d.Reason)
	}

	s.AuthorAttachments = []*types.PersonEntity{attach(4, false)}
	if d := o.Decide(sameFaculty, CancelProposal, s); d.Allowed {
		t.Fatalf("faculty manager outside the author's faculty allowed")
	}

	author := actor(9, types.RoleFacultyManager, attach(3, false))
	if d := o.Decide(author, CancelProposal, s); !d.Allowed {
		t.Fatalf("author denied: %s", d.Reason)
	}
}

// Whatever a faculty manager may do on a FACULTY proposal, a central manager may too.
func TestCentralDominatesFaculty(t *testing.T) {
	o := New(tree())
	attachments := []*types.PersonEntity{attach(2, true)}
	fac := Actor{Person: &types.Person{ID: 1}, Roles: []types.Role{types.RoleFacultyManager}, Attachments: attachments}
	central := Actor{Person: &types.Person{ID: 2}, Roles: []types.Role{types.RoleCentralManager}, Attachments: attachments}
	luy := unitYear(2024, 3, types.SubtypeFull, types.ContainerCourse)

	transitions := []Transition{ProposeModification, ProposeSuppression, ProposeCreation, EditProposal, CancelProposal, ConsolidateProposal}
	for _, pt := range []types.ProposalType{types.ProposalModification, types.ProposalCreation, types.ProposalSuppression} {
		for _, tr := range transitions {
			s := Subject{LearningUnitYear: luy, CurrentYear: 2024, Proposal: &types.Proposal{Type: pt, State: types.StateFaculty, AuthorID: 3}}
			if tr == ProposeModification || tr == ProposeSuppression {
				s.Proposal = nil
			}
			if o.Decide(fac, tr, s).Allowed && !o.Decide(central, tr, s).Allowed {
				t.Fatalf("%s on %s: faculty allowed but central denied", tr, pt)
			}
		}
	}
}
