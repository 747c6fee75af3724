package services

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/osisteam/catalogue-backend/internal/data/repos/testutil"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/notify"
)

func TestSingleTransitionEmitsEventAfterCommit(t *testing.T) {
	f := newServiceFixture(t)
	luy := f.course(t, 2024, "LBIR1200")
	p := f.propose(t, luy, 7)

	ev := f.notifier.last()
	if ev.Kind != notify.KindSingleTransition || ev.Transition != TransitionProposeModification {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if len(ev.Proposals) != 1 || ev.Proposals[0].ID != p.ID || ev.Proposals[0].Acronym != "LBIR1200" || ev.Proposals[0].Year != 2024 {
		t.Fatalf("unexpected proposals: %+v", ev.Proposals)
	}
	if ev.Actor.PersonID != f.facultyManager.ID() {
		t.Fatalf("actor=%+v", ev.Actor)
	}

	before := len(f.notifier.kinds())
	if _, err := f.svc.ProposeModification(f.ctx, domainagg.ProposeModificationInput{
		LearningUnitYearID: luy.ID,
		Actor:              f.facultyManager,
	}); !domainagg.IsCode(err, domainagg.CodeProposalExists) {
		t.Fatalf("expected proposal_exists, got %v", err)
	}
	if got := len(f.notifier.kinds()); got != before {
		t.Fatalf("failed transition must not notify, events %d -> %d", before, got)
	}
}

func TestConsolidateProposalsReportsPerElement(t *testing.T) {
	f := newServiceFixture(t)
	accepted := f.propose(t, f.course(t, 2024, "LBIR1200"), 7)
	pending := f.propose(t, f.course(t, 2024, "LBIR1300"), 6)
	f.accept(t, accepted.ID)

	out, err := f.svc.ConsolidateProposals(f.ctx, f.central, []uint{pending.ID, accepted.ID, 9999, accepted.ID}, map[string]string{"academic_year": "2024"})
	if err != nil {
		t.Fatalf("ConsolidateProposals: %v", err)
	}
	if len(out[notify.BucketSuccess]) != 1 || !strings.Contains(out[notify.BucketSuccess][0], "LBIR1200 (2024) successfully consolidated") {
		t.Fatalf("SUCCESS=%v", out[notify.BucketSuccess])
	}
	if len(out[notify.BucketError]) != 2 {
		t.Fatalf("ERROR=%v", out[notify.BucketError])
	}
	if !strings.HasPrefix(out[notify.BucketError][0], "LBIR1300 (2024): ") {
		t.Fatalf("first error should name the pending proposal: %v", out[notify.BucketError])
	}
	if out[notify.BucketError][1] != "Proposal 9999: not found." {
		t.Fatalf("second error=%q", out[notify.BucketError][1])
	}
	if len(out[notify.BucketInfo]) != 1 || out[notify.BucketInfo][0] != ReportSentMessage {
		t.Fatalf("INFO=%v", out[notify.BucketInfo])
	}

	ev := f.notifier.last()
	if ev.Kind != notify.KindConsolidationReport {
		t.Fatalf("report must be the last event, got %s", ev.Kind)
	}
	if ev.ResearchCriteria["academic_year"] != "2024" || len(ev.Proposals) != 2 || len(ev.Postponements) != 1 {
		t.Fatalf("unexpected report: %+v", ev)
	}
	if n := len(ev.Postponements[0].Succeeded); n != 6 {
		t.Fatalf("postponed years=%d, want 6", n)
	}

	if p, err := f.repos.Proposal.GetByID(f.dbc, accepted.ID); err != nil || p != nil {
		t.Fatalf("accepted proposal should be gone (err=%v)", err)
	}
	if p, err := f.repos.Proposal.GetByID(f.dbc, pending.ID); err != nil || p == nil {
		t.Fatalf("pending proposal should stay (err=%v)", err)
	}
}

func TestCancelProposalsWithoutQueuedReport(t *testing.T) {
	f := newServiceFixture(t)
	luy := f.course(t, 2024, "LBIR1200")
	p := f.propose(t, luy, 7)
	f.notifier.full = true

	out, err := f.svc.CancelProposals(f.ctx, f.facultyManager, []uint{p.ID}, nil)
	if err != nil {
		t.Fatalf("CancelProposals: %v", err)
	}
	if len(out[notify.BucketSuccess]) != 1 || len(out[notify.BucketError]) != 0 {
		t.Fatalf("unexpected result: %v", out)
	}
	if len(out[notify.BucketInfo]) != 0 {
		t.Fatalf("no report was queued, INFO=%v", out[notify.BucketInfo])
	}
	restored, err := f.repos.LearningUnitYear.GetByID(f.dbc, luy.ID)
	if err != nil || !restored.Credits.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unit year not restored: %+v err=%v", restored, err)
	}

	if _, err := f.svc.CancelProposals(f.ctx, f.facultyManager, nil, nil); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation for empty batch, got %v", err)
	}
}

func TestForceState(t *testing.T) {
	f := newServiceFixture(t)
	a := f.propose(t, f.course(t, 2024, "LBIR1200"), 7)
	b := f.propose(t, f.course(t, 2024, "LBIR1300"), 7)

	if _, err := f.svc.ForceState(f.ctx, f.central, []uint{a.ID}, "NOPE", nil); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation, got %v", err)
	}

	out, err := f.svc.ForceState(f.ctx, f.central, []uint{a.ID, b.ID}, types.StateSuspended, nil)
	if err != nil {
		t.Fatalf("ForceState: %v", err)
	}
	if len(out[notify.BucketSuccess]) != 2 {
		t.Fatalf("unexpected result: %v", out)
	}
	for _, id := range []uint{a.ID, b.ID} {
		p, err := f.repos.Proposal.GetByID(f.dbc, id)
		if err != nil || p.State != types.StateSuspended {
			t.Fatalf("proposal %d not suspended: %+v err=%v", id, p, err)
		}
	}

	out, err = f.svc.ForceState(f.ctx, f.facultyManager, []uint{a.ID}, types.StateCentral, nil)
	if err != nil {
		t.Fatalf("ForceState faculty: %v", err)
	}
	if len(out[notify.BucketError]) != 1 {
		t.Fatalf("faculty manager must not move a proposal to CENTRAL: %v", out)
	}
	if f.notifier.last().Kind != notify.KindForceStateReport {
		t.Fatalf("last event=%s", f.notifier.last().Kind)
	}
}

func TestSearchFilters(t *testing.T) {
	f := newServiceFixture(t)
	a := f.course(t, 2024, "LBIR1200")
	b := f.course(t, 2025, "LBIR1300")
	c := f.course(t, 2024, "LDROI1001")
	pa := f.propose(t, a, 7)
	f.propose(t, b, 7)
	f.propose(t, c, 7)
	testutil.SeedReference(t, f.ctx, f.db, a.ID, types.ReferenceAttribution, "Marie Curie")

	folder := 3
	cases := []struct {
		name string
		in   ProposalSearch
		want int
	}{
		{"all", ProposalSearch{}, 3},
		{"year", ProposalSearch{Year: 2024}, 2},
		{"acronym prefix", ProposalSearch{Acronym: "lbir"}, 2},
		{"year and acronym", ProposalSearch{Year: 2024, Acronym: "LBIR"}, 1},
		{"type", ProposalSearch{Type: types.ProposalSuppression}, 0},
		{"state", ProposalSearch{State: types.StateFaculty}, 3},
		{"folder", ProposalSearch{FolderID: &folder}, 3},
		{"entity folder exact", ProposalSearch{EntityFolder: f.sector.ID}, 0},
		{"entity folder with children", ProposalSearch{EntityFolder: f.sector.ID, WithChildren: true}, 3},
		{"tutor", ProposalSearch{Tutor: "curie"}, 1},
		{"unknown tutor", ProposalSearch{Tutor: "Nobody"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.svc.Search(f.ctx, tc.in)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("got %d proposals, want %d", len(got), tc.want)
			}
		})
	}

	got, err := f.svc.Search(f.ctx, ProposalSearch{Tutor: "curie"})
	if err != nil || len(got) != 1 || got[0].ID != pa.ID || got[0].LearningUnitYear == nil {
		t.Fatalf("tutor search should return the preloaded proposal of LBIR1200: %+v err=%v", got, err)
	}
	if _, err := f.svc.Search(f.ctx, ProposalSearch{Year: 1999}); !domainagg.IsCode(err, domainagg.CodeUnknownYear) {
		t.Fatalf("expected unknown_year, got %v", err)
	}
}

func TestFindByEntityAndForUnitYear(t *testing.T) {
	f := newServiceFixture(t)
	luy := f.course(t, 2024, "LBIR1200")
	p := f.propose(t, luy, 7)

	got, err := f.svc.FindByEntity(f.ctx, f.sector.ID, true)
	if err != nil || len(got) != 1 {
		t.Fatalf("FindByEntity with children: %v err=%v", got, err)
	}
	got, err = f.svc.FindByEntity(f.ctx, f.sector.ID, false)
	if err != nil || len(got) != 0 {
		t.Fatalf("FindByEntity exact: %v err=%v", got, err)
	}

	found, err := f.svc.FindForLearningUnitYear(f.ctx, luy.ID)
	if err != nil || found.ID != p.ID {
		t.Fatalf("FindForLearningUnitYear: %+v err=%v", found, err)
	}
	other := f.course(t, 2024, "LBIR1300")
	if _, err := f.svc.FindForLearningUnitYear(f.ctx, other.ID); !domainagg.IsCode(err, domainagg.CodeNoProposal) {
		t.Fatalf("expected no_proposal, got %v", err)
	}
	if _, err := f.svc.Get(f.ctx, 4242); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestCriteriaRendersSetFilters(t *testing.T) {
	folder := 0
	got := ProposalSearch{Year: 2024, Acronym: " LBIR ", FolderID: &folder, Tutor: ""}.Criteria()
	if len(got) != 3 || got["academic_year"] != "2024" || got["acronym"] != "LBIR" || got["folder_id"] != "0" {
		t.Fatalf("criteria=%v", got)
	}
}
