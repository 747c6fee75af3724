package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/osisteam/catalogue-backend/internal/data/aggregates"
	"github.com/osisteam/catalogue-backend/internal/data/repos"
	"github.com/osisteam/catalogue-backend/internal/data/repos/testutil"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/notify"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
)

type recordingNotifier struct {
	mu     sync.Mutex
	full   bool
	events []notify.Event
}

func (n *recordingNotifier) Notify(ev notify.Event) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.full {
		return false
	}
	n.events = append(n.events, ev)
	return true
}

func (n *recordingNotifier) Close() {}

func (n *recordingNotifier) kinds() []notify.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Kind, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (n *recordingNotifier) last() notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return notify.Event{}
	}
	return n.events[len(n.events)-1]
}

var fixtureNow = time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)

type serviceFixture struct {
	db       *gorm.DB
	ctx      context.Context
	dbc      dbctx.Context
	repos    repos.Set
	years    map[int]*types.AcademicYear
	notifier *recordingNotifier
	svc      ProposalService
	post     PostponementService

	sector, faculty, school *types.Entity

	facultyManager types.Actor
	central        types.Actor
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db := testutil.DB(t)
	ctx := context.Background()
	f := &serviceFixture{
		db:       db,
		ctx:      ctx,
		dbc:      dbctx.Context{Ctx: ctx},
		repos:    testutil.Repos(t, db),
		years:    testutil.SeedAcademicYears(t, ctx, db, 2024, 2030),
		notifier: &recordingNotifier{},
	}
	f.sector = testutil.SeedEntity(t, ctx, db, "SST", types.EntitySector, nil)
	f.faculty = testutil.SeedEntity(t, ctx, db, "AGRO", types.EntityFaculty, &f.sector.ID)
	f.school = testutil.SeedEntity(t, ctx, db, "BIR", types.EntitySchool, &f.faculty.ID)

	ids := NewIdentityProvider(testutil.Logger(t), f.repos.Person)
	fm := testutil.SeedPerson(t, ctx, db, "Faculty", []types.Role{types.RoleFacultyManager},
		types.PersonEntity{EntityID: f.faculty.ID, WithChild: true})
	cm := testutil.SeedPerson(t, ctx, db, "Central", []types.Role{types.RoleCentralManager},
		types.PersonEntity{EntityID: f.sector.ID, WithChild: true})
	var err error
	if f.facultyManager, err = ids.Resolve(ctx, fm.ID); err != nil {
		t.Fatalf("Resolve faculty manager: %v", err)
	}
	if f.central, err = ids.Resolve(ctx, cm.ID); err != nil {
		t.Fatalf("Resolve central manager: %v", err)
	}

	clock := func() time.Time { return fixtureNow }
	log := testutil.Logger(t)
	agg := aggregates.NewProposalAggregate(aggregates.BaseDeps{DB: db, Log: log}, f.repos, aggregates.WithProposalClock(clock))
	svc := NewProposalService(log, f.repos, agg, f.notifier).(*proposalService)
	svc.now = clock
	f.svc = svc
	f.post = NewPostponementService(db, log, f.repos, nil, f.notifier, PostponementConfig{Span: 6, Workers: 2, Now: clock})
	return f
}

func (f *serviceFixture) course(t *testing.T, year int, acronym string) *types.LearningUnitYear {
	t.Helper()
	return testutil.SeedCourse(t, f.ctx, f.db, testutil.CourseSeed{
		AcademicYear:        f.years[year],
		Acronym:             acronym,
		CommonTitle:         "Zoology",
		SpecificTitle:       "X",
		Credits:             decimal.NewFromInt(5),
		RequirementEntityID: f.school.ID,
		AllocationEntityID:  f.school.ID,
	})
}

func (f *serviceFixture) propose(t *testing.T, luy *types.LearningUnitYear, credits int64) *types.Proposal {
	t.Helper()
	c := decimal.NewFromInt(credits)
	res, err := f.svc.ProposeModification(f.ctx, domainagg.ProposeModificationInput{
		LearningUnitYearID: luy.ID,
		Edits:              types.ProposalEdits{Credits: &c},
		FolderID:           3,
		Actor:              f.facultyManager,
	})
	if err != nil {
		t.Fatalf("ProposeModification %s: %v", luy.Acronym, err)
	}
	return res.Proposal
}

func (f *serviceFixture) accept(t *testing.T, proposalID uint) {
	t.Helper()
	if _, err := f.svc.ModifyState(f.ctx, domainagg.ModifyStateInput{
		ProposalID: proposalID,
		State:      types.StateAccepted,
		Actor:      f.central,
	}); err != nil {
		t.Fatalf("ModifyState ACCEPTED: %v", err)
	}
}
