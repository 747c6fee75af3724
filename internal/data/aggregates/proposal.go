package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/osisteam/catalogue-backend/internal/data/repos"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/academicyear"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/entityversion"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/graph"
	"github.com/osisteam/catalogue-backend/internal/modules/postponement"
	"github.com/osisteam/catalogue-backend/internal/modules/proposal/edits"
	"github.com/osisteam/catalogue-backend/internal/modules/proposal/permission"
	"github.com/osisteam/catalogue-backend/internal/modules/proposal/snapshot"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

// DefaultPostponementSpan is how many years past the current one
// consolidation propagates by default.
const DefaultPostponementSpan = 6

type ProposalAggregateOption func(*proposalAggregate)

// WithProposalClock fixes "now" for current-year resolution.
func WithProposalClock(now func() time.Time) ProposalAggregateOption {
	return func(a *proposalAggregate) {
		if now != nil {
			a.now = now
		}
	}
}

// WithPostponementSpan sets the propagation horizon relative to the current year.
func WithPostponementSpan(span int) ProposalAggregateOption {
	return func(a *proposalAggregate) {
		if span >= 0 {
			a.span = span
		}
	}
}

type proposalAggregate struct {
	deps     BaseDeps
	repos    repos.Set
	graph    *graph.Service
	edits    *edits.Applier
	restorer *snapshot.Restorer
	engine   *postponement.Engine
	guard    CASGuard
	log      *logger.Logger
	now      func() time.Time
	span     int
}

func NewProposalAggregate(base BaseDeps, rs repos.Set, opts ...ProposalAggregateOption) domainagg.ProposalAggregate {
	base = base.withDefaults()
	gs := graph.New(rs, base.Log)
	a := &proposalAggregate{
		deps:     base,
		repos:    rs,
		graph:    gs,
		edits:    edits.NewApplier(rs, gs, base.Log),
		restorer: snapshot.NewRestorer(rs, gs),
		engine:   postponement.New(base.DB, rs, gs, base.Log),
		guard:    NewCASGuard(base.DB),
		log:      base.Log.With("aggregate", "ProposalAggregate"),
		now:      time.Now,
		span:     DefaultPostponementSpan,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

func (a *proposalAggregate) Contract() domainagg.Contract {
	return domainagg.ProposalAggregateContract
}

// scope is the request-scoped view every transition decides against.
type scope struct {
	years    *academicyear.Registry
	entities *entityversion.Resolver
	oracle   *permission.Oracle
	current  int
}

func (a *proposalAggregate) loadScope(dbc dbctx.Context) (*scope, error) {
	years, err := academicyear.Load(dbc, a.repos.AcademicYear, academicyear.WithClock(a.now))
	if err != nil {
		return nil, err
	}
	cur, err := years.Current()
	if err != nil {
		return nil, err
	}
	entities, err := entityversion.Load(dbc, a.repos.Entity)
	if err != nil {
		return nil, err
	}
	return &scope{
		years:    years,
		entities: entities,
		oracle:   permission.New(entities),
		current:  cur.Year,
	}, nil
}

func (a *proposalAggregate) lockUnitYear(dbc dbctx.Context, op string, id uint) (*types.LearningUnitYear, error) {
	luy, err := a.repos.LearningUnitYear.LockByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if luy == nil {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "learning unit year %d not found", id)
	}
	return luy, nil
}

// lockProposal locks the proposal and then its unit year.
func (a *proposalAggregate) lockProposal(dbc dbctx.Context, op string, id uint) (*types.Proposal, *types.LearningUnitYear, error) {
	p, err := a.repos.Proposal.LockByID(dbc, id)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, domainagg.Errorf(domainagg.CodeNotFound, op, "proposal %d not found", id)
	}
	luy, err := a.lockUnitYear(dbc, op, p.LearningUnitYearID)
	if err != nil {
		return nil, nil, err
	}
	return p, luy, nil
}

// owningEntity defaults to the faculty above the requirement entity.
func (a *proposalAggregate) owningEntity(sc *scope, requested, requirementID uint, ay *types.AcademicYear) uint {
	if requested != 0 {
		return requested
	}
	if f := sc.entities.FindFaculty(requirementID, ay); f != nil {
		return f.EntityID
	}
	return requirementID
}

func requirementOf(luy *types.LearningUnitYear) uint {
	if luy == nil || luy.LearningContainerYear == nil {
		return 0
	}
	if ecy := luy.LearningContainerYear.Attachment(types.RequirementEntity); ecy != nil {
		return ecy.EntityID
	}
	return 0
}

func (a *proposalAggregate) ProposeModification(ctx context.Context, in domainagg.ProposeModificationInput) (domainagg.ProposalResult, error) {
	const op = "Proposal.ProposeModification"
	var out domainagg.ProposalResult
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		if err := a.edits.Validate(op, in.Edits); err != nil {
			return err
		}
		sc, err := a.loadScope(dbc)
		if err != nil {
			return err
		}
		luy, err := a.lockUnitYear(dbc, op, in.LearningUnitYearID)
		if err != nil {
			return err
		}
		existing, err := a.repos.Proposal.FindForLearningUnitYear(dbc, luy.ID)
		if err != nil {
			return err
		}
		if err := sc.oracle.Check(op, in.Actor, permission.ProposeModification, permission.Subject{
			LearningUnitYear: luy,
			Proposal:         existing,
			CurrentYear:      sc.current,
		}); err != nil {
			return err
		}

		g, err := a.graph.Load(dbc, luy.ID)
		if err != nil {
			return err
		}
		initial := snapshot.Take(g)
		blob, err := snapshot.Encode(initial)
		if err != nil {
			return err
		}
		p, err := a.repos.Proposal.Create(dbc, &types.Proposal{
			LearningUnitYearID: luy.ID,
			Type:               types.ProposalModification,
			State:              types.StateFaculty,
			AuthorID:           in.Actor.ID(),
			FolderID:           in.FolderID,
			OwningEntityID:     a.owningEntity(sc, in.OwningEntityID, requirementOf(luy), luy.AcademicYear),
			InitialData:        blob,
		})
		if err != nil {
			return err
		}

		edited, warnings, err := a.edits.Apply(dbc, g, in.Edits)
		if err != nil {
			return err
		}
		derived := snapshot.DeriveType(p.Type, snapshot.Take(edited), initial)
		if derived != p.Type {
			if err := a.repos.Proposal.UpdateFields(dbc, p.ID, map[string]interface{}{"type": derived}); err != nil {
				return err
			}
		}

		out, err = a.result(dbc, domainagg.OutcomeCreated, p.ID, luy.ID)
		out.Messages = append(out.Messages, warnings...)
		return err
	})
	return out, err
}

func (a *proposalAggregate) ProposeSuppression(ctx context.Context, in domainagg.ProposeSuppressionInput) (domainagg.ProposalResult, error) {
	const op = "Proposal.ProposeSuppression"
	var out domainagg.ProposalResult
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		sc, err := a.loadScope(dbc)
		if err != nil {
			return err
		}
		luy, err := a.lockUnitYear(dbc, op, in.LearningUnitYearID)
		if err != nil {
			return err
		}
		existing, err := a.repos.Proposal.FindForLearningUnitYear(dbc, luy.ID)
		if err != nil {
			return err
		}
		if err := sc.oracle.Check(op, in.Actor, permission.ProposeSuppression, permission.Subject{
			LearningUnitYear: luy,
			Proposal:         existing,
			CurrentYear:      sc.current,
		}); err != nil {
			return err
		}

		if in.TargetEndYear < luy.Year() {
			return ValidationError(fmt.Sprintf("end year %d precedes %d", in.TargetEndYear, luy.Year()))
		}
		if _, err := sc.years.Get(in.TargetEndYear); err != nil {
			return err
		}
		lu := luy.LearningUnit
		if lu == nil {
			return domainagg.Errorf(domainagg.CodeInternal, op, "learning unit of %d not loaded", luy.ID)
		}
		if lu.EndYear != nil && *lu.EndYear <= in.TargetEndYear {
			return ValidationError(fmt.Sprintf("learning unit already ends in %d", *lu.EndYear))
		}

		g, err := a.graph.Load(dbc, luy.ID)
		if err != nil {
			return err
		}
		blob, err := snapshot.Encode(snapshot.Take(g))
		if err != nil {
			return err
		}
		target := in.TargetEndYear
		if err := a.repos.LearningUnit.UpdateFields(dbc, lu.ID, map[string]interface{}{"end_year": &target}); err != nil {
			return err
		}
		p, err := a.repos.Proposal.Create(dbc, &types.Proposal{
			LearningUnitYearID: luy.ID,
			Type:               types.ProposalSuppression,
			State:              types.StateFaculty,
			AuthorID:           in.Actor.ID(),
			FolderID:           in.FolderID,
			OwningEntityID:     a.owningEntity(sc, in.OwningEntityID, requirementOf(luy), luy.AcademicYear),
			InitialData:        blob,
		})
		if err != nil {
			return err
		}
		out, err = a.result(dbc, domainagg.OutcomeCreated, p.ID, luy.ID)
		return err
	})
	return out, err
}

func (a *proposalAggregate) ProposeCreation(ctx context.Context, in domainagg.ProposeCreationInput) (domainagg.ProposalResult, error) {
	const op = "Proposal.ProposeCreation"
	var out domainagg.ProposalResult
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		d := in.Data
		if err := a.edits.Validate(op, d); err != nil {
			return err
		}
		sc, err := a.loadScope(dbc)
		if err != nil {
			return err
		}
		ay, err := sc.years.Get(d.AcademicYear)
		if err != nil {
			return err
		}
		requirementID := d.Attachments[types.RequirementEntity]
		if err := sc.oracle.Check(op, in.Actor, permission.ProposeCreation, permission.Subject{
			LearningUnitYear:    &types.LearningUnitYear{AcademicYear: ay},
			CurrentYear:         sc.current,
			RequirementEntityID: requirementID,
		}); err != nil {
			return err
		}
		if d.EndYear != nil {
			if _, err := sc.years.Get(*d.EndYear); err != nil {
				return err
			}
		}

		// The unit stays confined to its first year until the proposal is accepted.
		pinned := ay.Year
		g, err := a.graph.Create(dbc, graph.CreateInput{
			AcademicYear:         ay,
			EndYear:              &pinned,
			Acronym:              d.Acronym,
			Subtype:              types.SubtypeFull,
			SpecificTitle:        d.SpecificTitle,
			SpecificTitleEnglish: d.SpecificTitleEnglish,
			Credits:              d.Credits,
			Status:               d.Status,
			Session:              d.Session,
			Quadrimester:         d.Quadrimester,
			InternshipSubtype:    d.InternshipSubtype,
			LanguageID:           d.LanguageID,
			CampusID:             d.CampusID,
			AttributionProcedure: d.AttributionProcedure,
			Periodicity:          d.Periodicity,
			FacultyRemark:        d.FacultyRemark,
			OtherRemark:          d.OtherRemark,
			ContainerType:        d.ContainerType,
			CommonTitle:          d.CommonTitle,
			CommonTitleEnglish:   d.CommonTitleEnglish,
			InCharge:             d.InCharge,
			Attachments:          d.Attachments,
		})
		if err != nil {
			return err
		}
		initial := snapshot.Take(g)
		initial.LearningUnit.EndYear = d.EndYear
		blob, err := snapshot.Encode(initial)
		if err != nil {
			return err
		}
		p, err := a.repos.Proposal.Create(dbc, &types.Proposal{
			LearningUnitYearID: g.LearningUnitYear.ID,
			Type:               types.ProposalCreation,
			State:              types.StateFaculty,
			AuthorID:           in.Actor.ID(),
			FolderID:           in.FolderID,
			OwningEntityID:     a.owningEntity(sc, in.OwningEntityID, requirementID, ay),
			InitialData:        blob,
		})
		if err != nil {
			return err
		}
		warnings, err := a.graph.VolumeWarnings(dbc, g)
		if err != nil {
			return err
		}
		out, err = a.result(dbc, domainagg.OutcomeCreated, p.ID, g.LearningUnitYear.ID)
		out.Messages = append(out.Messages, warnings...)
		return err
	})
	return out, err
}

func (a *proposalAggregate) EditProposal(ctx context.Context, in domainagg.EditProposalInput) (domainagg.ProposalResult, error) {
	const op = "Proposal.EditProposal"
	var out domainagg.ProposalResult
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		if err := a.edits.Validate(op, in.Edits); err != nil {
			return err
		}
		sc, err := a.loadScope(dbc)
		if err != nil {
			return err
		}
		p, luy, err := a.lockProposal(dbc, op, in.ProposalID)
		if err != nil {
			return err
		}
		if err := sc.oracle.Check(op, in.Actor, permission.EditProposal, permission.Subject{
			LearningUnitYear: luy,
			Proposal:         p,
			CurrentYear:      sc.current,
		}); err != nil {
			return err
		}
		initial, err := snapshot.Decode(p.InitialData)
		if err != nil {
			return err
		}
		g, err := a.graph.Load(dbc, luy.ID)
		if err != nil {
			return err
		}
		edited, warnings, err := a.edits.Apply(dbc, g, in.Edits)
		if err != nil {
			return err
		}
		derived := snapshot.DeriveType(p.Type, snapshot.Take(edited), initial)
		if derived != p.Type {
			if err := a.repos.Proposal.UpdateFields(dbc, p.ID, map[string]interface{}{"type": derived}); err != nil {
				return err
			}
		}
		out, err = a.result(dbc, domainagg.OutcomeUpdated, p.ID, luy.ID)
		out.Messages = append(out.Messages, warnings...)
		return err
	})
	return out, err
}

func (a *proposalAggregate) ModifyState(ctx context.Context, in domainagg.ModifyStateInput) (domainagg.ProposalResult, error) {
	const op = "Proposal.ModifyState"
	var out domainagg.ProposalResult
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		if !in.State.Valid() {
			return ValidationError(fmt.Sprintf("invalid proposal state %q", in.State))
		}
		sc, err := a.loadScope(dbc)
		if err != nil {
			return err
		}
		p, luy, err := a.lockProposal(dbc, op, in.ProposalID)
		if err != nil {
			return err
		}
		if err := sc.oracle.Check(op, in.Actor, permission.EditProposal, permission.Subject{
			LearningUnitYear: luy,
			Proposal:         p,
			CurrentYear:      sc.current,
			NewState:         in.State,
		}); err != nil {
			return err
		}
		if p.State != in.State {
			ok, err := a.guard.UpdateByState(dbc, p.TableName(), p.ID, []string{string(p.State)}, map[string]interface{}{"state": in.State})
			if err != nil {
				return err
			}
			if err := RequireCASSuccess(ok, "proposal state changed concurrently"); err != nil {
				return err
			}
		}
		out, err = a.result(dbc, domainagg.OutcomeUpdated, p.ID, luy.ID)
		return err
	})
	return out, err
}

func (a *proposalAggregate) Cancel(ctx context.Context, in domainagg.ProposalActionInput) (domainagg.ProposalResult, error) {
	const op = "Proposal.Cancel"
	var out domainagg.ProposalResult
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		sc, err := a.loadScope(dbc)
		if err != nil {
			return err
		}
		p, luy, err := a.lockProposal(dbc, op, in.ProposalID)
		if err != nil {
			return err
		}
		subject := permission.Subject{LearningUnitYear: luy, Proposal: p, CurrentYear: sc.current}
		if p.Type == types.ProposalCreation {
			subject.AuthorAttachments, err = a.repos.Person.ListEntities(dbc, p.AuthorID)
			if err != nil {
				return err
			}
		}
		if err := sc.oracle.Check(op, in.Actor, permission.CancelProposal, subject); err != nil {
			return err
		}
		out, err = a.cancel(dbc, op, p, luy)
		return err
	})
	return out, err
}

// cancel undoes a locked proposal. A CREATION takes its unit with it; any
// other type restores the snapshot.
func (a *proposalAggregate) cancel(dbc dbctx.Context, op string, p *types.Proposal, luy *types.LearningUnitYear) (domainagg.ProposalResult, error) {
	out := domainagg.ProposalResult{Outcome: domainagg.OutcomeCancelled, Proposal: p}
	if err := a.repos.Proposal.DeleteByID(dbc, p.ID); err != nil {
		return out, err
	}
	if p.Type == types.ProposalCreation {
		if err := a.graph.DeleteLearningUnit(dbc, luy.LearningUnitID); err != nil {
			return out, err
		}
		out.Messages = append(out.Messages, fmt.Sprintf("Learning unit %s has been deleted", luy.Acronym))
		a.log.Info("Cancelled creation proposal", "proposal_id", p.ID, "acronym", luy.Acronym)
		return out, nil
	}

	initial, err := snapshot.Decode(p.InitialData)
	if err != nil {
		return out, err
	}
	if err := a.restorer.Restore(dbc, luy.ID, initial); err != nil {
		return out, err
	}
	restored, err := a.repos.LearningUnitYear.GetByID(dbc, luy.ID)
	if err != nil {
		return out, err
	}
	out.LearningUnitYear = restored
	a.log.Info("Cancelled proposal", "proposal_id", p.ID, "type", p.Type, "acronym", restored.Acronym)
	return out, nil
}

func (a *proposalAggregate) Consolidate(ctx context.Context, in domainagg.ProposalActionInput) (domainagg.ProposalResult, error) {
	const op = "Proposal.Consolidate"
	var out domainagg.ProposalResult
	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		sc, err := a.loadScope(dbc)
		if err != nil {
			return err
		}
		p, luy, err := a.lockProposal(dbc, op, in.ProposalID)
		if err != nil {
			return err
		}
		if err := sc.oracle.Check(op, in.Actor, permission.ConsolidateProposal, permission.Subject{
			LearningUnitYear: luy,
			Proposal:         p,
			CurrentYear:      sc.current,
		}); err != nil {
			return err
		}
		if err := RequireStateAllowed(string(p.State), string(types.StateAccepted), string(types.StateRefused)); err != nil {
			return err
		}
		if p.State == types.StateRefused {
			out, err = a.cancel(dbc, op, p, luy)
			if err == nil {
				out.Outcome = domainagg.OutcomeConsolidated
			}
			return err
		}
		out, err = a.accept(dbc, op, sc, p, luy)
		return err
	})
	return out, err
}

// accept commits an ACCEPTED proposal and carries it forward.
func (a *proposalAggregate) accept(dbc dbctx.Context, op string, sc *scope, p *types.Proposal, luy *types.LearningUnitYear) (domainagg.ProposalResult, error) {
	out := domainagg.ProposalResult{Outcome: domainagg.OutcomeConsolidated, Proposal: p}

	if p.Type == types.ProposalCreation {
		initial, err := snapshot.Decode(p.InitialData)
		if err != nil {
			return out, err
		}
		if err := a.repos.LearningUnit.UpdateFields(dbc, luy.LearningUnitID, map[string]interface{}{
			"end_year": initial.LearningUnit.EndYear,
		}); err != nil {
			return out, err
		}
	}
	if err := a.repos.Proposal.DeleteByID(dbc, p.ID); err != nil {
		return out, err
	}

	var (
		rep *types.PostponementReport
		err error
	)
	if p.Type == types.ProposalSuppression {
		rep, err = a.engine.Truncate(dbc, luy.ID)
		if err != nil {
			return out, err
		}
		if len(rep.Failed) > 0 {
			f := rep.Failed[0]
			if f.Code == string(domainagg.CodeProposalExists) {
				return out, domainagg.Errorf(domainagg.CodeProposalExists, op, "cannot remove %s in %d: %s", f.Acronym, f.Year, f.Error)
			}
			return out, InUseError(fmt.Sprintf("cannot remove %s in %d: %s", f.Acronym, f.Year, f.Error))
		}
	} else {
		horizon, err := sc.years.Horizon(a.span)
		if err != nil {
			return out, err
		}
		rep, err = a.engine.Propagate(dbc, sc.years, luy.ID, horizon)
		if err != nil {
			return out, err
		}
	}
	out.Postponement = rep
	out.Messages = append(out.Messages, ReportMessages(rep)...)

	current, err := a.repos.LearningUnitYear.GetByID(dbc, luy.ID)
	if err != nil {
		return out, err
	}
	out.LearningUnitYear = current
	a.log.Info("Consolidated proposal",
		"proposal_id", p.ID,
		"type", p.Type,
		"acronym", luy.Acronym,
		"succeeded", len(rep.Succeeded),
		"failed", len(rep.Failed),
		"removed", len(rep.Removed),
	)
	return out, nil
}

func (a *proposalAggregate) result(dbc dbctx.Context, outcome domainagg.ProposalOutcome, proposalID, learningUnitYearID uint) (domainagg.ProposalResult, error) {
	out := domainagg.ProposalResult{Outcome: outcome}
	p, err := a.repos.Proposal.GetByID(dbc, proposalID)
	if err != nil {
		return out, err
	}
	luy, err := a.repos.LearningUnitYear.GetByID(dbc, learningUnitYearID)
	if err != nil {
		return out, err
	}
	out.Proposal, out.LearningUnitYear = p, luy
	return out, nil
}

// ReportMessages renders a postponement report as lines for the actor.
func ReportMessages(rep *types.PostponementReport) []string {
	if rep == nil {
		return nil
	}
	var out []string
	if len(rep.Succeeded) > 0 {
		years := make([]string, 0, len(rep.Succeeded))
		for _, t := range rep.Succeeded {
			years = append(years, fmt.Sprintf("%s (%d)", t.Acronym, t.Year))
		}
		out = append(out, "Postponed to "+strings.Join(years, ", "))
	}
	for _, t := range rep.Removed {
		out = append(out, fmt.Sprintf("Removed %s (%d)", t.Acronym, t.Year))
	}
	for _, t := range rep.Skipped {
		out = append(out, fmt.Sprintf("Skipped %s (%d): no FULL in that year", t.Acronym, t.Year))
	}
	for _, f := range rep.Failed {
		out = append(out, fmt.Sprintf("Failed %s (%d): %s", f.Acronym, f.Year, f.Error))
	}
	return out
}
