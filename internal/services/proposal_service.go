package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/osisteam/catalogue-backend/internal/data/repos"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/academicyear"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/entityversion"
	"github.com/osisteam/catalogue-backend/internal/notify"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

// Transition names carried by single_transition events.
const (
	TransitionProposeModification = "propose_modification"
	TransitionProposeSuppression  = "propose_suppression"
	TransitionProposeCreation     = "propose_creation"
	TransitionEditProposal        = "edit_proposal"
	TransitionModifyState         = "modify_state"
	TransitionCancel              = "cancel"
	TransitionConsolidate         = "consolidate"
)

// ReportSentMessage is the INFO line of a batch whose report was queued.
const ReportSentMessage = "A report has been sent."

// BatchResult groups per-proposal outcome lines under SUCCESS, ERROR and INFO.
type BatchResult map[string][]string

func newBatchResult() BatchResult {
	return BatchResult{
		notify.BucketSuccess: []string{},
		notify.BucketError:   []string{},
		notify.BucketInfo:    []string{},
	}
}

type ProposalSearch struct {
	Year         int
	Acronym      string
	Type         types.ProposalType
	State        types.ProposalState
	FolderID     *int
	EntityFolder uint
	WithChildren bool
	Tutor        string
}

// Criteria renders the filters that were actually set, for reports.
func (f ProposalSearch) Criteria() map[string]string {
	out := map[string]string{}
	if f.Year != 0 {
		out["academic_year"] = strconv.Itoa(f.Year)
	}
	if s := strings.TrimSpace(f.Acronym); s != "" {
		out["acronym"] = s
	}
	if f.Type != "" {
		out["type"] = string(f.Type)
	}
	if f.State != "" {
		out["state"] = string(f.State)
	}
	if f.FolderID != nil {
		out["folder_id"] = strconv.Itoa(*f.FolderID)
	}
	if f.EntityFolder != 0 {
		out["entity_folder"] = strconv.FormatUint(uint64(f.EntityFolder), 10)
		out["with_children"] = strconv.FormatBool(f.WithChildren)
	}
	if s := strings.TrimSpace(f.Tutor); s != "" {
		out["tutor"] = s
	}
	return out
}

type ProposalService interface {
	ProposeModification(ctx context.Context, in domainagg.ProposeModificationInput) (domainagg.ProposalResult, error)
	ProposeSuppression(ctx context.Context, in domainagg.ProposeSuppressionInput) (domainagg.ProposalResult, error)
	ProposeCreation(ctx context.Context, in domainagg.ProposeCreationInput) (domainagg.ProposalResult, error)
	EditProposal(ctx context.Context, in domainagg.EditProposalInput) (domainagg.ProposalResult, error)
	ModifyState(ctx context.Context, in domainagg.ModifyStateInput) (domainagg.ProposalResult, error)
	Cancel(ctx context.Context, in domainagg.ProposalActionInput) (domainagg.ProposalResult, error)
	Consolidate(ctx context.Context, in domainagg.ProposalActionInput) (domainagg.ProposalResult, error)

	Get(ctx context.Context, id uint) (*types.Proposal, error)
	FindForLearningUnitYear(ctx context.Context, learningUnitYearID uint) (*types.Proposal, error)
	FindByEntity(ctx context.Context, entityID uint, includeChildren bool) ([]*types.Proposal, error)
	Search(ctx context.Context, f ProposalSearch) ([]*types.Proposal, error)

	CancelProposals(ctx context.Context, actor types.Actor, ids []uint, criteria map[string]string) (BatchResult, error)
	ConsolidateProposals(ctx context.Context, actor types.Actor, ids []uint, criteria map[string]string) (BatchResult, error)
	ForceState(ctx context.Context, actor types.Actor, ids []uint, state types.ProposalState, criteria map[string]string) (BatchResult, error)
}

type proposalService struct {
	log      *logger.Logger
	repos    repos.Set
	agg      domainagg.ProposalAggregate
	notifier ProposalNotifier
	now      func() time.Time
}

func NewProposalService(baseLog *logger.Logger, rs repos.Set, agg domainagg.ProposalAggregate, notifier ProposalNotifier) ProposalService {
	return &proposalService{
		log:      baseLog.With("service", "ProposalService"),
		repos:    rs,
		agg:      agg,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *proposalService) ProposeModification(ctx context.Context, in domainagg.ProposeModificationInput) (domainagg.ProposalResult, error) {
	res, err := s.agg.ProposeModification(ctx, in)
	return s.after(TransitionProposeModification, in.Actor, res, err)
}

func (s *proposalService) ProposeSuppression(ctx context.Context, in domainagg.ProposeSuppressionInput) (domainagg.ProposalResult, error) {
	res, err := s.agg.ProposeSuppression(ctx, in)
	return s.after(TransitionProposeSuppression, in.Actor, res, err)
}

func (s *proposalService) ProposeCreation(ctx context.Context, in domainagg.ProposeCreationInput) (domainagg.ProposalResult, error) {
	res, err := s.agg.ProposeCreation(ctx, in)
	return s.after(TransitionProposeCreation, in.Actor, res, err)
}

func (s *proposalService) EditProposal(ctx context.Context, in domainagg.EditProposalInput) (domainagg.ProposalResult, error) {
	res, err := s.agg.EditProposal(ctx, in)
	return s.after(TransitionEditProposal, in.Actor, res, err)
}

func (s *proposalService) ModifyState(ctx context.Context, in domainagg.ModifyStateInput) (domainagg.ProposalResult, error) {
	res, err := s.agg.ModifyState(ctx, in)
	return s.after(TransitionModifyState, in.Actor, res, err)
}

func (s *proposalService) Cancel(ctx context.Context, in domainagg.ProposalActionInput) (domainagg.ProposalResult, error) {
	res, err := s.agg.Cancel(ctx, in)
	return s.after(TransitionCancel, in.Actor, res, err)
}

func (s *proposalService) Consolidate(ctx context.Context, in domainagg.ProposalActionInput) (domainagg.ProposalResult, error) {
	res, err := s.agg.Consolidate(ctx, in)
	return s.after(TransitionConsolidate, in.Actor, res, err)
}

// after emits the single_transition event of a committed transition.
func (s *proposalService) after(transition string, actor types.Actor, res domainagg.ProposalResult, err error) (domainagg.ProposalResult, error) {
	if err != nil {
		return res, err
	}
	ev := notify.NewEvent(notify.KindSingleTransition, actor)
	ev.Transition = transition
	ev.Proposals = []notify.ProposalRef{refOfResult(res)}
	ev.Outcomes = map[string][]string{notify.BucketSuccess: {string(res.Outcome)}}
	if len(res.Messages) > 0 {
		ev.Outcomes[notify.BucketInfo] = res.Messages
	}
	if res.Postponement != nil {
		ev.Postponements = []*types.PostponementReport{res.Postponement}
	}
	s.emit(ev)
	return res, nil
}

func (s *proposalService) emit(ev notify.Event) bool {
	if s.notifier == nil {
		return false
	}
	return s.notifier.Notify(ev)
}

func refOfResult(res domainagg.ProposalResult) notify.ProposalRef {
	ref := notify.RefOf(res.Proposal)
	if luy := res.LearningUnitYear; luy != nil && ref.Acronym == "" {
		ref.Acronym = luy.Acronym
		ref.Year = luy.Year()
	}
	return ref
}

func (s *proposalService) Get(ctx context.Context, id uint) (*types.Proposal, error) {
	const op = "ProposalService.Get"
	rows, err := s.repos.Proposal.GetByIDs(dbctx.Context{Ctx: ctx}, []uint{id})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if len(rows) == 0 {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, op, "proposal %d not found", id)
	}
	return rows[0], nil
}

func (s *proposalService) FindForLearningUnitYear(ctx context.Context, learningUnitYearID uint) (*types.Proposal, error) {
	const op = "ProposalService.FindForLearningUnitYear"
	p, err := s.repos.Proposal.FindForLearningUnitYear(dbctx.Context{Ctx: ctx}, learningUnitYearID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if p == nil {
		return nil, domainagg.Errorf(domainagg.CodeNoProposal, op, "learning unit year %d has no proposal", learningUnitYearID)
	}
	return p, nil
}

func (s *proposalService) FindByEntity(ctx context.Context, entityID uint, includeChildren bool) ([]*types.Proposal, error) {
	const op = "ProposalService.FindByEntity"
	dbc := dbctx.Context{Ctx: ctx}
	ids := []uint{entityID}
	if includeChildren {
		entities, err := entityversion.Load(dbc, s.repos.Entity)
		if err != nil {
			return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
		}
		ids = entities.WithDescendants(entityID, s.now())
	}
	out, err := s.repos.Proposal.FindByOwningEntities(dbc, ids)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return out, nil
}

func (s *proposalService) Search(ctx context.Context, f ProposalSearch) ([]*types.Proposal, error) {
	const op = "ProposalService.Search"
	dbc := dbctx.Context{Ctx: ctx}
	filter := repos.ProposalSearchFilter{
		AcronymPrefix: f.Acronym,
		Type:          f.Type,
		State:         f.State,
		FolderID:      f.FolderID,
	}

	date := s.now()
	if f.Year != 0 {
		years, err := academicyear.Load(dbc, s.repos.AcademicYear, academicyear.WithClock(s.now))
		if err != nil {
			return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
		}
		ay, err := years.Get(f.Year)
		if err != nil {
			return nil, err
		}
		filter.AcademicYearID = ay.ID
		date = ay.StartDate
	}

	if f.EntityFolder != 0 {
		filter.OwningEntityIDs = []uint{f.EntityFolder}
		if f.WithChildren {
			entities, err := entityversion.Load(dbc, s.repos.Entity)
			if err != nil {
				return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
			}
			filter.OwningEntityIDs = entities.WithDescendants(f.EntityFolder, date)
		}
	}

	if tutor := strings.TrimSpace(f.Tutor); tutor != "" {
		ids, err := s.repos.Reference.LearningUnitYearIDsByLabel(dbc, types.ReferenceAttribution, tutor)
		if err != nil {
			return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
		}
		filter.RestrictLearningUnitYears = true
		filter.LearningUnitYearIDs = ids
	}

	out, err := s.repos.Proposal.Search(dbc, filter)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return out, nil
}

func (s *proposalService) CancelProposals(ctx context.Context, actor types.Actor, ids []uint, criteria map[string]string) (BatchResult, error) {
	return s.batch(ctx, notify.KindCancellationReport, TransitionCancel, actor, ids, criteria,
		func(ctx context.Context, id uint) (domainagg.ProposalResult, error) {
			return s.agg.Cancel(ctx, domainagg.ProposalActionInput{ProposalID: id, Actor: actor})
		},
		func(ref notify.ProposalRef, _ domainagg.ProposalResult) string {
			return fmt.Sprintf("Proposal %s (%d) successfully cancelled.", ref.Acronym, ref.Year)
		})
}

func (s *proposalService) ConsolidateProposals(ctx context.Context, actor types.Actor, ids []uint, criteria map[string]string) (BatchResult, error) {
	return s.batch(ctx, notify.KindConsolidationReport, TransitionConsolidate, actor, ids, criteria,
		func(ctx context.Context, id uint) (domainagg.ProposalResult, error) {
			return s.agg.Consolidate(ctx, domainagg.ProposalActionInput{ProposalID: id, Actor: actor})
		},
		func(ref notify.ProposalRef, res domainagg.ProposalResult) string {
			line := fmt.Sprintf("Proposal %s (%d) successfully consolidated.", ref.Acronym, ref.Year)
			if len(res.Messages) > 0 {
				line += " " + strings.Join(res.Messages, " ")
			}
			return line
		})
}

func (s *proposalService) ForceState(ctx context.Context, actor types.Actor, ids []uint, state types.ProposalState, criteria map[string]string) (BatchResult, error) {
	const op = "ProposalService.ForceState"
	if !state.Valid() {
		return nil, domainagg.Errorf(domainagg.CodeValidation, op, "unknown proposal state %q", state)
	}
	return s.batch(ctx, notify.KindForceStateReport, TransitionModifyState, actor, ids, criteria,
		func(ctx context.Context, id uint) (domainagg.ProposalResult, error) {
			return s.agg.ModifyState(ctx, domainagg.ModifyStateInput{ProposalID: id, State: state, Actor: actor})
		},
		func(ref notify.ProposalRef, _ domainagg.ProposalResult) string {
			return fmt.Sprintf("Proposal %s (%d) set to state %s.", ref.Acronym, ref.Year, state)
		})
}

type batchStep func(ctx context.Context, id uint) (domainagg.ProposalResult, error)

type batchLine func(ref notify.ProposalRef, res domainagg.ProposalResult) string

// batch runs step once per proposal, each in its own transaction, and emits
// one report event after every element has been handled.
func (s *proposalService) batch(ctx context.Context, kind notify.Kind, transition string, actor types.Actor, ids []uint, criteria map[string]string, step batchStep, line batchLine) (BatchResult, error) {
	const op = "ProposalService.Batch"
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "no proposal selected", nil)
	}
	rows, err := s.repos.Proposal.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	byID := make(map[uint]*types.Proposal, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}

	out := newBatchResult()
	ev := notify.NewEvent(kind, actor)
	ev.Transition = transition
	ev.ResearchCriteria = criteria

	for _, id := range ids {
		p := byID[id]
		if p == nil {
			out[notify.BucketError] = append(out[notify.BucketError], fmt.Sprintf("Proposal %d: not found.", id))
			continue
		}
		ref := notify.RefOf(p)
		ev.Proposals = append(ev.Proposals, ref)

		res, err := step(ctx, id)
		if err != nil {
			s.log.Debug("batch element failed", "transition", transition, "proposal_id", id, "error", err)
			out[notify.BucketError] = append(out[notify.BucketError],
				fmt.Sprintf("%s (%d): %s", ref.Acronym, ref.Year, domainagg.MessageOf(err)))
			continue
		}
		out[notify.BucketSuccess] = append(out[notify.BucketSuccess], line(ref, res))
		if res.Postponement != nil {
			ev.Postponements = append(ev.Postponements, res.Postponement)
		}
	}

	ev.Outcomes = map[string][]string{
		notify.BucketSuccess: out[notify.BucketSuccess],
		notify.BucketError:   out[notify.BucketError],
	}
	if s.emit(ev) {
		out[notify.BucketInfo] = append(out[notify.BucketInfo], ReportSentMessage)
	}
	s.log.Info("batch finished",
		"transition", transition,
		"success", len(out[notify.BucketSuccess]),
		"error", len(out[notify.BucketError]),
	)
	return out, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
