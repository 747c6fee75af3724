// Package permission decides whether an actor may perform a proposal
// transition. Rules are evaluated in order and the first failing rule wins.
package permission

import (
	"time"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/entityversion"
)

// Subject is what the actor wants to act on. LearningUnitYear must carry its
// AcademicYear and LearningContainerYear (with attachments) associations.
type Subject struct {
	LearningUnitYear *types.LearningUnitYear
	Proposal         *types.Proposal
	CurrentYear      int

	// NewState is the requested state for EditProposal; empty for data edits.
	NewState types.ProposalState

	// AuthorAttachments are the author's entity attachments, used when a
	// faculty manager cancels someone else's CREATION proposal.
	AuthorAttachments []*types.PersonEntity

	// RequirementEntityID replaces the container lookup for ProposeCreation.
	RequirementEntityID uint
}

type Oracle struct {
	entities *entityversion.Resolver
}

func New(entities *entityversion.Resolver) *Oracle {
	return &Oracle{entities: entities}
}

// Decide evaluates a transition without side effects.
func (o *Oracle) Decide(a Actor, t Transition, s Subject) Decision {
	role := a.Manager()
	if role == "" {
		return forbid(ReasonNotManager)
	}
	if d := o.attached(a, s); !d.Allowed {
		return d
	}

	switch t {
	case ProposeModification:
		luy := s.LearningUnitYear
		if !luy.IsFull() {
			return forbid(ReasonNotFull)
		}
		c := luy.LearningContainerYear
		if c == nil {
			return forbid(ReasonContainerType)
		}
		if p, ok := types.PolicyFor(c.ContainerType); !ok || !p.ProposalModifiable {
			return forbid(ReasonContainerType)
		}
		if luy.Year() < s.CurrentYear {
			return forbid(ReasonPastYear)
		}
		if s.Proposal != nil {
			return Decision{Code: domainagg.CodeProposalExists, Reason: ReasonProposalExists}
		}
		return allowed()

	case ProposeSuppression:
		if !s.LearningUnitYear.IsFull() {
			return forbid(ReasonNotFull)
		}
		if s.Proposal != nil {
			return Decision{Code: domainagg.CodeProposalExists, Reason: ReasonProposalExists}
		}
		return allowed()

	case ProposeCreation:
		if role != types.RoleCentralManager {
			return forbid(ReasonCentralOnly)
		}
		return allowed()

	case CancelProposal:
		if s.Proposal == nil {
			return Decision{Code: domainagg.CodeNoProposal, Reason: ReasonNoProposal}
		}
		if s.Proposal.Type == types.ProposalCreation {
			return o.cancelCreation(a, role, s)
		}
		return cancelTable.decide(role, s.Proposal.State)

	case EditProposal:
		if s.Proposal == nil {
			return Decision{Code: domainagg.CodeNoProposal, Reason: ReasonNoProposal}
		}
		d := editTable.decide(role, s.Proposal.State)
		if d.Allowed && role == types.RoleFacultyManager && s.NewState != "" && s.NewState != types.StateFaculty {
			return forbid(ReasonFacultyStateOnly)
		}
		return d

	case ConsolidateProposal:
		if s.Proposal == nil {
			return Decision{Code: domainagg.CodeNoProposal, Reason: ReasonNoProposal}
		}
		return consolidateTable.decide(role, s.Proposal.State)
	}
	return forbid("unknown transition " + string(t))
}

// Check is Decide returning an engine error on denial.
func (o *Oracle) Check(op string, a Actor, t Transition, s Subject) error {
	d := o.Decide(a, t, s)
	if d.Allowed {
		return nil
	}
	code := d.Code
	if code == "" {
		code = domainagg.CodePermissionDenied
	}
	return domainagg.NewError(code, op, d.Reason, nil)
}

// attached applies the entity rule: the actor must be attached to the
// requirement entity itself, or to an ancestor with WithChild set.
func (o *Oracle) attached(a Actor, s Subject) Decision {
	entityID, date := s.RequirementEntityID, time.Now()
	if luy := s.LearningUnitYear; luy != nil {
		if c := luy.LearningContainerYear; c != nil {
			if ecy := c.Attachment(types.RequirementEntity); ecy != nil {
				entityID = ecy.EntityID
			}
		}
		if luy.AcademicYear != nil {
			date = luy.AcademicYear.StartDate
		}
	}
	if entityID == 0 {
		return forbid(ReasonNotAttached)
	}
	if o.covers(a.Attachments, entityID, date) {
		return allowed()
	}
	return forbid(ReasonNotAttached)
}

func (o *Oracle) covers(attachments []*types.PersonEntity, entityID uint, date time.Time) bool {
	for _, pe := range attachments {
		if pe == nil {
			continue
		}
		if pe.EntityID == entityID {
			return true
		}
		if pe.WithChild && o.entities != nil && o.entities.IsDescendant(entityID, pe.EntityID, date) {
			return true
		}
	}
	return false
}

func (o *Oracle) cancelCreation(a Actor, role types.Role, s Subject) Decision {
	if role == types.RoleCentralManager || a.ID() == s.Proposal.AuthorID {
		return allowed()
	}
	date := time.Now()
	if s.LearningUnitYear != nil && s.LearningUnitYear.AcademicYear != nil {
		date = s.LearningUnitYear.AcademicYear.StartDate
	}
	mine := o.faculties(a.Attachments, date)
	for id := range o.faculties(s.AuthorAttachments, date) {
		if mine[id] {
			return allowed()
		}
	}
	return forbid(ReasonCreationOwnership)
}

func (o *Oracle) faculties(attachments []*types.PersonEntity, date time.Time) map[uint]bool {
	out := map[uint]bool{}
	if o.entities == nil {
		return out
	}
	for _, pe := range attachments {
		if pe == nil {
			continue
		}
		for _, v := range o.entities.ParentChain(pe.EntityID, date) {
			if v.EntityType == types.EntityFaculty {
				out[v.EntityID] = true
				break
			}
		}
	}
	return out
}
