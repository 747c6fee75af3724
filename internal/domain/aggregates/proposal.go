package aggregates

import (
	"context"

	"github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

var ProposalAggregateContract = Contract{
	Name:             "Catalogue.ProposalAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns the proposal lifecycle: snapshot, graph edits, rollback and forward propagation commit or roll back together.",
}

// ProposalAggregate drives proposals through their lifecycle.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeUnknownYear, CodePermissionDenied,
// CodeProposalExists, CodeNoProposal, CodeIllegalTransition, CodeInUse,
// CodeConcurrent, CodeInternal.
type ProposalAggregate interface {
	Aggregate

	// ProposeModification snapshots the unit year, applies the edits and opens a proposal.
	ProposeModification(ctx context.Context, in ProposeModificationInput) (ProposalResult, error)

	// ProposeSuppression snapshots the unit year and moves the end year of its unit.
	ProposeSuppression(ctx context.Context, in ProposeSuppressionInput) (ProposalResult, error)

	// ProposeCreation creates a new unit and its first unit year under a proposal.
	ProposeCreation(ctx context.Context, in ProposeCreationInput) (ProposalResult, error)

	// EditProposal applies further edits to an open proposal and re-derives its type.
	EditProposal(ctx context.Context, in EditProposalInput) (ProposalResult, error)

	ModifyState(ctx context.Context, in ModifyStateInput) (ProposalResult, error)

	// Cancel rolls the unit year back to its snapshot, or destroys a created unit.
	Cancel(ctx context.Context, in ProposalActionInput) (ProposalResult, error)

	// Consolidate cancels a REFUSED proposal or commits an ACCEPTED one and propagates it.
	Consolidate(ctx context.Context, in ProposalActionInput) (ProposalResult, error)
}

type ProposeModificationInput struct {
	LearningUnitYearID uint
	Edits              catalogue.ProposalEdits
	FolderID           int
	OwningEntityID     uint
	Actor              catalogue.Actor
}

type ProposeSuppressionInput struct {
	LearningUnitYearID uint
	TargetEndYear      int
	FolderID           int
	OwningEntityID     uint
	Actor              catalogue.Actor
}

type ProposeCreationInput struct {
	Data           catalogue.UnitCreation
	FolderID       int
	OwningEntityID uint
	Actor          catalogue.Actor
}

type EditProposalInput struct {
	ProposalID uint
	Edits      catalogue.ProposalEdits
	Actor      catalogue.Actor
}

type ModifyStateInput struct {
	ProposalID uint
	State      catalogue.ProposalState
	Actor      catalogue.Actor
}

type ProposalActionInput struct {
	ProposalID uint
	Actor      catalogue.Actor
}

// ProposalOutcome names what a transition did.
type ProposalOutcome string

const (
	OutcomeCreated      ProposalOutcome = "created"
	OutcomeUpdated      ProposalOutcome = "updated"
	OutcomeCancelled    ProposalOutcome = "cancelled"
	OutcomeConsolidated ProposalOutcome = "consolidated"
)

type ProposalResult struct {
	Outcome ProposalOutcome
	// Proposal is the row after the transition; for cancel and consolidate it
	// is the row as it was before deletion.
	Proposal *catalogue.Proposal
	// LearningUnitYear is nil when the transition destroyed it.
	LearningUnitYear *catalogue.LearningUnitYear
	Postponement     *catalogue.PostponementReport
	// Messages are warnings and informational lines for the actor.
	Messages []string
}
