package permission

import (
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

// Transition is an action an actor requests on a learning unit year or proposal.
type Transition string

const (
	ProposeModification Transition = "propose_modification"
	ProposeSuppression  Transition = "propose_suppression"
	ProposeCreation     Transition = "propose_creation"
	EditProposal        Transition = "edit_proposal"
	CancelProposal      Transition = "cancel_proposal"
	ConsolidateProposal Transition = "consolidate_proposal"
)

const (
	ReasonNotManager        = "actor holds no managing role"
	ReasonNotAttached       = "actor is not attached to the requirement entity"
	ReasonNotFull           = "learning unit year is not a FULL"
	ReasonContainerType     = "container type does not accept modification proposals"
	ReasonPastYear          = "academic year is in the past"
	ReasonProposalExists    = "a proposal already exists for this learning unit year"
	ReasonNoProposal        = "no proposal for this learning unit year"
	ReasonCentralOnly       = "reserved to central managers"
	ReasonFacultyStateOnly  = "faculty managers may only act on proposals in FACULTY state"
	ReasonSuspended         = "proposal is suspended"
	ReasonNotDecided        = "proposal must be ACCEPTED or REFUSED"
	ReasonCreationOwnership = "actor shares no faculty with the proposal author"
)

// Decision is the outcome of one permission check.
type Decision struct {
	Allowed bool
	Code    domainagg.ErrorCode
	Reason  string
}

func allowed() Decision { return Decision{Allowed: true} }

func forbid(r string) Decision {
	return Decision{Code: domainagg.CodePermissionDenied, Reason: r}
}

func illegal(r string) Decision {
	return Decision{Code: domainagg.CodeIllegalTransition, Reason: r}
}

// stateTable holds the per-role decision for every proposal state. A central
// manager row must allow at least what the faculty manager row allows.
type stateTable map[types.Role]map[types.ProposalState]Decision

var cancelTable = stateTable{
	types.RoleFacultyManager: {
		types.StateFaculty:   allowed(),
		types.StateCentral:   forbid(ReasonFacultyStateOnly),
		types.StateSuspended: forbid(ReasonFacultyStateOnly),
		types.StateAccepted:  forbid(ReasonFacultyStateOnly),
		types.StateRefused:   forbid(ReasonFacultyStateOnly),
	},
	types.RoleCentralManager: {
		types.StateFaculty:   allowed(),
		types.StateCentral:   allowed(),
		types.StateSuspended: forbid(ReasonSuspended),
		types.StateAccepted:  allowed(),
		types.StateRefused:   allowed(),
	},
}

var editTable = stateTable{
	types.RoleFacultyManager: {
		types.StateFaculty:   allowed(),
		types.StateCentral:   forbid(ReasonFacultyStateOnly),
		types.StateSuspended: forbid(ReasonFacultyStateOnly),
		types.StateAccepted:  forbid(ReasonFacultyStateOnly),
		types.StateRefused:   forbid(ReasonFacultyStateOnly),
	},
	types.RoleCentralManager: {
		types.StateFaculty:   allowed(),
		types.StateCentral:   allowed(),
		types.StateSuspended: allowed(),
		types.StateAccepted:  allowed(),
		types.StateRefused:   allowed(),
	},
}

var consolidateTable = stateTable{
	types.RoleFacultyManager: {
		types.StateFaculty:   forbid(ReasonCentralOnly),
		types.StateCentral:   forbid(ReasonCentralOnly),
		types.StateSuspended: forbid(ReasonCentralOnly),
		types.StateAccepted:  forbid(ReasonCentralOnly),
		types.StateRefused:   forbid(ReasonCentralOnly),
	},
	types.RoleCentralManager: {
		types.StateFaculty:   illegal(ReasonNotDecided),
		types.StateCentral:   illegal(ReasonNotDecided),
		types.StateSuspended: illegal(ReasonNotDecided),
		types.StateAccepted:  allowed(),
		types.StateRefused:   allowed(),
	},
}

func (t stateTable) decide(role types.Role, state types.ProposalState) Decision {
	byState, ok := t[role]
	if !ok {
		return forbid(ReasonNotManager)
	}
	d, ok := byState[state]
	if !ok {
		return illegal("unknown proposal state " + string(state))
	}
	return d
}
