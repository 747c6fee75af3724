// Package notify delivers proposal transition reports to external sinks.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

type Kind string

const (
	KindSingleTransition    Kind = "single_transition"
	KindCancellationReport  Kind = "cancellation_report"
	KindConsolidationReport Kind = "consolidation_report"
	KindForceStateReport    Kind = "force_state_report"
	KindPostponementReport  Kind = "postponement_report"
)

// Outcome buckets of a batch report.
const (
	BucketSuccess = "SUCCESS"
	BucketError   = "ERROR"
	BucketInfo    = "INFO"
)

type ProposalRef struct {
	ID                 uint                `json:"id"`
	UUID               uuid.UUID           `json:"uuid"`
	LearningUnitYearID uint                `json:"learning_unit_year_id"`
	Acronym            string              `json:"acronym"`
	Year               int                 `json:"year"`
	Type               types.ProposalType  `json:"type"`
	State              types.ProposalState `json:"state"`
}

type Recipient struct {
	PersonID uint   `json:"person_id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

type Event struct {
	ID               uuid.UUID                   `json:"id"`
	Kind             Kind                        `json:"kind"`
	Actor            Recipient                   `json:"actor"`
	Transition       string                      `json:"transition,omitempty"`
	Proposals        []ProposalRef               `json:"proposals"`
	ResearchCriteria map[string]string           `json:"research_criteria,omitempty"`
	Outcomes         map[string][]string         `json:"outcomes,omitempty"`
	Postponements    []*types.PostponementReport `json:"postponements,omitempty"`
	OccurredAt       time.Time                   `json:"occurred_at"`
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(kind Kind, actor types.Actor) Event {
	ev := Event{
		ID:         uuid.New(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
	}
	if p := actor.Person; p != nil {
		ev.Actor = Recipient{PersonID: p.ID, Name: p.FullName(), Email: p.Email}
	}
	return ev
}

// RefOf summarises a proposal row; LearningUnitYear and its AcademicYear
// fill Acronym and Year when loaded.
func RefOf(p *types.Proposal) ProposalRef {
	if p == nil {
		return ProposalRef{}
	}
	ref := ProposalRef{
		ID:                 p.ID,
		UUID:               p.UUID,
		LearningUnitYearID: p.LearningUnitYearID,
		Type:               p.Type,
		State:              p.State,
	}
	if luy := p.LearningUnitYear; luy != nil {
		ref.Acronym = luy.Acronym
		ref.Year = luy.Year()
	}
	return ref
}

// Sink receives events. Implementations must honour ctx cancellation.
type Sink interface {
	Name() string
	Send(ctx context.Context, ev Event) error
}
