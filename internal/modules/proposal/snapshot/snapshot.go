// Package snapshot captures the pre-edit state of a learning unit year into
// the opaque initial_data blob of a proposal and writes it back on rollback.
package snapshot

import (
	"encoding/json"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/graph"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SchemaVersion tags every blob written by Encode. Schema 1 blobs carry
// neither the secondary text fields nor the components.
const SchemaVersion = 2

type Container struct {
	ID                 uint                `json:"id"`
	Acronym            string              `json:"acronym"`
	CommonTitle        string              `json:"common_title"`
	CommonTitleEnglish string              `json:"common_title_english"`
	ContainerType      types.ContainerType `json:"container_type"`
	InCharge           bool                `json:"in_charge"`
}

type Unit struct {
	ID            uint              `json:"id"`
	EndYear       *int              `json:"end_year"`
	Periodicity   types.Periodicity `json:"periodicity"`
	FacultyRemark string            `json:"faculty_remark"`
	OtherRemark   string            `json:"other_remark"`
}

type UnitYear struct {
	ID                   uint              `json:"id"`
	Acronym              string            `json:"acronym"`
	SpecificTitle        string            `json:"specific_title"`
	SpecificTitleEnglish string            `json:"specific_title_english"`
	InternshipSubtype    *string           `json:"internship_subtype"`
	Credits              float64           `json:"credits"`
	Status               bool              `json:"status"`
	Session              string            `json:"session"`
	Quadrimester         string            `json:"quadrimester"`
	AttributionProcedure string            `json:"attribution_procedure"`
	Campus               *uint             `json:"campus"`
	Language             *uint             `json:"language"`
	Periodicity          types.Periodicity `json:"periodicity"`
}

// Component holds the volumes of one component and its repartition per
// requirement role.
type Component struct {
	ID             uint                                              `json:"id"`
	Type           *types.ComponentType                              `json:"type"`
	PlannedClasses int                                               `json:"planned_classes"`
	Total          decimal.Decimal                                   `json:"hourly_volume_total_annual"`
	Q1             decimal.Decimal                                   `json:"hourly_volume_partial_q1"`
	Q2             decimal.Decimal                                   `json:"hourly_volume_partial_q2"`
	Repartitions   map[types.EntityContainerYearType]decimal.Decimal `json:"repartitions"`
}

func componentFrom(c *types.LearningComponentYear) Component {
	out := Component{
		ID:             c.ID,
		Type:           c.Type,
		PlannedClasses: c.PlannedClasses,
		Total:          c.HourlyVolumeTotalAnnual,
		Q1:             c.HourlyVolumePartialQ1,
		Q2:             c.HourlyVolumePartialQ2,
		Repartitions:   map[types.EntityContainerYearType]decimal.Decimal{},
	}
	for _, ecoy := range c.EntityComponentYears {
		if ecoy != nil && ecoy.EntityContainerYear != nil {
			out.Repartitions[ecoy.EntityContainerYear.Type] = ecoy.RepartitionVolume
		}
	}
	return out
}

// Entities holds one entity id (or null) per attachment role.
type Entities struct {
	Requirement            *uint `json:"REQUIREMENT_ENTITY"`
	Allocation             *uint `json:"ALLOCATION_ENTITY"`
	AdditionalRequirement1 *uint `json:"ADDITIONAL_REQUIREMENT_ENTITY_1"`
	AdditionalRequirement2 *uint `json:"ADDITIONAL_REQUIREMENT_ENTITY_2"`
}

func (e Entities) Get(t types.EntityContainerYearType) *uint {
	switch t {
	case types.RequirementEntity:
		return e.Requirement
	case types.AllocationEntity:
		return e.Allocation
	case types.AdditionalRequirementEntity1:
		return e.AdditionalRequirement1
	case types.AdditionalRequirementEntity2:
		return e.AdditionalRequirement2
	}
	return nil
}

// Map returns the present attachments keyed by role.
func (e Entities) Map() map[types.EntityContainerYearType]uint {
	out := map[types.EntityContainerYearType]uint{}
	for _, t := range types.EntityContainerYearTypes {
		if id := e.Get(t); id != nil && *id != 0 {
			out[t] = *id
		}
	}
	return out
}

func entitiesFrom(att map[types.EntityContainerYearType]uint) Entities {
	pick := func(t types.EntityContainerYearType) *uint {
		if id, ok := att[t]; ok && id != 0 {
			v := id
			return &v
		}
		return nil
	}
	return Entities{
		Requirement:            pick(types.RequirementEntity),
		Allocation:             pick(types.AllocationEntity),
		AdditionalRequirement1: pick(types.AdditionalRequirementEntity1),
		AdditionalRequirement2: pick(types.AdditionalRequirementEntity2),
	}
}

// Snapshot is the decoded form of initial_data.
type Snapshot struct {
	Schema                int         `json:"schema"`
	LearningContainerYear Container   `json:"learning_container_year"`
	LearningUnit          Unit        `json:"learning_unit"`
	LearningUnitYear      UnitYear    `json:"learning_unit_year"`
	Entities              Entities    `json:"entities"`
	Components            []Component `json:"components,omitempty"`
}

// Take reads the snapshotted fields out of a loaded graph.
func Take(g *graph.Graph) Snapshot {
	luy := g.LearningUnitYear
	s := Snapshot{
		Schema: SchemaVersion,
		LearningUnitYear: UnitYear{
			ID:                   luy.ID,
			Acronym:              luy.Acronym,
			SpecificTitle:        luy.SpecificTitle,
			SpecificTitleEnglish: luy.SpecificTitleEnglish,
			InternshipSubtype:    copyString(luy.InternshipSubtype),
			Credits:              luy.Credits.InexactFloat64(),
			Status:               luy.Status,
			Session:              luy.Session,
			Quadrimester:         luy.Quadrimester,
			AttributionProcedure: luy.AttributionProcedure,
			Campus:               copyUint(luy.CampusID),
			Language:             copyUint(luy.LanguageID),
			Periodicity:          luy.Periodicity,
		},
		Entities: entitiesFrom(g.Attachments()),
	}
	if lu := g.Unit(); lu != nil {
		s.LearningUnit = Unit{
			ID:            lu.ID,
			EndYear:       copyInt(lu.EndYear),
			Periodicity:   lu.Periodicity,
			FacultyRemark: lu.FacultyRemark,
			OtherRemark:   lu.OtherRemark,
		}
	}
	if c := g.Container(); c != nil {
		s.LearningContainerYear = Container{
			ID:                 c.ID,
			Acronym:            c.Acronym,
			CommonTitle:        c.CommonTitle,
			CommonTitleEnglish: c.CommonTitleEnglish,
			ContainerType:      c.ContainerType,
			InCharge:           c.InCharge,
		}
	}
	for _, c := range g.Components {
		if c != nil {
			s.Components = append(s.Components, componentFrom(c))
		}
	}
	return s
}

func Encode(s Snapshot) (datatypes.JSON, error) {
	if s.Schema == 0 {
		s.Schema = SchemaVersion
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, "Snapshot.Encode", err)
	}
	return datatypes.JSON(raw), nil
}

func Decode(raw datatypes.JSON) (Snapshot, error) {
	const op = "Snapshot.Decode"
	var s Snapshot
	if len(raw) == 0 {
		return s, domainagg.NewError(domainagg.CodeInternal, op, "proposal has no initial data", nil)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	// Blobs written before the schema tag existed have the schema 1 layout.
	if s.Schema == 0 {
		s.Schema = 1
	}
	if s.Schema > SchemaVersion {
		return s, domainagg.Errorf(domainagg.CodeInternal, op, "unsupported initial data schema %d", s.Schema)
	}
	return s, nil
}

// CreditsDecimal returns the snapshotted credits as a decimal.
func (u UnitYear) CreditsDecimal() decimal.Decimal {
	return decimal.NewFromFloat(u.Credits)
}

func copyUint(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
