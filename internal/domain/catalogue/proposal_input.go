package catalogue

import "github.com/shopspring/decimal"

// ProposalEdits lists the fields a proposal may change. Nil fields are left alone.
type ProposalEdits struct {
	Acronym              *string          `json:"acronym,omitempty" validate:"omitempty,min=4,max=15"`
	SpecificTitle        *string          `json:"specific_title,omitempty" validate:"omitempty,max=255"`
	SpecificTitleEnglish *string          `json:"specific_title_english,omitempty" validate:"omitempty,max=255"`
	Credits              *decimal.Decimal `json:"credits,omitempty"`
	Status               *bool            `json:"status,omitempty"`
	Session              *string          `json:"session,omitempty" validate:"omitempty,max=32"`
	Quadrimester         *string          `json:"quadrimester,omitempty" validate:"omitempty,quadrimester"`
	InternshipSubtype    *string          `json:"internship_subtype,omitempty" validate:"omitempty,max=64"`
	LanguageID           *uint            `json:"language_id,omitempty" validate:"omitempty,gt=0"`
	CampusID             *uint            `json:"campus_id,omitempty" validate:"omitempty,gt=0"`
	AttributionProcedure *string          `json:"attribution_procedure,omitempty" validate:"omitempty,max=64"`
	Periodicity          *Periodicity     `json:"periodicity,omitempty" validate:"omitempty,periodicity"`

	CommonTitle        *string `json:"common_title,omitempty" validate:"omitempty,max=255"`
	CommonTitleEnglish *string `json:"common_title_english,omitempty" validate:"omitempty,max=255"`
	InCharge           *bool   `json:"in_charge,omitempty"`

	FacultyRemark *string `json:"faculty_remark,omitempty" validate:"omitempty,max=2000"`
	OtherRemark   *string `json:"other_remark,omitempty" validate:"omitempty,max=2000"`

	// Attachments replaces the whole attachment set when non-nil.
	Attachments map[EntityContainerYearType]uint `json:"attachments,omitempty"`

	Components []ComponentEdit `json:"components,omitempty" validate:"omitempty,dive"`
}

// ComponentEdit targets the component of the given type (nil = untyped).
type ComponentEdit struct {
	Type           *ComponentType                              `json:"type"`
	PlannedClasses *int                                        `json:"planned_classes,omitempty" validate:"omitempty,gte=0"`
	Total          *decimal.Decimal                            `json:"hourly_volume_total_annual,omitempty"`
	Q1             *decimal.Decimal                            `json:"hourly_volume_partial_q1,omitempty"`
	Q2             *decimal.Decimal                            `json:"hourly_volume_partial_q2,omitempty"`
	Repartitions   map[EntityContainerYearType]decimal.Decimal `json:"repartitions,omitempty"`
}

// Empty reports whether the edits change nothing.
func (e ProposalEdits) Empty() bool {
	return e.Acronym == nil && e.SpecificTitle == nil && e.SpecificTitleEnglish == nil &&
		e.Credits == nil && e.Status == nil && e.Session == nil && e.Quadrimester == nil &&
		e.InternshipSubtype == nil && e.LanguageID == nil && e.CampusID == nil &&
		e.AttributionProcedure == nil && e.Periodicity == nil && e.CommonTitle == nil &&
		e.CommonTitleEnglish == nil && e.InCharge == nil && e.FacultyRemark == nil &&
		e.OtherRemark == nil && e.Attachments == nil && len(e.Components) == 0
}

// UnitCreation is the payload of a CREATION proposal.
type UnitCreation struct {
	AcademicYear int  `json:"academic_year" validate:"required,gt=1900"`
	EndYear      *int `json:"end_year,omitempty" validate:"omitempty,gtefield=AcademicYear"`

	Acronym              string          `json:"acronym" validate:"required,min=4,max=15"`
	SpecificTitle        string          `json:"specific_title" validate:"max=255"`
	SpecificTitleEnglish string          `json:"specific_title_english" validate:"max=255"`
	Credits              decimal.Decimal `json:"credits"`
	Status               bool            `json:"status"`
	Session              string          `json:"session" validate:"max=32"`
	Quadrimester         string          `json:"quadrimester" validate:"omitempty,quadrimester"`
	InternshipSubtype    *string         `json:"internship_subtype,omitempty" validate:"omitempty,max=64"`
	LanguageID           *uint           `json:"language_id,omitempty"`
	CampusID             *uint           `json:"campus_id,omitempty"`
	AttributionProcedure string          `json:"attribution_procedure" validate:"max=64"`
	Periodicity          Periodicity     `json:"periodicity" validate:"omitempty,periodicity"`
	FacultyRemark        string          `json:"faculty_remark" validate:"max=2000"`
	OtherRemark          string          `json:"other_remark" validate:"max=2000"`

	ContainerType      ContainerType                    `json:"container_type" validate:"required,container_type"`
	CommonTitle        string                           `json:"common_title" validate:"max=255"`
	CommonTitleEnglish string                           `json:"common_title_english" validate:"max=255"`
	InCharge           bool                             `json:"in_charge"`
	Attachments        map[EntityContainerYearType]uint `json:"attachments" validate:"required"`
}
