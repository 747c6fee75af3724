package catalogue

import (
	"time"

	"github.com/shopspring/decimal"
)

// LearningContainerYear holds the data a FULL shares with its PARTIMs for one year.
type LearningContainerYear struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	AcademicYearID     uint          `gorm:"column:academic_year_id;not null;index" json:"academic_year_id"`
	Acronym            string        `gorm:"column:acronym;not null;index" json:"acronym"`
	CommonTitle        string        `gorm:"column:common_title" json:"common_title"`
	CommonTitleEnglish string        `gorm:"column:common_title_english" json:"common_title_english"`
	ContainerType      ContainerType `gorm:"column:container_type;not null" json:"container_type"`
	InCharge           bool          `gorm:"column:in_charge;not null" json:"in_charge"`
	LanguageID         *uint         `gorm:"column:language_id" json:"language_id,omitempty"`
	CampusID           *uint         `gorm:"column:campus_id" json:"campus_id,omitempty"`

	EntityContainerYears []*EntityContainerYear `gorm:"foreignKey:LearningContainerYearID" json:"entity_container_years,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LearningContainerYear) TableName() string { return "learning_container_year" }

// Attachment returns the attachment playing the given role, or nil.
func (c LearningContainerYear) Attachment(t EntityContainerYearType) *EntityContainerYear {
	for _, ecy := range c.EntityContainerYears {
		if ecy != nil && ecy.Type == t {
			return ecy
		}
	}
	return nil
}

// EntityContainerYear attaches an entity to a container year with one role.
type EntityContainerYear struct {
	ID                      uint                    `gorm:"primaryKey" json:"id"`
	LearningContainerYearID uint                    `gorm:"column:learning_container_year_id;not null;uniqueIndex:idx_ecy_container_type,priority:1" json:"learning_container_year_id"`
	EntityID                uint                    `gorm:"column:entity_id;not null;index" json:"entity_id"`
	Type                    EntityContainerYearType `gorm:"column:type;not null;uniqueIndex:idx_ecy_container_type,priority:2" json:"type"`
}

func (EntityContainerYear) TableName() string { return "entity_container_year" }

// LearningComponentYear is a teaching component (lectures, exercises) of a container year.
type LearningComponentYear struct {
	ID                      uint           `gorm:"primaryKey" json:"id"`
	LearningContainerYearID uint           `gorm:"column:learning_container_year_id;not null;index" json:"learning_container_year_id"`
	Type                    *ComponentType `gorm:"column:type" json:"type,omitempty"`
	Acronym                 string         `gorm:"column:acronym;not null" json:"acronym"`
	PlannedClasses          int            `gorm:"column:planned_classes;not null" json:"planned_classes"`

	HourlyVolumeTotalAnnual decimal.Decimal `gorm:"column:hourly_volume_total_annual;type:decimal(6,2);not null" json:"hourly_volume_total_annual"`
	HourlyVolumePartialQ1   decimal.Decimal `gorm:"column:hourly_volume_partial_q1;type:decimal(6,2);not null" json:"hourly_volume_partial_q1"`
	HourlyVolumePartialQ2   decimal.Decimal `gorm:"column:hourly_volume_partial_q2;type:decimal(6,2);not null" json:"hourly_volume_partial_q2"`

	EntityComponentYears []*EntityComponentYear `gorm:"foreignKey:LearningComponentYearID" json:"entity_component_years,omitempty"`
}

func (LearningComponentYear) TableName() string { return "learning_component_year" }

// SameType reports whether both components carry the same (possibly nil) type.
func (c LearningComponentYear) SameType(o LearningComponentYear) bool {
	if c.Type == nil || o.Type == nil {
		return c.Type == nil && o.Type == nil
	}
	return *c.Type == *o.Type
}

// LearningUnitComponent links a learning unit year to one of its container's components.
type LearningUnitComponent struct {
	ID                      uint                   `gorm:"primaryKey" json:"id"`
	LearningUnitYearID      uint                   `gorm:"column:learning_unit_year_id;not null;index" json:"learning_unit_year_id"`
	LearningComponentYearID uint                   `gorm:"column:learning_component_year_id;not null;uniqueIndex" json:"learning_component_year_id"`
	LearningComponentYear   *LearningComponentYear `gorm:"foreignKey:LearningComponentYearID;references:ID" json:"learning_component_year,omitempty"`
}

func (LearningUnitComponent) TableName() string { return "learning_unit_component" }

// EntityComponentYear is the share of a component's volume charged to one requirement attachment.
type EntityComponentYear struct {
	ID                      uint                 `gorm:"primaryKey" json:"id"`
	EntityContainerYearID   uint                 `gorm:"column:entity_container_year_id;not null;uniqueIndex:idx_ecoy_attach_component,priority:1" json:"entity_container_year_id"`
	EntityContainerYear     *EntityContainerYear `gorm:"foreignKey:EntityContainerYearID;references:ID" json:"entity_container_year,omitempty"`
	LearningComponentYearID uint                 `gorm:"column:learning_component_year_id;not null;uniqueIndex:idx_ecoy_attach_component,priority:2" json:"learning_component_year_id"`
	RepartitionVolume       decimal.Decimal      `gorm:"column:repartition_volume;type:decimal(6,2);not null" json:"repartition_volume"`
}

func (EntityComponentYear) TableName() string { return "entity_component_year" }
