package catalogue

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Proposal is a pending, reviewable change to one learning unit year.
// InitialData is the pre-edit snapshot and is never rewritten after insert.
type Proposal struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	UUID               uuid.UUID         `gorm:"column:uuid;type:uuid;not null;uniqueIndex" json:"uuid"`
	LearningUnitYearID uint              `gorm:"column:learning_unit_year_id;not null;uniqueIndex" json:"learning_unit_year_id"`
	LearningUnitYear   *LearningUnitYear `gorm:"foreignKey:LearningUnitYearID;references:ID" json:"learning_unit_year,omitempty"`

	Type  ProposalType  `gorm:"column:type;not null;index" json:"type"`
	State ProposalState `gorm:"column:state;not null;index" json:"state"`

	AuthorID       uint    `gorm:"column:author_id;not null;index" json:"author_id"`
	Author         *Person `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	FolderID       int     `gorm:"column:folder_id;not null;index" json:"folder_id"`
	OwningEntityID uint    `gorm:"column:owning_entity_id;not null;index" json:"owning_entity_id"`

	InitialData datatypes.JSON `gorm:"column:initial_data" json:"initial_data"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Proposal) TableName() string { return "proposal_learning_unit" }
