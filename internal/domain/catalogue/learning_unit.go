package catalogue

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LearningUnit is the identity of a course across academic years.
type LearningUnit struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	StartYear   int         `gorm:"column:start_year;not null" json:"start_year"`
	EndYear     *int        `gorm:"column:end_year" json:"end_year,omitempty"`
	Periodicity Periodicity `gorm:"column:periodicity;not null" json:"periodicity"`

	FacultyRemark string `gorm:"column:faculty_remark" json:"faculty_remark,omitempty"`
	OtherRemark   string `gorm:"column:other_remark" json:"other_remark,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LearningUnit) TableName() string { return "learning_unit" }

// OpenIn reports whether the identity spans the given year.
func (lu LearningUnit) OpenIn(year int) bool {
	if year < lu.StartYear {
		return false
	}
	return lu.EndYear == nil || year <= *lu.EndYear
}

// LearningUnitYear is the per-year incarnation of a LearningUnit.
type LearningUnitYear struct {
	ID                      uint                   `gorm:"primaryKey" json:"id"`
	LearningUnitID          uint                   `gorm:"column:learning_unit_id;not null;uniqueIndex:idx_luy_unit_year,priority:1" json:"learning_unit_id"`
	LearningUnit            *LearningUnit          `gorm:"foreignKey:LearningUnitID;references:ID" json:"learning_unit,omitempty"`
	AcademicYearID          uint                   `gorm:"column:academic_year_id;not null;uniqueIndex:idx_luy_unit_year,priority:2;index" json:"academic_year_id"`
	AcademicYear            *AcademicYear          `gorm:"foreignKey:AcademicYearID;references:ID" json:"academic_year,omitempty"`
	LearningContainerYearID uint                   `gorm:"column:learning_container_year_id;not null;index" json:"learning_container_year_id"`
	LearningContainerYear   *LearningContainerYear `gorm:"foreignKey:LearningContainerYearID;references:ID" json:"learning_container_year,omitempty"`

	Acronym              string          `gorm:"column:acronym;not null;index" json:"acronym"`
	Subtype              Subtype         `gorm:"column:subtype;not null" json:"subtype"`
	SpecificTitle        string          `gorm:"column:specific_title" json:"specific_title"`
	SpecificTitleEnglish string          `gorm:"column:specific_title_english" json:"specific_title_english"`
	Credits              decimal.Decimal `gorm:"column:credits;type:decimal(5,2);not null" json:"credits"`
	Status               bool            `gorm:"column:status;not null" json:"status"`
	Session              string          `gorm:"column:session" json:"session,omitempty"`
	Quadrimester         string          `gorm:"column:quadrimester" json:"quadrimester,omitempty"`
	InternshipSubtype    *string         `gorm:"column:internship_subtype" json:"internship_subtype,omitempty"`
	LanguageID           *uint           `gorm:"column:language_id" json:"language_id,omitempty"`
	CampusID             *uint           `gorm:"column:campus_id" json:"campus_id,omitempty"`
	AttributionProcedure string          `gorm:"column:attribution_procedure" json:"attribution_procedure,omitempty"`
	Periodicity          Periodicity     `gorm:"column:periodicity;not null" json:"periodicity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LearningUnitYear) TableName() string { return "learning_unit_year" }

func (l LearningUnitYear) IsFull() bool   { return l.Subtype == SubtypeFull }
func (l LearningUnitYear) IsPartim() bool { return l.Subtype == SubtypePartim }

// CompleteTitle joins the container's common title with the specific title.
func (l LearningUnitYear) CompleteTitle() string {
	if l.LearningContainerYear == nil || strings.TrimSpace(l.LearningContainerYear.CommonTitle) == "" {
		return l.SpecificTitle
	}
	if strings.TrimSpace(l.SpecificTitle) == "" {
		return l.LearningContainerYear.CommonTitle
	}
	return l.LearningContainerYear.CommonTitle + " " + l.SpecificTitle
}

// Year returns the academic year number when the association is loaded, else 0.
func (l LearningUnitYear) Year() int {
	if l.AcademicYear == nil {
		return 0
	}
	return l.AcademicYear.Year
}

// TeachingMaterial is bibliography attached to one learning unit year.
type TeachingMaterial struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	LearningUnitYearID uint   `gorm:"column:learning_unit_year_id;not null;index" json:"learning_unit_year_id"`
	Title              string `gorm:"column:title;not null" json:"title"`
	Mandatory          bool   `gorm:"column:mandatory;not null" json:"mandatory"`
	Order              int    `gorm:"column:sort_order;not null" json:"order"`
}

func (TeachingMaterial) TableName() string { return "teaching_material" }

// LearningUnitYearReference is a row owned by another subsystem (attributions,
// programme trees, enrollments) that points at a learning unit year.
type LearningUnitYearReference struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	LearningUnitYearID uint          `gorm:"column:learning_unit_year_id;not null;index" json:"learning_unit_year_id"`
	Kind               ReferenceKind `gorm:"column:kind;not null;index" json:"kind"`
	Label              string        `gorm:"column:label" json:"label"`
}

func (LearningUnitYearReference) TableName() string { return "learning_unit_year_reference" }
