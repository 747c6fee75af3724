package catalogue

import "time"

// Entity is a stable organisational identity; what it is called and where it
// sits in the tree is carried by its EntityVersion rows.
type Entity struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExternalID string `gorm:"column:external_id;index" json:"external_id,omitempty"`
}

func (Entity) TableName() string { return "entity" }

// EntityVersion is valid on [StartDate, EndDate). A nil EndDate is open-ended.
type EntityVersion struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EntityID   uint       `gorm:"column:entity_id;not null;index" json:"entity_id"`
	ParentID   *uint      `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Acronym    string     `gorm:"column:acronym;not null;index" json:"acronym"`
	Title      string     `gorm:"column:title" json:"title"`
	EntityType EntityType `gorm:"column:entity_type" json:"entity_type"`
	StartDate  time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EndDate    *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
}

func (EntityVersion) TableName() string { return "entity_version" }

func (v EntityVersion) Covers(t time.Time) bool {
	if t.Before(v.StartDate) {
		return false
	}
	return v.EndDate == nil || t.Before(*v.EndDate)
}

// Overlaps reports whether the half-open intervals of v and o intersect.
func (v EntityVersion) Overlaps(o EntityVersion) bool {
	if v.EndDate != nil && !o.StartDate.Before(*v.EndDate) {
		return false
	}
	if o.EndDate != nil && !v.StartDate.Before(*o.EndDate) {
		return false
	}
	return true
}
