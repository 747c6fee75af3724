package catalogue

// Person is a back-office actor. Identity is owned by an external provider;
// the engine only reads these rows.
type Person struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	GlobalID  string `gorm:"column:global_id;index" json:"global_id,omitempty"`
	FirstName string `gorm:"column:first_name" json:"first_name"`
	LastName  string `gorm:"column:last_name" json:"last_name"`
	Email     string `gorm:"column:email" json:"email,omitempty"`
}

func (Person) TableName() string { return "person" }

func (p Person) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.LastName + " " + p.FirstName
	}
}

type PersonRole struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PersonID uint `gorm:"column:person_id;not null;uniqueIndex:idx_person_role,priority:1" json:"person_id"`
	Role     Role `gorm:"column:role;not null;uniqueIndex:idx_person_role,priority:2" json:"role"`
}

func (PersonRole) TableName() string { return "person_role" }

// PersonEntity attaches a person to an entity; WithChild extends the
// attachment to every descendant entity.
type PersonEntity struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	PersonID  uint `gorm:"column:person_id;not null;index" json:"person_id"`
	EntityID  uint `gorm:"column:entity_id;not null;index" json:"entity_id"`
	WithChild bool `gorm:"column:with_child;not null" json:"with_child"`
}

func (PersonEntity) TableName() string { return "person_entity" }
