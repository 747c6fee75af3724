package catalogue

// Actor is a resolved identity: the person, their roles and entity attachments.
type Actor struct {
	Person      *Person
	Roles       []Role
	Attachments []*PersonEntity
}

func (a Actor) ID() uint {
	if a.Person == nil {
		return 0
	}
	return a.Person.ID
}

func (a Actor) Has(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Manager returns the strongest managing role held, or "" for viewers.
func (a Actor) Manager() Role {
	switch {
	case a.Has(RoleCentralManager):
		return RoleCentralManager
	case a.Has(RoleFacultyManager):
		return RoleFacultyManager
	default:
		return ""
	}
}
