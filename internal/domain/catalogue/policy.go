package catalogue

// ComponentTemplate describes a component created with a new container year.
type ComponentTemplate struct {
	Type    *ComponentType
	Acronym string
}

// ContainerPolicy is the per-container-type behaviour of the catalogue.
type ContainerPolicy struct {
	Components             []ComponentTemplate
	AllowInternshipSubtype bool
	// ProposalModifiable marks container types whose units accept modification proposals.
	ProposalModifiable bool
}

func componentType(t ComponentType) *ComponentType { return &t }

var (
	lecturingAndExercises = []ComponentTemplate{
		{Type: componentType(ComponentLecturing), Acronym: "CM1"},
		{Type: componentType(ComponentPracticalExercises), Acronym: "TP1"},
	}
	untypedOnly = []ComponentTemplate{
		{Type: nil, Acronym: "NT1"},
	}
)

var containerPolicies = map[ContainerType]ContainerPolicy{
	ContainerCourse:          {Components: lecturingAndExercises, ProposalModifiable: true},
	ContainerInternship:      {Components: lecturingAndExercises, AllowInternshipSubtype: true, ProposalModifiable: true},
	ContainerMasterThesis:    {Components: lecturingAndExercises},
	ContainerOtherCollective: {Components: lecturingAndExercises},
	ContainerDissertation:    {Components: untypedOnly, ProposalModifiable: true},
	ContainerOtherIndividual: {Components: untypedOnly},
	ContainerExternal:        {Components: untypedOnly},
}

// PolicyFor returns the policy of a container type and whether the type is known.
func PolicyFor(t ContainerType) (ContainerPolicy, bool) {
	p, ok := containerPolicies[t]
	return p, ok
}

func (t ContainerType) Valid() bool {
	_, ok := containerPolicies[t]
	return ok
}
