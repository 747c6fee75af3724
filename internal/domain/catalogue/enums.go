package catalogue

type Periodicity string

const (
	PeriodicityAnnual       Periodicity = "ANNUAL"
	PeriodicityBiennialEven Periodicity = "BIENNIAL_EVEN"
	PeriodicityBiennialOdd  Periodicity = "BIENNIAL_ODD"
)

func (p Periodicity) Valid() bool {
	switch p {
	case PeriodicityAnnual, PeriodicityBiennialEven, PeriodicityBiennialOdd:
		return true
	}
	return false
}

type Subtype string

const (
	SubtypeFull   Subtype = "FULL"
	SubtypePartim Subtype = "PARTIM"
)

type ContainerType string

const (
	ContainerCourse          ContainerType = "COURSE"
	ContainerInternship      ContainerType = "INTERNSHIP"
	ContainerDissertation    ContainerType = "DISSERTATION"
	ContainerMasterThesis    ContainerType = "MASTER_THESIS"
	ContainerOtherCollective ContainerType = "OTHER_COLLECTIVE"
	ContainerOtherIndividual ContainerType = "OTHER_INDIVIDUAL"
	ContainerExternal        ContainerType = "EXTERNAL"
)

// EntityContainerYearType is the role an entity plays on a learning container year.
type EntityContainerYearType string

const (
	RequirementEntity            EntityContainerYearType = "REQUIREMENT_ENTITY"
	AllocationEntity             EntityContainerYearType = "ALLOCATION_ENTITY"
	AdditionalRequirementEntity1 EntityContainerYearType = "ADDITIONAL_REQUIREMENT_ENTITY_1"
	AdditionalRequirementEntity2 EntityContainerYearType = "ADDITIONAL_REQUIREMENT_ENTITY_2"
)

// EntityContainerYearTypes lists the four roles in display order.
var EntityContainerYearTypes = []EntityContainerYearType{
	RequirementEntity,
	AllocationEntity,
	AdditionalRequirementEntity1,
	AdditionalRequirementEntity2,
}

// RequirementTypes are the roles that carry volume repartitions.
var RequirementTypes = []EntityContainerYearType{
	RequirementEntity,
	AdditionalRequirementEntity1,
	AdditionalRequirementEntity2,
}

// IsRequirement reports whether the role induces EntityComponentYear rows.
func (t EntityContainerYearType) IsRequirement() bool {
	return t == RequirementEntity || t == AdditionalRequirementEntity1 || t == AdditionalRequirementEntity2
}

type ComponentType string

const (
	ComponentLecturing          ComponentType = "LECTURING"
	ComponentPracticalExercises ComponentType = "PRACTICAL_EXERCISES"
)

// ComponentTypeLabel renders a nullable component type; untyped components read "NT".
func ComponentTypeLabel(t *ComponentType) string {
	if t == nil {
		return "NT"
	}
	return string(*t)
}

type EntityType string

const (
	EntitySector             EntityType = "SECTOR"
	EntityFaculty            EntityType = "FACULTY"
	EntitySchool             EntityType = "SCHOOL"
	EntityInstitute          EntityType = "INSTITUTE"
	EntityLogistics          EntityType = "LOGISTICS_ENTITY"
	EntityDoctoralCommission EntityType = "DOCTORAL_COMMISSION"
)

type Role string

const (
	RoleFacultyManager  Role = "FACULTY_MANAGER"
	RoleCentralManager  Role = "CENTRAL_MANAGER"
	RoleCatalogueViewer Role = "CATALOGUE_VIEWER"
)

type ProposalType string

const (
	ProposalCreation                      ProposalType = "CREATION"
	ProposalModification                  ProposalType = "MODIFICATION"
	ProposalTransformation                ProposalType = "TRANSFORMATION"
	ProposalTransformationAndModification ProposalType = "TRANSFORMATION_AND_MODIFICATION"
	ProposalSuppression                   ProposalType = "SUPPRESSION"
)

// Fixed reports whether the type is set at creation and never re-derived.
func (t ProposalType) Fixed() bool {
	return t == ProposalCreation || t == ProposalSuppression
}

type ProposalState string

const (
	StateFaculty   ProposalState = "FACULTY"
	StateCentral   ProposalState = "CENTRAL"
	StateSuspended ProposalState = "SUSPENDED"
	StateAccepted  ProposalState = "ACCEPTED"
	StateRefused   ProposalState = "REFUSED"
)

func (s ProposalState) Valid() bool {
	switch s {
	case StateFaculty, StateCentral, StateSuspended, StateAccepted, StateRefused:
		return true
	}
	return false
}

// ReferenceKind classifies rows owned by other subsystems that point at a learning unit year.
type ReferenceKind string

const (
	ReferenceAttribution  ReferenceKind = "attribution"
	ReferenceGroupElement ReferenceKind = "group_element"
	ReferenceEnrollment   ReferenceKind = "enrollment"
)
