package repos

import (
	"github.com/osisteam/catalogue-backend/internal/data/repos/catalogue"
	"github.com/osisteam/catalogue-backend/internal/data/repos/proposal"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type AcademicYearRepo = catalogue.AcademicYearRepo
type EntityRepo = catalogue.EntityRepo
type PersonRepo = catalogue.PersonRepo

type LearningUnitRepo = catalogue.LearningUnitRepo
type LearningUnitYearRepo = catalogue.LearningUnitYearRepo
type LearningContainerYearRepo = catalogue.LearningContainerYearRepo
type EntityContainerYearRepo = catalogue.EntityContainerYearRepo
type LearningComponentYearRepo = catalogue.LearningComponentYearRepo
type LearningUnitComponentRepo = catalogue.LearningUnitComponentRepo
type EntityComponentYearRepo = catalogue.EntityComponentYearRepo
type TeachingMaterialRepo = catalogue.TeachingMaterialRepo
type ReferenceRepo = catalogue.ReferenceRepo

type ProposalRepo = proposal.ProposalRepo
type ProposalSearchFilter = proposal.SearchFilter

func NewAcademicYearRepo(db *gorm.DB, baseLog *logger.Logger) AcademicYearRepo {
	return catalogue.NewAcademicYearRepo(db, baseLog)
}
func NewEntityRepo(db *gorm.DB, baseLog *logger.Logger) EntityRepo {
	return catalogue.NewEntityRepo(db, baseLog)
}
func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	return catalogue.NewPersonRepo(db, baseLog)
}

func NewLearningUnitRepo(db *gorm.DB, baseLog *logger.Logger) LearningUnitRepo {
	return catalogue.NewLearningUnitRepo(db, baseLog)
}
func NewLearningUnitYearRepo(db *gorm.DB, baseLog *logger.Logger) LearningUnitYearRepo {
	return catalogue.NewLearningUnitYearRepo(db, baseLog)
}
func NewLearningContainerYearRepo(db *gorm.DB, baseLog *logger.Logger) LearningContainerYearRepo {
	return catalogue.NewLearningContainerYearRepo(db, baseLog)
}
func NewEntityContainerYearRepo(db *gorm.DB, baseLog *logger.Logger) EntityContainerYearRepo {
	return catalogue.NewEntityContainerYearRepo(db, baseLog)
}
func NewLearningComponentYearRepo(db *gorm.DB, baseLog *logger.Logger) LearningComponentYearRepo {
	return catalogue.NewLearningComponentYearRepo(db, baseLog)
}
func NewLearningUnitComponentRepo(db *gorm.DB, baseLog *logger.Logger) LearningUnitComponentRepo {
	return catalogue.NewLearningUnitComponentRepo(db, baseLog)
}
func NewEntityComponentYearRepo(db *gorm.DB, baseLog *logger.Logger) EntityComponentYearRepo {
	return catalogue.NewEntityComponentYearRepo(db, baseLog)
}
func NewTeachingMaterialRepo(db *gorm.DB, baseLog *logger.Logger) TeachingMaterialRepo {
	return catalogue.NewTeachingMaterialRepo(db, baseLog)
}
func NewReferenceRepo(db *gorm.DB, baseLog *logger.Logger) ReferenceRepo {
	return catalogue.NewReferenceRepo(db, baseLog)
}

func NewProposalRepo(db *gorm.DB, baseLog *logger.Logger) ProposalRepo {
	return proposal.NewProposalRepo(db, baseLog)
}

// Set groups every table repo of the catalogue database.
type Set struct {
	AcademicYear          AcademicYearRepo
	Entity                EntityRepo
	Person                PersonRepo
	LearningUnit          LearningUnitRepo
	LearningUnitYear      LearningUnitYearRepo
	LearningContainerYear LearningContainerYearRepo
	EntityContainerYear   EntityContainerYearRepo
	LearningComponentYear LearningComponentYearRepo
	LearningUnitComponent LearningUnitComponentRepo
	EntityComponentYear   EntityComponentYearRepo
	TeachingMaterial      TeachingMaterialRepo
	Reference             ReferenceRepo
	Proposal              ProposalRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		AcademicYear:          NewAcademicYearRepo(db, baseLog),
		Entity:                NewEntityRepo(db, baseLog),
		Person:                NewPersonRepo(db, baseLog),
		LearningUnit:          NewLearningUnitRepo(db, baseLog),
		LearningUnitYear:      NewLearningUnitYearRepo(db, baseLog),
		LearningContainerYear: NewLearningContainerYearRepo(db, baseLog),
		EntityContainerYear:   NewEntityContainerYearRepo(db, baseLog),
		LearningComponentYear: NewLearningComponentYearRepo(db, baseLog),
		LearningUnitComponent: NewLearningUnitComponentRepo(db, baseLog),
		EntityComponentYear:   NewEntityComponentYearRepo(db, baseLog),
		TeachingMaterial:      NewTeachingMaterialRepo(db, baseLog),
		Reference:             NewReferenceRepo(db, baseLog),
		Proposal:              NewProposalRepo(db, baseLog),
	}
}
