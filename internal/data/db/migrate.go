package db

import (
	"gorm.io/gorm"

	"github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Reference data
		&catalogue.AcademicYear{},
		&catalogue.Campus{},
		&catalogue.Language{},

		// Organisation tree
		&catalogue.Entity{},
		&catalogue.EntityVersion{},

		// Identity (read-only for the engine)
		&catalogue.Person{},
		&catalogue.PersonRole{},
		&catalogue.PersonEntity{},

		// Learning-unit graph
		&catalogue.LearningUnit{},
		&catalogue.LearningContainerYear{},
		&catalogue.LearningUnitYear{},
		&catalogue.EntityContainerYear{},
		&catalogue.LearningComponentYear{},
		&catalogue.LearningUnitComponent{},
		&catalogue.EntityComponentYear{},
		&catalogue.TeachingMaterial{},
		&catalogue.LearningUnitYearReference{},

		// Proposals
		&catalogue.Proposal{},
	)
}
