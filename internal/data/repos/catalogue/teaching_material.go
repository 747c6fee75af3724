package catalogue

import (
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"gorm.io/gorm"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

type TeachingMaterialRepo interface {
	Create(dbc dbctx.Context, rows []*types.TeachingMaterial) ([]*types.TeachingMaterial, error)
	ListByLearningUnitYear(dbc dbctx.Context, learningUnitYearID uint) ([]*types.TeachingMaterial, error)
	DeleteByLearningUnitYears(dbc dbctx.Context, learningUnitYearIDs []uint) error
}

type teachingMaterialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeachingMaterialRepo(db *gorm.DB, baseLog *logger.Logger) TeachingMaterialRepo {
	return &teachingMaterialRepo{db: db, log: baseLog.With("repo", "TeachingMaterialRepo")}
}

func (r *teachingMaterialRepo) Create(dbc dbctx.Context, rows []*types.TeachingMaterial) ([]*types.TeachingMaterial, error) {
	if len(rows) == 0 {
		return []*types.TeachingMaterial{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *teachingMaterialRepo) ListByLearningUnitYear(dbc dbctx.Context, learningUnitYearID uint) ([]*types.TeachingMaterial, error) {
	var out []*types.TeachingMaterial
	if learningUnitYearID == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("learning_unit_year_id = ?", learningUnitYearID).
		Order("sort_order ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *teachingMaterialRepo) DeleteByLearningUnitYears(dbc dbctx.Context, learningUnitYearIDs []uint) error {
	if len(learningUnitYearIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("learning_unit_year_id IN ?", learningUnitYearIDs).Delete(&types.TeachingMaterial{}).Error
}
