package catalogue

import (
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"gorm.io/gorm"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

type LearningUnitRepo interface {
	Create(dbc dbctx.Context, row *types.LearningUnit) (*types.LearningUnit, error)
	GetByID(dbc dbctx.Context, id uint) (*types.LearningUnit, error)
	LockByID(dbc dbctx.Context, id uint) (*types.LearningUnit, error)

	// ListOpenFrom returns units that are open-ended or end on/after year.
	ListOpenFrom(dbc dbctx.Context, year int) ([]*types.LearningUnit, error)

	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	DeleteByID(dbc dbctx.Context, id uint) error
}

type learningUnitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningUnitRepo(db *gorm.DB, baseLog *logger.Logger) LearningUnitRepo {
	return &learningUnitRepo{db: db, log: baseLog.With("repo", "LearningUnitRepo")}
}

func (r *learningUnitRepo) Create(dbc dbctx.Context, row *types.LearningUnit) (*types.LearningUnit, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *learningUnitRepo) GetByID(dbc dbctx.Context, id uint) (*types.LearningUnit, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.LearningUnit
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *learningUnitRepo) LockByID(dbc dbctx.Context, id uint) (*types.LearningUnit, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.LearningUnit
	if err := forUpdate(dbc.DB(r.db)).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *learningUnitRepo) ListOpenFrom(dbc dbctx.Context, year int) ([]*types.LearningUnit, error) {
	var out []*types.LearningUnit
	if err := dbc.DB(r.db).
		Where("end_year IS NULL OR end_year >= ?", year).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningUnitRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.LearningUnit{}).Where("id = ?", id).Updates(updates).Error
}

func (r *learningUnitRepo) DeleteByID(dbc dbctx.Context, id uint) error {
	if id == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.LearningUnit{}).Error
}
