package catalogue

import (
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"gorm.io/gorm"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

type LearningContainerYearRepo interface {
	Create(dbc dbctx.Context, row *types.LearningContainerYear) (*types.LearningContainerYear, error)
	GetByID(dbc dbctx.Context, id uint) (*types.LearningContainerYear, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	DeleteByIDs(dbc dbctx.Context, ids []uint) error
}

type learningContainerYearRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningContainerYearRepo(db *gorm.DB, baseLog *logger.Logger) LearningContainerYearRepo {
	return &learningContainerYearRepo{db: db, log: baseLog.With("repo", "LearningContainerYearRepo")}
}

func (r *learningContainerYearRepo) Create(dbc dbctx.Context, row *types.LearningContainerYear) (*types.LearningContainerYear, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Omit("EntityContainerYears").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *learningContainerYearRepo) GetByID(dbc dbctx.Context, id uint) (*types.LearningContainerYear, error) {
	if id == 0 {
		return nil, nil
	}
	var out []*types.LearningContainerYear
	if err := dbc.DB(r.db).
		Preload("EntityContainerYears").
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *learningContainerYearRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.LearningContainerYear{}).Where("id = ?", id).Updates(updates).Error
}

func (r *learningContainerYearRepo) DeleteByIDs(dbc dbctx.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.LearningContainerYear{}).Error
}

type EntityContainerYearRepo interface {
	Create(dbc dbctx.Context, row *types.EntityContainerYear) (*types.EntityContainerYear, error)
	ListByContainer(dbc dbctx.Context, learningContainerYearID uint) ([]*types.EntityContainerYear, error)
	UpdateEntity(dbc dbctx.Context, id, entityID uint) error
	DeleteByIDs(dbc dbctx.Context, ids []uint) error
	DeleteByContainers(dbc dbctx.Context, learningContainerYearIDs []uint) error
}

type entityContainerYearRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntityContainerYearRepo(db *gorm.DB, baseLog *logger.Logger) EntityContainerYearRepo {
	return &entityContainerYearRepo{db: db, log: baseLog.With("repo", "EntityContainerYearRepo")}
}

func (r *entityContainerYearRepo) Create(dbc dbctx.Context, row *types.EntityContainerYear) (*types.EntityContainerYear, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *entityContainerYearRepo) ListByContainer(dbc dbctx.Context, learningContainerYearID uint) ([]*types.EntityContainerYear, error) {
	var out []*types.EntityContainerYear
	if learningContainerYearID == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("learning_container_year_id = ?", learningContainerYearID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *entityContainerYearRepo) UpdateEntity(dbc dbctx.Context, id, entityID uint) error {
	if id == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.EntityContainerYear{}).Where("id = ?", id).Update("entity_id", entityID).Error
}

func (r *entityContainerYearRepo) DeleteByIDs(dbc dbctx.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.EntityContainerYear{}).Error
}

func (r *entityContainerYearRepo) DeleteByContainers(dbc dbctx.Context, learningContainerYearIDs []uint) error {
	if len(learningContainerYearIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Where("learning_container_year_id IN ?", learningContainerYearIDs).
		Delete(&types.EntityContainerYear{}).Error
}
