package catalogue

import (
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

type LearningComponentYearRepo interface {
	Create(dbc dbctx.Context, row *types.LearningComponentYear) (*types.LearningComponentYear, error)
	// ListByContainer returns every component of the container, with repartitions.
	ListByContainer(dbc dbctx.Context, learningContainerYearID uint) ([]*types.LearningComponentYear, error)
	// ListByLearningUnitYear returns the components linked to one unit year, with repartitions.
	ListByLearningUnitYear(dbc dbctx.Context, learningUnitYearID uint) ([]*types.LearningComponentYear, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	DeleteByIDs(dbc dbctx.Context, ids []uint) error
}

type learningComponentYearRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningComponentYearRepo(db *gorm.DB, baseLog *logger.Logger) LearningComponentYearRepo {
	return &learningComponentYearRepo{db: db, log: baseLog.With("repo", "LearningComponentYearRepo")}
}

func (r *learningComponentYearRepo) Create(dbc dbctx.Context, row *types.LearningComponentYear) (*types.LearningComponentYear, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Omit("EntityComponentYears").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *learningComponentYearRepo) ListByContainer(dbc dbctx.Context, learningContainerYearID uint) ([]*types.LearningComponentYear, error) {
	var out []*types.LearningComponentYear
	if learningContainerYearID == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Preload("EntityComponentYears.EntityContainerYear").
		Where("learning_container_year_id = ?", learningContainerYearID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningComponentYearRepo) ListByLearningUnitYear(dbc dbctx.Context, learningUnitYearID uint) ([]*types.LearningComponentYear, error) {
	var out []*types.LearningComponentYear
	if learningUnitYearID == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Preload("EntityComponentYears.EntityContainerYear").
		Joins("JOIN learning_unit_component luc ON luc.learning_component_year_id = learning_component_year.id").
		Where("luc.learning_unit_year_id = ?", learningUnitYearID).
		Order("learning_component_year.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningComponentYearRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.LearningComponentYear{}).Where("id = ?", id).Updates(updates).Error
}

func (r *learningComponentYearRepo) DeleteByIDs(dbc dbctx.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.LearningComponentYear{}).Error
}

type LearningUnitComponentRepo interface {
	Create(dbc dbctx.Context, row *types.LearningUnitComponent) (*types.LearningUnitComponent, error)
	ListByLearningUnitYear(dbc dbctx.Context, learningUnitYearID uint) ([]*types.LearningUnitComponent, error)
	DeleteByLearningUnitYear(dbc dbctx.Context, learningUnitYearID uint) error
}

type learningUnitComponentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningUnitComponentRepo(db *gorm.DB, baseLog *logger.Logger) LearningUnitComponentRepo {
	return &learningUnitComponentRepo{db: db, log: baseLog.With("repo", "LearningUnitComponentRepo")}
}

func (r *learningUnitComponentRepo) Create(dbc dbctx.Context, row *types.LearningUnitComponent) (*types.LearningUnitComponent, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Omit("LearningComponentYear").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *learningUnitComponentRepo) ListByLearningUnitYear(dbc dbctx.Context, learningUnitYearID uint) ([]*types.LearningUnitComponent, error) {
	var out []*types.LearningUnitComponent
	if learningUnitYearID == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("learning_unit_year_id = ?", learningUnitYearID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningUnitComponentRepo) DeleteByLearningUnitYear(dbc dbctx.Context, learningUnitYearID uint) error {
	if learningUnitYearID == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("learning_unit_year_id = ?", learningUnitYearID).Delete(&types.LearningUnitComponent{}).Error
}

type EntityComponentYearRepo interface {
	Create(dbc dbctx.Context, row *types.EntityComponentYear) (*types.EntityComponentYear, error)
	ListByComponents(dbc dbctx.Context, learningComponentYearIDs []uint) ([]*types.EntityComponentYear, error)
	UpdateVolume(dbc dbctx.Context, id uint, volume decimal.Decimal) error
	DeleteByAttachments(dbc dbctx.Context, entityContainerYearIDs []uint) error
	DeleteByComponents(dbc dbctx.Context, learningComponentYearIDs []uint) error
}

type entityComponentYearRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntityComponentYearRepo(db *gorm.DB, baseLog *logger.Logger) EntityComponentYearRepo {
	return &entityComponentYearRepo{db: db, log: baseLog.With("repo", "EntityComponentYearRepo")}
}

func (r *entityComponentYearRepo) Create(dbc dbctx.Context, row *types.EntityComponentYear) (*types.EntityComponentYear, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Omit("EntityContainerYear").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *entityComponentYearRepo) ListByComponents(dbc dbctx.Context, learningComponentYearIDs []uint) ([]*types.EntityComponentYear, error) {
	var out []*types.EntityComponentYear
	if len(learningComponentYearIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Preload("EntityContainerYear").
		Where("learning_component_year_id IN ?", learningComponentYearIDs).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *entityComponentYearRepo) UpdateVolume(dbc dbctx.Context, id uint, volume decimal.Decimal) error {
	if id == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.EntityComponentYear{}).Where("id = ?", id).Update("repartition_volume", volume).Error
}

func (r *entityComponentYearRepo) DeleteByAttachments(dbc dbctx.Context, entityContainerYearIDs []uint) error {
	if len(entityContainerYearIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("entity_container_year_id IN ?", entityContainerYearIDs).Delete(&types.EntityComponentYear{}).Error
}

func (r *entityComponentYearRepo) DeleteByComponents(dbc dbctx.Context, learningComponentYearIDs []uint) error {
	if len(learningComponentYearIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("learning_component_year_id IN ?", learningComponentYearIDs).Delete(&types.EntityComponentYear{}).Error
}
