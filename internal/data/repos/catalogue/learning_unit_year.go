package catalogue

import (
	"strings"

	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"gorm.io/gorm"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

type LearningUnitYearRepo interface {
	Create(dbc dbctx.Context, row *types.LearningUnitYear) (*types.LearningUnitYear, error)

	// GetByID loads the row with its academic year, unit and container (+attachments).
	GetByID(dbc dbctx.Context, id uint) (*types.LearningUnitYear, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.LearningUnitYear, error)
	LockByID(dbc dbctx.Context, id uint) (*types.LearningUnitYear, error)

	GetByUnitAndYear(dbc dbctx.Context, learningUnitID, academicYearID uint) (*types.LearningUnitYear, error)
	ListByUnitFromYear(dbc dbctx.Context, learningUnitID uint, minYear int) ([]*types.LearningUnitYear, error)
	ListByContainer(dbc dbctx.Context, learningContainerYearID uint) ([]*types.LearningUnitYear, error)
	ListByAcademicYear(dbc dbctx.Context, academicYearID uint) ([]*types.LearningUnitYear, error)
	ListByRequirementEntities(dbc dbctx.Context, entityIDs []uint, academicYearID uint) ([]*types.LearningUnitYear, error)
	ListByTitle(dbc dbctx.Context, substr string, academicYearID uint) ([]*types.LearningUnitYear, error)
	// ListByAcronymPrefix returns candidates for in-process acronym pattern matching.
	ListByAcronymPrefix(dbc dbctx.Context, prefix string, academicYearID uint) ([]*types.LearningUnitYear, error)

	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	DeleteByIDs(dbc dbctx.Context, ids []uint) error
}

type learningUnitYearRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningUnitYearRepo(db *gorm.DB, baseLog *logger.Logger) LearningUnitYearRepo {
	return &learningUnitYearRepo{db: db, log: baseLog.With("repo", "LearningUnitYearRepo")}
}

func withGraph(t *gorm.DB) *gorm.DB {
	return t.
		Preload("AcademicYear").
		Preload("LearningUnit").
		Preload("LearningContainerYear").
		Preload("LearningContainerYear.EntityContainerYears")
}

func (r *learningUnitYearRepo) Create(dbc dbctx.Context, row *types.LearningUnitYear) (*types.LearningUnitYear, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Omit("LearningUnit", "AcademicYear", "LearningContainerYear").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *learningUnitYearRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.LearningUnitYear, error) {
	var out []*types.LearningUnitYear
	if len(ids) == 0 {
		return out, nil
	}
	if err := withGraph(dbc.DB(r.db)).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningUnitYearRepo) GetByID(dbc dbctx.Context, id uint) (*types.LearningUnitYear, error) {
	if id == 0 {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uint{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *learningUnitYearRepo) LockByID(dbc dbctx.Context, id uint) (*types.LearningUnitYear, error) {
	if id == 0 {
		return nil, nil
	}
	var locked types.LearningUnitYear
	if err := forUpdate(dbc.DB(r.db)).Where("id = ?", id).Limit(1).Find(&locked).Error; err != nil {
		return nil, err
	}
	if locked.ID == 0 {
		return nil, nil
	}
	return r.GetByID(dbc, id)
}

func (r *learningUnitYearRepo) GetByUnitAndYear(dbc dbctx.Context, learningUnitID, academicYearID uint) (*types.LearningUnitYear, error) {
	var out []*types.LearningUnitYear
	if err := withGraph(dbc.DB(r.db)).
		Where("learning_unit_id = ? AND academic_year_id = ?", learningUnitID, academicYearID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *learningUnitYearRepo) ListByUnitFromYear(dbc dbctx.Context, learningUnitID uint, minYear int) ([]*types.LearningUnitYear, error) {
	var out []*types.LearningUnitYear
	if err := withGraph(dbc.DB(r.db)).
		Joins("JOIN academic_year ON academic_year.id = learning_unit_year.academic_year_id").
		Where("learning_unit_year.learning_unit_id = ? AND academic_year.year >= ?", learningUnitID, minYear).
		Order("academic_year.year ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningUnitYearRepo) ListByContainer(dbc dbctx.Context, learningContainerYearID uint) ([]*types.LearningUnitYear, error) {
	var out []*types.LearningUnitYear
	if learningContainerYearID == 0 {
		return out, nil
	}
	if err := withGraph(dbc.DB(r.db)).
		Where("learning_container_year_id = ?", learningContainerYearID).
		Order("acronym ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningUnitYearRepo) ListByAcademicYear(dbc dbctx.Context, academicYearID uint) ([]*types.LearningUnitYear, error) {
	var out []*types.LearningUnitYear
	if err := withGraph(dbc.DB(r.db)).
		Where("academic_year_id = ?", academicYearID).
		Order("acronym ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningUnitYearRepo) ListByRequirementEntities(dbc dbctx.Context, entityIDs []uint, academicYearID uint) ([]*types.LearningUnitYear, error) {
	var out []*types.LearningUnitYear
	if len(entityIDs) == 0 {
		return out, nil
	}
	q := withGraph(dbc.DB(r.db)).
		Joins("JOIN entity_container_year ecy ON ecy.learning_container_year_id = learning_unit_year.learning_container_year_id").
		Where("ecy.type = ? AND ecy.entity_id IN ?", types.RequirementEntity, entityIDs)
	if academicYearID != 0 {
		q = q.Where("learning_unit_year.academic_year_id = ?", academicYearID)
	}
	if err := q.Order("learning_unit_year.acronym ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningUnitYearRepo) ListByTitle(dbc dbctx.Context, substr string, academicYearID uint) ([]*types.LearningUnitYear, error) {
	var out []*types.LearningUnitYear
	substr = strings.ToLower(strings.TrimSpace(substr))
	if substr == "" {
		return out, nil
	}
	like := "%" + substr + "%"
	q := withGraph(dbc.DB(r.db)).
		Joins("JOIN learning_container_year lcy ON lcy.id = learning_unit_year.learning_container_year_id").
		Where("LOWER(learning_unit_year.specific_title) LIKE ? OR LOWER(lcy.common_title) LIKE ?", like, like)
	if academicYearID != 0 {
		q = q.Where("learning_unit_year.academic_year_id = ?", academicYearID)
	}
	if err := q.Order("learning_unit_year.acronym ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningUnitYearRepo) ListByAcronymPrefix(dbc dbctx.Context, prefix string, academicYearID uint) ([]*types.LearningUnitYear, error) {
	var out []*types.LearningUnitYear
	q := withGraph(dbc.DB(r.db))
	if p := strings.ToUpper(strings.TrimSpace(prefix)); p != "" {
		q = q.Where("UPPER(learning_unit_year.acronym) LIKE ?", p+"%")
	}
	if academicYearID != 0 {
		q = q.Where("learning_unit_year.academic_year_id = ?", academicYearID)
	}
	if err := q.Order("learning_unit_year.acronym ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningUnitYearRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.LearningUnitYear{}).Where("id = ?", id).Updates(updates).Error
}

func (r *learningUnitYearRepo) DeleteByIDs(dbc dbctx.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.LearningUnitYear{}).Error
}
