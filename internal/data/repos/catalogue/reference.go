package catalogue

import (
	"strings"

	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"gorm.io/gorm"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

// ReferenceRepo reads rows other subsystems keep against learning unit years.
type ReferenceRepo interface {
	Create(dbc dbctx.Context, rows []*types.LearningUnitYearReference) ([]*types.LearningUnitYearReference, error)
	CountByLearningUnitYears(dbc dbctx.Context, learningUnitYearIDs []uint) (int64, error)
	// Repoint moves references from one unit year to its replacement.
	Repoint(dbc dbctx.Context, fromID, toID uint) error
	// LearningUnitYearIDsByLabel returns unit years with a reference of kind whose label contains substr.
	LearningUnitYearIDsByLabel(dbc dbctx.Context, kind types.ReferenceKind, substr string) ([]uint, error)
}

type referenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReferenceRepo(db *gorm.DB, baseLog *logger.Logger) ReferenceRepo {
	return &referenceRepo{db: db, log: baseLog.With("repo", "ReferenceRepo")}
}

func (r *referenceRepo) Create(dbc dbctx.Context, rows []*types.LearningUnitYearReference) ([]*types.LearningUnitYearReference, error) {
	if len(rows) == 0 {
		return []*types.LearningUnitYearReference{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *referenceRepo) CountByLearningUnitYears(dbc dbctx.Context, learningUnitYearIDs []uint) (int64, error) {
	if len(learningUnitYearIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.LearningUnitYearReference{}).
		Where("learning_unit_year_id IN ?", learningUnitYearIDs).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *referenceRepo) Repoint(dbc dbctx.Context, fromID, toID uint) error {
	if fromID == 0 || toID == 0 || fromID == toID {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.LearningUnitYearReference{}).
		Where("learning_unit_year_id = ?", fromID).
		Update("learning_unit_year_id", toID).Error
}

func (r *referenceRepo) LearningUnitYearIDsByLabel(dbc dbctx.Context, kind types.ReferenceKind, substr string) ([]uint, error) {
	var out []uint
	substr = strings.ToLower(strings.TrimSpace(substr))
	if substr == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Model(&types.LearningUnitYearReference{}).
		Distinct("learning_unit_year_id").
		Where("kind = ? AND LOWER(label) LIKE ?", kind, "%"+substr+"%").
		Pluck("learning_unit_year_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
