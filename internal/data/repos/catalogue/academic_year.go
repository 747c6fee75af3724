package catalogue

import (
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"gorm.io/gorm"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

type AcademicYearRepo interface {
	Create(dbc dbctx.Context, rows []*types.AcademicYear) ([]*types.AcademicYear, error)
	ListAll(dbc dbctx.Context) ([]*types.AcademicYear, error)
	GetByYear(dbc dbctx.Context, year int) (*types.AcademicYear, error)
}

type academicYearRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAcademicYearRepo(db *gorm.DB, baseLog *logger.Logger) AcademicYearRepo {
	return &academicYearRepo{db: db, log: baseLog.With("repo", "AcademicYearRepo")}
}

func (r *academicYearRepo) Create(dbc dbctx.Context, rows []*types.AcademicYear) ([]*types.AcademicYear, error) {
	if len(rows) == 0 {
		return []*types.AcademicYear{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *academicYearRepo) ListAll(dbc dbctx.Context) ([]*types.AcademicYear, error) {
	var out []*types.AcademicYear
	if err := dbc.DB(r.db).Order("year ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *academicYearRepo) GetByYear(dbc dbctx.Context, year int) (*types.AcademicYear, error) {
	var row types.AcademicYear
	if err := dbc.DB(r.db).Where("year = ?", year).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}
