package catalogue

import (
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"gorm.io/gorm"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

type EntityRepo interface {
	Create(dbc dbctx.Context, rows []*types.Entity) ([]*types.Entity, error)
	CreateVersions(dbc dbctx.Context, rows []*types.EntityVersion) ([]*types.EntityVersion, error)

	ListAllVersions(dbc dbctx.Context) ([]*types.EntityVersion, error)
	ListVersionsByEntityIDs(dbc dbctx.Context, entityIDs []uint) ([]*types.EntityVersion, error)
	ListVersionsByAcronym(dbc dbctx.Context, acronym string) ([]*types.EntityVersion, error)
}

type entityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntityRepo(db *gorm.DB, baseLog *logger.Logger) EntityRepo {
	return &entityRepo{db: db, log: baseLog.With("repo", "EntityRepo")}
}

func (r *entityRepo) Create(dbc dbctx.Context, rows []*types.Entity) ([]*types.Entity, error) {
	if len(rows) == 0 {
		return []*types.Entity{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *entityRepo) CreateVersions(dbc dbctx.Context, rows []*types.EntityVersion) ([]*types.EntityVersion, error) {
	if len(rows) == 0 {
		return []*types.EntityVersion{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *entityRepo) ListAllVersions(dbc dbctx.Context) ([]*types.EntityVersion, error) {
	var out []*types.EntityVersion
	if err := dbc.DB(r.db).Order("entity_id ASC, start_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *entityRepo) ListVersionsByEntityIDs(dbc dbctx.Context, entityIDs []uint) ([]*types.EntityVersion, error) {
	var out []*types.EntityVersion
	if len(entityIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("entity_id IN ?", entityIDs).
		Order("entity_id ASC, start_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *entityRepo) ListVersionsByAcronym(dbc dbctx.Context, acronym string) ([]*types.EntityVersion, error) {
	var out []*types.EntityVersion
	if acronym == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("UPPER(acronym) = UPPER(?)", acronym).
		Order("start_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
