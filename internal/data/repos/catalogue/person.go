package catalogue

import (
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"gorm.io/gorm"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

type PersonRepo interface {
	Create(dbc dbctx.Context, rows []*types.Person) ([]*types.Person, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Person, error)
	AddRoles(dbc dbctx.Context, rows []*types.PersonRole) error
	AddEntities(dbc dbctx.Context, rows []*types.PersonEntity) error
	ListRoles(dbc dbctx.Context, personID uint) ([]types.Role, error)
	ListEntities(dbc dbctx.Context, personID uint) ([]*types.PersonEntity, error)
}

type personRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	return &personRepo{db: db, log: baseLog.With("repo", "PersonRepo")}
}

func (r *personRepo) Create(dbc dbctx.Context, rows []*types.Person) ([]*types.Person, error) {
	if len(rows) == 0 {
		return []*types.Person{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *personRepo) GetByID(dbc dbctx.Context, id uint) (*types.Person, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.Person
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *personRepo) AddRoles(dbc dbctx.Context, rows []*types.PersonRole) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&rows).Error
}

func (r *personRepo) AddEntities(dbc dbctx.Context, rows []*types.PersonEntity) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&rows).Error
}

func (r *personRepo) ListRoles(dbc dbctx.Context, personID uint) ([]types.Role, error) {
	var rows []*types.PersonRole
	if err := dbc.DB(r.db).Where("person_id = ?", personID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.Role, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Role)
	}
	return out, nil
}

func (r *personRepo) ListEntities(dbc dbctx.Context, personID uint) ([]*types.PersonEntity, error) {
	var out []*types.PersonEntity
	if err := dbc.DB(r.db).Where("person_id = ?", personID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
