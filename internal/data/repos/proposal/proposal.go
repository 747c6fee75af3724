package proposal

import (
	"strings"

	"github.com/google/uuid"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

// SearchFilter narrows Search. Zero values are ignored. Entity and tutor
// criteria arrive already resolved to ids.
type SearchFilter struct {
	AcademicYearID  uint
	AcronymPrefix   string
	Type            types.ProposalType
	State           types.ProposalState
	FolderID        *int
	OwningEntityIDs []uint

	// RestrictLearningUnitYears limits results to LearningUnitYearIDs, even when empty.
	RestrictLearningUnitYears bool
	LearningUnitYearIDs       []uint
}

type ProposalRepo interface {
	Create(dbc dbctx.Context, row *types.Proposal) (*types.Proposal, error)

	GetByID(dbc dbctx.Context, id uint) (*types.Proposal, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Proposal, error)
	GetByUUID(dbc dbctx.Context, id uuid.UUID) (*types.Proposal, error)
	LockByID(dbc dbctx.Context, id uint) (*types.Proposal, error)

	FindForLearningUnitYear(dbc dbctx.Context, learningUnitYearID uint) (*types.Proposal, error)
	FindByOwningEntities(dbc dbctx.Context, entityIDs []uint) ([]*types.Proposal, error)
	Search(dbc dbctx.Context, f SearchFilter) ([]*types.Proposal, error)

	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	DeleteByID(dbc dbctx.Context, id uint) error
}

type proposalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProposalRepo(db *gorm.DB, baseLog *logger.Logger) ProposalRepo {
	return &proposalRepo{db: db, log: baseLog.With("repo", "ProposalRepo")}
}

func withDisplay(t *gorm.DB) *gorm.DB {
	return t.
		Preload("Author").
		Preload("LearningUnitYear").
		Preload("LearningUnitYear.AcademicYear").
		Preload("LearningUnitYear.LearningUnit").
		Preload("LearningUnitYear.LearningContainerYear").
		Preload("LearningUnitYear.LearningContainerYear.EntityContainerYears")
}

func (r *proposalRepo) Create(dbc dbctx.Context, row *types.Proposal) (*types.Proposal, error) {
	if row == nil {
		return nil, nil
	}
	if row.UUID == uuid.Nil {
		row.UUID = uuid.New()
	}
	if err := dbc.DB(r.db).Omit(clause.Associations).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *proposalRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Proposal, error) {
	var out []*types.Proposal
	if len(ids) == 0 {
		return out, nil
	}
	if err := withDisplay(dbc.DB(r.db)).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *proposalRepo) GetByID(dbc dbctx.Context, id uint) (*types.Proposal, error) {
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

func (r *proposalRepo) GetByUUID(dbc dbctx.Context, id uuid.UUID) (*types.Proposal, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Proposal
	if err := withDisplay(dbc.DB(r.db)).Where("uuid = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *proposalRepo) LockByID(dbc dbctx.Context, id uint) (*types.Proposal, error) {
	if id == 0 {
		return nil, nil
	}
	var locked types.Proposal
	if err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
		Where("id = ?", id).
		Limit(1).
		Find(&locked).Error; err != nil {
		return nil, err
	}
	if locked.ID == 0 {
		return nil, nil
	}
	return r.GetByID(dbc, id)
}

func (r *proposalRepo) FindForLearningUnitYear(dbc dbctx.Context, learningUnitYearID uint) (*types.Proposal, error) {
	if learningUnitYearID == 0 {
		return nil, nil
	}
	var out []*types.Proposal
	if err := withDisplay(dbc.DB(r.db)).
		Where("learning_unit_year_id = ?", learningUnitYearID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *proposalRepo) FindByOwningEntities(dbc dbctx.Context, entityIDs []uint) ([]*types.Proposal, error) {
	var out []*types.Proposal
	if len(entityIDs) == 0 {
		return out, nil
	}
	if err := withDisplay(dbc.DB(r.db)).
		Where("owning_entity_id IN ?", entityIDs).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *proposalRepo) Search(dbc dbctx.Context, f SearchFilter) ([]*types.Proposal, error) {
	var out []*types.Proposal
	if f.RestrictLearningUnitYears && len(f.LearningUnitYearIDs) == 0 {
		return out, nil
	}

	t := dbc.DB(r.db)
	luy := t.Session(&gorm.Session{NewDB: true}).
		Model(&types.LearningUnitYear{}).
		Select("id")
	filterLUY := false
	if f.AcademicYearID != 0 {
		luy = luy.Where("academic_year_id = ?", f.AcademicYearID)
		filterLUY = true
	}
	if p := strings.ToUpper(strings.TrimSpace(f.AcronymPrefix)); p != "" {
		luy = luy.Where("UPPER(acronym) LIKE ?", p+"%")
		filterLUY = true
	}

	q := withDisplay(t).Model(&types.Proposal{})
	if filterLUY {
		q = q.Where("learning_unit_year_id IN (?)", luy)
	}
	if f.RestrictLearningUnitYears {
		q = q.Where("learning_unit_year_id IN ?", f.LearningUnitYearIDs)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.FolderID != nil {
		q = q.Where("folder_id = ?", *f.FolderID)
	}
	if len(f.OwningEntityIDs) > 0 {
		q = q.Where("owning_entity_id IN ?", f.OwningEntityIDs)
	}

	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *proposalRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["initial_data"]; ok {
		r.log.Warn("refusing to rewrite proposal snapshot", "proposal_id", id)
		delete(updates, "initial_data")
		if len(updates) == 0 {
			return nil
		}
	}
	return dbc.DB(r.db).Model(&types.Proposal{}).Where("id = ?", id).Updates(updates).Error
}

func (r *proposalRepo) DeleteByID(dbc dbctx.Context, id uint) error {
	if id == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Proposal{}).Error
}
