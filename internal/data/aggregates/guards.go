package aggregates

import (
	"strings"

	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// CASGuard updates rows only while they still hold an expected state. On
// drivers without row locks it is the last line against lost updates.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.DB(dbc.Tx), nil
	}
	if g.db != nil {
		return dbc.DB(g.db), nil
	}
	return nil, ValidationError("missing db transaction context")
}

// UpdateByState updates a row only when id+state guard matches.
func (g CASGuard) UpdateByState(dbc dbctx.Context, table string, id uint, allowedStates []string, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	if table == "" || id == 0 {
		return false, ValidationError("table and id are required for UpdateByState")
	}
	if len(allowedStates) == 0 {
		return false, ValidationError("allowedStates must not be empty")
	}
	res := db.Table(table).
		Where("id = ? AND state IN ?", id, allowedStates).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess converts a failed compare-and-set into a concurrency error.
func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return ConcurrentError(strings.TrimSpace(message))
}

// RequireStateAllowed rejects a transition out of a state not listed in allowed.
func RequireStateAllowed(current string, allowed ...string) error {
	current = strings.TrimSpace(current)
	if len(allowed) == 0 {
		return ValidationError("allowed states cannot be empty")
	}
	for _, s := range allowed {
		if strings.EqualFold(current, strings.TrimSpace(s)) {
			return nil
		}
	}
	return IllegalTransitionError("transition not allowed from state " + current)
}
