package catalogue

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate takes a row lock that fails fast instead of queueing behind another
// transition. Dialects without row locks (SQLite) drop the clause.
func forUpdate(t *gorm.DB) *gorm.DB {
	return t.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"})
}
