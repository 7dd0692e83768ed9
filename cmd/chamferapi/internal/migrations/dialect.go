package migrations

import (
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// canAlterConstraints reports whether db accepts ALTER TABLE ... ADD CONSTRAINT.
// SQLite only takes constraints at CREATE TABLE time, so foreign keys are skipped there.
func canAlterConstraints(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.PG
}
