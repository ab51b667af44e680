// package actions implements the entity action layer: per-entity CRUD with
// scoped uniqueness enforcement, cross-entity referential checks, and the
// connect/disconnect protocol for the five many-to-many relations.
//
// Every action either returns a fully formed entity or fails with one of the
// four types.ActionError kinds. Uniqueness pre-checks are advisory; the
// storage engine's unique indexes remain the correctness backstop, and a
// duplicate-key error that slips past a pre-check is translated to the same
// NotUnique the pre-check would have produced.
package actions

import (
	"context"

	"gorm.io/gorm"
)

// available reports whether no other row of model (excluding excludeID)
// matches the condition. excludeID 0 means nothing is excluded.
func available(ctx context.Context, db *gorm.DB, model interface{}, excludeID uint64, cond string, args ...interface{}) (bool, error) {
	tx := db.WithContext(ctx).Model(model).Where(cond, args...)
	if excludeID != 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}

// activeOrDefault resolves an optional active flag; absent means true.
func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
