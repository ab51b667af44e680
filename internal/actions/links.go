package actions

import (
	"context"
	"errors"

	"github.com/bookworks/librarydb/internal/types"
	"gorm.io/gorm"
)

// connectRow inserts a join row after verifying the pair is not already
// linked. Connecting is not idempotent: a second attempt fails NotUnique.
// model is the empty join type used for the pre-check count; row is the
// populated join row to insert.
func connectRow(ctx context.Context, db *gorm.DB, action string, kindA string, idA uint64, kindB string, idB uint64, cond string, model, row interface{}) error {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where(cond, idA, idB).Count(&n).Error; err != nil {
		return types.ServerError(action, err)
	}
	if n > 0 {
		return types.NotUnique("connect", "%s ID %d and %s ID %d are already connected", kindA, idA, kindB, idB)
	}
	err := db.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race between pre-check and insert; same outcome.
		return types.NotUnique("connect", "%s ID %d and %s ID %d are already connected", kindA, idA, kindB, idB)
	}
	if err != nil {
		return types.ServerError(action, err)
	}
	return nil
}

// disconnectRow deletes a join row. Disconnecting is not idempotent: a
// second attempt fails NotFound.
func disconnectRow(ctx context.Context, db *gorm.DB, action string, kindA string, idA uint64, kindB string, idB uint64, cond string, model interface{}) error {
	res := db.WithContext(ctx).Where(cond, idA, idB).Delete(model)
	if res.Error != nil {
		return types.ServerError(action, res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NotFound("disconnect", "%s ID %d and %s ID %d are not connected", kindA, idA, kindB, idB)
	}
	return nil
}
