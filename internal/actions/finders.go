package actions

import (
	"context"
	"errors"

	"github.com/bookworks/librarydb/internal/models"
	"github.com/bookworks/librarydb/internal/types"
	"gorm.io/gorm"
)

// Lightweight existence lookups shared by the action modules. Each returns
// the bare row (no preloads) or a NotFound carrying the entity kind, so a
// parent-existence failure propagates to the caller unchanged.

func findLibrary(ctx context.Context, db *gorm.DB, id uint64) (*models.Library, error) {
	var lib models.Library
	err := db.WithContext(ctx).First(&lib, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("id", "Missing Library %d", id)
	}
	if err != nil {
		return nil, types.ServerError("library.find", err)
	}
	return &lib, nil
}

func findAuthor(ctx context.Context, db *gorm.DB, libraryID, id uint64) (*models.Author, error) {
	var author models.Author
	err := db.WithContext(ctx).Where("library_id = ?", libraryID).First(&author, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("id", "Missing Author %d", id)
	}
	if err != nil {
		return nil, types.ServerError("author.find", err)
	}
	return &author, nil
}

func findSeries(ctx context.Context, db *gorm.DB, libraryID, id uint64) (*models.Series, error) {
	var series models.Series
	err := db.WithContext(ctx).Where("library_id = ?", libraryID).First(&series, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("id", "Missing Series %d", id)
	}
	if err != nil {
		return nil, types.ServerError("series.find", err)
	}
	return &series, nil
}

func findStory(ctx context.Context, db *gorm.DB, libraryID, id uint64) (*models.Story, error) {
	var story models.Story
	err := db.WithContext(ctx).Where("library_id = ?", libraryID).First(&story, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("id", "Missing Story %d", id)
	}
	if err != nil {
		return nil, types.ServerError("story.find", err)
	}
	return &story, nil
}

func findVolume(ctx context.Context, db *gorm.DB, libraryID, id uint64) (*models.Volume, error) {
	var volume models.Volume
	err := db.WithContext(ctx).Where("library_id = ?", libraryID).First(&volume, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("id", "Missing Volume %d", id)
	}
	if err != nil {
		return nil, types.ServerError("volume.find", err)
	}
	return &volume, nil
}

func findUser(ctx context.Context, db *gorm.DB, id uint64) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("id", "Missing User %d", id)
	}
	if err != nil {
		return nil, types.ServerError("user.find", err)
	}
	return &user, nil
}
