package actions

import (
	"context"
	"errors"

	"github.com/bookworks/librarydb/internal/models"
	"github.com/bookworks/librarydb/internal/query"
	"github.com/bookworks/librarydb/internal/types"
	"gorm.io/gorm"
)

// StoryActions exposes the action contract for Story rows. Stories are the
// related side of four join relations; the owning sides (Author, Series,
// Volume) carry the connect/disconnect operations.
type StoryActions struct {
	db *gorm.DB
}

func NewStoryActions(db *gorm.DB) *StoryActions {
	return &StoryActions{db: db}
}

// StoryData is the insert payload.
type StoryData struct {
	Name      string
	Copyright *string
	Active    *bool
	Notes     *string
}

// StoryPatch is the partial update payload; nil fields are left untouched.
type StoryPatch struct {
	Name      *string
	Copyright *string
	Active    *bool
	Notes     *string
}

var storyEdges = []string{"Library", "Authors", "Series", "Volumes"}

// All returns the library's stories, name ascending.
func (a *StoryActions) All(ctx context.Context, libraryID uint64, opts query.ListOptions) ([]models.Story, error) {
	var stories []models.Story
	tx := a.db.WithContext(ctx).
		Where("library_id = ?", libraryID).
		Scopes(query.ActiveFilter(opts), query.NameFilter("name", opts), query.Paginate(opts)).
		Order(query.NameOrder)
	tx = query.Preload(tx, opts, storyEdges...)
	if err := tx.Find(&stories).Error; err != nil {
		return nil, types.ServerError("story.all", err)
	}
	return stories, nil
}

// Find returns the story with the given ID within the library.
func (a *StoryActions) Find(ctx context.Context, libraryID, id uint64, opts query.ListOptions) (*models.Story, error) {
	var story models.Story
	tx := query.Preload(a.db.WithContext(ctx), opts, storyEdges...)
	err := tx.Where("library_id = ?", libraryID).First(&story, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("id", "Missing Story %d", id)
	}
	if err != nil {
		return nil, types.ServerError("story.find", err)
	}
	return &story, nil
}

// Exact returns the story with the given name within the library.
func (a *StoryActions) Exact(ctx context.Context, libraryID uint64, name string, opts query.ListOptions) (*models.Story, error) {
	var story models.Story
	tx := query.Preload(a.db.WithContext(ctx), opts, storyEdges...)
	err := tx.Where("library_id = ? AND name = ?", libraryID, name).First(&story).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("name", "Missing Story '%s'", name)
	}
	if err != nil {
		return nil, types.ServerError("story.exact", err)
	}
	return &story, nil
}

// Insert creates a story under the library.
func (a *StoryActions) Insert(ctx context.Context, libraryID uint64, data StoryData) (*models.Story, error) {
	if _, err := findLibrary(ctx, a.db, libraryID); err != nil {
		return nil, err
	}
	if data.Name == "" {
		return nil, types.BadRequest("name", "Name is required")
	}
	ok, err := available(ctx, a.db, &models.Story{}, 0, "library_id = ? AND name = ?", libraryID, data.Name)
	if err != nil {
		return nil, types.ServerError("story.insert", err)
	}
	if !ok {
		return nil, types.NotUnique("name", "Story name '%s' is already in use in this Library", data.Name)
	}

	story := models.Story{
		LibraryID: libraryID,
		Name:      data.Name,
		Copyright: data.Copyright,
		Active:    activeOrDefault(data.Active),
		Notes:     data.Notes,
	}
	err = a.db.WithContext(ctx).Create(&story).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.NotUnique("name", "Story name '%s' is already in use in this Library", data.Name)
	}
	if err != nil {
		return nil, types.ServerError("story.insert", err)
	}
	return &story, nil
}

// Update applies the patch. The owning library is never reassigned.
func (a *StoryActions) Update(ctx context.Context, libraryID, id uint64, patch StoryPatch) (*models.Story, error) {
	story, err := findStory(ctx, a.db, libraryID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil && *patch.Name != story.Name {
		if *patch.Name == "" {
			return nil, types.BadRequest("name", "Name is required")
		}
		ok, err := available(ctx, a.db, &models.Story{}, id, "library_id = ? AND name = ?", libraryID, *patch.Name)
		if err != nil {
			return nil, types.ServerError("story.update", err)
		}
		if !ok {
			return nil, types.NotUnique("name", "Story name '%s' is already in use in this Library", *patch.Name)
		}
		updates["name"] = *patch.Name
	}
	if patch.Copyright != nil {
		updates["copyright"] = *patch.Copyright
	}
	if patch.Active != nil {
		updates["active"] = *patch.Active
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if len(updates) == 0 {
		return story, nil
	}

	err = a.db.WithContext(ctx).Model(&models.Story{}).Where("id = ?", id).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.NotUnique("name", "Story name '%s' is already in use in this Library", updates["name"])
	}
	if err != nil {
		return nil, types.ServerError("story.update", err)
	}
	return findStory(ctx, a.db, libraryID, id)
}

// Remove deletes the story and its join rows, returning the pre-deletion
// snapshot.
func (a *StoryActions) Remove(ctx context.Context, libraryID, id uint64) (*models.Story, error) {
	story, err := findStory(ctx, a.db, libraryID, id)
	if err != nil {
		return nil, err
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		joins := []interface{}{
			&models.AuthorStory{}, &models.SeriesStory{}, &models.VolumeStory{},
		}
		for _, join := range joins {
			if err := tx.Where("story_id = ?", id).Delete(join).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Story{}, id).Error
	})
	if err != nil {
		return nil, types.ServerError("story.remove", err)
	}
	return story, nil
}
