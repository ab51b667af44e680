package actions

import (
	"context"
	"errors"

	"github.com/bookworks/librarydb/internal/models"
	"github.com/bookworks/librarydb/internal/query"
	"github.com/bookworks/librarydb/internal/types"
	"gorm.io/gorm"
)

// SeriesActions exposes the action contract for Series rows. Series own the
// ordinal-carrying connect/disconnect toward Story.
type SeriesActions struct {
	db *gorm.DB
}

func NewSeriesActions(db *gorm.DB) *SeriesActions {
	return &SeriesActions{db: db}
}

// SeriesData is the insert payload.
type SeriesData struct {
	Name      string
	Copyright *string
	Active    *bool
	Notes     *string
}

// SeriesPatch is the partial update payload; nil fields are left untouched.
type SeriesPatch struct {
	Name      *string
	Copyright *string
	Active    *bool
	Notes     *string
}

var seriesEdges = []string{"Library", "Authors", "Stories"}

// All returns the library's series, name ascending.
func (a *SeriesActions) All(ctx context.Context, libraryID uint64, opts query.ListOptions) ([]models.Series, error) {
	var series []models.Series
	tx := a.db.WithContext(ctx).
		Where("library_id = ?", libraryID).
		Scopes(query.ActiveFilter(opts), query.NameFilter("name", opts), query.Paginate(opts)).
		Order(query.NameOrder)
	tx = query.Preload(tx, opts, seriesEdges...)
	if err := tx.Find(&series).Error; err != nil {
		return nil, types.ServerError("series.all", err)
	}
	return series, nil
}

// Find returns the series with the given ID within the library.
func (a *SeriesActions) Find(ctx context.Context, libraryID, id uint64, opts query.ListOptions) (*models.Series, error) {
	var series models.Series
	tx := query.Preload(a.db.WithContext(ctx), opts, seriesEdges...)
	err := tx.Where("library_id = ?", libraryID).First(&series, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("id", "Missing Series %d", id)
	}
	if err != nil {
		return nil, types.ServerError("series.find", err)
	}
	return &series, nil
}

// Exact returns the series with the given name within the library.
func (a *SeriesActions) Exact(ctx context.Context, libraryID uint64, name string, opts query.ListOptions) (*models.Series, error) {
	var series models.Series
	tx := query.Preload(a.db.WithContext(ctx), opts, seriesEdges...)
	err := tx.Where("library_id = ? AND name = ?", libraryID, name).First(&series).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("name", "Missing Series '%s'", name)
	}
	if err != nil {
		return nil, types.ServerError("series.exact", err)
	}
	return &series, nil
}

// Insert creates a series under the library.
func (a *SeriesActions) Insert(ctx context.Context, libraryID uint64, data SeriesData) (*models.Series, error) {
	if _, err := findLibrary(ctx, a.db, libraryID); err != nil {
		return nil, err
	}
	if data.Name == "" {
		return nil, types.BadRequest("name", "Name is required")
	}
	ok, err := available(ctx, a.db, &models.Series{}, 0, "library_id = ? AND name = ?", libraryID, data.Name)
	if err != nil {
		return nil, types.ServerError("series.insert", err)
	}
	if !ok {
		return nil, types.NotUnique("name", "Series name '%s' is already in use in this Library", data.Name)
	}

	series := models.Series{
		LibraryID: libraryID,
		Name:      data.Name,
		Copyright: data.Copyright,
		Active:    activeOrDefault(data.Active),
		Notes:     data.Notes,
	}
	err = a.db.WithContext(ctx).Create(&series).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.NotUnique("name", "Series name '%s' is already in use in this Library", data.Name)
	}
	if err != nil {
		return nil, types.ServerError("series.insert", err)
	}
	return &series, nil
}

// Update applies the patch. The owning library is never reassigned.
func (a *SeriesActions) Update(ctx context.Context, libraryID, id uint64, patch SeriesPatch) (*models.Series, error) {
	series, err := findSeries(ctx, a.db, libraryID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil && *patch.Name != series.Name {
		if *patch.Name == "" {
			return nil, types.BadRequest("name", "Name is required")
		}
		ok, err := available(ctx, a.db, &models.Series{}, id, "library_id = ? AND name = ?", libraryID, *patch.Name)
		if err != nil {
			return nil, types.ServerError("series.update", err)
		}
		if !ok {
			return nil, types.NotUnique("name", "Series name '%s' is already in use in this Library", *patch.Name)
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
		return series, nil
	}

	err = a.db.WithContext(ctx).Model(&models.Series{}).Where("id = ?", id).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.NotUnique("name", "Series name '%s' is already in use in this Library", updates["name"])
	}
	if err != nil {
		return nil, types.ServerError("series.update", err)
	}
	return findSeries(ctx, a.db, libraryID, id)
}

// Remove deletes the series and its join rows, returning the pre-deletion
// snapshot.
func (a *SeriesActions) Remove(ctx context.Context, libraryID, id uint64) (*models.Series, error) {
	series, err := findSeries(ctx, a.db, libraryID, id)
	if err != nil {
		return nil, err
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("series_id = ?", id).Delete(&models.AuthorSeries{}).Error; err != nil {
			return err
		}
		if err := tx.Where("series_id = ?", id).Delete(&models.SeriesStory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Series{}, id).Error
	})
	if err != nil {
		return nil, types.ServerError("series.remove", err)
	}
	return series, nil
}

// StoryConnect links the series to a story in the same library. Ordinal may
// be nil when the story's position is unknown.
func (a *SeriesActions) StoryConnect(ctx context.Context, libraryID, seriesID, storyID uint64, ordinal *int) (*models.Series, error) {
	series, err := findSeries(ctx, a.db, libraryID, seriesID)
	if err != nil {
		return nil, err
	}
	if _, err := findStory(ctx, a.db, libraryID, storyID); err != nil {
		return nil, err
	}
	row := &models.SeriesStory{SeriesID: seriesID, StoryID: storyID, Ordinal: ordinal}
	if err := connectRow(ctx, a.db, "series.storyConnect", "Series", seriesID, "Story", storyID,
		"series_id = ? AND story_id = ?", &models.SeriesStory{}, row); err != nil {
		return nil, err
	}
	return series, nil
}

// StoryDisconnect unlinks the series from a story.
func (a *SeriesActions) StoryDisconnect(ctx context.Context, libraryID, seriesID, storyID uint64) (*models.Series, error) {
	series, err := findSeries(ctx, a.db, libraryID, seriesID)
	if err != nil {
		return nil, err
	}
	if _, err := findStory(ctx, a.db, libraryID, storyID); err != nil {
		return nil, err
	}
	if err := disconnectRow(ctx, a.db, "series.storyDisconnect", "Series", seriesID, "Story", storyID,
		"series_id = ? AND story_id = ?", &models.SeriesStory{}); err != nil {
		return nil, err
	}
	return series, nil
}
