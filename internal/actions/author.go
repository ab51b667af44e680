package actions

import (
	"context"
	"errors"

	"github.com/bookworks/librarydb/internal/models"
	"github.com/bookworks/librarydb/internal/query"
	"github.com/bookworks/librarydb/internal/types"
	"gorm.io/gorm"
)

// AuthorActions exposes the action contract for Author rows. Authors own the
// connect/disconnect operations toward Series, Story, and Volume.
type AuthorActions struct {
	db *gorm.DB
}

func NewAuthorActions(db *gorm.DB) *AuthorActions {
	return &AuthorActions{db: db}
}

// AuthorData is the insert payload.
type AuthorData struct {
	FirstName string
	LastName  string
	Active    *bool
	Notes     *string
}

// AuthorPatch is the partial update payload; nil fields are left untouched.
type AuthorPatch struct {
	FirstName *string
	LastName  *string
	Active    *bool
	Notes     *string
}

var authorEdges = []string{"Library", "Series", "Stories", "Volumes"}

// All returns the library's authors, last name then first name ascending.
func (a *AuthorActions) All(ctx context.Context, libraryID uint64, opts query.ListOptions) ([]models.Author, error) {
	var authors []models.Author
	tx := a.db.WithContext(ctx).
		Where("library_id = ?", libraryID).
		Scopes(query.ActiveFilter(opts), query.AuthorNameFilter(opts), query.Paginate(opts)).
		Order(query.AuthorOrder)
	tx = query.Preload(tx, opts, authorEdges...)
	if err := tx.Find(&authors).Error; err != nil {
		return nil, types.ServerError("author.all", err)
	}
	return authors, nil
}

// Find returns the author with the given ID within the library.
func (a *AuthorActions) Find(ctx context.Context, libraryID, id uint64, opts query.ListOptions) (*models.Author, error) {
	var author models.Author
	tx := query.Preload(a.db.WithContext(ctx), opts, authorEdges...)
	err := tx.Where("library_id = ?", libraryID).First(&author, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("id", "Missing Author %d", id)
	}
	if err != nil {
		return nil, types.ServerError("author.find", err)
	}
	return &author, nil
}

// Exact returns the author with the given name pair within the library.
func (a *AuthorActions) Exact(ctx context.Context, libraryID uint64, firstName, lastName string, opts query.ListOptions) (*models.Author, error) {
	var author models.Author
	tx := query.Preload(a.db.WithContext(ctx), opts, authorEdges...)
	err := tx.Where("library_id = ? AND first_name = ? AND last_name = ?", libraryID, firstName, lastName).
		First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("name", "Missing Author '%s %s'", firstName, lastName)
	}
	if err != nil {
		return nil, types.ServerError("author.exact", err)
	}
	return &author, nil
}

// Insert creates an author under the library. The owning library must exist
// and the name pair must be unused within it.
func (a *AuthorActions) Insert(ctx context.Context, libraryID uint64, data AuthorData) (*models.Author, error) {
	if _, err := findLibrary(ctx, a.db, libraryID); err != nil {
		return nil, err
	}
	if data.FirstName == "" {
		return nil, types.BadRequest("firstName", "First name is required")
	}
	if data.LastName == "" {
		return nil, types.BadRequest("lastName", "Last name is required")
	}
	ok, err := available(ctx, a.db, &models.Author{}, 0,
		"library_id = ? AND first_name = ? AND last_name = ?", libraryID, data.FirstName, data.LastName)
	if err != nil {
		return nil, types.ServerError("author.insert", err)
	}
	if !ok {
		return nil, types.NotUnique("name", "Author name '%s %s' is already in use in this Library", data.FirstName, data.LastName)
	}

	author := models.Author{
		LibraryID: libraryID,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Active:    activeOrDefault(data.Active),
		Notes:     data.Notes,
	}
	err = a.db.WithContext(ctx).Create(&author).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.NotUnique("name", "Author name '%s %s' is already in use in this Library", data.FirstName, data.LastName)
	}
	if err != nil {
		return nil, types.ServerError("author.insert", err)
	}
	return &author, nil
}

// Update applies the patch. The owning library is never reassigned.
func (a *AuthorActions) Update(ctx context.Context, libraryID, id uint64, patch AuthorPatch) (*models.Author, error) {
	author, err := findAuthor(ctx, a.db, libraryID, id)
	if err != nil {
		return nil, err
	}

	firstName, lastName := author.FirstName, author.LastName
	if patch.FirstName != nil {
		firstName = *patch.FirstName
	}
	if patch.LastName != nil {
		lastName = *patch.LastName
	}

	updates := map[string]interface{}{}
	if firstName != author.FirstName || lastName != author.LastName {
		if firstName == "" {
			return nil, types.BadRequest("firstName", "First name is required")
		}
		if lastName == "" {
			return nil, types.BadRequest("lastName", "Last name is required")
		}
		ok, err := available(ctx, a.db, &models.Author{}, id,
			"library_id = ? AND first_name = ? AND last_name = ?", libraryID, firstName, lastName)
		if err != nil {
			return nil, types.ServerError("author.update", err)
		}
		if !ok {
			return nil, types.NotUnique("name", "Author name '%s %s' is already in use in this Library", firstName, lastName)
		}
		updates["first_name"] = firstName
		updates["last_name"] = lastName
	}
	if patch.Active != nil {
		updates["active"] = *patch.Active
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if len(updates) == 0 {
		return author, nil
	}

	err = a.db.WithContext(ctx).Model(&models.Author{}).Where("id = ?", id).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.NotUnique("name", "Author name '%s %s' is already in use in this Library", firstName, lastName)
	}
	if err != nil {
		return nil, types.ServerError("author.update", err)
	}
	return findAuthor(ctx, a.db, libraryID, id)
}

// Remove deletes the author and its join rows, returning the pre-deletion
// snapshot.
func (a *AuthorActions) Remove(ctx context.Context, libraryID, id uint64) (*models.Author, error) {
	author, err := findAuthor(ctx, a.db, libraryID, id)
	if err != nil {
		return nil, err
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		joins := []interface{}{
			&models.AuthorSeries{}, &models.AuthorStory{}, &models.AuthorVolume{},
		}
		for _, join := range joins {
			if err := tx.Where("author_id = ?", id).Delete(join).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Author{}, id).Error
	})
	if err != nil {
		return nil, types.ServerError("author.remove", err)
	}
	return author, nil
}

// SeriesConnect links the author to a series in the same library.
func (a *AuthorActions) SeriesConnect(ctx context.Context, libraryID, authorID, seriesID uint64, principal bool) (*models.Author, error) {
	author, err := findAuthor(ctx, a.db, libraryID, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := findSeries(ctx, a.db, libraryID, seriesID); err != nil {
		return nil, err
	}
	row := &models.AuthorSeries{AuthorID: authorID, SeriesID: seriesID, Principal: principal}
	if err := connectRow(ctx, a.db, "author.seriesConnect", "Author", authorID, "Series", seriesID,
		"author_id = ? AND series_id = ?", &models.AuthorSeries{}, row); err != nil {
		return nil, err
	}
	return author, nil
}

// SeriesDisconnect unlinks the author from a series.
func (a *AuthorActions) SeriesDisconnect(ctx context.Context, libraryID, authorID, seriesID uint64) (*models.Author, error) {
	author, err := findAuthor(ctx, a.db, libraryID, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := findSeries(ctx, a.db, libraryID, seriesID); err != nil {
		return nil, err
	}
	if err := disconnectRow(ctx, a.db, "author.seriesDisconnect", "Author", authorID, "Series", seriesID,
		"author_id = ? AND series_id = ?", &models.AuthorSeries{}); err != nil {
		return nil, err
	}
	return author, nil
}

// StoryConnect links the author to a story in the same library.
func (a *AuthorActions) StoryConnect(ctx context.Context, libraryID, authorID, storyID uint64, principal bool) (*models.Author, error) {
	author, err := findAuthor(ctx, a.db, libraryID, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := findStory(ctx, a.db, libraryID, storyID); err != nil {
		return nil, err
	}
	row := &models.AuthorStory{AuthorID: authorID, StoryID: storyID, Principal: principal}
	if err := connectRow(ctx, a.db, "author.storyConnect", "Author", authorID, "Story", storyID,
		"author_id = ? AND story_id = ?", &models.AuthorStory{}, row); err != nil {
		return nil, err
	}
	return author, nil
}

// StoryDisconnect unlinks the author from a story.
func (a *AuthorActions) StoryDisconnect(ctx context.Context, libraryID, authorID, storyID uint64) (*models.Author, error) {
	author, err := findAuthor(ctx, a.db, libraryID, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := findStory(ctx, a.db, libraryID, storyID); err != nil {
		return nil, err
	}
	if err := disconnectRow(ctx, a.db, "author.storyDisconnect", "Author", authorID, "Story", storyID,
		"author_id = ? AND story_id = ?", &models.AuthorStory{}); err != nil {
		return nil, err
	}
	return author, nil
}

// VolumeConnect links the author to a volume in the same library.
func (a *AuthorActions) VolumeConnect(ctx context.Context, libraryID, authorID, volumeID uint64, principal bool) (*models.Author, error) {
	author, err := findAuthor(ctx, a.db, libraryID, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := findVolume(ctx, a.db, libraryID, volumeID); err != nil {
		return nil, err
	}
	row := &models.AuthorVolume{AuthorID: authorID, VolumeID: volumeID, Principal: principal}
	if err := connectRow(ctx, a.db, "author.volumeConnect", "Author", authorID, "Volume", volumeID,
		"author_id = ? AND volume_id = ?", &models.AuthorVolume{}, row); err != nil {
		return nil, err
	}
	return author, nil
}

// VolumeDisconnect unlinks the author from a volume.
func (a *AuthorActions) VolumeDisconnect(ctx context.Context, libraryID, authorID, volumeID uint64) (*models.Author, error) {
	author, err := findAuthor(ctx, a.db, libraryID, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := findVolume(ctx, a.db, libraryID, volumeID); err != nil {
		return nil, err
	}
	if err := disconnectRow(ctx, a.db, "author.volumeDisconnect", "Author", authorID, "Volume", volumeID,
		"author_id = ? AND volume_id = ?", &models.AuthorVolume{}); err != nil {
		return nil, err
	}
	return author, nil
}
