package actions

import (
	"context"
	"errors"

	"github.com/bookworks/librarydb/internal/models"
	"github.com/bookworks/librarydb/internal/query"
	"github.com/bookworks/librarydb/internal/types"
	"gorm.io/gorm"
)

// VolumeActions exposes the action contract for Volume rows. Volumes own the
// connect/disconnect operations toward Story.
type VolumeActions struct {
	db *gorm.DB
}

func NewVolumeActions(db *gorm.DB) *VolumeActions {
	return &VolumeActions{db: db}
}

// VolumeData is the insert payload.
type VolumeData struct {
	Name       string
	Location   string
	Type       string
	Read       bool
	ISBN       *string
	GoogleID   *string
	GoogleData models.JSON
	Active     *bool
	Notes      *string
}

// VolumePatch is the partial update payload; nil fields are left untouched.
type VolumePatch struct {
	Name       *string
	Location   *string
	Type       *string
	Read       *bool
	ISBN       *string
	GoogleID   *string
	GoogleData *models.JSON
	Active     *bool
	Notes      *string
}

var volumeEdges = []string{"Library", "Authors", "Stories"}

// All returns the library's volumes, name ascending.
func (a *VolumeActions) All(ctx context.Context, libraryID uint64, opts query.ListOptions) ([]models.Volume, error) {
	var volumes []models.Volume
	tx := a.db.WithContext(ctx).
		Where("library_id = ?", libraryID).
		Scopes(query.ActiveFilter(opts), query.NameFilter("name", opts), query.Paginate(opts)).
		Order(query.NameOrder)
	tx = query.Preload(tx, opts, volumeEdges...)
	if err := tx.Find(&volumes).Error; err != nil {
		return nil, types.ServerError("volume.all", err)
	}
	return volumes, nil
}

// Find returns the volume with the given ID within the library.
func (a *VolumeActions) Find(ctx context.Context, libraryID, id uint64, opts query.ListOptions) (*models.Volume, error) {
	var volume models.Volume
	tx := query.Preload(a.db.WithContext(ctx), opts, volumeEdges...)
	err := tx.Where("library_id = ?", libraryID).First(&volume, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("id", "Missing Volume %d", id)
	}
	if err != nil {
		return nil, types.ServerError("volume.find", err)
	}
	return &volume, nil
}

// Exact returns the volume with the given name within the library.
func (a *VolumeActions) Exact(ctx context.Context, libraryID uint64, name string, opts query.ListOptions) (*models.Volume, error) {
	var volume models.Volume
	tx := query.Preload(a.db.WithContext(ctx), opts, volumeEdges...)
	err := tx.Where("library_id = ? AND name = ?", libraryID, name).First(&volume).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("name", "Missing Volume '%s'", name)
	}
	if err != nil {
		return nil, types.ServerError("volume.exact", err)
	}
	return &volume, nil
}

// Insert creates a volume under the library. Location and Type must come
// from the allowed enumerations.
func (a *VolumeActions) Insert(ctx context.Context, libraryID uint64, data VolumeData) (*models.Volume, error) {
	if _, err := findLibrary(ctx, a.db, libraryID); err != nil {
		return nil, err
	}
	if data.Name == "" {
		return nil, types.BadRequest("name", "Name is required")
	}
	if !models.ValidLocation(data.Location) {
		return nil, types.BadRequest("location", "Invalid Volume location '%s'", data.Location)
	}
	if !models.ValidType(data.Type) {
		return nil, types.BadRequest("type", "Invalid Volume type '%s'", data.Type)
	}
	ok, err := available(ctx, a.db, &models.Volume{}, 0, "library_id = ? AND name = ?", libraryID, data.Name)
	if err != nil {
		return nil, types.ServerError("volume.insert", err)
	}
	if !ok {
		return nil, types.NotUnique("name", "Volume name '%s' is already in use in this Library", data.Name)
	}

	volume := models.Volume{
		LibraryID:  libraryID,
		Name:       data.Name,
		Location:   data.Location,
		Type:       data.Type,
		Read:       data.Read,
		ISBN:       data.ISBN,
		GoogleID:   data.GoogleID,
		GoogleData: data.GoogleData,
		Active:     activeOrDefault(data.Active),
		Notes:      data.Notes,
	}
	err = a.db.WithContext(ctx).Create(&volume).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.NotUnique("name", "Volume name '%s' is already in use in this Library", data.Name)
	}
	if err != nil {
		return nil, types.ServerError("volume.insert", err)
	}
	return &volume, nil
}

// Update applies the patch. The owning library is never reassigned.
func (a *VolumeActions) Update(ctx context.Context, libraryID, id uint64, patch VolumePatch) (*models.Volume, error) {
	volume, err := findVolume(ctx, a.db, libraryID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil && *patch.Name != volume.Name {
		if *patch.Name == "" {
			return nil, types.BadRequest("name", "Name is required")
		}
		ok, err := available(ctx, a.db, &models.Volume{}, id, "library_id = ? AND name = ?", libraryID, *patch.Name)
		if err != nil {
			return nil, types.ServerError("volume.update", err)
		}
		if !ok {
			return nil, types.NotUnique("name", "Volume name '%s' is already in use in this Library", *patch.Name)
		}
		updates["name"] = *patch.Name
	}
	if patch.Location != nil && *patch.Location != volume.Location {
		if !models.ValidLocation(*patch.Location) {
			return nil, types.BadRequest("location", "Invalid Volume location '%s'", *patch.Location)
		}
		updates["location"] = *patch.Location
	}
	if patch.Type != nil && *patch.Type != volume.Type {
		if !models.ValidType(*patch.Type) {
			return nil, types.BadRequest("type", "Invalid Volume type '%s'", *patch.Type)
		}
		updates["type"] = *patch.Type
	}
	if patch.Read != nil {
		updates["read"] = *patch.Read
	}
	if patch.ISBN != nil {
		updates["isbn"] = *patch.ISBN
	}
	if patch.GoogleID != nil {
		updates["google_id"] = *patch.GoogleID
	}
	if patch.GoogleData != nil {
		updates["google_data"] = *patch.GoogleData
	}
	if patch.Active != nil {
		updates["active"] = *patch.Active
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if len(updates) == 0 {
		return volume, nil
	}

	err = a.db.WithContext(ctx).Model(&models.Volume{}).Where("id = ?", id).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.NotUnique("name", "Volume name '%s' is already in use in this Library", updates["name"])
	}
	if err != nil {
		return nil, types.ServerError("volume.update", err)
	}
	return findVolume(ctx, a.db, libraryID, id)
}

// Remove deletes the volume and its join rows, returning the pre-deletion
// snapshot.
func (a *VolumeActions) Remove(ctx context.Context, libraryID, id uint64) (*models.Volume, error) {
	volume, err := findVolume(ctx, a.db, libraryID, id)
	if err != nil {
		return nil, err
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("volume_id = ?", id).Delete(&models.AuthorVolume{}).Error; err != nil {
			return err
		}
		if err := tx.Where("volume_id = ?", id).Delete(&models.VolumeStory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Volume{}, id).Error
	})
	if err != nil {
		return nil, types.ServerError("volume.remove", err)
	}
	return volume, nil
}

// StoryConnect links the volume to a story in the same library.
func (a *VolumeActions) StoryConnect(ctx context.Context, libraryID, volumeID, storyID uint64) (*models.Volume, error) {
	volume, err := findVolume(ctx, a.db, libraryID, volumeID)
	if err != nil {
		return nil, err
	}
	if _, err := findStory(ctx, a.db, libraryID, storyID); err != nil {
		return nil, err
	}
	row := &models.VolumeStory{VolumeID: volumeID, StoryID: storyID}
	if err := connectRow(ctx, a.db, "volume.storyConnect", "Volume", volumeID, "Story", storyID,
		"volume_id = ? AND story_id = ?", &models.VolumeStory{}, row); err != nil {
		return nil, err
	}
	return volume, nil
}

// StoryDisconnect unlinks the volume from a story.
func (a *VolumeActions) StoryDisconnect(ctx context.Context, libraryID, volumeID, storyID uint64) (*models.Volume, error) {
	volume, err := findVolume(ctx, a.db, libraryID, volumeID)
	if err != nil {
		return nil, err
	}
	if _, err := findStory(ctx, a.db, libraryID, storyID); err != nil {
		return nil, err
	}
	if err := disconnectRow(ctx, a.db, "volume.storyDisconnect", "Volume", volumeID, "Story", storyID,
		"volume_id = ? AND story_id = ?", &models.VolumeStory{}); err != nil {
		return nil, err
	}
	return volume, nil
}
