package actions

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/bookworks/librarydb/internal/models"
	"github.com/bookworks/librarydb/internal/query"
	"github.com/bookworks/librarydb/internal/types"
	"gorm.io/gorm"
)

// LibraryActions exposes the action contract for Library rows.
type LibraryActions struct {
	db *gorm.DB
}

func NewLibraryActions(db *gorm.DB) *LibraryActions {
	return &LibraryActions{db: db}
}

// LibraryData is the insert payload.
type LibraryData struct {
	Name   string
	Scope  string
	Active *bool
	Notes  *string
}

// LibraryPatch is the partial update payload; nil fields are left untouched.
type LibraryPatch struct {
	Name   *string
	Scope  *string
	Active *bool
	Notes  *string
}

var libraryEdges = []string{"Authors", "Series", "Stories", "Volumes"}

// All returns libraries matching the options, name ascending.
func (a *LibraryActions) All(ctx context.Context, opts query.ListOptions) ([]models.Library, error) {
	var libraries []models.Library
	tx := a.db.WithContext(ctx).
		Scopes(query.ActiveFilter(opts), query.NameFilter("name", opts), query.Paginate(opts)).
		Order(query.NameOrder)
	tx = query.Preload(tx, opts, libraryEdges...)
	if err := tx.Find(&libraries).Error; err != nil {
		return nil, types.ServerError("library.all", err)
	}
	return libraries, nil
}

// Find returns the library with the given ID.
func (a *LibraryActions) Find(ctx context.Context, id uint64, opts query.ListOptions) (*models.Library, error) {
	var library models.Library
	tx := query.Preload(a.db.WithContext(ctx), opts, libraryEdges...)
	err := tx.First(&library, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("id", "Missing Library %d", id)
	}
	if err != nil {
		return nil, types.ServerError("library.find", err)
	}
	return &library, nil
}

// Exact returns the library with the given name.
func (a *LibraryActions) Exact(ctx context.Context, name string, opts query.ListOptions) (*models.Library, error) {
	var library models.Library
	tx := query.Preload(a.db.WithContext(ctx), opts, libraryEdges...)
	err := tx.Where("name = ?", name).First(&library).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("name", "Missing Library '%s'", name)
	}
	if err != nil {
		return nil, types.ServerError("library.exact", err)
	}
	return &library, nil
}

// Insert creates a library after validating the scope format and checking
// global name/scope uniqueness.
func (a *LibraryActions) Insert(ctx context.Context, data LibraryData) (*models.Library, error) {
	if data.Name == "" {
		return nil, types.BadRequest("name", "Name is required")
	}
	if err := validateLibraryScope(data.Scope); err != nil {
		return nil, err
	}
	ok, err := available(ctx, a.db, &models.Library{}, 0, "name = ?", data.Name)
	if err != nil {
		return nil, types.ServerError("library.insert", err)
	}
	if !ok {
		return nil, types.NotUnique("name", "Library name '%s' is already in use", data.Name)
	}
	ok, err = available(ctx, a.db, &models.Library{}, 0, "scope = ?", data.Scope)
	if err != nil {
		return nil, types.ServerError("library.insert", err)
	}
	if !ok {
		return nil, types.NotUnique("scope", "Library scope '%s' is already in use", data.Scope)
	}

	library := models.Library{
		Name:   data.Name,
		Scope:  data.Scope,
		Active: activeOrDefault(data.Active),
		Notes:  data.Notes,
	}
	err = a.db.WithContext(ctx).Create(&library).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.NotUnique("name", "Library name '%s' is already in use", data.Name)
	}
	if err != nil {
		return nil, types.ServerError("library.insert", err)
	}
	return &library, nil
}

// Update applies the patch. Only changed fields are validated and
// uniqueness-checked; an empty patch succeeds and returns the row unchanged.
func (a *LibraryActions) Update(ctx context.Context, id uint64, patch LibraryPatch) (*models.Library, error) {
	library, err := findLibrary(ctx, a.db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil && *patch.Name != library.Name {
		if *patch.Name == "" {
			return nil, types.BadRequest("name", "Name is required")
		}
		ok, err := available(ctx, a.db, &models.Library{}, id, "name = ?", *patch.Name)
		if err != nil {
			return nil, types.ServerError("library.update", err)
		}
		if !ok {
			return nil, types.NotUnique("name", "Library name '%s' is already in use", *patch.Name)
		}
		updates["name"] = *patch.Name
	}
	if patch.Scope != nil && *patch.Scope != library.Scope {
		if err := validateLibraryScope(*patch.Scope); err != nil {
			return nil, err
		}
		ok, err := available(ctx, a.db, &models.Library{}, id, "scope = ?", *patch.Scope)
		if err != nil {
			return nil, types.ServerError("library.update", err)
		}
		if !ok {
			return nil, types.NotUnique("scope", "Library scope '%s' is already in use", *patch.Scope)
		}
		updates["scope"] = *patch.Scope
	}
	if patch.Active != nil {
		updates["active"] = *patch.Active
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if len(updates) == 0 {
		return library, nil
	}

	err = a.db.WithContext(ctx).Model(&models.Library{}).Where("id = ?", id).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if name, ok := updates["name"]; ok {
			return nil, types.NotUnique("name", "Library name '%s' is already in use", name)
		}
		return nil, types.NotUnique("scope", "Library scope '%s' is already in use", updates["scope"])
	}
	if err != nil {
		return nil, types.ServerError("library.update", err)
	}
	return findLibrary(ctx, a.db, id)
}

// Remove deletes the library and everything it owns, returning the
// pre-deletion snapshot. Join rows go first, then children, then the row.
func (a *LibraryActions) Remove(ctx context.Context, id uint64) (*models.Library, error) {
	library, err := findLibrary(ctx, a.db, id)
	if err != nil {
		return nil, err
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cleanups := []string{
			`DELETE FROM author_series WHERE author_id IN (SELECT id FROM authors WHERE library_id = ?)`,
			`DELETE FROM author_stories WHERE author_id IN (SELECT id FROM authors WHERE library_id = ?)`,
			`DELETE FROM author_volumes WHERE author_id IN (SELECT id FROM authors WHERE library_id = ?)`,
			`DELETE FROM series_stories WHERE series_id IN (SELECT id FROM series WHERE library_id = ?)`,
			`DELETE FROM volume_stories WHERE volume_id IN (SELECT id FROM volumes WHERE library_id = ?)`,
		}
		for _, stmt := range cleanups {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		children := []interface{}{
			&models.Author{}, &models.Series{}, &models.Story{}, &models.Volume{},
		}
		for _, child := range children {
			if err := tx.Where("library_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Library{}, id).Error
	})
	if err != nil {
		return nil, types.ServerError("library.remove", err)
	}
	return library, nil
}

func validateLibraryScope(scope string) error {
	if scope == "" {
		return types.BadRequest("scope", "Scope is required")
	}
	if strings.IndexFunc(scope, unicode.IsSpace) >= 0 {
		return types.BadRequest("scope", "Scope '%s' must not contain whitespace", scope)
	}
	return nil
}
