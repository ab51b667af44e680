package actions_test

import (
	"context"
	"testing"

	"github.com/bookworks/librarydb/internal/actions"
	"github.com/bookworks/librarydb/internal/models"
	"github.com/bookworks/librarydb/internal/query"
	"github.com/bookworks/librarydb/internal/types"
)

func TestLibraryInsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	libs := actions.NewLibraryActions(db)

	library, err := libs.Insert(ctx, actions.LibraryData{Name: "Main Library", Scope: "main"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if library.ID == 0 {
		t.Error("Expected a generated ID")
	}
	if !library.Active {
		t.Error("Expected active to default to true")
	}

	// Duplicate name is rejected before hitting the unique index.
	_, err = libs.Insert(ctx, actions.LibraryData{Name: "Main Library", Scope: "other"})
	if !types.IsNotUnique(err) {
		t.Fatalf("Expected NotUnique for duplicate name, got %v", err)
	}
	if err.Error() != "name: Library name 'Main Library' is already in use" {
		t.Errorf("Unexpected error message: %q", err.Error())
	}

	// Duplicate scope is rejected too.
	_, err = libs.Insert(ctx, actions.LibraryData{Name: "Branch Library", Scope: "main"})
	if !types.IsNotUnique(err) {
		t.Fatalf("Expected NotUnique for duplicate scope, got %v", err)
	}
}

func TestLibraryInsertValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	libs := actions.NewLibraryActions(db)

	_, err := libs.Insert(ctx, actions.LibraryData{Scope: "main"})
	if !types.IsBadRequest(err) {
		t.Errorf("Expected BadRequest for missing name, got %v", err)
	}
	_, err = libs.Insert(ctx, actions.LibraryData{Name: "Main Library"})
	if !types.IsBadRequest(err) {
		t.Errorf("Expected BadRequest for missing scope, got %v", err)
	}
	_, err = libs.Insert(ctx, actions.LibraryData{Name: "Main Library", Scope: "has space"})
	if !types.IsBadRequest(err) {
		t.Errorf("Expected BadRequest for whitespace in scope, got %v", err)
	}
	if err.Error() != "scope: Scope 'has space' must not contain whitespace" {
		t.Errorf("Unexpected error message: %q", err.Error())
	}
}

func TestLibraryFindAndExact(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	libs := actions.NewLibraryActions(db)
	seeded := seedLibrary(t, db, "Main Library", "main")

	found, err := libs.Find(ctx, seeded.ID, query.ListOptions{})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found.Name != "Main Library" {
		t.Errorf("Expected name 'Main Library', got %q", found.Name)
	}

	_, err = libs.Find(ctx, 9999, query.ListOptions{})
	if !types.IsNotFound(err) {
		t.Fatalf("Expected NotFound, got %v", err)
	}
	if err.Error() != "id: Missing Library 9999" {
		t.Errorf("Unexpected error message: %q", err.Error())
	}

	exact, err := libs.Exact(ctx, "Main Library", query.ListOptions{})
	if err != nil {
		t.Fatalf("Exact failed: %v", err)
	}
	if exact.ID != seeded.ID {
		t.Errorf("Exact returned wrong row: %d", exact.ID)
	}

	_, err = libs.Exact(ctx, "No Such Library", query.ListOptions{})
	if !types.IsNotFound(err) {
		t.Errorf("Expected NotFound for unknown name, got %v", err)
	}
}

func TestLibraryUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	libs := actions.NewLibraryActions(db)
	seeded := seedLibrary(t, db, "Main Library", "main")
	seedLibrary(t, db, "Branch Library", "branch")

	updated, err := libs.Update(ctx, seeded.ID, actions.LibraryPatch{
		Name:  strPtr("Central Library"),
		Notes: strPtr("renamed"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Central Library" {
		t.Errorf("Expected renamed row, got %q", updated.Name)
	}
	if updated.Scope != "main" {
		t.Errorf("Untouched scope changed: %q", updated.Scope)
	}
	if updated.Notes == nil || *updated.Notes != "renamed" {
		t.Error("Expected notes to be set")
	}

	// Taking another row's name collides.
	_, err = libs.Update(ctx, seeded.ID, actions.LibraryPatch{Name: strPtr("Branch Library")})
	if !types.IsNotUnique(err) {
		t.Errorf("Expected NotUnique, got %v", err)
	}

	// Re-submitting the row's own name is not a collision.
	same, err := libs.Update(ctx, seeded.ID, actions.LibraryPatch{Name: strPtr("Central Library")})
	if err != nil {
		t.Fatalf("Update with own name failed: %v", err)
	}
	if same.Name != "Central Library" {
		t.Errorf("Row changed unexpectedly: %q", same.Name)
	}

	// An empty patch is a no-op returning the current row.
	unchanged, err := libs.Update(ctx, seeded.ID, actions.LibraryPatch{})
	if err != nil {
		t.Fatalf("Empty patch failed: %v", err)
	}
	if unchanged.Name != "Central Library" || unchanged.Scope != "main" {
		t.Error("Empty patch altered the row")
	}

	_, err = libs.Update(ctx, 9999, actions.LibraryPatch{Name: strPtr("x")})
	if !types.IsNotFound(err) {
		t.Errorf("Expected NotFound for missing row, got %v", err)
	}
}

func TestLibraryRemove(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	library := seedLibrary(t, db, "Main Library", "main")
	libs := actions.NewLibraryActions(db)

	// Populate the library so removal has children and join rows to clear.
	author, err := actions.NewAuthorActions(db).Insert(ctx, library.ID, actions.AuthorData{
		FirstName: "Ursula", LastName: "Le Guin",
	})
	if err != nil {
		t.Fatalf("Author insert failed: %v", err)
	}
	series, err := actions.NewSeriesActions(db).Insert(ctx, library.ID, actions.SeriesData{Name: "Earthsea"})
	if err != nil {
		t.Fatalf("Series insert failed: %v", err)
	}
	if _, err := actions.NewAuthorActions(db).SeriesConnect(ctx, library.ID, author.ID, series.ID, true); err != nil {
		t.Fatalf("SeriesConnect failed: %v", err)
	}

	snapshot, err := libs.Remove(ctx, library.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if snapshot.ID != library.ID || snapshot.Name != "Main Library" {
		t.Error("Expected the pre-deletion snapshot back")
	}

	// A second remove finds nothing.
	_, err = libs.Remove(ctx, library.ID)
	if !types.IsNotFound(err) {
		t.Fatalf("Expected NotFound on second remove, got %v", err)
	}

	// Children and join rows are gone with the library.
	var authors, joins int64
	db.Model(&models.Author{}).Where("library_id = ?", library.ID).Count(&authors)
	db.Model(&models.AuthorSeries{}).Where("author_id = ?", author.ID).Count(&joins)
	if authors != 0 || joins != 0 {
		t.Errorf("Expected cascade to clear rows, got %d authors and %d joins", authors, joins)
	}
}

func TestLibraryAll(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	libs := actions.NewLibraryActions(db)

	names := []string{"Charlie", "Alpha", "Bravo", "Delta", "Echo"}
	for i, name := range names {
		data := actions.LibraryData{Name: name, Scope: "scope-" + name}
		if i == 3 {
			data.Active = boolPtr(false)
		}
		if _, err := libs.Insert(ctx, data); err != nil {
			t.Fatalf("Insert %q failed: %v", name, err)
		}
	}

	all, err := libs.All(ctx, query.ListOptions{})
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("Expected 5 libraries, got %d", len(all))
	}
	for i, want := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"} {
		if all[i].Name != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, all[i].Name)
		}
	}

	active, err := libs.All(ctx, query.ListOptions{Active: boolPtr(true)})
	if err != nil {
		t.Fatalf("All active failed: %v", err)
	}
	if len(active) != 4 {
		t.Errorf("Expected 4 active libraries, got %d", len(active))
	}

	// Offset/limit pages are consistent with the full ordering.
	page, err := libs.All(ctx, query.ListOptions{Offset: intPtr(1), Limit: intPtr(2)})
	if err != nil {
		t.Fatalf("All page failed: %v", err)
	}
	if len(page) != 2 || page[0].Name != "Bravo" || page[1].Name != "Charlie" {
		t.Errorf("Unexpected page contents: %+v", page)
	}

	filtered, err := libs.All(ctx, query.ListOptions{Name: "lph"})
	if err != nil {
		t.Fatalf("All filtered failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Alpha" {
		t.Errorf("Expected substring match on Alpha, got %+v", filtered)
	}
}
