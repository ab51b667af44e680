package actions_test

import (
	"context"
	"testing"
	"time"

	"github.com/bookworks/librarydb/internal/actions"
	"github.com/bookworks/librarydb/internal/credentials"
	"github.com/bookworks/librarydb/internal/models"
	"github.com/bookworks/librarydb/internal/query"
	"github.com/bookworks/librarydb/internal/types"
)

func seedUser(t *testing.T, users *actions.UserActions, username, password string) *models.User {
	t.Helper()
	user, err := users.Insert(context.Background(), actions.UserData{
		Username: username, Password: password, Scope: "user",
	})
	if err != nil {
		t.Fatalf("Failed to seed user %q: %v", username, err)
	}
	return user
}

func TestUserInsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := actions.NewUserActions(db)

	user := seedUser(t, users, "alice", "s3cret")
	if user.Password != "" {
		t.Error("Password leaked on insert return")
	}

	// The stored value is a hash, never the plaintext.
	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("Failed to read stored row: %v", err)
	}
	if stored.Password == "" || stored.Password == "s3cret" {
		t.Error("Expected a bcrypt hash in storage")
	}

	_, err := users.Insert(ctx, actions.UserData{Username: "alice", Password: "x", Scope: "user"})
	if !types.IsNotUnique(err) {
		t.Fatalf("Expected NotUnique for duplicate username, got %v", err)
	}
	if err.Error() != "username: User username 'alice' is already in use" {
		t.Errorf("Unexpected error message: %q", err.Error())
	}

	_, err = users.Insert(ctx, actions.UserData{Username: "bob", Scope: "user"})
	if !types.IsBadRequest(err) {
		t.Errorf("Expected BadRequest for missing password, got %v", err)
	}
}

func TestUserRedaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := actions.NewUserActions(db)
	user := seedUser(t, users, "alice", "s3cret")
	seedUser(t, users, "bob", "hunter2")

	found, err := users.Find(ctx, user.ID)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found.Password != "" {
		t.Error("Password leaked from Find")
	}

	exact, err := users.Exact(ctx, "alice")
	if err != nil {
		t.Fatalf("Exact failed: %v", err)
	}
	if exact.Password != "" {
		t.Error("Password leaked from Exact")
	}

	all, err := users.All(ctx, query.ListOptions{})
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(all))
	}
	// username ordering.
	if all[0].Username != "alice" || all[1].Username != "bob" {
		t.Errorf("Unexpected ordering: %q %q", all[0].Username, all[1].Username)
	}
	for _, u := range all {
		if u.Password != "" {
			t.Errorf("Password leaked from All for %q", u.Username)
		}
	}
}

func TestUserAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := actions.NewUserActions(db)
	seedUser(t, users, "alice", "s3cret")

	user, err := users.Authenticate(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.Password != "" {
		t.Error("Password leaked from Authenticate")
	}

	// Bad password and unknown username report identically.
	_, badPass := users.Authenticate(ctx, "alice", "wrong")
	_, badUser := users.Authenticate(ctx, "nobody", "s3cret")
	if !types.IsNotFound(badPass) || !types.IsNotFound(badUser) {
		t.Fatalf("Expected NotFound for both failures, got %v / %v", badPass, badUser)
	}
	if badPass.Error() != "username: Missing User 'alice'" {
		t.Errorf("Unexpected error message: %q", badPass.Error())
	}
}

func TestUserUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := actions.NewUserActions(db)
	user := seedUser(t, users, "alice", "s3cret")
	seedUser(t, users, "bob", "hunter2")

	// An empty patch is a no-op returning the redacted row.
	unchanged, err := users.Update(ctx, user.ID, actions.UserPatch{})
	if err != nil {
		t.Fatalf("Empty patch failed: %v", err)
	}
	if unchanged.Username != "alice" || unchanged.Password != "" {
		t.Error("Empty patch altered or leaked the row")
	}

	// Updating other fields leaves the stored hash alone.
	if _, err := users.Update(ctx, user.ID, actions.UserPatch{Notes: strPtr("admin contact")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := users.Authenticate(ctx, "alice", "s3cret"); err != nil {
		t.Errorf("Original password stopped working after unrelated update: %v", err)
	}

	// An explicit empty password string also preserves the hash.
	if _, err := users.Update(ctx, user.ID, actions.UserPatch{Password: strPtr("")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := users.Authenticate(ctx, "alice", "s3cret"); err != nil {
		t.Errorf("Original password stopped working after empty-password patch: %v", err)
	}

	// A real password change rotates the hash.
	if _, err := users.Update(ctx, user.ID, actions.UserPatch{Password: strPtr("n3w-s3cret")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := users.Authenticate(ctx, "alice", "n3w-s3cret"); err != nil {
		t.Errorf("New password rejected: %v", err)
	}
	if _, err := users.Authenticate(ctx, "alice", "s3cret"); !types.IsNotFound(err) {
		t.Errorf("Old password still accepted: %v", err)
	}

	_, err = users.Update(ctx, user.ID, actions.UserPatch{Username: strPtr("bob")})
	if !types.IsNotUnique(err) {
		t.Errorf("Expected NotUnique for taken username, got %v", err)
	}
}

func TestUserRemoveClearsTokens(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := actions.NewUserActions(db)
	user := seedUser(t, users, "alice", "s3cret")

	expires := time.Now().Add(time.Hour)
	tokens := []interface{}{
		&models.AccessToken{UserID: user.ID, Token: credentials.NewToken(), Expires: expires},
		&models.RefreshToken{UserID: user.ID, Token: credentials.NewToken(), Expires: expires.Add(24 * time.Hour)},
	}
	for _, token := range tokens {
		if err := db.Create(token).Error; err != nil {
			t.Fatalf("Failed to create token: %v", err)
		}
	}

	snapshot, err := users.Remove(ctx, user.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if snapshot.Username != "alice" || snapshot.Password != "" {
		t.Error("Expected a redacted pre-deletion snapshot")
	}

	var access, refresh int64
	db.Model(&models.AccessToken{}).Where("user_id = ?", user.ID).Count(&access)
	db.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Count(&refresh)
	if access != 0 || refresh != 0 {
		t.Errorf("Expected tokens cleared, found %d access and %d refresh", access, refresh)
	}

	_, err = users.Remove(ctx, user.ID)
	if !types.IsNotFound(err) {
		t.Errorf("Expected NotFound on second remove, got %v", err)
	}
}
