package actions

import (
	"context"
	"errors"

	"github.com/bookworks/librarydb/internal/credentials"
	"github.com/bookworks/librarydb/internal/models"
	"github.com/bookworks/librarydb/internal/query"
	"github.com/bookworks/librarydb/internal/types"
	"gorm.io/gorm"
)

// UserActions exposes the action contract for User rows. Users are global
// (no library scope) and their password is write-only: it is hashed before
// persisting and redacted to the empty string on every return path.
type UserActions struct {
	db *gorm.DB
}

func NewUserActions(db *gorm.DB) *UserActions {
	return &UserActions{db: db}
}

// UserData is the insert payload. Password is plaintext on the way in only.
type UserData struct {
	Username string
	Password string
	Scope    string
	Active   *bool
	Notes    *string
}

// UserPatch is the partial update payload; nil fields are left untouched.
// A nil or empty Password preserves the stored hash unchanged.
type UserPatch struct {
	Username *string
	Password *string
	Scope    *string
	Active   *bool
	Notes    *string
}

// All returns users matching the options, username ascending.
func (a *UserActions) All(ctx context.Context, opts query.ListOptions) ([]models.User, error) {
	var users []models.User
	err := a.db.WithContext(ctx).
		Scopes(query.ActiveFilter(opts), query.NameFilter("username", opts), query.Paginate(opts)).
		Order(query.UserOrder).
		Find(&users).Error
	if err != nil {
		return nil, types.ServerError("user.all", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// Find returns the user with the given ID. Users have no eager-loadable
// edges, so no option bag applies here.
func (a *UserActions) Find(ctx context.Context, id uint64) (*models.User, error) {
	user, err := findUser(ctx, a.db, id)
	if err != nil {
		return nil, err
	}
	return redact(user), nil
}

// Exact returns the user with the given username.
func (a *UserActions) Exact(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("username", "Missing User '%s'", username)
	}
	if err != nil {
		return nil, types.ServerError("user.exact", err)
	}
	return redact(&user), nil
}

// Authenticate verifies a candidate password against the stored hash and
// returns the redacted user on success. Failures are reported as NotFound
// without distinguishing a bad username from a bad password.
func (a *UserActions) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("username", "Missing User '%s'", username)
	}
	if err != nil {
		return nil, types.ServerError("user.authenticate", err)
	}
	if !credentials.VerifyPassword(password, user.Password) {
		return nil, types.NotFound("username", "Missing User '%s'", username)
	}
	return redact(&user), nil
}

// Insert creates a user with a globally unique username, hashing the
// password before it is persisted.
func (a *UserActions) Insert(ctx context.Context, data UserData) (*models.User, error) {
	if data.Username == "" {
		return nil, types.BadRequest("username", "Username is required")
	}
	if data.Password == "" {
		return nil, types.BadRequest("password", "Password is required")
	}
	if data.Scope == "" {
		return nil, types.BadRequest("scope", "Scope is required")
	}
	ok, err := available(ctx, a.db, &models.User{}, 0, "username = ?", data.Username)
	if err != nil {
		return nil, types.ServerError("user.insert", err)
	}
	if !ok {
		return nil, types.NotUnique("username", "User username '%s' is already in use", data.Username)
	}

	hash, err := credentials.HashPassword(data.Password)
	if err != nil {
		return nil, types.ServerError("user.insert", err)
	}
	user := models.User{
		Username: data.Username,
		Password: hash,
		Scope:    data.Scope,
		Active:   activeOrDefault(data.Active),
		Notes:    data.Notes,
	}
	err = a.db.WithContext(ctx).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.NotUnique("username", "User username '%s' is already in use", data.Username)
	}
	if err != nil {
		return nil, types.ServerError("user.insert", err)
	}
	return redact(&user), nil
}

// Update applies the patch. An absent password leaves the stored hash
// untouched; an empty patch succeeds and returns the row unchanged.
func (a *UserActions) Update(ctx context.Context, id uint64, patch UserPatch) (*models.User, error) {
	user, err := findUser(ctx, a.db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Username != nil && *patch.Username != user.Username {
		if *patch.Username == "" {
			return nil, types.BadRequest("username", "Username is required")
		}
		ok, err := available(ctx, a.db, &models.User{}, id, "username = ?", *patch.Username)
		if err != nil {
			return nil, types.ServerError("user.update", err)
		}
		if !ok {
			return nil, types.NotUnique("username", "User username '%s' is already in use", *patch.Username)
		}
		updates["username"] = *patch.Username
	}
	if patch.Password != nil && *patch.Password != "" {
		hash, err := credentials.HashPassword(*patch.Password)
		if err != nil {
			return nil, types.ServerError("user.update", err)
		}
		updates["password"] = hash
	}
	if patch.Scope != nil {
		if *patch.Scope == "" {
			return nil, types.BadRequest("scope", "Scope is required")
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
		return redact(user), nil
	}

	err = a.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.NotUnique("username", "User username '%s' is already in use", updates["username"])
	}
	if err != nil {
		return nil, types.ServerError("user.update", err)
	}
	updated, err := findUser(ctx, a.db, id)
	if err != nil {
		return nil, err
	}
	return redact(updated), nil
}

// Remove deletes the user and its token rows, returning the redacted
// pre-deletion snapshot.
func (a *UserActions) Remove(ctx context.Context, id uint64) (*models.User, error) {
	user, err := findUser(ctx, a.db, id)
	if err != nil {
		return nil, err
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.AccessToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return nil, types.ServerError("user.remove", err)
	}
	return redact(user), nil
}

func redact(user *models.User) *models.User {
	user.Password = ""
	return user
}
