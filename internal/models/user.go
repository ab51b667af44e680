package models

import (
	"time"
)

// User is a globally scoped principal. Password holds a one-way hash and is
// redacted to the empty string on every read path.
type User struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	Username  string  `gorm:"uniqueIndex;size:255;not null"`
	Password  string  `gorm:"size:255;not null"`
	Scope     string  `gorm:"size:255;not null"`
	Active    bool    `gorm:"not null"`
	Notes     *string `gorm:"size:4096"`
	CreatedAt time.Time
	UpdatedAt time.Time

	AccessTokens  []AccessToken  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// AccessToken is an opaque bearer token owned by a User.
type AccessToken struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"not null;index"`
	Token     string    `gorm:"uniqueIndex;size:255;not null"`
	Expires   time.Time `gorm:"not null"`
	Scope     string    `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefreshToken is the long-lived companion to an AccessToken.
type RefreshToken struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	UserID      uint64    `gorm:"not null;index"`
	Token       string    `gorm:"uniqueIndex;size:255;not null"`
	AccessToken string    `gorm:"size:255;not null"`
	Expires     time.Time `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for AccessToken
func (AccessToken) TableName() string {
	return "access_tokens"
}

// TableName overrides the table name for RefreshToken
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
