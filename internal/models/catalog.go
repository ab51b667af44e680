package models

import (
	"time"
)

// Volume.Location values.
const (
	LocationBox       = "Box"
	LocationComputer  = "Computer"
	LocationKindle    = "Kindle"
	LocationKobo      = "Kobo"
	LocationOther     = "Other"
	LocationReturned  = "Returned"
	LocationUnlimited = "Unlimited"
)

// Volume.Type values.
const (
	TypeSingle     = "Single"
	TypeSeries     = "Series"
	TypeCollection = "Collection"
	TypeAnthology  = "Anthology"
)

// Valid values for Volume.Location.
var ValidLocations = []string{
	LocationBox, LocationComputer, LocationKindle, LocationKobo,
	LocationOther, LocationReturned, LocationUnlimited,
}

// Valid values for Volume.Type.
var ValidTypes = []string{
	TypeSingle, TypeSeries, TypeCollection, TypeAnthology,
}

// ValidLocation reports whether v is an allowed Volume location.
func ValidLocation(v string) bool {
	for _, l := range ValidLocations {
		if l == v {
			return true
		}
	}
	return false
}

// ValidType reports whether v is an allowed Volume type.
func ValidType(v string) bool {
	for _, t := range ValidTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Library is the root of the catalog hierarchy. Name and Scope are globally
// unique; Scope must not contain whitespace.
type Library struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	Name      string  `gorm:"uniqueIndex;size:255;not null"`
	Scope     string  `gorm:"uniqueIndex;size:255;not null"`
	Active    bool    `gorm:"not null"`
	Notes     *string `gorm:"size:4096"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Authors []Author `gorm:"foreignKey:LibraryID;constraint:OnDelete:CASCADE"`
	Series  []Series `gorm:"foreignKey:LibraryID;constraint:OnDelete:CASCADE"`
	Stories []Story  `gorm:"foreignKey:LibraryID;constraint:OnDelete:CASCADE"`
	Volumes []Volume `gorm:"foreignKey:LibraryID;constraint:OnDelete:CASCADE"`
}

// Author belongs to exactly one Library; (first, last) name pairs are unique
// within that Library.
type Author struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	LibraryID uint64  `gorm:"not null;index:idx_authors_name,unique"`
	FirstName string  `gorm:"size:255;not null;index:idx_authors_name,unique"`
	LastName  string  `gorm:"size:255;not null;index:idx_authors_name,unique"`
	Active    bool    `gorm:"not null"`
	Notes     *string `gorm:"size:4096"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Library *Library `gorm:"foreignKey:LibraryID"`
	Series  []Series `gorm:"many2many:author_series"`
	Stories []Story  `gorm:"many2many:author_stories"`
	Volumes []Volume `gorm:"many2many:author_volumes"`
}

// Series groups Stories under a Library; names are unique per Library.
type Series struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	LibraryID uint64  `gorm:"not null;index:idx_series_name,unique"`
	Name      string  `gorm:"size:255;not null;index:idx_series_name,unique"`
	Copyright *string `gorm:"size:32"`
	Active    bool    `gorm:"not null"`
	Notes     *string `gorm:"size:4096"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Library *Library `gorm:"foreignKey:LibraryID"`
	Authors []Author `gorm:"many2many:author_series"`
	Stories []Story  `gorm:"many2many:series_stories"`
}

// Story is a single work; names are unique per Library.
type Story struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	LibraryID uint64  `gorm:"not null;index:idx_stories_name,unique"`
	Name      string  `gorm:"size:255;not null;index:idx_stories_name,unique"`
	Copyright *string `gorm:"size:32"`
	Active    bool    `gorm:"not null"`
	Notes     *string `gorm:"size:4096"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Library *Library `gorm:"foreignKey:LibraryID"`
	Authors []Author `gorm:"many2many:author_stories"`
	Series  []Series `gorm:"many2many:series_stories"`
	Volumes []Volume `gorm:"many2many:volume_stories"`
}

// Volume is a physical or digital holding; names are unique per Library and
// Location/Type are constrained to the enumerations above.
type Volume struct {
	ID         uint64  `gorm:"primaryKey;autoIncrement"`
	LibraryID  uint64  `gorm:"not null;index:idx_volumes_name,unique"`
	Name       string  `gorm:"size:255;not null;index:idx_volumes_name,unique"`
	Location   string  `gorm:"size:32;not null"`
	Type       string  `gorm:"size:32;not null"`
	Read       bool    `gorm:"not null"`
	ISBN       *string `gorm:"size:32"`
	GoogleID   *string `gorm:"size:64"`
	GoogleData JSON    `gorm:"type:json"`
	Active     bool    `gorm:"not null"`
	Notes      *string `gorm:"size:4096"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Library *Library `gorm:"foreignKey:LibraryID"`
	Authors []Author `gorm:"many2many:author_volumes"`
	Stories []Story  `gorm:"many2many:volume_stories"`
}

// TableName overrides the table name for Library
func (Library) TableName() string {
	return "libraries"
}

// TableName overrides the table name for Author
func (Author) TableName() string {
	return "authors"
}

// TableName overrides the table name for Series
func (Series) TableName() string {
	return "series"
}

// TableName overrides the table name for Story
func (Story) TableName() string {
	return "stories"
}

// TableName overrides the table name for Volume
func (Volume) TableName() string {
	return "volumes"
}
