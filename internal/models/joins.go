package models

// AuthorSeries links an Author to a Series. Principal marks the primary
// credited author.
type AuthorSeries struct {
	AuthorID  uint64 `gorm:"primaryKey;autoIncrement:false"`
	SeriesID  uint64 `gorm:"primaryKey;autoIncrement:false"`
	Principal bool   `gorm:"not null"`
}

// AuthorStory links an Author to a Story.
type AuthorStory struct {
	AuthorID  uint64 `gorm:"primaryKey;autoIncrement:false"`
	StoryID   uint64 `gorm:"primaryKey;autoIncrement:false"`
	Principal bool   `gorm:"not null"`
}

// AuthorVolume links an Author to a Volume.
type AuthorVolume struct {
	AuthorID  uint64 `gorm:"primaryKey;autoIncrement:false"`
	VolumeID  uint64 `gorm:"primaryKey;autoIncrement:false"`
	Principal bool   `gorm:"not null"`
}

// SeriesStory links a Series to a Story. Ordinal records the Story's
// position within the Series when known.
type SeriesStory struct {
	SeriesID uint64 `gorm:"primaryKey;autoIncrement:false"`
	StoryID  uint64 `gorm:"primaryKey;autoIncrement:false"`
	Ordinal  *int
}

// VolumeStory links a Volume to a Story. No payload.
type VolumeStory struct {
	VolumeID uint64 `gorm:"primaryKey;autoIncrement:false"`
	StoryID  uint64 `gorm:"primaryKey;autoIncrement:false"`
}

// TableName overrides the table name for AuthorSeries
func (AuthorSeries) TableName() string {
	return "author_series"
}

// TableName overrides the table name for AuthorStory
func (AuthorStory) TableName() string {
	return "author_stories"
}

// TableName overrides the table name for AuthorVolume
func (AuthorVolume) TableName() string {
	return "author_volumes"
}

// TableName overrides the table name for SeriesStory
func (SeriesStory) TableName() string {
	return "series_stories"
}

// TableName overrides the table name for VolumeStory
func (VolumeStory) TableName() string {
	return "volume_stories"
}
