package model

import "time"

// Record types for memory content.
const (
	RecordTypeAudio    = "audio"
	RecordTypeText     = "text"
	RecordTypePhoto    = "photo"
	RecordTypeDocument = "document"
)

// Memory is a single user-authored remembrance. A non-nil QuestionID marks that
// question as answered for the owner; the flag is always derived from this row,
// never stored separately.
type Memory struct {
	ID              uint  `gorm:"primaryKey"`
	UserID          uint  `gorm:"index"`
	CategoryID      uint  `gorm:"index"`
	QuestionID      *uint `gorm:"index"`
	Title           string
	Summary         string
	Themes          []string `gorm:"serializer:json"`
	PeopleMentioned []string `gorm:"serializer:json"`
	PeriodMentioned *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Records         []MemoryRecord `gorm:"foreignKey:MemoryID;constraint:OnDelete:CASCADE"`
}

// MemoryRecord is one piece of content inside a memory. Records are append-only
// and are deleted only together with the parent memory.
type MemoryRecord struct {
	ID        uint   `gorm:"primaryKey"`
	MemoryID  uint   `gorm:"index;not null"`
	Type      string `gorm:"not null"` // audio, text, photo, document
	Content   *string
	FileURL   *string
	FileName  *string
	CreatedAt time.Time
}
