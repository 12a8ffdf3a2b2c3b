package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseStatusDraft           CourseStatus = "DRAFT"
	CourseStatusPublished       CourseStatus = "PUBLISHED"
	CourseStatusPendingDeletion CourseStatus = "PENDING_DELETION"
)

type Course struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title         string         `gorm:"column:title;not null" json:"title"`
	Slug          string         `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Subtitle      string         `gorm:"column:subtitle" json:"subtitle"`
	Description   string         `gorm:"column:description" json:"description"`
	Level         string         `gorm:"column:level" json:"level"`
	Language      string         `gorm:"column:language" json:"language"`
	Status        CourseStatus   `gorm:"column:status;not null;index" json:"status"`
	ThumbnailURL  *string        `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
	PromoVideoURL *string        `gorm:"column:promo_video_url" json:"promo_video_url,omitempty"`
	Metadata      datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }
