package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Lecture struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SectionID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"section_id"`
	Section              *Section       `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"section,omitempty"`
	Title                string         `gorm:"column:title;not null" json:"title"`
	Description          string         `gorm:"column:description" json:"description"`
	IsPreviewable        bool           `gorm:"column:is_previewable;not null;default:false" json:"is_previewable"`
	VideoURL             *string        `gorm:"column:video_url" json:"video_url,omitempty"`
	VideoDurationSeconds *float64       `gorm:"column:video_duration_seconds" json:"video_duration_seconds,omitempty"`
	OrderIndex           int            `gorm:"column:order_index;not null" json:"order_index"`
	CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Lecture) TableName() string { return "lecture" }
