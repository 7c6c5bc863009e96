package domain

import (
	"time"

	"gorm.io/gorm"
)

// Resume is an uploaded resume file. FileData holds the base64-encoded content.
// Deleting a resume only stamps DeletedAt.
type Resume struct {
	ID        string         `json:"id" gorm:"type:text;primaryKey"`
	UserID    string         `json:"userId" gorm:"type:text;not null;index"`
	Name      string         `json:"name" gorm:"not null"`
	FileName  string         `json:"fileName" gorm:"not null"`
	FileData  string         `json:"fileData,omitempty" gorm:"not null"`
	FileType  string         `json:"fileType" gorm:"not null"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt" gorm:"index"`
}
