package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ApplicationStatus string

// Well-known lifecycle labels. The set is open: any non-empty label is stored as-is.
const (
	ApplicationStatusWishlist     ApplicationStatus = "wishlist"
	ApplicationStatusApplied      ApplicationStatus = "applied"
	ApplicationStatusInterviewing ApplicationStatus = "interviewing"
	ApplicationStatusOffer        ApplicationStatus = "offer"
	ApplicationStatusRejected     ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn    ApplicationStatus = "withdrawn"
)

// DateLayout is the format of AppliedDate and Deadline.
const DateLayout = "2006-01-02"

type Application struct {
	ID          string                      `json:"id" gorm:"type:text;primaryKey"`
	UserID      string                      `json:"userId" gorm:"type:text;not null;index"`
	Company     string                      `json:"company" gorm:"not null"`
	Position    string                      `json:"position" gorm:"not null"`
	Location    *string                     `json:"location"`
	Status      ApplicationStatus           `json:"status" gorm:"not null;default:'wishlist'"`
	AppliedDate *string                     `json:"appliedDate"`
	URL         *string                     `json:"url" gorm:"column:url"`
	Notes       *string                     `json:"notes"`
	ResumeURL   *string                     `json:"resumeUrl" gorm:"column:resume_url"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
	Deadline    *string                     `json:"deadline"`
	Tags        datatypes.JSONSlice[string] `json:"tags" gorm:"type:text"`
}
