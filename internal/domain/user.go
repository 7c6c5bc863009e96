package domain

import (
	"time"
)

type User struct {
	ID        string    `json:"id" gorm:"type:text;primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	PinHash   string    `json:"-" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}
