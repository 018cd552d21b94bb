package model

import "time"

// User is an account in the Tecelaria program.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
	CPF          string `gorm:"index"` // normalized to 11 digits
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
