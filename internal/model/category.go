package model

import "time"

// MaxCustomCategories caps user-defined categories per account.
const MaxCustomCategories = 5

// DefaultCategoryName is the fallback for questions without a mapped category.
const DefaultCategoryName = "Memórias Aleatórias"

// Category groups memories by theme. Predefined categories are seeded once and
// shared by everyone; custom categories belong to a single user.
type Category struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"index:idx_category_name_owner,unique;not null"`
	Description  string
	IsPredefined bool  `gorm:"default:false"`
	SortOrder    int   `gorm:"default:0"`
	OwnerUserID  *uint `gorm:"index:idx_category_name_owner,unique"` // nil for predefined
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
