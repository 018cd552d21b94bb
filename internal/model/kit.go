package model

import "time"

// Kit member roles.
const (
	RoleOwner        = "owner"
	RoleCollaborator = "collaborator"
	RoleViewer       = "viewer"
)

// Program clock constants, in days from activation.
const (
	MemoryPeriodDays     = 90
	BookFinalizationDays = 365
	PreviewUnlockDay     = 80
)

// Kit is the unit of purchase/activation. Activation is one-way: ActivatedAt
// goes nil → timestamp exactly once and derives both end dates.
type Kit struct {
	ID                      uint   `gorm:"primaryKey"`
	Name                    string `gorm:"not null"`
	Description             string
	OwnerUserID             uint `gorm:"index;not null"`
	ActivatedAt             *time.Time
	MemoryPeriodEndDate     *time.Time
	BookFinalizationEndDate *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
	Members                 []KitMember `gorm:"foreignKey:KitID;constraint:OnDelete:CASCADE"`
}

// KitMember links a user to a kit with a role. Exactly one owner per kit,
// created atomically with the kit itself.
type KitMember struct {
	ID        uint   `gorm:"primaryKey"`
	KitID     uint   `gorm:"index:idx_kit_member,unique;not null"`
	UserID    uint   `gorm:"index:idx_kit_member,unique;not null"`
	Role      string `gorm:"not null"`
	InvitedBy uint
	InvitedAt time.Time
}
