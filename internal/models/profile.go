package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the public presentation data for a marketplace user, used by
// the messaging UI to render the counterpart's name and avatar.
type Profile struct {
	ID          string `gorm:"primaryKey" json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// BeforeCreate assigns a fresh UUID when the profile is created without one.
func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
