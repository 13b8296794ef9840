package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User is a row of the institution's user directory. The pairing engine only reads it:
// InstitutionID scopes the pool, Username/RealName/Aliases are the identity a partner
// has to guess, TelegramID and Language drive notification delivery.
type User struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	InstitutionID string         `gorm:"not null;index" json:"institution_id"`
	Username      string         `gorm:"not null" json:"username"`
	RealName      string         `json:"real_name"`
	Aliases       pq.StringArray `gorm:"type:text[]" json:"aliases,omitempty"`
	TelegramID    int64          `gorm:"index" json:"-"`
	Language      string         `gorm:"type:varchar(8)" json:"-"`
}

// BeforeCreate is a GORM hook that assigns a UUID when the ID is empty.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// Identity is the publicly revealable part of a user.
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	RealName string `json:"real_name,omitempty"`
}

// Identity projects the user into what a partner sees after a reveal.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, RealName: u.RealName}
}
