package models

import "time"

// OpeningMove is the commitment record of a LOCKED room. The room becomes ACTIVE
// once both slots hold a choice; after that the record is only kept for display
// and the sweep may delete it.
type OpeningMove struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	RoomID    string    `gorm:"not null;uniqueIndex" json:"chat_id"`
	ChoiceA   *string   `json:"-"`
	ChoiceB   *string   `json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record stores choice in slot, overwriting any previous choice.
func (g *OpeningMove) Record(slot Slot, choice string) {
	c := choice
	if slot == SlotA {
		g.ChoiceA = &c
	} else {
		g.ChoiceB = &c
	}
}

// Choice returns the choice held by slot, if any.
func (g *OpeningMove) Choice(slot Slot) (string, bool) {
	p := g.ChoiceA
	if slot == SlotB {
		p = g.ChoiceB
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

// Complete reports whether both participants have committed.
func (g *OpeningMove) Complete() bool {
	return g.ChoiceA != nil && g.ChoiceB != nil
}

// IsExpired reports whether the commitment window has closed at now.
func (g *OpeningMove) IsExpired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}
