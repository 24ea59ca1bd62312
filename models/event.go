package models

import (
	"time"

	"gorm.io/datatypes"
)

type Event struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TenantID  string    `gorm:"primaryKey;type:varchar(64)" json:"-"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Group is a guest group and the event names it is invited to.
type Group struct {
	ID        string                      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TenantID  string                      `gorm:"primaryKey;type:varchar(64)" json:"-"`
	Name      string                      `gorm:"type:varchar(255);not null" json:"name"`
	Events    datatypes.JSONSlice[string] `json:"events"`
	CreatedAt time.Time                   `json:"-"`
	UpdatedAt time.Time                   `json:"-"`
}

func (g Group) InvitesTo(eventName string) bool {
	for _, name := range g.Events {
		if name == eventName {
			return true
		}
	}
	return false
}
