package models

import (
	"time"

	"gorm.io/datatypes"
)

// Arrangement is the in-memory seating arrangement for one event. Version 0
// means it has never been persisted.
type Arrangement struct {
	TenantID  string
	EventID   string
	EventName string
	Tables    []Table
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Arrangement) Persisted() bool { return a.Version > 0 }

// TableRecord is the flat stored form of a Table. Shape-specific fields are
// only present for the shape they apply to.
type TableRecord struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Capacity int        `json:"capacity"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Shape    ShapeKind  `json:"shape"`
	Guests   []GuestRef `json:"guests"`
	Radius   *float64   `json:"radius,omitempty"`
	Width    *float64   `json:"width,omitempty"`
	Height   *float64   `json:"height,omitempty"`
	Size     *float64   `json:"size,omitempty"`
	Rotation *int       `json:"rotation,omitempty"`
}

// ArrangementDocument is the persisted arrangement, one row per tenant and event.
type ArrangementDocument struct {
	TenantID  string                           `gorm:"primaryKey;type:varchar(64)" json:"-"`
	EventID   string                           `gorm:"primaryKey;type:varchar(64)" json:"eventId"`
	EventName string                           `gorm:"type:varchar(255);not null" json:"eventName"`
	Tables    datatypes.JSONSlice[TableRecord] `gorm:"not null" json:"tables"`
	Version   int64                            `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time                        `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time                        `gorm:"not null" json:"updatedAt"`
}

func (ArrangementDocument) TableName() string { return "arrangements" }
