package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type RSVPStatus string

const (
	RSVPPending  RSVPStatus = "pending"
	RSVPAccepted RSVPStatus = "accepted"
	RSVPDeclined RSVPStatus = "declined"
)

// IsAccepted reports whether the status is one of the accepted variants
// ("accepted", "attending", "confirmed"), case-insensitively.
func (s RSVPStatus) IsAccepted() bool {
	switch RSVPStatus(strings.ToLower(strings.TrimSpace(string(s)))) {
	case RSVPAccepted, "attending", "confirmed":
		return true
	}
	return false
}

// Guest is a row of the tenant's guest directory. The seating engine only
// writes TableAssignment and AssignmentEventID.
type Guest struct {
	ID                string                              `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TenantID          string                              `gorm:"primaryKey;type:varchar(64)" json:"-"`
	Name              string                              `gorm:"type:varchar(255)" json:"name"`
	FirstName         string                              `gorm:"type:varchar(255)" json:"firstName"`
	LastName          string                              `gorm:"type:varchar(255)" json:"lastName"`
	GroupID           *string                             `gorm:"type:varchar(64);index" json:"groupId"`
	Tags              datatypes.JSONSlice[string]         `json:"tags"`
	RSVPStatus        RSVPStatus                          `gorm:"column:rsvp_status;type:varchar(20);not null;default:'pending'" json:"rsvpStatus"`
	RSVPEvents        datatypes.JSONType[map[string]bool] `gorm:"column:rsvp_events" json:"rsvpEvents"`
	TableAssignment   *string                             `gorm:"type:varchar(255)" json:"tableAssignment,omitempty"`
	AssignmentEventID *string                             `gorm:"type:varchar(64);index" json:"-"`
	CreatedAt         time.Time                           `json:"-"`
	UpdatedAt         time.Time                           `json:"-"`
}

func (g Guest) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

// ConfirmedFor reports whether the guest's rsvp explicitly marks eventName true.
func (g Guest) ConfirmedFor(eventName string) bool {
	confirmed, ok := g.RSVPEvents.Data()[eventName]
	return ok && confirmed
}

// Ref snapshots the guest the way it is embedded in a table.
func (g Guest) Ref() GuestRef {
	tags := make([]string, len(g.Tags))
	copy(tags, g.Tags)
	var groupID *string
	if g.GroupID != nil {
		id := *g.GroupID
		groupID = &id
	}
	return GuestRef{
		ID:        g.ID,
		Name:      g.DisplayName(),
		FirstName: g.FirstName,
		LastName:  g.LastName,
		GroupID:   groupID,
		Tags:      tags,
		RSVP:      GuestRefRSVP{Status: g.RSVPStatus},
	}
}

// GuestRef is the guest snapshot stored inside a table's guest list.
type GuestRef struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	GroupID   *string      `json:"groupId"`
	Tags      []string     `json:"tags"`
	RSVP      GuestRefRSVP `json:"rsvp"`
}

type GuestRefRSVP struct {
	Status RSVPStatus `json:"status"`
}
