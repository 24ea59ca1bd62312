package services

import "github.com/yeremiapane/wedding-seating/models"

// IsEligible reports whether guest may be seated at eventName: the guest's
// group is invited to the event, the rsvp status is accepted and the rsvp
// explicitly confirms this event.
func IsEligible(guest models.Guest, group *models.Group, eventName string) bool {
	if group == nil || !group.InvitesTo(eventName) {
		return false
	}
	if !guest.RSVPStatus.IsAccepted() {
		return false
	}
	return guest.ConfirmedFor(eventName)
}

// AttendanceFilter narrows a guest list down to the guests eligible for an
// event. It never modifies the guests.
type AttendanceFilter struct {
	groups map[string]models.Group
}

func NewAttendanceFilter(groups []models.Group) *AttendanceFilter {
	f := &AttendanceFilter{groups: make(map[string]models.Group, len(groups))}
	for _, g := range groups {
		f.groups[g.ID] = g
	}
	return f
}

func (f *AttendanceFilter) IsEligible(guest models.Guest, eventName string) bool {
	if guest.GroupID == nil {
		return false
	}
	group, ok := f.groups[*guest.GroupID]
	if !ok {
		return false
	}
	return IsEligible(guest, &group, eventName)
}

// Eligible keeps the guests eligible for eventName, preserving order.
func (f *AttendanceFilter) Eligible(guests []models.Guest, eventName string) []models.Guest {
	out := make([]models.Guest, 0, len(guests))
	for _, g := range guests {
		if f.IsEligible(g, eventName) {
			out = append(out, g)
		}
	}
	return out
}
