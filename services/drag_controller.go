package services

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/wedding-seating/models"
)

type DragState string

const (
	DragIdle     DragState = "idle"
	DragDragging DragState = "dragging"
)

type DropOutcome string

const (
	DropDropped   DropOutcome = "dropped"
	DropCancelled DropOutcome = "cancelled"
)

type DropResult struct {
	Outcome DropOutcome `json:"outcome"`
	GuestID string      `json:"guest_id,omitempty"`
	TableID string      `json:"table_id,omitempty"`
}

// DragController turns drag gestures into SeatingStore assignments.
//
//	Idle -> Dragging(guest) -> Dropped(table) | Cancelled -> Idle
//
// Only guests in the eligible pool that are not seated anywhere can be dragged.
type DragController struct {
	mu           sync.Mutex
	store        *SeatingStore
	log          logrus.FieldLogger
	pool         map[string]models.GuestRef
	order        []string
	state        DragState
	draggedGuest string
}

func NewDragController(store *SeatingStore, log logrus.FieldLogger) *DragController {
	return &DragController{
		store: store,
		log:   log,
		pool:  make(map[string]models.GuestRef),
		state: DragIdle,
	}
}

// SetPool replaces the eligible guests, typically after the selected event
// changes.
func (d *DragController) SetPool(guests []models.Guest) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pool = make(map[string]models.GuestRef, len(guests))
	d.order = d.order[:0]
	for _, g := range guests {
		if _, dup := d.pool[g.ID]; dup {
			continue
		}
		d.pool[g.ID] = g.Ref()
		d.order = append(d.order, g.ID)
	}
}

// Draggable lists the eligible guests that are not seated yet, in pool order.
func (d *DragController) Draggable() []models.GuestRef {
	seated := d.store.SeatedGuests()
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.GuestRef, 0, len(d.order))
	for _, id := range d.order {
		if _, ok := seated[id]; !ok {
			out = append(out, d.pool[id])
		}
	}
	return out
}

func (d *DragController) draggable(guestID string) (models.GuestRef, bool) {
	ref, ok := d.pool[guestID]
	if !ok || d.store.IsSeated(guestID) {
		return models.GuestRef{}, false
	}
	return ref, true
}

func (d *DragController) State() (DragState, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.draggedGuest
}

// Start begins dragging guestID. A new drag replaces any drag in progress.
func (d *DragController) Start(guestID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.draggable(guestID); !ok {
		return ErrNotDraggable
	}
	d.state = DragDragging
	d.draggedGuest = guestID
	return nil
}

// End handles drag-end. Browsers may deliver it before the drop event, so it
// only clears the tracked guest; a following Drop still succeeds through the
// transport-carried id.
func (d *DragController) End() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

func (d *DragController) Cancel() {
	d.End()
}

func (d *DragController) reset() {
	d.state = DragIdle
	d.draggedGuest = ""
}

// Drop finishes a drag over tableID. The guest is taken from the tracked drag
// state and falls back to transportGuestID when drag-end already cleared it.
// The fallback is intentional. An empty tableID means the drop landed outside
// every table and cancels the drag.
func (d *DragController) Drop(tableID, transportGuestID string) (DropResult, error) {
	d.mu.Lock()
	guestID := d.draggedGuest
	if guestID == "" {
		guestID = transportGuestID
		if guestID != "" {
			d.log.WithField("guest_id", guestID).Debug("drop resolved from transport guest id")
		}
	}
	d.reset()

	if tableID == "" {
		d.mu.Unlock()
		return DropResult{Outcome: DropCancelled, GuestID: guestID}, nil
	}
	if guestID == "" {
		d.mu.Unlock()
		return DropResult{Outcome: DropCancelled}, ErrNoDraggedGuest
	}
	ref, ok := d.draggable(guestID)
	d.mu.Unlock()
	if !ok {
		return DropResult{Outcome: DropCancelled, GuestID: guestID}, ErrNotDraggable
	}

	if err := d.store.AssignGuest(ref, tableID); err != nil {
		return DropResult{Outcome: DropCancelled, GuestID: guestID, TableID: tableID}, err
	}
	return DropResult{Outcome: DropDropped, GuestID: guestID, TableID: tableID}, nil
}
