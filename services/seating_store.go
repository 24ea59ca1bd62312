package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/yeremiapane/wedding-seating/models"
)

var validate = validator.New()

// TableSpec describes a table to add. Zero dimensions fall back to the
// default sizing for the capacity.
type TableSpec struct {
	Name     string           `json:"name" validate:"required"`
	Capacity int              `json:"capacity" validate:"min=1"`
	Shape    models.ShapeKind `json:"shape" validate:"omitempty,oneof=round rectangle square"`
	Radius   float64          `json:"radius" validate:"gte=0"`
	Width    float64          `json:"width" validate:"gte=0"`
	Height   float64          `json:"height" validate:"gte=0"`
	Size     float64          `json:"size" validate:"gte=0"`
	X        *float64         `json:"x"`
	Y        *float64         `json:"y"`
}

func (spec TableSpec) Validate() error {
	spec.Name = strings.TrimSpace(spec.Name)
	if err := validate.Struct(spec); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	return nil
}

func (spec TableSpec) shape() models.Shape {
	kind := spec.Shape
	if kind == "" {
		kind = models.ShapeRound
	}
	def := DefaultShape(kind, spec.Capacity)
	switch s := def.(type) {
	case models.Rectangle:
		if spec.Width > 0 {
			s.Width = spec.Width
		}
		if spec.Height > 0 {
			s.Height = spec.Height
		}
		return s
	case models.Square:
		if spec.Size > 0 {
			s.Size = spec.Size
		}
		return s
	case models.Round:
		if spec.Radius > 0 {
			s.Radius = spec.Radius
		}
		return s
	}
	return def
}

type ChangeKind string

const (
	ChangeTableCreate     ChangeKind = "table_create"
	ChangeTableUpdate     ChangeKind = "table_update"
	ChangeTableDelete     ChangeKind = "table_delete"
	ChangeGuestAssigned   ChangeKind = "guest_assigned"
	ChangeGuestUnassigned ChangeKind = "guest_unassigned"
)

type Change struct {
	Kind    ChangeKind `json:"kind"`
	TableID string     `json:"table_id"`
	GuestID string     `json:"guest_id,omitempty"`
}

// SeatingStore owns the table list of one arrangement. It keeps every guest
// in at most one table and never lets a table hold more guests than its
// capacity.
type SeatingStore struct {
	mu       sync.RWMutex
	tables   []models.Table
	geometry Geometry
	onChange func(Change)
	newID    func() string
}

// NewSeatingStore takes ownership of a copy of tables. A guest listed in more
// than one table is kept only in the first one, and guests beyond a table's
// capacity are dropped.
func NewSeatingStore(tables []models.Table) *SeatingStore {
	seen := make(map[string]bool)
	owned := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		t = t.Clone()
		guests := t.Guests[:0]
		for _, g := range t.Guests {
			if seen[g.ID] || len(guests) >= t.Capacity {
				continue
			}
			seen[g.ID] = true
			guests = append(guests, g)
		}
		t.Guests = guests
		owned = append(owned, t)
	}
	return &SeatingStore{
		tables:   owned,
		geometry: DefaultGeometry,
		newID:    uuid.NewString,
	}
}

// OnChange registers fn to run after every successful mutation, outside the
// store's lock.
func (s *SeatingStore) OnChange(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *SeatingStore) notify(changes ...Change) {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn == nil {
		return
	}
	for _, c := range changes {
		fn(c)
	}
}

func (s *SeatingStore) indexOf(tableID string) int {
	for i, t := range s.tables {
		if t.ID == tableID {
			return i
		}
	}
	return -1
}

// Tables returns a deep copy of the current tables.
func (s *SeatingStore) Tables() []models.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Table, len(s.tables))
	for i, t := range s.tables {
		out[i] = t.Clone()
	}
	return out
}

func (s *SeatingStore) Table(tableID string) (models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(tableID)
	if i < 0 {
		return models.Table{}, ErrTableNotFound
	}
	return s.tables[i].Clone(), nil
}

func (s *SeatingStore) Seats(tableID string) ([]models.Seat, error) {
	t, err := s.Table(tableID)
	if err != nil {
		return nil, err
	}
	return s.geometry.ComputeSeats(t), nil
}

// SeatedGuests maps every seated guest id to its table id.
func (s *SeatingStore) SeatedGuests() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seated := make(map[string]string)
	for _, t := range s.tables {
		for _, g := range t.Guests {
			seated[g.ID] = t.ID
		}
	}
	return seated
}

func (s *SeatingStore) IsSeated(guestID string) bool {
	_, ok := s.SeatedGuests()[guestID]
	return ok
}

// AddTable appends a table built from spec, offset from the previous tables.
func (s *SeatingStore) AddTable(spec TableSpec) (models.Table, error) {
	if err := spec.Validate(); err != nil {
		return models.Table{}, err
	}

	s.mu.Lock()
	n := float64(len(s.tables))
	table := models.Table{
		ID:       s.newID(),
		Name:     strings.TrimSpace(spec.Name),
		Capacity: spec.Capacity,
		X:        300 + 50*n,
		Y:        200 + 50*n,
		Shape:    spec.shape(),
		Guests:   []models.GuestRef{},
	}
	if spec.X != nil {
		table.X = *spec.X
	}
	if spec.Y != nil {
		table.Y = *spec.Y
	}
	s.tables = append(s.tables, table)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeTableCreate, TableID: table.ID})
	return table.Clone(), nil
}

// RemoveTable deletes a table; its guests become unassigned.
func (s *SeatingStore) RemoveTable(tableID string) error {
	s.mu.Lock()
	i := s.indexOf(tableID)
	if i < 0 {
		s.mu.Unlock()
		return ErrTableNotFound
	}
	s.tables = append(s.tables[:i], s.tables[i+1:]...)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeTableDelete, TableID: tableID})
	return nil
}

// AssignGuest removes the guest from every table and then seats it at
// tableID if that table has room. When the table is full the guest ends up
// unassigned and ErrTableFull is returned.
func (s *SeatingStore) AssignGuest(guest models.GuestRef, tableID string) error {
	s.mu.Lock()
	target := s.indexOf(tableID)
	if target < 0 {
		s.mu.Unlock()
		return ErrTableNotFound
	}

	var changes []Change
	for i := range s.tables {
		if from := removeGuestAt(&s.tables[i], guest.ID); from {
			changes = append(changes, Change{Kind: ChangeGuestUnassigned, TableID: s.tables[i].ID, GuestID: guest.ID})
		}
	}

	full := s.tables[target].IsFull()
	if !full {
		if guest.Tags == nil {
			guest.Tags = []string{}
		}
		s.tables[target].Guests = append(s.tables[target].Guests, guest)
		changes = append(changes, Change{Kind: ChangeGuestAssigned, TableID: tableID, GuestID: guest.ID})
	}
	s.mu.Unlock()

	s.notify(changes...)
	if full {
		return ErrTableFull
	}
	return nil
}

// RemoveGuest unseats the guest from tableID only.
func (s *SeatingStore) RemoveGuest(guestID, tableID string) error {
	s.mu.Lock()
	i := s.indexOf(tableID)
	if i < 0 {
		s.mu.Unlock()
		return ErrTableNotFound
	}
	removed := removeGuestAt(&s.tables[i], guestID)
	s.mu.Unlock()

	if removed {
		s.notify(Change{Kind: ChangeGuestUnassigned, TableID: tableID, GuestID: guestID})
	}
	return nil
}

func removeGuestAt(t *models.Table, guestID string) bool {
	for i, g := range t.Guests {
		if g.ID == guestID {
			t.Guests = append(t.Guests[:i], t.Guests[i+1:]...)
			return true
		}
	}
	return false
}

// RepositionTable moves a table anywhere on the canvas.
func (s *SeatingStore) RepositionTable(tableID string, x, y float64) error {
	return s.update(tableID, func(t *models.Table) error {
		t.X, t.Y = x, y
		return nil
	})
}

// RotateTable turns a rectangle table by 45 degrees. Other shapes are left
// untouched.
func (s *SeatingStore) RotateTable(tableID string) (models.Table, error) {
	s.mu.Lock()
	i := s.indexOf(tableID)
	if i < 0 {
		s.mu.Unlock()
		return models.Table{}, ErrTableNotFound
	}
	r, ok := s.tables[i].Shape.(models.Rectangle)
	if ok {
		r.Rotation = NextRotation(r.Rotation)
		s.tables[i].Shape = r
	}
	out := s.tables[i].Clone()
	s.mu.Unlock()

	if ok {
		s.notify(Change{Kind: ChangeTableUpdate, TableID: tableID})
	}
	return out, nil
}

func (s *SeatingStore) RenameTable(tableID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTable)
	}
	return s.update(tableID, func(t *models.Table) error {
		t.Name = name
		return nil
	})
}

// ResizeTable changes a table's capacity. It refuses to drop below the
// number of guests already seated.
func (s *SeatingStore) ResizeTable(tableID string, capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrInvalidTable)
	}
	return s.update(tableID, func(t *models.Table) error {
		if capacity < len(t.Guests) {
			return ErrCapacityBelowOccupancy
		}
		t.Capacity = capacity
		return nil
	})
}

// TableUpdate carries the fields of a partial table edit. Nil fields are
// left as they are.
type TableUpdate struct {
	Name     *string  `json:"name"`
	Capacity *int     `json:"capacity"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
}

// UpdateTable applies every field of u or none of them.
func (s *SeatingStore) UpdateTable(tableID string, u TableUpdate) (models.Table, error) {
	var name string
	if u.Name != nil {
		name = strings.TrimSpace(*u.Name)
		if name == "" {
			return models.Table{}, fmt.Errorf("%w: name is required", ErrInvalidTable)
		}
	}
	if u.Capacity != nil && *u.Capacity < 1 {
		return models.Table{}, fmt.Errorf("%w: capacity must be at least 1", ErrInvalidTable)
	}

	var out models.Table
	err := s.update(tableID, func(t *models.Table) error {
		if u.Capacity != nil && *u.Capacity < len(t.Guests) {
			return ErrCapacityBelowOccupancy
		}
		if u.Name != nil {
			t.Name = name
		}
		if u.Capacity != nil {
			t.Capacity = *u.Capacity
		}
		if u.X != nil {
			t.X = *u.X
		}
		if u.Y != nil {
			t.Y = *u.Y
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

func (s *SeatingStore) update(tableID string, fn func(t *models.Table) error) error {
	s.mu.Lock()
	i := s.indexOf(tableID)
	if i < 0 {
		s.mu.Unlock()
		return ErrTableNotFound
	}
	if err := fn(&s.tables[i]); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeTableUpdate, TableID: tableID})
	return nil
}
