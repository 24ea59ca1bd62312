package models

type ShapeKind string

const (
	ShapeRound     ShapeKind = "round"
	ShapeRectangle ShapeKind = "rectangle"
	ShapeSquare    ShapeKind = "square"
)

func (k ShapeKind) Valid() bool {
	switch k {
	case ShapeRound, ShapeRectangle, ShapeSquare:
		return true
	}
	return false
}

// Shape is the closed set of table shapes: Round, Rectangle or Square.
type Shape interface {
	Kind() ShapeKind
	isShape()
}

type Round struct {
	Radius float64
}

// Rectangle is the only shape carrying a rotation, in degrees from {0,45,90,135}.
type Rectangle struct {
	Width    float64
	Height   float64
	Rotation int
}

type Square struct {
	Size float64
}

func (Round) Kind() ShapeKind     { return ShapeRound }
func (Rectangle) Kind() ShapeKind { return ShapeRectangle }
func (Square) Kind() ShapeKind    { return ShapeSquare }

func (Round) isShape()     {}
func (Rectangle) isShape() {}
func (Square) isShape()    {}

type Table struct {
	ID       string
	Name     string
	Capacity int
	X        float64
	Y        float64
	Shape    Shape
	Guests   []GuestRef
}

func (t Table) Occupancy() int { return len(t.Guests) }

func (t Table) IsFull() bool { return len(t.Guests) >= t.Capacity }

func (t Table) HasGuest(guestID string) bool {
	for _, g := range t.Guests {
		if g.ID == guestID {
			return true
		}
	}
	return false
}

// Clone copies the table including its guest list.
func (t Table) Clone() Table {
	out := t
	out.Guests = make([]GuestRef, len(t.Guests))
	copy(out.Guests, t.Guests)
	return out
}

// Seat is derived from a table on demand and never persisted. X and Y are
// relative to the table's origin.
type Seat struct {
	Index    int     `json:"index"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Occupied bool    `json:"occupied"`
}
