package services

import (
	"math"

	"github.com/yeremiapane/wedding-seating/models"
)

const DefaultCapacity = 8

// Geometry holds the spacing constants used to place seats around a table.
type Geometry struct {
	SeatGap     float64 // distance between a round table's edge and its seats
	EdgeOffset  float64 // outward offset of seats from a rectangle edge
	CornerClear float64 // margin kept free next to each corner
}

var DefaultGeometry = Geometry{SeatGap: 20, EdgeOffset: 18, CornerClear: 12}

type point struct{ x, y float64 }

// ComputeSeats places table.Capacity seats using DefaultGeometry.
func ComputeSeats(table models.Table) []models.Seat {
	return DefaultGeometry.ComputeSeats(table)
}

// ComputeSeats returns the seats of table in walk order, relative to the table
// origin. Seat i is occupied when i < len(table.Guests).
func (g Geometry) ComputeSeats(table models.Table) []models.Seat {
	if table.Capacity < 1 {
		return []models.Seat{}
	}

	var pts []point
	switch s := table.Shape.(type) {
	case models.Round:
		pts = g.circle(s.Radius, table.Capacity)
	case models.Rectangle:
		pts = rotate(g.perimeter(s.Width, s.Height, table.Capacity), float64(s.Rotation))
	case models.Square:
		pts = g.perimeter(s.Size, s.Size, table.Capacity)
	default:
		pts = make([]point, table.Capacity)
	}

	seats := make([]models.Seat, len(pts))
	for i, p := range pts {
		seats[i] = models.Seat{
			Index:    i,
			X:        p.x,
			Y:        p.y,
			Occupied: i < len(table.Guests),
		}
	}
	return seats
}

// circle starts at the top and walks clockwise on a y-down canvas.
func (g Geometry) circle(radius float64, n int) []point {
	r := radius + g.SeatGap
	pts := make([]point, n)
	for i := range pts {
		angle := float64(i)/float64(n)*2*math.Pi - math.Pi/2
		pts[i] = point{r * math.Cos(angle), r * math.Sin(angle)}
	}
	return pts
}

// perimeter walks the top edge left to right, the right edge top to bottom,
// the bottom edge right to left and the left edge bottom to top.
func (g Geometry) perimeter(w, h float64, n int) []point {
	pts := make([]point, n)
	if w <= 0 || h <= 0 {
		return pts
	}

	// a table too small for the corner clearance falls back to a quarter of
	// its shorter side so every segment keeps a positive length.
	clear := g.CornerClear
	if w-2*clear <= 0 || h-2*clear <= 0 {
		clear = math.Min(w, h) / 4
	}
	top, side := w-2*clear, h-2*clear
	usable := 2 * (top + side)
	step := usable / float64(n)
	hw, hh := w/2, h/2

	for i := range pts {
		d := math.Mod(clear+step/2+float64(i)*step, usable)
		switch {
		case d < top:
			pts[i] = point{-hw + clear + d, -hh - g.EdgeOffset}
		case d < top+side:
			d -= top
			pts[i] = point{hw + g.EdgeOffset, -hh + clear + d}
		case d < 2*top+side:
			d -= top + side
			pts[i] = point{hw - clear - d, hh + g.EdgeOffset}
		default:
			d -= 2*top + side
			pts[i] = point{-hw - g.EdgeOffset, hh - clear - d}
		}
	}
	return pts
}

func rotate(pts []point, degrees float64) []point {
	if degrees == 0 {
		return pts
	}
	theta := degrees * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	for i, p := range pts {
		pts[i] = point{p.x*cos - p.y*sin, p.x*sin + p.y*cos}
	}
	return pts
}

// DefaultShape sizes a table of the given kind from its capacity.
func DefaultShape(kind models.ShapeKind, capacity int) models.Shape {
	base := math.Max(50, math.Min(150, float64(40+capacity*8)))
	switch kind {
	case models.ShapeRectangle:
		return models.Rectangle{Width: base * 1.4, Height: base * 0.6}
	case models.ShapeSquare:
		return models.Square{Size: base}
	default:
		return models.Round{Radius: base / 2}
	}
}

// NextRotation advances a rectangle rotation by 45 degrees: 0, 45, 90, 135, 0.
func NextRotation(rotation int) int {
	return (NormalizeRotation(rotation) + 45) % 180
}

// NormalizeRotation snaps any angle down onto {0, 45, 90, 135}.
func NormalizeRotation(rotation int) int {
	r := ((rotation % 180) + 180) % 180
	return r - r%45
}
