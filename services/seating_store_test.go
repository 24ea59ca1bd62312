package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/wedding-seating/models"
)

func guestIDs(t models.Table) []string {
	ids := make([]string, len(t.Guests))
	for i, g := range t.Guests {
		ids[i] = g.ID
	}
	return ids
}

func TestAssignGuest_MovesGuestBetweenTables(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 4), roundTable("b", 4)})

	require.NoError(t, store.AssignGuest(ref("g1"), "a"))
	require.NoError(t, store.AssignGuest(ref("g1"), "b"))

	a, _ := store.Table("a")
	b, _ := store.Table("b")
	assert.Empty(t, a.Guests)
	assert.Equal(t, []string{"g1"}, guestIDs(b))
	assert.Equal(t, map[string]string{"g1": "b"}, store.SeatedGuests())
}

func TestAssignGuest_SameTableTwiceKeepsOneEntry(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 4)})

	require.NoError(t, store.AssignGuest(ref("g1"), "a"))
	require.NoError(t, store.AssignGuest(ref("g1"), "a"))

	a, _ := store.Table("a")
	assert.Equal(t, []string{"g1"}, guestIDs(a))
}

func TestAssignGuest_FullTableLeavesGuestUnassigned(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 4), roundTable("small", 1)})
	require.NoError(t, store.AssignGuest(ref("g1"), "small"))
	require.NoError(t, store.AssignGuest(ref("g2"), "a"))

	err := store.AssignGuest(ref("g2"), "small")
	assert.ErrorIs(t, err, ErrTableFull)

	small, _ := store.Table("small")
	a, _ := store.Table("a")
	assert.Equal(t, []string{"g1"}, guestIDs(small))
	assert.Empty(t, a.Guests)
	assert.False(t, store.IsSeated("g2"))
}

func TestAssignGuest_UnknownTable(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 4)})
	require.NoError(t, store.AssignGuest(ref("g1"), "a"))

	assert.ErrorIs(t, store.AssignGuest(ref("g1"), "missing"), ErrTableNotFound)
	assert.True(t, store.IsSeated("g1"))
}

func TestRemoveGuest(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 4), roundTable("b", 4)})
	require.NoError(t, store.AssignGuest(ref("g1"), "a"))

	require.NoError(t, store.RemoveGuest("g1", "b"))
	assert.True(t, store.IsSeated("g1"))

	require.NoError(t, store.RemoveGuest("g1", "a"))
	assert.False(t, store.IsSeated("g1"))

	assert.ErrorIs(t, store.RemoveGuest("g1", "missing"), ErrTableNotFound)
}

func TestNewSeatingStore_KeepsFirstOccurrenceOfDuplicateGuest(t *testing.T) {
	a := roundTable("a", 4)
	a.Guests = []models.GuestRef{ref("g1")}
	b := roundTable("b", 4)
	b.Guests = []models.GuestRef{ref("g1"), ref("g2")}

	store := NewSeatingStore([]models.Table{a, b})

	assert.Equal(t, map[string]string{"g1": "a", "g2": "b"}, store.SeatedGuests())
	assert.Len(t, b.Guests, 2, "input tables are not modified")
}

func TestNewSeatingStore_DropsGuestsBeyondCapacity(t *testing.T) {
	pair := roundTable("pair", 2)
	pair.Guests = []models.GuestRef{ref("a"), ref("b"), ref("c")}

	store := NewSeatingStore([]models.Table{pair})

	assert.Equal(t, map[string]string{"a": "pair", "b": "pair"}, store.SeatedGuests())
	assert.ErrorIs(t, store.AssignGuest(ref("c"), "pair"), ErrTableFull)
}

func TestTablesReturnsCopies(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 4)})
	require.NoError(t, store.AssignGuest(ref("g1"), "a"))

	tables := store.Tables()
	tables[0].Guests[0].Name = "changed"
	tables[0].Name = "changed"

	a, _ := store.Table("a")
	assert.Equal(t, "Guest g1", a.Guests[0].Name)
	assert.Equal(t, "Table a", a.Name)
}

func TestAddTable(t *testing.T) {
	store := NewSeatingStore(nil)

	first, err := store.AddTable(TableSpec{Name: "  Cousins  ", Capacity: 6, Shape: models.ShapeSquare})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Cousins", first.Name)
	assert.Equal(t, 300.0, first.X)
	assert.Equal(t, 200.0, first.Y)
	assert.Equal(t, DefaultShape(models.ShapeSquare, 6), first.Shape)

	second, err := store.AddTable(TableSpec{Name: "Kids", Capacity: 4})
	require.NoError(t, err)
	assert.Equal(t, 350.0, second.X)
	assert.Equal(t, 250.0, second.Y)
	assert.Equal(t, models.ShapeRound, second.Shape.Kind())

	x, y := 10.0, 20.0
	third, err := store.AddTable(TableSpec{Name: "Band", Capacity: 3, Shape: models.ShapeRectangle, Width: 300, X: &x, Y: &y})
	require.NoError(t, err)
	assert.Equal(t, 10.0, third.X)
	assert.Equal(t, 20.0, third.Y)
	rect := third.Shape.(models.Rectangle)
	assert.Equal(t, 300.0, rect.Width)
	assert.Greater(t, rect.Height, 0.0)

	assert.Len(t, store.Tables(), 3)
}

func TestAddTable_Validation(t *testing.T) {
	store := NewSeatingStore(nil)

	cases := map[string]TableSpec{
		"blank name":     {Name: "   ", Capacity: 4},
		"zero capacity":  {Name: "A", Capacity: 0},
		"unknown shape":  {Name: "A", Capacity: 4, Shape: "hexagon"},
		"negative width": {Name: "A", Capacity: 4, Shape: models.ShapeRectangle, Width: -1},
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := store.AddTable(spec)
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
	assert.Empty(t, store.Tables())
}

func TestRemoveTable_UnassignsItsGuests(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 4), roundTable("b", 4)})
	require.NoError(t, store.AssignGuest(ref("g1"), "a"))

	require.NoError(t, store.RemoveTable("a"))

	assert.Len(t, store.Tables(), 1)
	assert.False(t, store.IsSeated("g1"))
	assert.ErrorIs(t, store.RemoveTable("a"), ErrTableNotFound)
}

func TestRotateTable(t *testing.T) {
	rect := models.Table{ID: "r", Name: "Head", Capacity: 6, Shape: models.Rectangle{Width: 200, Height: 80}}
	store := NewSeatingStore([]models.Table{rect, roundTable("a", 4)})

	var changes []Change
	store.OnChange(func(c Change) { changes = append(changes, c) })

	for _, want := range []int{45, 90, 135, 0} {
		table, err := store.RotateTable("r")
		require.NoError(t, err)
		assert.Equal(t, want, table.Shape.(models.Rectangle).Rotation)
	}
	assert.Len(t, changes, 4)

	round, err := store.RotateTable("a")
	require.NoError(t, err)
	assert.Equal(t, models.Round{Radius: 50}, round.Shape)
	assert.Len(t, changes, 4, "rotating a round table is not a change")

	_, err = store.RotateTable("missing")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestResizeTable(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 4)})
	require.NoError(t, store.AssignGuest(ref("g1"), "a"))
	require.NoError(t, store.AssignGuest(ref("g2"), "a"))

	assert.ErrorIs(t, store.ResizeTable("a", 1), ErrCapacityBelowOccupancy)
	assert.ErrorIs(t, store.ResizeTable("a", 0), ErrInvalidTable)
	require.NoError(t, store.ResizeTable("a", 2))

	a, _ := store.Table("a")
	assert.Equal(t, 2, a.Capacity)
	assert.ErrorIs(t, store.AssignGuest(ref("g3"), "a"), ErrTableFull)
}

func TestRenameAndRepositionTable(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 4)})

	assert.ErrorIs(t, store.RenameTable("a", "  "), ErrInvalidTable)
	require.NoError(t, store.RenameTable("a", "Grandparents"))
	require.NoError(t, store.RepositionTable("a", -40, 1200))

	a, _ := store.Table("a")
	assert.Equal(t, "Grandparents", a.Name)
	assert.Equal(t, -40.0, a.X)
	assert.Equal(t, 1200.0, a.Y)
}

func TestUpdateTable_AllOrNothing(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 4)})
	require.NoError(t, store.AssignGuest(ref("g1"), "a"))
	require.NoError(t, store.AssignGuest(ref("g2"), "a"))
	changes := 0
	store.OnChange(func(Change) { changes++ })

	name, small, x := "Cousins", 1, 90.0
	_, err := store.UpdateTable("a", TableUpdate{Name: &name, Capacity: &small, X: &x})
	assert.ErrorIs(t, err, ErrCapacityBelowOccupancy)

	a, _ := store.Table("a")
	assert.Equal(t, "Table a", a.Name)
	assert.Equal(t, 4, a.Capacity)
	assert.Zero(t, a.X)
	assert.Zero(t, changes)

	blank := " "
	_, err = store.UpdateTable("a", TableUpdate{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidTable)

	capacity := 3
	updated, err := store.UpdateTable("a", TableUpdate{Name: &name, Capacity: &capacity, X: &x})
	require.NoError(t, err)
	assert.Equal(t, "Cousins", updated.Name)
	assert.Equal(t, 3, updated.Capacity)
	assert.Equal(t, 90.0, updated.X)
	assert.Equal(t, 1, changes)
}

func TestSeats_FollowStoreState(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 3)})
	require.NoError(t, store.AssignGuest(ref("g1"), "a"))

	seats, err := store.Seats("a")
	require.NoError(t, err)
	require.Len(t, seats, 3)
	assert.True(t, seats[0].Occupied)
	assert.False(t, seats[1].Occupied)

	_, err = store.Seats("missing")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestOnChange_ReportsMoves(t *testing.T) {
	store := NewSeatingStore([]models.Table{roundTable("a", 4), roundTable("b", 4)})
	var changes []Change
	store.OnChange(func(c Change) { changes = append(changes, c) })

	require.NoError(t, store.AssignGuest(ref("g1"), "a"))
	require.NoError(t, store.AssignGuest(ref("g1"), "b"))

	assert.Equal(t, []Change{
		{Kind: ChangeGuestAssigned, TableID: "a", GuestID: "g1"},
		{Kind: ChangeGuestUnassigned, TableID: "a", GuestID: "g1"},
		{Kind: ChangeGuestAssigned, TableID: "b", GuestID: "g1"},
	}, changes)
}
