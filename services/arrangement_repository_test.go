package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/wedding-seating/models"
	"gorm.io/datatypes"
)

func setupRepo(t *testing.T) *ArrangementRepository {
	t.Helper()
	repo := NewArrangementRepository(setupTestDB(t), quietLogger())
	fixed := time.Date(2026, 6, 20, 15, 0, 0, 0, time.UTC)
	repo.Now = func() time.Time { return fixed }
	return repo
}

func TestLoad_SeedsUnsavedArrangement(t *testing.T) {
	repo := setupRepo(t)

	a, err := repo.Load(context.Background(), "tenant-1", "e1", "Ceremony")
	require.NoError(t, err)

	assert.False(t, a.Persisted())
	assert.Equal(t, "Ceremony", a.EventName)
	require.Len(t, a.Tables, 3)
	assert.Equal(t, "head-table", a.Tables[0].ID)
	assert.Equal(t, models.ShapeRectangle, a.Tables[0].Shape.Kind())
	assert.Equal(t, models.ShapeRound, a.Tables[1].Shape.Kind())
	assert.Equal(t, 10, a.Tables[1].Capacity)
	assert.Equal(t, models.ShapeSquare, a.Tables[2].Shape.Kind())

	var count int64
	repo.DB.Model(&models.ArrangementDocument{}).Count(&count)
	assert.Zero(t, count, "loading the seed does not write it")
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	head := models.Table{
		ID: "head", Name: "Head Table", Capacity: 6, X: 400, Y: 120,
		Shape:  models.Rectangle{Width: 180, Height: 60, Rotation: 45},
		Guests: []models.GuestRef{ref("g1"), ref("g2")},
	}
	family := models.Table{
		ID: "family", Name: "Family", Capacity: 10, X: 250, Y: 320,
		Shape:  models.Round{Radius: 60},
		Guests: []models.GuestRef{ref("g3")},
	}
	friends := models.Table{
		ID: "friends", Name: "Friends", Capacity: 8, X: 550, Y: 320,
		Shape:  models.Square{Size: 90},
		Guests: []models.GuestRef{},
	}
	a := &models.Arrangement{
		TenantID: "tenant-1", EventID: "e1", EventName: "Ceremony",
		Tables: []models.Table{head, family, friends},
	}

	version, err := repo.Save(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	loaded, err := repo.Load(ctx, "tenant-1", "e1", "Ceremony")
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
	assert.Equal(t, a.Tables, loaded.Tables)
}

func TestSave_OptimisticVersion(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	a := SeedArrangement("tenant-1", "e1", "Ceremony", repo.Now())

	v1, err := repo.Save(ctx, a)
	require.NoError(t, err)

	_, err = repo.Save(ctx, a)
	assert.ErrorIs(t, err, ErrVersionConflict, "a second first-save loses")

	a.Version = v1
	v2, err := repo.Save(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)

	a.Version = v1
	_, err = repo.Save(ctx, a)
	assert.ErrorIs(t, err, ErrVersionConflict, "stale version is rejected")

	loaded, err := repo.Load(ctx, "tenant-1", "e1", "Ceremony")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
}

func TestSave_IsScopedByTenant(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, SeedArrangement("tenant-1", "e1", "Ceremony", repo.Now()))
	require.NoError(t, err)

	other, err := repo.Load(ctx, "tenant-2", "e1", "Ceremony")
	require.NoError(t, err)
	assert.False(t, other.Persisted())

	_, err = repo.Save(ctx, other)
	assert.NoError(t, err)
}

func TestLoad_DefaultsMalformedTables(t *testing.T) {
	repo := setupRepo(t)
	zero := 0.0
	doc := models.ArrangementDocument{
		TenantID: "tenant-1",
		EventID:  "e1",
		Tables: datatypes.JSONSlice[models.TableRecord]{
			{Shape: "hexagon", Capacity: 0, X: 10, Y: 20},
			{ID: "rect", Name: "Long", Shape: models.ShapeRectangle, Capacity: 4, Width: &zero},
			{ID: "pair", Name: "Pair", Shape: models.ShapeRound, Capacity: 2, Guests: []models.GuestRef{ref("a"), ref("b"), ref("c")}},
		},
		Version:   3,
		CreatedAt: repo.Now(),
		UpdatedAt: repo.Now(),
	}
	require.NoError(t, repo.DB.Create(&doc).Error)

	a, err := repo.Load(context.Background(), "tenant-1", "e1", "Ceremony")
	require.NoError(t, err)
	assert.Equal(t, "Ceremony", a.EventName)
	require.Len(t, a.Tables, 3)

	first := a.Tables[0]
	assert.Equal(t, "table-1", first.ID)
	assert.Equal(t, "Table 1", first.Name)
	assert.Equal(t, DefaultCapacity, first.Capacity)
	assert.Equal(t, DefaultShape(models.ShapeRound, DefaultCapacity), first.Shape)
	assert.NotNil(t, first.Guests)

	rect := a.Tables[1].Shape.(models.Rectangle)
	def := DefaultShape(models.ShapeRectangle, 4).(models.Rectangle)
	assert.Equal(t, def.Width, rect.Width)
	assert.Equal(t, def.Height, rect.Height)

	pair := a.Tables[2]
	assert.Equal(t, 2, pair.Capacity)
	require.Len(t, pair.Guests, 2)
	assert.Equal(t, "a", pair.Guests[0].ID)
	assert.Equal(t, "b", pair.Guests[1].ID)

	store := NewSeatingStore(a.Tables)
	assert.False(t, store.IsSeated("c"))
}

func TestSave_WritesGuestTableAssignment(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	yes := map[string]bool{"Ceremony": true}
	for _, id := range []string{"g1", "g2"} {
		g := newGuest(id, "family", models.RSVPAccepted, yes)
		require.NoError(t, repo.DB.Create(&g).Error)
	}

	a := SeedArrangement("tenant-1", "e1", "Ceremony", repo.Now())
	a.Tables[0].Guests = []models.GuestRef{ref("g1")}
	v, err := repo.Save(ctx, a)
	require.NoError(t, err)

	var g1, g2 models.Guest
	require.NoError(t, repo.DB.First(&g1, "id = ?", "g1").Error)
	require.NoError(t, repo.DB.First(&g2, "id = ?", "g2").Error)
	require.NotNil(t, g1.TableAssignment)
	assert.Equal(t, "Head Table", *g1.TableAssignment)
	assert.Equal(t, "e1", *g1.AssignmentEventID)
	assert.Nil(t, g2.TableAssignment)

	a.Version = v
	a.Tables[0].Guests = nil
	a.Tables[1].Guests = []models.GuestRef{ref("g2")}
	_, err = repo.Save(ctx, a)
	require.NoError(t, err)

	var moved1, moved2 models.Guest
	require.NoError(t, repo.DB.First(&moved1, "id = ?", "g1").Error)
	require.NoError(t, repo.DB.First(&moved2, "id = ?", "g2").Error)
	assert.Nil(t, moved1.TableAssignment)
	require.NotNil(t, moved2.TableAssignment)
	assert.Equal(t, "Family Table", *moved2.TableAssignment)
}

func TestSanitizeTable(t *testing.T) {
	rec := SanitizeTable(models.Table{
		Capacity: -2,
		X:        math.NaN(),
		Y:        math.Inf(1),
		Shape:    models.Rectangle{Width: 100, Height: 40, Rotation: 100},
		Guests:   []models.GuestRef{{ID: "g1"}},
	}, 4)

	assert.Equal(t, "table-5", rec.ID)
	assert.Equal(t, "Table 5", rec.Name)
	assert.Equal(t, DefaultCapacity, rec.Capacity)
	assert.Zero(t, rec.X)
	assert.Zero(t, rec.Y)
	assert.Equal(t, models.ShapeRectangle, rec.Shape)
	require.NotNil(t, rec.Rotation)
	assert.Equal(t, 90, *rec.Rotation)
	assert.Nil(t, rec.Radius)
	assert.Nil(t, rec.Size)
	assert.Equal(t, []string{}, rec.Guests[0].Tags)

	round := SanitizeTable(models.Table{ID: "r", Name: "R", Capacity: 4}, 0)
	assert.Equal(t, models.ShapeRound, round.Shape)
	require.NotNil(t, round.Radius)
	assert.Nil(t, round.Width)
	assert.Nil(t, round.Rotation)
}
