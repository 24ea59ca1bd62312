package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/wedding-seating/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArrangementRepository loads and saves one arrangement document per tenant
// and event.
type ArrangementRepository struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
	Now func() time.Time
}

func NewArrangementRepository(db *gorm.DB, log logrus.FieldLogger) *ArrangementRepository {
	return &ArrangementRepository{DB: db, Log: log, Now: time.Now}
}

// Load returns the stored arrangement for the event, or the unsaved seed
// arrangement when none exists yet.
func (r *ArrangementRepository) Load(ctx context.Context, tenantID, eventID, eventName string) (*models.Arrangement, error) {
	var doc models.ArrangementDocument
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.Log.WithFields(logrus.Fields{"tenant_id": tenantID, "event_id": eventID}).
			Info("no stored arrangement, using seed tables")
		return SeedArrangement(tenantID, eventID, eventName, r.Now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load arrangement %s: %w", eventID, err)
	}

	tables := make([]models.Table, len(doc.Tables))
	for i, rec := range doc.Tables {
		tables[i] = TableFromRecord(rec, i)
	}
	name := doc.EventName
	if name == "" {
		name = eventName
	}
	return &models.Arrangement{
		TenantID:  doc.TenantID,
		EventID:   doc.EventID,
		EventName: name,
		Tables:    tables,
		Version:   doc.Version,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Save replaces the whole stored document with a's tables and returns the new
// version. a.Version must match the stored version (0 for a first save),
// otherwise ErrVersionConflict is returned and nothing is written. Seated
// guests get their table_assignment refreshed in the same transaction.
func (r *ArrangementRepository) Save(ctx context.Context, a *models.Arrangement) (int64, error) {
	records := make([]models.TableRecord, len(a.Tables))
	for i, t := range a.Tables {
		records[i] = SanitizeTable(t, i)
	}
	now := r.Now()
	next := a.Version + 1

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.Version == 0 {
			created := a.CreatedAt
			if created.IsZero() {
				created = now
			}
			doc := models.ArrangementDocument{
				TenantID:  a.TenantID,
				EventID:   a.EventID,
				EventName: a.EventName,
				Tables:    datatypes.JSONSlice[models.TableRecord](records),
				Version:   next,
				CreatedAt: created,
				UpdatedAt: now,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&doc)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrVersionConflict
			}
		} else {
			res := tx.Model(&models.ArrangementDocument{}).
				Where("tenant_id = ? AND event_id = ? AND version = ?", a.TenantID, a.EventID, a.Version).
				Updates(map[string]interface{}{
					"event_name": a.EventName,
					"tables":     datatypes.JSONSlice[models.TableRecord](records),
					"version":    next,
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrVersionConflict
			}
		}
		return writeTableAssignments(tx, a.TenantID, a.EventID, records)
	})
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("save arrangement %s: %w", a.EventID, err)
	}

	r.Log.WithFields(logrus.Fields{
		"tenant_id": a.TenantID,
		"event_id":  a.EventID,
		"tables":    len(records),
		"version":   next,
	}).Info("arrangement saved")
	return next, nil
}

func writeTableAssignments(tx *gorm.DB, tenantID, eventID string, records []models.TableRecord) error {
	err := tx.Model(&models.Guest{}).
		Where("tenant_id = ? AND assignment_event_id = ?", tenantID, eventID).
		Updates(map[string]interface{}{"table_assignment": nil, "assignment_event_id": nil}).Error
	if err != nil {
		return err
	}
	for _, rec := range records {
		if len(rec.Guests) == 0 {
			continue
		}
		ids := make([]string, len(rec.Guests))
		for i, g := range rec.Guests {
			ids[i] = g.ID
		}
		err := tx.Model(&models.Guest{}).
			Where("tenant_id = ? AND id IN ?", tenantID, ids).
			Updates(map[string]interface{}{"table_assignment": rec.Name, "assignment_event_id": eventID}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedArrangement is the starter arrangement of an event opened for the first
// time: a rectangular head table, a round family table and a square friends
// table.
func SeedArrangement(tenantID, eventID, eventName string, now time.Time) *models.Arrangement {
	seed := []struct {
		id, name string
		kind     models.ShapeKind
		capacity int
		x, y     float64
	}{
		{"head-table", "Head Table", models.ShapeRectangle, 8, 400, 120},
		{"family-table", "Family Table", models.ShapeRound, 10, 250, 320},
		{"friends-table", "Friends Table", models.ShapeSquare, 8, 550, 320},
	}
	tables := make([]models.Table, len(seed))
	for i, s := range seed {
		tables[i] = models.Table{
			ID:       s.id,
			Name:     s.name,
			Capacity: s.capacity,
			X:        s.x,
			Y:        s.y,
			Shape:    DefaultShape(s.kind, s.capacity),
			Guests:   []models.GuestRef{},
		}
	}
	return &models.Arrangement{
		TenantID:  tenantID,
		EventID:   eventID,
		EventName: eventName,
		Tables:    tables,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SanitizeTable flattens t for storage. Only the fields of t's shape are set
// and missing name, capacity or position get safe fallbacks.
func SanitizeTable(t models.Table, index int) models.TableRecord {
	rec := models.TableRecord{
		ID:       t.ID,
		Name:     strings.TrimSpace(t.Name),
		Capacity: t.Capacity,
		X:        finiteOrZero(t.X),
		Y:        finiteOrZero(t.Y),
		Guests:   make([]models.GuestRef, 0, len(t.Guests)),
	}
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("table-%d", index+1)
	}
	if rec.Name == "" {
		rec.Name = fmt.Sprintf("Table %d", index+1)
	}
	if rec.Capacity < 1 {
		rec.Capacity = DefaultCapacity
	}
	for _, g := range t.Guests {
		if g.Tags == nil {
			g.Tags = []string{}
		}
		rec.Guests = append(rec.Guests, g)
	}

	shape := t.Shape
	if shape == nil {
		shape = DefaultShape(models.ShapeRound, rec.Capacity)
	}
	rec.Shape = shape.Kind()
	switch s := shape.(type) {
	case models.Round:
		rec.Radius = float64Ptr(s.Radius)
	case models.Rectangle:
		rec.Width = float64Ptr(s.Width)
		rec.Height = float64Ptr(s.Height)
		rotation := NormalizeRotation(s.Rotation)
		rec.Rotation = &rotation
	case models.Square:
		rec.Size = float64Ptr(s.Size)
	}
	return rec
}

// TableFromRecord rebuilds a Table from its stored form, defaulting anything
// missing or malformed instead of failing.
func TableFromRecord(rec models.TableRecord, index int) models.Table {
	t := models.Table{
		ID:       rec.ID,
		Name:     rec.Name,
		Capacity: rec.Capacity,
		X:        finiteOrZero(rec.X),
		Y:        finiteOrZero(rec.Y),
		Guests:   make([]models.GuestRef, 0, len(rec.Guests)),
	}
	if t.ID == "" {
		t.ID = fmt.Sprintf("table-%d", index+1)
	}
	if t.Name == "" {
		t.Name = fmt.Sprintf("Table %d", index+1)
	}
	if t.Capacity < 1 {
		t.Capacity = DefaultCapacity
	}
	for _, g := range rec.Guests {
		if len(t.Guests) == t.Capacity {
			break
		}
		if g.Tags == nil {
			g.Tags = []string{}
		}
		t.Guests = append(t.Guests, g)
	}

	kind := rec.Shape
	if !kind.Valid() {
		kind = models.ShapeRound
	}
	def := DefaultShape(kind, t.Capacity)
	switch s := def.(type) {
	case models.Round:
		s.Radius = positiveOr(rec.Radius, s.Radius)
		t.Shape = s
	case models.Rectangle:
		s.Width = positiveOr(rec.Width, s.Width)
		s.Height = positiveOr(rec.Height, s.Height)
		if rec.Rotation != nil {
			s.Rotation = NormalizeRotation(*rec.Rotation)
		}
		t.Shape = s
	case models.Square:
		s.Size = positiveOr(rec.Size, s.Size)
		t.Shape = s
	}
	return t
}

func float64Ptr(v float64) *float64 { return &v }

func positiveOr(v *float64, fallback float64) float64 {
	if v == nil || *v <= 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fallback
	}
	return *v
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
