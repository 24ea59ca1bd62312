package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/wedding-seating/models"
	"gorm.io/gorm"
)

// GuestDirectory reads the tenant's guests. Guest records are owned elsewhere.
type GuestDirectory interface {
	ListGuests(ctx context.Context, tenantID string) ([]models.Guest, error)
}

// EventDirectory reads the tenant's events and guest groups.
type EventDirectory interface {
	ListEvents(ctx context.Context, tenantID string) ([]models.Event, error)
	FindEvent(ctx context.Context, tenantID, eventID string) (*models.Event, error)
	ListGroups(ctx context.Context, tenantID string) ([]models.Group, error)
}

type GormDirectory struct {
	DB *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{DB: db}
}

func (d *GormDirectory) ListGuests(ctx context.Context, tenantID string) ([]models.Guest, error) {
	var guests []models.Guest
	if err := d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("id").Find(&guests).Error; err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	return guests, nil
}

func (d *GormDirectory) ListEvents(ctx context.Context, tenantID string) ([]models.Event, error) {
	var events []models.Event
	if err := d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("date, name").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (d *GormDirectory) FindEvent(ctx context.Context, tenantID, eventID string) (*models.Event, error) {
	var event models.Event
	err := d.DB.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, eventID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event %s: %w", eventID, err)
	}
	return &event, nil
}

func (d *GormDirectory) ListGroups(ctx context.Context, tenantID string) ([]models.Group, error) {
	var groups []models.Group
	if err := d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}
