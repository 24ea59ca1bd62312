package services

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrTableNotFound = errors.New("table not found")
	ErrGuestNotFound = errors.New("guest not found")
)

var (
	ErrInvalidTable           = errors.New("invalid table")
	ErrTableFull              = errors.New("table is full, guest left unassigned")
	ErrCapacityBelowOccupancy = errors.New("capacity is below the number of seated guests")
)

var (
	ErrNotDraggable   = errors.New("guest is not draggable")
	ErrNoDraggedGuest = errors.New("no guest is being dragged")
)

var (
	ErrVersionConflict = errors.New("arrangement was changed by another save")
	ErrQueueStopped    = errors.New("save queue is stopped")
)
