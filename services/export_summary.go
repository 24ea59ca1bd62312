package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/wedding-seating/models"
)

// ExportRenderer turns an arrangement summary into a printable artefact. The
// renderer lives outside this service.
type ExportRenderer interface {
	Render(ctx context.Context, summary ArrangementSummary) error
}

// TableSummary is one row of the per-table guest summary handed to the export
// renderer.
type TableSummary struct {
	TableID  string           `json:"table_id"`
	Name     string           `json:"name"`
	Shape    models.ShapeKind `json:"shape"`
	Capacity int              `json:"capacity"`
	Seated   int              `json:"seated"`
	Free     int              `json:"free"`
	Guests   []string         `json:"guests"`
}

type ArrangementSummary struct {
	EventID    string         `json:"event_id"`
	EventName  string         `json:"event_name"`
	Tables     []TableSummary `json:"tables"`
	Seated     int            `json:"seated"`
	Capacity   int            `json:"capacity"`
	Unassigned int            `json:"unassigned"`
}

// Summarize builds the tabular summary of a session's current arrangement.
func Summarize(s *PlannerSession) ArrangementSummary {
	tables := s.Store.Tables()
	out := ArrangementSummary{
		EventID:    s.Event.ID,
		EventName:  s.Event.Name,
		Tables:     make([]TableSummary, len(tables)),
		Unassigned: len(s.Drag.Draggable()),
	}
	for i, t := range tables {
		names := make([]string, len(t.Guests))
		for j, g := range t.Guests {
			names[j] = g.Name
		}
		kind := models.ShapeRound
		if t.Shape != nil {
			kind = t.Shape.Kind()
		}
		out.Tables[i] = TableSummary{
			TableID:  t.ID,
			Name:     t.Name,
			Shape:    kind,
			Capacity: t.Capacity,
			Seated:   len(t.Guests),
			Free:     t.Capacity - len(t.Guests),
			Guests:   names,
		}
		out.Seated += len(t.Guests)
		out.Capacity += t.Capacity
	}
	return out
}

// Export summarizes the session and hands the result to r.
func Export(ctx context.Context, s *PlannerSession, r ExportRenderer) error {
	summary := Summarize(s)
	if err := r.Render(ctx, summary); err != nil {
		return fmt.Errorf("render export for event %s: %w", s.Event.ID, err)
	}
	return nil
}
