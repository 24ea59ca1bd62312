package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/wedding-seating/middlewares"
	"github.com/yeremiapane/wedding-seating/models"
	"github.com/yeremiapane/wedding-seating/services"
	"github.com/yeremiapane/wedding-seating/utils"
)

type SeatingController struct {
	Sessions *services.SessionManager
	Events   services.EventDirectory
}

func NewSeatingController(sessions *services.SessionManager, events services.EventDirectory) *SeatingController {
	return &SeatingController{Sessions: sessions, Events: events}
}

type tableView struct {
	models.TableRecord
	Seats []models.Seat `json:"seats"`
}

type arrangementView struct {
	EventID    string              `json:"event_id"`
	EventName  string              `json:"event_name"`
	Version    int64               `json:"version"`
	SaveStatus services.SaveStatus `json:"save_status"`
	Tables     []tableView         `json:"tables"`
}

func newTableView(t models.Table, index int) tableView {
	return tableView{
		TableRecord: services.SanitizeTable(t, index),
		Seats:       services.ComputeSeats(t),
	}
}

func newArrangementView(s *services.PlannerSession) arrangementView {
	tables := s.Store.Tables()
	status, _ := s.Queue.Status()
	view := arrangementView{
		EventID:    s.Event.ID,
		EventName:  s.Event.Name,
		Version:    s.Queue.Version(),
		SaveStatus: status,
		Tables:     make([]tableView, len(tables)),
	}
	for i, t := range tables {
		view.Tables[i] = newTableView(t, i)
	}
	return view
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrGuestNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidTable),
		errors.Is(err, services.ErrCapacityBelowOccupancy):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrTableFull),
		errors.Is(err, services.ErrNotDraggable),
		errors.Is(err, services.ErrNoDraggedGuest),
		errors.Is(err, services.ErrVersionConflict):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.WithError(err).WithField("path", c.Request.URL.Path).Error("seating request failed")
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func (sc *SeatingController) session(c *gin.Context) (*services.PlannerSession, bool) {
	s, err := sc.Sessions.Open(c.Request.Context(), c.GetString(middlewares.ContextTenantID), c.Param("event_id"))
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return s, true
}

// ListEvents -> events of the tenant
func (sc *SeatingController) ListEvents(c *gin.Context) {
	events, err := sc.Events.ListEvents(c.Request.Context(), c.GetString(middlewares.ContextTenantID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of events", events)
}

// OpenEvent -> makes the event active; ?flush=true saves the previous event first
func (sc *SeatingController) OpenEvent(c *gin.Context) {
	flush, _ := strconv.ParseBool(c.DefaultQuery("flush", "true"))
	s, err := sc.Sessions.SwitchEvent(c.Request.Context(), c.GetString(middlewares.ContextTenantID), c.Param("event_id"), flush)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Event opened", newArrangementView(s))
}

// GetArrangement -> tables with computed seats
func (sc *SeatingController) GetArrangement(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Arrangement", newArrangementView(s))
}

func (sc *SeatingController) CreateTable(c *gin.Context) {
	var spec services.TableSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	s, ok := sc.session(c)
	if !ok {
		return
	}

	table, err := s.Store.AddTable(spec)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created", newTableView(table, len(s.Store.Tables())-1))
}

// UpdateTable -> rename, resize or move a table
func (sc *SeatingController) UpdateTable(c *gin.Context) {
	var body services.TableUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	s, ok := sc.session(c)
	if !ok {
		return
	}

	table, err := s.Store.UpdateTable(c.Param("table_id"), body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", newTableView(table, 0))
}

func (sc *SeatingController) DeleteTable(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	tableID := c.Param("table_id")
	if err := s.Store.RemoveTable(tableID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": tableID})
}

func (sc *SeatingController) RotateTable(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	table, err := s.Store.RotateTable(c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table rotated", newTableView(table, 0))
}

func (sc *SeatingController) AssignGuest(c *gin.Context) {
	var body struct {
		GuestID string `json:"guest_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	s, ok := sc.session(c)
	if !ok {
		return
	}
	if err := s.AssignGuest(body.GuestID, c.Param("table_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest assigned", gin.H{
		"guest_id": body.GuestID,
		"table_id": c.Param("table_id"),
	})
}

func (sc *SeatingController) UnassignGuest(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	if err := s.Store.RemoveGuest(c.Param("guest_id"), c.Param("table_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest unassigned", gin.H{
		"guest_id": c.Param("guest_id"),
		"table_id": c.Param("table_id"),
	})
}

// GetCandidates -> eligible guests not seated yet
func (sc *SeatingController) GetCandidates(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Draggable guests", s.Drag.Draggable())
}

func (sc *SeatingController) StartDrag(c *gin.Context) {
	var body struct {
		GuestID string `json:"guest_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	s, ok := sc.session(c)
	if !ok {
		return
	}
	if err := s.Drag.Start(body.GuestID); err != nil {
		respondServiceError(c, err)
		return
	}
	state, guestID := s.Drag.State()
	utils.RespondJSON(c, http.StatusOK, "Drag started", gin.H{"state": state, "guest_id": guestID})
}

func (sc *SeatingController) EndDrag(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	s.Drag.End()
	utils.RespondJSON(c, http.StatusOK, "Drag ended", gin.H{"state": services.DragIdle})
}

// Drop -> table_id empty means the drop landed outside every table
func (sc *SeatingController) Drop(c *gin.Context) {
	var body struct {
		TableID string `json:"table_id"`
		GuestID string `json:"guest_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	s, ok := sc.session(c)
	if !ok {
		return
	}
	result, err := s.Drag.Drop(body.TableID, body.GuestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Drop handled", result)
}

// Flush -> write the pending save now
func (sc *SeatingController) Flush(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	if err := s.Queue.Flush(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Arrangement saved", gin.H{"version": s.Queue.Version()})
}

func (sc *SeatingController) GetSaveStatus(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	status, err := s.Queue.Status()
	resp := gin.H{"status": status, "version": s.Queue.Version(), "pending": s.Queue.Pending()}
	if err != nil {
		resp["error"] = err.Error()
	}
	utils.RespondJSON(c, http.StatusOK, "Save status", resp)
}

// jsonExport renders the export summary as the response body.
type jsonExport struct {
	c *gin.Context
}

func (j jsonExport) Render(_ context.Context, summary services.ArrangementSummary) error {
	utils.RespondJSON(j.c, http.StatusOK, "Arrangement summary", summary)
	return nil
}

// GetSummary -> per-table guest summary for the export renderer
func (sc *SeatingController) GetSummary(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	if err := services.Export(c.Request.Context(), s, jsonExport{c: c}); err != nil {
		respondServiceError(c, err)
	}
}
