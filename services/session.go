package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/wedding-seating/models"
)

type ArrangementStore interface {
	ArrangementSaver
	Load(ctx context.Context, tenantID, eventID, eventName string) (*models.Arrangement, error)
}

// Broadcaster pushes arrangement changes to clients watching an event.
type Broadcaster interface {
	Broadcast(tenantID, eventID, event string, data interface{})
}

const EventArrangementSaved = "arrangement_saved"

// PlannerSession is the editing state of one event: the seating store, the
// drag controller and the save queue persisting the store.
type PlannerSession struct {
	TenantID  string
	Event     models.Event
	Store     *SeatingStore
	Drag      *DragController
	Queue     *SaveQueue
	createdAt time.Time

	mu     sync.RWMutex
	guests map[string]models.Guest
}

// Snapshot copies the current tables into an arrangement ready to save.
func (s *PlannerSession) Snapshot() *models.Arrangement {
	return &models.Arrangement{
		TenantID:  s.TenantID,
		EventID:   s.Event.ID,
		EventName: s.Event.Name,
		Tables:    s.Store.Tables(),
		Version:   s.Queue.Version(),
		CreatedAt: s.createdAt,
	}
}

func (s *PlannerSession) Guest(guestID string) (models.Guest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.guests[guestID]
	return g, ok
}

// AssignGuest seats a guest from the directory at tableID, moving it from any
// other table.
func (s *PlannerSession) AssignGuest(guestID, tableID string) error {
	g, ok := s.Guest(guestID)
	if !ok {
		return ErrGuestNotFound
	}
	return s.Store.AssignGuest(g.Ref(), tableID)
}

func (s *PlannerSession) setGuests(guests []models.Guest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guests = make(map[string]models.Guest, len(guests))
	for _, g := range guests {
		s.guests[g.ID] = g
	}
}

// SessionManager keeps one PlannerSession per tenant and event and tracks
// which event each tenant is editing.
type SessionManager struct {
	SaveDelay        time.Duration
	StatusResetAfter time.Duration

	repo   ArrangementStore
	guests GuestDirectory
	events EventDirectory
	hub    Broadcaster
	log    logrus.FieldLogger
	ctx    context.Context

	mu       sync.Mutex
	sessions map[string]*PlannerSession
	active   map[string]string
}

// NewSessionManager builds a manager. hub may be nil.
func NewSessionManager(ctx context.Context, repo ArrangementStore, guests GuestDirectory, events EventDirectory, hub Broadcaster, log logrus.FieldLogger) *SessionManager {
	return &SessionManager{
		SaveDelay:        100 * time.Millisecond,
		StatusResetAfter: 3 * time.Second,
		repo:             repo,
		guests:           guests,
		events:           events,
		hub:              hub,
		log:              log,
		ctx:              ctx,
		sessions:         make(map[string]*PlannerSession),
		active:           make(map[string]string),
	}
}

func sessionKey(tenantID, eventID string) string {
	return tenantID + "/" + eventID
}

func (m *SessionManager) broadcast(tenantID, eventID, event string, data interface{}) {
	if m.hub != nil {
		m.hub.Broadcast(tenantID, eventID, event, data)
	}
}

// Open returns the session for the event, loading its arrangement (or the
// seed arrangement) on first use.
func (m *SessionManager) Open(ctx context.Context, tenantID, eventID string) (*PlannerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openLocked(ctx, tenantID, eventID)
}

func (m *SessionManager) openLocked(ctx context.Context, tenantID, eventID string) (*PlannerSession, error) {
	if s, ok := m.sessions[sessionKey(tenantID, eventID)]; ok {
		return s, nil
	}

	event, err := m.events.FindEvent(ctx, tenantID, eventID)
	if err != nil {
		return nil, err
	}
	arrangement, err := m.repo.Load(ctx, tenantID, event.ID, event.Name)
	if err != nil {
		return nil, err
	}

	log := m.log.WithFields(logrus.Fields{"tenant_id": tenantID, "event_id": event.ID})
	store := NewSeatingStore(arrangement.Tables)
	queue := NewSaveQueue(m.repo, arrangement.Version, log)
	queue.Delay = m.SaveDelay
	queue.StatusResetAfter = m.StatusResetAfter

	session := &PlannerSession{
		TenantID:  tenantID,
		Event:     *event,
		Store:     store,
		Drag:      NewDragController(store, log),
		Queue:     queue,
		createdAt: arrangement.CreatedAt,
	}
	if err := m.refreshPool(ctx, session); err != nil {
		return nil, err
	}

	store.OnChange(func(c Change) {
		queue.Schedule(session.Snapshot())
		m.broadcast(tenantID, event.ID, string(c.Kind), c)
	})
	queue.OnSaved(func(version int64) {
		m.broadcast(tenantID, event.ID, EventArrangementSaved, map[string]interface{}{"version": version})
	})
	queue.Start(m.ctx)

	m.sessions[sessionKey(tenantID, event.ID)] = session
	log.WithField("tables", len(arrangement.Tables)).Info("planner session opened")
	return session, nil
}

// RefreshPool reloads guests and groups and recomputes the draggable pool.
func (m *SessionManager) RefreshPool(ctx context.Context, session *PlannerSession) error {
	return m.refreshPool(ctx, session)
}

func (m *SessionManager) refreshPool(ctx context.Context, session *PlannerSession) error {
	guests, err := m.guests.ListGuests(ctx, session.TenantID)
	if err != nil {
		return err
	}
	groups, err := m.events.ListGroups(ctx, session.TenantID)
	if err != nil {
		return err
	}
	session.setGuests(guests)
	session.Drag.SetPool(NewAttendanceFilter(groups).Eligible(guests, session.Event.Name))
	return nil
}

// SwitchEvent makes eventID the tenant's active event. With flush set, the
// outgoing event's pending save is written first and a failure aborts the
// switch.
func (m *SessionManager) SwitchEvent(ctx context.Context, tenantID, eventID string, flush bool) (*PlannerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.active[tenantID]; ok && current != eventID && flush {
		if outgoing, ok := m.sessions[sessionKey(tenantID, current)]; ok {
			if err := outgoing.Queue.Flush(ctx); err != nil {
				return nil, fmt.Errorf("flush event %s before switch: %w", current, err)
			}
		}
	}

	session, err := m.openLocked(ctx, tenantID, eventID)
	if err != nil {
		return nil, err
	}
	if err := m.refreshPool(ctx, session); err != nil {
		return nil, err
	}
	m.active[tenantID] = eventID
	return session, nil
}

// Active returns the tenant's current event id.
func (m *SessionManager) Active(tenantID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.active[tenantID]
	return id, ok
}

// Close stops every save queue, writing what is still pending.
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := make([]*PlannerSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Queue.Stop()
	}
}
