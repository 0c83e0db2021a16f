package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/expomatch/server/internal/middleware"
	"github.com/expomatch/server/internal/model"
	"github.com/expomatch/server/internal/repository"
	"github.com/expomatch/server/internal/utils"
)

// memStore is an in-memory stand-in for the three repositories. It follows
// the same sentinel-error contract, so handler tests exercise the full
// status mapping without a MySQL instance. All mutating operations hold the
// mutex for their whole critical section, mirroring the row locks the real
// repository takes.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]repository.User
	events map[uint64]*model.Event
	apps   map[uint64]*model.Application
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[uint64]repository.User{},
		events: map[uint64]*model.Event{},
		apps:   map[uint64]*model.Application{},
	}
}

func (s *memStore) id() uint64 {
	s.nextID++
	return s.nextID
}

// ----- UserStore -----

func (s *memStore) Create(ctx context.Context, nu repository.NewUser, cost int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(nu.Email))
	for _, u := range s.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(nu.Password, cost)
	if err != nil {
		return 0, err
	}
	id := s.id()
	s.users[id] = repository.User{
		ID:           id,
		Name:         nu.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         nu.Role,
		Phone:        nu.Phone,
		Bio:          nu.Bio,
		CreatedAt:    time.Now().UTC(),
	}
	return id, nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, sql.ErrNoRows
}

func (s *memStore) GetByID(ctx context.Context, id uint64) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repository.User{}, sql.ErrNoRows
	}
	return u, nil
}

// ----- EventStore -----

func eventFromInput(id, organizerID uint64, in repository.EventInput) model.Event {
	reqs := in.Requirements
	if reqs == nil {
		reqs = []string{}
	}
	return model.Event{
		ID:                id,
		OrganizerID:       organizerID,
		Title:             in.Title,
		Description:       in.Description,
		Date:              in.Date,
		City:              in.City,
		Address:           in.Address,
		Price:             in.Price,
		TotalCapacity:     in.TotalCapacity,
		RemainingCapacity: in.TotalCapacity,
		StandSize:         in.StandSize,
		Requirements:      reqs,
		Image:             in.Image,
	}
}

func (s *memStore) List(ctx context.Context, f repository.EventFilter) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Event, 0)
	for _, ev := range s.events {
		if f.City != "" && !strings.Contains(ev.City, f.City) {
			continue
		}
		if f.Date != "" && ev.Date != f.Date {
			continue
		}
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *memStore) GetEventByID(ctx context.Context, id uint64) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return model.Event{}, sql.ErrNoRows
	}
	return *ev, nil
}

func (s *memStore) CreateEvent(ctx context.Context, organizerID uint64, in repository.EventInput) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	ev := eventFromInput(id, organizerID, in)
	s.events[id] = &ev
	return id, nil
}

func (s *memStore) Update(ctx context.Context, id, organizerID uint64, in repository.EventInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok || ev.OrganizerID != organizerID {
		return sql.ErrNoRows
	}
	remaining := ev.RemainingCapacity
	if remaining > in.TotalCapacity {
		remaining = in.TotalCapacity
	}
	next := eventFromInput(id, organizerID, in)
	next.RemainingCapacity = remaining
	*ev = next
	return nil
}

func (s *memStore) Delete(ctx context.Context, id, organizerID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok || ev.OrganizerID != organizerID {
		return sql.ErrNoRows
	}
	delete(s.events, id)
	return nil
}

func (s *memStore) ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.OwnedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.OwnedEvent, 0)
	for _, ev := range s.events {
		if ev.OrganizerID != organizerID {
			continue
		}
		oe := model.OwnedEvent{Event: *ev}
		for _, a := range s.apps {
			if a.EventID != ev.ID {
				continue
			}
			oe.ApplicationCount++
			if a.State == model.StateApproved {
				oe.ApprovedCount++
			}
		}
		out = append(out, oe)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// ----- ApplicationStore -----

func (s *memStore) CreateApplication(ctx context.Context, eventID, vendorID uint64, message *string) (model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[eventID]
	if !ok {
		return model.Application{}, sql.ErrNoRows
	}
	if ev.RemainingCapacity == 0 {
		return model.Application{}, repository.ErrNoCapacity
	}
	for _, a := range s.apps {
		if a.EventID == eventID && a.VendorID == vendorID {
			return model.Application{}, repository.ErrDuplicate
		}
	}
	app := model.Application{
		ID:        s.id(),
		EventID:   eventID,
		VendorID:  vendorID,
		Message:   message,
		State:     model.StatePending,
		CreatedAt: time.Now().UTC(),
	}
	s.apps[app.ID] = &app
	return app, nil
}

func (s *memStore) StateFor(ctx context.Context, eventID, vendorID uint64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.apps {
		if a.EventID == eventID && a.VendorID == vendorID {
			return a.State, true, nil
		}
	}
	return "", false, nil
}

func (s *memStore) ListByVendor(ctx context.Context, vendorID uint64) ([]model.VendorApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.VendorApplication, 0)
	for _, a := range s.apps {
		if a.VendorID != vendorID {
			continue
		}
		ev := s.events[a.EventID]
		out = append(out, model.VendorApplication{
			Application: *a,
			EventTitle:  ev.Title,
			EventDate:   ev.Date,
			EventCity:   ev.City,
			EventPrice:  ev.Price,
			EventImage:  ev.Image,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) ListByEvent(ctx context.Context, eventID, organizerID uint64) ([]model.EventApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[eventID]
	if !ok || ev.OrganizerID != organizerID {
		return nil, sql.ErrNoRows
	}
	out := make([]model.EventApplication, 0)
	for _, a := range s.apps {
		if a.EventID != eventID {
			continue
		}
		u := s.users[a.VendorID]
		out = append(out, model.EventApplication{
			Application: *a,
			VendorName:  u.Name,
			VendorEmail: u.Email,
			VendorPhone: u.Phone,
			VendorBio:   u.Bio,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) Decide(ctx context.Context, id, organizerID uint64, newState string) (repository.Decision, error) {
	if !model.ValidDecision(newState) {
		return repository.Decision{}, repository.ErrInvalidState
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.apps[id]
	if !ok {
		return repository.Decision{}, sql.ErrNoRows
	}
	ev := s.events[a.EventID]
	if ev.OrganizerID != organizerID {
		return repository.Decision{}, repository.ErrForbidden
	}
	d := repository.Decision{
		ApplicationID: id,
		EventID:       ev.ID,
		EventTitle:    ev.Title,
		VendorID:      a.VendorID,
		State:         newState,
	}
	if a.State == newState {
		return d, nil
	}

	switch {
	case newState == model.StateApproved:
		if ev.RemainingCapacity == 0 {
			return repository.Decision{}, repository.ErrNoCapacity
		}
		ev.RemainingCapacity--
	case newState == model.StateRejected && a.State == model.StateApproved:
		if ev.RemainingCapacity < ev.TotalCapacity {
			ev.RemainingCapacity++
		}
	}
	a.State = newState
	return d, nil
}

func (s *memStore) DeleteForVendor(ctx context.Context, id, vendorID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.apps[id]
	if !ok || a.VendorID != vendorID {
		return sql.ErrNoRows
	}
	if a.State == model.StateApproved {
		if ev := s.events[a.EventID]; ev != nil && ev.RemainingCapacity < ev.TotalCapacity {
			ev.RemainingCapacity++
		}
	}
	delete(s.apps, id)
	return nil
}

// eventStoreAdapter and appStoreAdapter split memStore across interfaces
// whose method names collide (Create, GetByID).
type eventStoreAdapter struct{ *memStore }

func (a eventStoreAdapter) Create(ctx context.Context, organizerID uint64, in repository.EventInput) (uint64, error) {
	return a.CreateEvent(ctx, organizerID, in)
}

func (a eventStoreAdapter) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	return a.GetEventByID(ctx, id)
}

type appStoreAdapter struct{ *memStore }

func (a appStoreAdapter) Create(ctx context.Context, eventID, vendorID uint64, message *string) (model.Application, error) {
	return a.CreateApplication(ctx, eventID, vendorID, message)
}

var (
	_ UserStore        = (*memStore)(nil)
	_ EventStore       = eventStoreAdapter{}
	_ ApplicationStore = appStoreAdapter{}
)

// ----- request plumbing -----

// doJSON runs a handler through a fresh echo context with an optional JSON
// body, path params and an injected identity.
func doJSON(t *testing.T, method, target string, body string, identity *utils.Claims, params map[string]string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if identity != nil {
		c.Set(middleware.IdentityKey, *identity)
	}
	if len(params) > 0 {
		names := make([]string, 0, len(params))
		values := make([]string, 0, len(params))
		for k, v := range params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func organizerClaims(id uint64) *utils.Claims {
	return &utils.Claims{UserID: id, Email: "org@example.com", Name: "Org", Role: model.RoleOrganizer}
}

func vendorClaims(id uint64) *utils.Claims {
	return &utils.Claims{UserID: id, Email: "vendor@example.com", Name: "Vendor", Role: model.RoleVendor}
}

func seedEvent(t *testing.T, s *memStore, organizerID uint64, capacity uint32) uint64 {
	t.Helper()
	id, err := s.CreateEvent(context.Background(), organizerID, repository.EventInput{
		Title:         "Fiera del Gusto",
		Description:   "food expo",
		Date:          "2026-10-20",
		City:          "Torino",
		Address:       "Via Roma 1",
		Price:         150,
		TotalCapacity: capacity,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return id
}
