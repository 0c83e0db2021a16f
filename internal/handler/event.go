package handler

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/expomatch/server/internal/middleware"
	"github.com/expomatch/server/internal/model"
	"github.com/expomatch/server/internal/repository"
)

// EventStore is the slice of the event repository the catalog endpoints
// need. *repository.EventRepo satisfies it.
type EventStore interface {
	List(ctx context.Context, f repository.EventFilter) ([]model.Event, error)
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	Create(ctx context.Context, organizerID uint64, in repository.EventInput) (uint64, error)
	Update(ctx context.Context, id, organizerID uint64, in repository.EventInput) error
	Delete(ctx context.Context, id, organizerID uint64) error
	ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.OwnedEvent, error)
}

// EventHandler serves the public catalog and the organizer CRUD.
type EventHandler struct {
	Events EventStore
}

func NewEventHandler(events EventStore) *EventHandler {
	return &EventHandler{Events: events}
}

type eventReq struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	City          string   `json:"city" validate:"required"`
	Address       string   `json:"address" validate:"required"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	TotalCapacity *uint32  `json:"total_capacity" validate:"required,min=1"`
	StandSize     *string  `json:"stand_size"`
	Requirements  []string `json:"requirements"`
	Image         *string  `json:"image"`
}

func (r eventReq) input() repository.EventInput {
	return repository.EventInput{
		Title:         r.Title,
		Description:   r.Description,
		Date:          r.Date,
		City:          r.City,
		Address:       r.Address,
		Price:         *r.Price,
		TotalCapacity: *r.TotalCapacity,
		StandSize:     r.StandSize,
		Requirements:  r.Requirements,
		Image:         r.Image,
	}
}

// List is the public catalog: optional ?city= substring and ?date= exact
// filters, soonest events first.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	events, err := h.Events.List(ctx, repository.EventFilter{
		City: c.QueryParam("city"),
		Date: c.QueryParam("date"),
	})
	if err != nil {
		c.Logger().Errorf("list events: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load events"})
	}
	return c.JSON(http.StatusOK, events)
}

// Get returns one event with its organizer's contact details.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		c.Logger().Errorf("get event %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load event"})
	}
	return c.JSON(http.StatusOK, ev)
}

// Create publishes a new event owned by the calling organizer.
func (h *EventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	id, err := h.Events.Create(ctx, middleware.Identity(c).UserID, req.input())
	if err != nil {
		c.Logger().Errorf("create event: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create event"})
	}

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		// The row exists; only the read-back failed.
		c.Logger().Errorf("create event: read back %d: %v", id, err)
		return c.JSON(http.StatusCreated, echo.Map{"id": id})
	}
	return c.JSON(http.StatusCreated, ev)
}

// Update rewrites an event. Absent and not-owned answer with the same 404
// so callers cannot probe for other organizers' events.
func (h *EventHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Events.Update(ctx, id, middleware.Identity(c).UserID, req.input()); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found or not yours"})
		}
		c.Logger().Errorf("update event %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update event"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event updated"})
}

// Delete removes an event, same 404 conflation as Update.
func (h *EventHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Events.Delete(ctx, id, middleware.Identity(c).UserID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found or not yours"})
		}
		c.Logger().Errorf("delete event %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete event"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted"})
}

// Mine lists the organizer's events with application aggregates.
func (h *EventHandler) Mine(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	events, err := h.Events.ListByOrganizer(ctx, middleware.Identity(c).UserID)
	if err != nil {
		c.Logger().Errorf("list own events: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load events"})
	}
	return c.JSON(http.StatusOK, events)
}
