package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/expomatch/server/internal/middleware"
	"github.com/expomatch/server/internal/model"
	"github.com/expomatch/server/internal/queue"
	"github.com/expomatch/server/internal/repository"
)

// ApplicationStore is the slice of the application repository the ledger
// endpoints need. *repository.ApplicationRepo satisfies it.
type ApplicationStore interface {
	Create(ctx context.Context, eventID, vendorID uint64, message *string) (model.Application, error)
	StateFor(ctx context.Context, eventID, vendorID uint64) (string, bool, error)
	ListByVendor(ctx context.Context, vendorID uint64) ([]model.VendorApplication, error)
	ListByEvent(ctx context.Context, eventID, organizerID uint64) ([]model.EventApplication, error)
	Decide(ctx context.Context, id, organizerID uint64, state string) (repository.Decision, error)
	DeleteForVendor(ctx context.Context, id, vendorID uint64) error
}

// DecisionPublisher forwards a decision to the message broker. A nil
// publisher disables messaging; failures are logged, never surfaced.
type DecisionPublisher func(ctx context.Context, ev queue.ApplicationDecidedEvent) error

// ApplicationHandler serves the vendor application lifecycle and the
// organizer's review operations.
type ApplicationHandler struct {
	Apps    ApplicationStore
	Publish DecisionPublisher
}

func NewApplicationHandler(apps ApplicationStore, publish DecisionPublisher) *ApplicationHandler {
	return &ApplicationHandler{Apps: apps, Publish: publish}
}

type applyReq struct {
	EventID uint64  `json:"event_id" validate:"required"`
	Message *string `json:"message"`
}

type decideReq struct {
	State string `json:"state" validate:"required,oneof=approved rejected"`
}

// Create files a pending application. A missing event and a full event get
// the same 404 (the original client treats both as "cannot apply"); a
// repeated application is a 409. Applying never consumes a seat.
func (h *ApplicationHandler) Create(c echo.Context) error {
	var req applyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	app, err := h.Apps.Create(ctx, req.EventID, middleware.Identity(c).UserID, req.Message)
	switch {
	case err == sql.ErrNoRows || err == repository.ErrNoCapacity:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found or no seats available"})
	case err == repository.ErrDuplicate:
		return c.JSON(http.StatusConflict, echo.Map{"error": "you already applied to this event"})
	case err != nil:
		c.Logger().Errorf("create application: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not submit application"})
	}
	return c.JSON(http.StatusCreated, app)
}

// Mine lists the calling vendor's applications with event context.
func (h *ApplicationHandler) Mine(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	apps, err := h.Apps.ListByVendor(ctx, middleware.Identity(c).UserID)
	if err != nil {
		c.Logger().Errorf("list own applications: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load applications"})
	}
	return c.JSON(http.StatusOK, apps)
}

// Check reports whether the calling vendor already applied to an event.
// No application is a regular answer, not an error, so the client can use
// it to gate its submit button.
func (h *ApplicationHandler) Check(c echo.Context) error {
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	state, applied, err := h.Apps.StateFor(ctx, eventID, middleware.Identity(c).UserID)
	if err != nil {
		c.Logger().Errorf("check application: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not check application"})
	}
	resp := echo.Map{"applied": applied, "state": nil}
	if applied {
		resp["state"] = state
	}
	return c.JSON(http.StatusOK, resp)
}

// ListForEvent returns an event's applications to its organizer. Non-owners
// receive the same 404 as a missing event.
func (h *ApplicationHandler) ListForEvent(c echo.Context) error {
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	apps, err := h.Apps.ListByEvent(ctx, eventID, middleware.Identity(c).UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found or not yours"})
		}
		c.Logger().Errorf("list event applications: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load applications"})
	}
	return c.JSON(http.StatusOK, apps)
}

// Decide approves or rejects an application on behalf of the organizer
// owning its event, then notifies the broker. Approval of a full event
// fails with 400 and leaves the application untouched.
func (h *ApplicationHandler) Decide(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	var req decideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	d, err := h.Apps.Decide(ctx, id, middleware.Identity(c).UserID, req.State)
	switch {
	case err == sql.ErrNoRows:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
	case err == repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized"})
	case err == repository.ErrNoCapacity:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats left"})
	case err == repository.ErrInvalidState:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "state must be approved or rejected"})
	case err != nil:
		c.Logger().Errorf("decide application %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update application"})
	}

	if h.Publish != nil {
		if err := h.Publish(ctx, queue.ApplicationDecidedEvent{
			ApplicationID: d.ApplicationID,
			EventID:       d.EventID,
			EventTitle:    d.EventTitle,
			VendorID:      d.VendorID,
			State:         d.State,
			DecidedAt:     time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			c.Logger().Warnf("publish decision for application %d: %v", d.ApplicationID, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "application " + d.State, "state": d.State})
}

// Withdraw deletes the calling vendor's application. Someone else's
// application is indistinguishable from a missing one.
func (h *ApplicationHandler) Withdraw(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Apps.DeleteForVendor(ctx, id, middleware.Identity(c).UserID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found or not yours"})
		}
		c.Logger().Errorf("withdraw application %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not withdraw application"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "application withdrawn"})
}
