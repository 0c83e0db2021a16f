package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/expomatch/server/internal/model"
)

// EventRepo provides CRUD over the events table. Listings always join the
// organizer's display name; ownership checks for mutations live in the
// WHERE clause so a missing event and someone else's event are
// indistinguishable to the caller.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// EventFilter narrows List. City is matched as a substring, Date exactly
// (YYYY-MM-DD); empty fields are ignored.
type EventFilter struct {
	City string
	Date string
}

// EventInput carries the mutable fields of an event.
type EventInput struct {
	Title         string
	Description   string
	Date          string
	City          string
	Address       string
	Price         float64
	TotalCapacity uint32
	StandSize     *string
	Requirements  []string
	Image         *string
}

const dateLayout = "2006-01-02"

// List returns events matching the filter, soonest first.
func (r *EventRepo) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	q := `SELECT e.id, e.organizer_id, u.name, e.title, e.description, e.event_date,
	             e.city, e.address, e.price, e.total_capacity, e.remaining_capacity,
	             e.stand_size, e.requirements, e.image
	      FROM events e
	      JOIN users u ON u.id = e.organizer_id
	      WHERE 1=1`
	args := []interface{}{}
	if f.City != "" {
		q += " AND e.city LIKE ?"
		args = append(args, "%"+f.City+"%")
	}
	if f.Date != "" {
		q += " AND e.event_date = ?"
		args = append(args, f.Date)
	}
	q += " ORDER BY e.event_date ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// GetByID returns a single event with the organizer's name and email, or
// sql.ErrNoRows when absent.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	const q = `SELECT e.id, e.organizer_id, u.name, u.email, e.title, e.description, e.event_date,
	                  e.city, e.address, e.price, e.total_capacity, e.remaining_capacity,
	                  e.stand_size, e.requirements, e.image
	           FROM events e
	           JOIN users u ON u.id = e.organizer_id
	           WHERE e.id = ?`
	var ev model.Event
	var date time.Time
	var reqs, stand, image sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&ev.ID, &ev.OrganizerID, &ev.OrganizerName, &ev.OrganizerEmail,
		&ev.Title, &ev.Description, &date, &ev.City, &ev.Address, &ev.Price,
		&ev.TotalCapacity, &ev.RemainingCapacity, &stand, &reqs, &image,
	)
	if err != nil {
		return model.Event{}, err
	}
	fillEventOptionals(&ev, date, stand, reqs, image)
	return ev, nil
}

// Create inserts an event owned by organizerID. Remaining capacity starts
// equal to the total; only approvals consume it afterwards.
func (r *EventRepo) Create(ctx context.Context, organizerID uint64, in EventInput) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events
		 (organizer_id, title, description, event_date, city, address, price,
		  total_capacity, remaining_capacity, stand_size, requirements, image)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		organizerID, in.Title, in.Description, in.Date, in.City, in.Address, in.Price,
		in.TotalCapacity, in.TotalCapacity, in.StandSize,
		model.EncodeRequirements(in.Requirements), in.Image)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites an event's fields. It returns sql.ErrNoRows when the
// event does not exist or is not owned by organizerID; callers surface the
// same 404 for both. Remaining capacity is clamped to the new total so the
// 0 <= remaining <= total invariant survives capacity reductions.
func (r *EventRepo) Update(ctx context.Context, id, organizerID uint64, in EventInput) error {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM events WHERE id=? AND organizer_id=?", id, organizerID).Scan(&one)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE events SET
		   title=?, description=?, event_date=?, city=?, address=?, price=?,
		   total_capacity=?, remaining_capacity=LEAST(remaining_capacity, ?),
		   stand_size=?, requirements=?, image=?
		 WHERE id=? AND organizer_id=?`,
		in.Title, in.Description, in.Date, in.City, in.Address, in.Price,
		in.TotalCapacity, in.TotalCapacity, in.StandSize,
		model.EncodeRequirements(in.Requirements), in.Image,
		id, organizerID)
	return err
}

// Delete removes an event owned by organizerID. Missing and not-owned both
// yield sql.ErrNoRows.
func (r *EventRepo) Delete(ctx context.Context, id, organizerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM events WHERE id=? AND organizer_id=?", id, organizerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByOrganizer returns the organizer's events together with the total
// and approved application counts per event, soonest first.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.OwnedEvent, error) {
	const q = `SELECT e.id, e.organizer_id, u.name, e.title, e.description, e.event_date,
	                  e.city, e.address, e.price, e.total_capacity, e.remaining_capacity,
	                  e.stand_size, e.requirements, e.image,
	                  (SELECT COUNT(*) FROM applications a WHERE a.event_id = e.id),
	                  (SELECT COUNT(*) FROM applications a WHERE a.event_id = e.id AND a.state = 'approved')
	           FROM events e
	           JOIN users u ON u.id = e.organizer_id
	           WHERE e.organizer_id = ?
	           ORDER BY e.event_date ASC`
	rows, err := r.db.QueryContext(ctx, q, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.OwnedEvent, 0)
	for rows.Next() {
		var oe model.OwnedEvent
		var date time.Time
		var reqs, stand, image sql.NullString
		if err := rows.Scan(
			&oe.ID, &oe.OrganizerID, &oe.OrganizerName, &oe.Title, &oe.Description, &date,
			&oe.City, &oe.Address, &oe.Price, &oe.TotalCapacity, &oe.RemainingCapacity,
			&stand, &reqs, &image, &oe.ApplicationCount, &oe.ApprovedCount,
		); err != nil {
			return nil, err
		}
		fillEventOptionals(&oe.Event, date, stand, reqs, image)
		events = append(events, oe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// scanEvent reads one row produced by the List query.
func scanEvent(rows *sql.Rows) (model.Event, error) {
	var ev model.Event
	var date time.Time
	var reqs, stand, image sql.NullString
	err := rows.Scan(
		&ev.ID, &ev.OrganizerID, &ev.OrganizerName, &ev.Title, &ev.Description, &date,
		&ev.City, &ev.Address, &ev.Price, &ev.TotalCapacity, &ev.RemainingCapacity,
		&stand, &reqs, &image,
	)
	if err != nil {
		return model.Event{}, err
	}
	fillEventOptionals(&ev, date, stand, reqs, image)
	return ev, nil
}

func fillEventOptionals(ev *model.Event, date time.Time, stand, reqs, image sql.NullString) {
	ev.Date = date.UTC().Format(dateLayout)
	if stand.Valid {
		s := stand.String
		ev.StandSize = &s
	}
	if image.Valid {
		s := image.String
		ev.Image = &s
	}
	if reqs.Valid {
		ev.Requirements = model.DecodeRequirements(reqs.String)
	} else {
		ev.Requirements = []string{}
	}
}
