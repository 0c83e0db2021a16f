package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/expomatch/server/internal/model"
)

// ApplicationRepo owns the vendor-application state machine and, with it,
// the remaining-capacity bookkeeping on events. Every transition that
// enters or leaves the approved state runs inside a transaction that locks
// the application row (and, through the join, its event row) and adjusts
// the counter with a guarded conditional UPDATE whose RowsAffected result
// is checked. Two concurrent approvals of an event's last seat therefore
// cannot both succeed.
type ApplicationRepo struct {
	db *sql.DB
}

// NewApplicationRepo returns an ApplicationRepo bound to the given database.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

// Decision describes the outcome of an approve/reject so callers can
// publish a notification without re-querying.
type Decision struct {
	ApplicationID uint64
	EventID       uint64
	EventTitle    string
	VendorID      uint64
	State         string
}

// Create files a pending application from vendorID for eventID. The event
// must exist and still have seats (sql.ErrNoRows / ErrNoCapacity);
// a second application for the same pair hits the unique index and maps to
// ErrDuplicate. Creating a pending application does not consume capacity —
// a seat is taken only at approval.
func (r *ApplicationRepo) Create(ctx context.Context, eventID, vendorID uint64, message *string) (model.Application, error) {
	var remaining uint32
	err := r.db.QueryRowContext(ctx,
		"SELECT remaining_capacity FROM events WHERE id=?", eventID).Scan(&remaining)
	if err != nil {
		return model.Application{}, err
	}
	if remaining == 0 {
		return model.Application{}, ErrNoCapacity
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO applications (event_id, vendor_id, message) VALUES (?,?,?)",
		eventID, vendorID, message)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Application{}, ErrDuplicate
		}
		return model.Application{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Application{}, err
	}
	return model.Application{
		ID:        uint64(id),
		EventID:   eventID,
		VendorID:  vendorID,
		Message:   message,
		State:     model.StatePending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// StateFor looks up the vendor's own application state for an event. A
// missing row is not an error: it reports applied=false.
func (r *ApplicationRepo) StateFor(ctx context.Context, eventID, vendorID uint64) (string, bool, error) {
	var state string
	err := r.db.QueryRowContext(ctx,
		"SELECT state FROM applications WHERE event_id=? AND vendor_id=?",
		eventID, vendorID).Scan(&state)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return state, true, nil
}

// ListByVendor returns the vendor's applications joined with the event
// fields shown in their dashboard, newest first.
func (r *ApplicationRepo) ListByVendor(ctx context.Context, vendorID uint64) ([]model.VendorApplication, error) {
	const q = `SELECT a.id, a.event_id, a.vendor_id, a.message, a.state, a.created_at,
	                  e.title, e.event_date, e.city, e.price, e.image
	           FROM applications a
	           JOIN events e ON e.id = a.event_id
	           WHERE a.vendor_id = ?
	           ORDER BY a.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]model.VendorApplication, 0)
	for rows.Next() {
		var va model.VendorApplication
		var date time.Time
		var image sql.NullString
		if err := rows.Scan(
			&va.ID, &va.EventID, &va.VendorID, &va.Message, &va.State, &va.CreatedAt,
			&va.EventTitle, &date, &va.EventCity, &va.EventPrice, &image,
		); err != nil {
			return nil, err
		}
		va.EventDate = date.UTC().Format(dateLayout)
		if image.Valid {
			s := image.String
			va.EventImage = &s
		}
		apps = append(apps, va)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

// ListByEvent returns all applications for an event, with the applying
// vendors' contact details, newest first. The caller must own the event;
// a missing event and someone else's event both return sql.ErrNoRows so
// non-owners cannot probe for existence.
func (r *ApplicationRepo) ListByEvent(ctx context.Context, eventID, organizerID uint64) ([]model.EventApplication, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM events WHERE id=? AND organizer_id=?", eventID, organizerID).Scan(&one)
	if err != nil {
		return nil, err
	}

	const q = `SELECT a.id, a.event_id, a.vendor_id, a.message, a.state, a.created_at,
	                  u.name, u.email, u.phone, u.bio
	           FROM applications a
	           JOIN users u ON u.id = a.vendor_id
	           WHERE a.event_id = ?
	           ORDER BY a.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]model.EventApplication, 0)
	for rows.Next() {
		var ea model.EventApplication
		if err := rows.Scan(
			&ea.ID, &ea.EventID, &ea.VendorID, &ea.Message, &ea.State, &ea.CreatedAt,
			&ea.VendorName, &ea.VendorEmail, &ea.VendorPhone, &ea.VendorBio,
		); err != nil {
			return nil, err
		}
		apps = append(apps, ea)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

// Decide moves an application to approved or rejected on behalf of the
// organizer owning its event.
//
// Transition rules, enforced under a row lock:
//   - approve requires a free seat: the decrement is guarded by
//     remaining_capacity > 0 and a zero RowsAffected aborts with
//     ErrNoCapacity, state untouched;
//   - rejecting a previously approved application releases its seat
//     (guarded by remaining_capacity < total_capacity);
//   - setting the state it already has is a no-op and never adjusts
//     capacity, so repeated decisions cannot double-count.
//
// sql.ErrNoRows means the application does not exist; ErrForbidden means
// the event belongs to a different organizer.
func (r *ApplicationRepo) Decide(ctx context.Context, id, organizerID uint64, newState string) (Decision, error) {
	if !model.ValidDecision(newState) {
		return Decision{}, ErrInvalidState
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Decision{}, err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `SELECT a.event_id, a.vendor_id, a.state, e.organizer_id, e.title
	           FROM applications a
	           JOIN events e ON e.id = a.event_id
	           WHERE a.id = ?
	           FOR UPDATE`
	var d Decision
	var prior string
	var actualOrganizerID uint64
	d.ApplicationID = id
	if err := tx.QueryRowContext(ctx, q, id).Scan(
		&d.EventID, &d.VendorID, &prior, &actualOrganizerID, &d.EventTitle,
	); err != nil {
		return Decision{}, err
	}
	if actualOrganizerID != organizerID {
		return Decision{}, ErrForbidden
	}
	d.State = newState

	if prior == newState {
		// Repeating a decision changes nothing; commit to release the lock.
		return d, tx.Commit()
	}

	switch {
	case newState == model.StateApproved:
		res, err := tx.ExecContext(ctx,
			"UPDATE events SET remaining_capacity = remaining_capacity - 1 WHERE id=? AND remaining_capacity > 0",
			d.EventID)
		if err != nil {
			return Decision{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return Decision{}, err
		}
		if n == 0 {
			return Decision{}, ErrNoCapacity
		}
	case newState == model.StateRejected && prior == model.StateApproved:
		// Compensating release of the seat the approval took.
		if _, err := tx.ExecContext(ctx,
			"UPDATE events SET remaining_capacity = remaining_capacity + 1 WHERE id=? AND remaining_capacity < total_capacity",
			d.EventID); err != nil {
			return Decision{}, err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE applications SET state=? WHERE id=?", newState, id); err != nil {
		return Decision{}, err
	}
	return d, tx.Commit()
}

// DeleteForVendor withdraws an application. Ownership sits in the WHERE
// clause, so a missing application and another vendor's application both
// return sql.ErrNoRows. Withdrawing an approved application releases its
// seat in the same transaction, before the row disappears.
func (r *ApplicationRepo) DeleteForVendor(ctx context.Context, id, vendorID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var eventID uint64
	var state string
	if err := tx.QueryRowContext(ctx,
		"SELECT event_id, state FROM applications WHERE id=? AND vendor_id=? FOR UPDATE",
		id, vendorID).Scan(&eventID, &state); err != nil {
		return err
	}

	if state == model.StateApproved {
		if _, err := tx.ExecContext(ctx,
			"UPDATE events SET remaining_capacity = remaining_capacity + 1 WHERE id=? AND remaining_capacity < total_capacity",
			eventID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM applications WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}
