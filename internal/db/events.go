package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Event represents an events row
type Event struct {
	ID          string
	Name        string
	CallbackURL *string
	CreatedAt   time.Time
}

// Registration represents a registrations row
type Registration struct {
	ID         string
	EventID    string
	Identity   string
	ResponseID *string
	CreatedAt  time.Time
}

// TrackLink represents a track_links row
type TrackLink struct {
	ID        string
	Slug      string
	TargetURL string
	CreatedAt time.Time
}

// ErrDuplicateRegistration signals the (event, identity) pair already exists.
var ErrDuplicateRegistration = errors.New("duplicate registration")

func (q *Queries) CreateEvent(ctx context.Context, id, name string, callbackURL *string) (Event, error) {
	var e Event
	err := q.Pool.QueryRow(ctx,
		`INSERT INTO events (id, name, callback_url) VALUES ($1, $2, $3)
		RETURNING id, name, callback_url, created_at`,
		id, name, callbackURL,
	).Scan(&e.ID, &e.Name, &e.CallbackURL, &e.CreatedAt)
	return e, err
}

func (q *Queries) GetEventByID(ctx context.Context, id string) (Event, error) {
	var e Event
	err := q.Pool.QueryRow(ctx,
		"SELECT id, name, callback_url, created_at FROM events WHERE id = $1",
		id,
	).Scan(&e.ID, &e.Name, &e.CallbackURL, &e.CreatedAt)
	return e, err
}

// CreateRegistration inserts a registration unless the identity already has
// one for the event, in which case ErrDuplicateRegistration is returned and
// nothing is written.
func (q *Queries) CreateRegistration(ctx context.Context, id, eventID, identity string, responseID *string) (Registration, error) {
	var r Registration
	err := q.Pool.QueryRow(ctx,
		`INSERT INTO registrations (id, event_id, identity, response_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, identity) DO NOTHING
		RETURNING id, event_id, identity, response_id, created_at`,
		id, eventID, identity, responseID,
	).Scan(&r.ID, &r.EventID, &r.Identity, &r.ResponseID, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Registration{}, ErrDuplicateRegistration
	}
	return r, err
}

func (q *Queries) GetRegistrationByID(ctx context.Context, id string) (Registration, error) {
	var r Registration
	err := q.Pool.QueryRow(ctx,
		`SELECT id, event_id, identity, response_id, created_at
		FROM registrations WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.EventID, &r.Identity, &r.ResponseID, &r.CreatedAt)
	return r, err
}

func (q *Queries) GetResponseByID(ctx context.Context, id string) (FormResponse, error) {
	var r FormResponse
	err := q.Pool.QueryRow(ctx,
		`SELECT id, form_id, data, identity, created_at
		FROM form_responses WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.FormID, &r.Data, &r.Identity, &r.CreatedAt)
	return r, err
}

func (q *Queries) CreateTrackLink(ctx context.Context, id, slug, targetURL string) (TrackLink, error) {
	var l TrackLink
	err := q.Pool.QueryRow(ctx,
		`INSERT INTO track_links (id, slug, target_url) VALUES ($1, $2, $3)
		RETURNING id, slug, target_url, created_at`,
		id, slug, targetURL,
	).Scan(&l.ID, &l.Slug, &l.TargetURL, &l.CreatedAt)
	return l, err
}

func (q *Queries) GetTrackLinkBySlug(ctx context.Context, slug string) (TrackLink, error) {
	var l TrackLink
	err := q.Pool.QueryRow(ctx,
		"SELECT id, slug, target_url, created_at FROM track_links WHERE slug = $1",
		slug,
	).Scan(&l.ID, &l.Slug, &l.TargetURL, &l.CreatedAt)
	return l, err
}

func (q *Queries) ListTrackLinks(ctx context.Context) ([]TrackLink, error) {
	rows, err := q.Pool.Query(ctx,
		"SELECT id, slug, target_url, created_at FROM track_links ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]TrackLink, 0)
	for rows.Next() {
		var l TrackLink
		if err := rows.Scan(&l.ID, &l.Slug, &l.TargetURL, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (q *Queries) DeleteTrackLink(ctx context.Context, id string) error {
	result, err := q.Pool.Exec(ctx, "DELETE FROM track_links WHERE id = $1", id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
