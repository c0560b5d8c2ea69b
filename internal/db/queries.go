package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries wraps database queries
type Queries struct {
	*pgxpool.Pool
}

// NewQueries creates a new Queries instance
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{Pool: pool}
}

// Form represents a forms row
type Form struct {
	ID          string
	Title       string
	Description string
	BannerURL   string
	IsPublished bool
	RequireAuth bool
	EventID     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FormField represents a form_fields row
type FormField struct {
	ID          string
	FormID      string
	Label       string
	Type        string
	Required    bool
	Options     []string
	Placeholder string
	ImageURL    string
	Section     int
	SortOrder   int
}

// FormResponse represents a form_responses row
type FormResponse struct {
	ID        string
	FormID    string
	Data      map[string]interface{}
	Identity  string
	CreatedAt time.Time
}

const formColumns = `id, title, description, banner_url, is_published, require_auth, event_id, created_at, updated_at`

func scanForm(row pgx.Row) (Form, error) {
	var f Form
	err := row.Scan(
		&f.ID, &f.Title, &f.Description, &f.BannerURL, &f.IsPublished,
		&f.RequireAuth, &f.EventID, &f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}

func (q *Queries) CreateForm(ctx context.Context, id, title, description string) (Form, error) {
	return scanForm(q.Pool.QueryRow(ctx,
		`INSERT INTO forms (id, title, description) VALUES ($1, $2, $3)
		RETURNING `+formColumns,
		id, title, description,
	))
}

func (q *Queries) GetFormByID(ctx context.Context, id string) (Form, error) {
	return scanForm(q.Pool.QueryRow(ctx,
		`SELECT `+formColumns+` FROM forms WHERE id = $1`,
		id,
	))
}

type UpdateFormSettingsParams struct {
	Title       string
	Description string
	BannerURL   string
	IsPublished bool
	RequireAuth bool
	EventID     *string
}

func (q *Queries) UpdateFormSettings(ctx context.Context, id string, p UpdateFormSettingsParams) (Form, error) {
	return scanForm(q.Pool.QueryRow(ctx,
		`UPDATE forms SET
			title = $2, description = $3, banner_url = $4,
			is_published = $5, require_auth = $6, event_id = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+formColumns,
		id, p.Title, p.Description, p.BannerURL, p.IsPublished, p.RequireAuth, p.EventID,
	))
}

func (q *Queries) ListFields(ctx context.Context, formID string) ([]FormField, error) {
	rows, err := q.Pool.Query(ctx,
		`SELECT id, form_id, label, type, required, options, placeholder, image_url, section, sort_order
		FROM form_fields
		WHERE form_id = $1
		ORDER BY sort_order ASC`,
		formID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make([]FormField, 0)
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func scanField(row pgx.Row) (FormField, error) {
	var f FormField
	var options []byte
	err := row.Scan(
		&f.ID, &f.FormID, &f.Label, &f.Type, &f.Required,
		&options, &f.Placeholder, &f.ImageURL, &f.Section, &f.SortOrder,
	)
	if err != nil {
		return f, err
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &f.Options); err != nil {
			return f, err
		}
	}
	return f, nil
}

type InsertFieldParams struct {
	ID          string
	FormID      string
	Label       string
	Type        string
	Required    bool
	Options     []string
	Placeholder string
	ImageURL    string
	Section     int
}

// InsertField appends the field at the end of the form: sort_order becomes
// the current maximum plus one.
func (q *Queries) InsertField(ctx context.Context, p InsertFieldParams) (FormField, error) {
	options, err := json.Marshal(optionsOrEmpty(p.Options))
	if err != nil {
		return FormField{}, err
	}
	return scanField(q.Pool.QueryRow(ctx,
		`INSERT INTO form_fields (id, form_id, label, type, required, options, placeholder, image_url, section, sort_order)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9,
			COALESCE(MAX(sort_order) + 1, 0)
		FROM form_fields WHERE form_id = $2
		RETURNING id, form_id, label, type, required, options, placeholder, image_url, section, sort_order`,
		p.ID, p.FormID, p.Label, p.Type, p.Required, options, p.Placeholder, p.ImageURL, p.Section,
	))
}

type UpdateFieldParams struct {
	Label       string
	Type        string
	Required    bool
	Options     []string
	Placeholder string
	ImageURL    string
	Section     int
}

// UpdateField edits a field's attributes. Sort order is deliberately left
// alone; only ReorderFields touches it.
func (q *Queries) UpdateField(ctx context.Context, formID, fieldID string, p UpdateFieldParams) (FormField, error) {
	options, err := json.Marshal(optionsOrEmpty(p.Options))
	if err != nil {
		return FormField{}, err
	}
	return scanField(q.Pool.QueryRow(ctx,
		`UPDATE form_fields SET
			label = $3, type = $4, required = $5, options = $6,
			placeholder = $7, image_url = $8, section = $9
		WHERE form_id = $1 AND id = $2
		RETURNING id, form_id, label, type, required, options, placeholder, image_url, section, sort_order`,
		formID, fieldID, p.Label, p.Type, p.Required, options, p.Placeholder, p.ImageURL, p.Section,
	))
}

func (q *Queries) DeleteField(ctx context.Context, formID, fieldID string) error {
	result, err := q.Pool.Exec(ctx,
		"DELETE FROM form_fields WHERE form_id = $1 AND id = $2",
		formID, fieldID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ReorderFields reassigns sort_order = position-in-list for every id in one
// transaction. The caller has already verified the list covers the field set.
func (q *Queries) ReorderFields(ctx context.Context, formID string, orderedIDs []string) error {
	tx, err := q.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, id := range orderedIDs {
		result, err := tx.Exec(ctx,
			"UPDATE form_fields SET sort_order = $3 WHERE form_id = $1 AND id = $2",
			formID, id, i,
		)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
	}
	return tx.Commit(ctx)
}

func (q *Queries) CreateResponse(ctx context.Context, id, formID string, data map[string]interface{}, identity string) (FormResponse, error) {
	var r FormResponse
	err := q.Pool.QueryRow(ctx,
		`INSERT INTO form_responses (id, form_id, data, identity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, form_id, data, identity, created_at`,
		id, formID, data, identity,
	).Scan(&r.ID, &r.FormID, &r.Data, &r.Identity, &r.CreatedAt)
	return r, err
}

func (q *Queries) ListResponses(ctx context.Context, formID string) ([]FormResponse, error) {
	rows, err := q.Pool.Query(ctx,
		`SELECT id, form_id, data, identity, created_at
		FROM form_responses
		WHERE form_id = $1
		ORDER BY created_at DESC`,
		formID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := make([]FormResponse, 0)
	for rows.Next() {
		var r FormResponse
		if err := rows.Scan(&r.ID, &r.FormID, &r.Data, &r.Identity, &r.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

func (q *Queries) CountResponses(ctx context.Context, formID string) (int, error) {
	var n int
	err := q.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM form_responses WHERE form_id = $1",
		formID,
	).Scan(&n)
	return n, err
}

func optionsOrEmpty(options []string) []string {
	if options == nil {
		return []string{}
	}
	return options
}
