package model

// FieldType enumerates the input kinds a form field can render as.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldURL      FieldType = "url"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldFile     FieldType = "file"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldTextarea, FieldEmail, FieldTel, FieldURL,
		FieldNumber, FieldDate, FieldSelect, FieldRadio, FieldCheckbox, FieldFile:
		return true
	}
	return false
}

// HasOptions reports whether the type carries an option list.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldRadio || t == FieldCheckbox
}

// Multi reports whether the answer value is an array rather than a scalar.
func (t FieldType) Multi() bool {
	return t == FieldCheckbox
}

// FormField is one entry in a form definition. Section groups fields into
// pages; SortOrder fixes the position within the full field list and is
// persisted explicitly so reordering survives reload.
type FormField struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options"`
	Placeholder string    `json:"placeholder,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Section     int       `json:"section"`
	SortOrder   int       `json:"order"`
}

// FormDefinition is the authored schema of a form.
type FormDefinition struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	BannerURL     string      `json:"bannerUrl,omitempty"`
	IsPublished   bool        `json:"isPublished"`
	RequireAuth   bool        `json:"requireAuth"`
	EventID       *string     `json:"eventId,omitempty"`
	Fields        []FormField `json:"fields"`
	ResponseCount int         `json:"responseCount,omitempty"`
	CreatedAt     string      `json:"createdAt,omitempty"`
	UpdatedAt     string      `json:"updatedAt,omitempty"`
}

// FormResponse is one submission. Data maps field id to its answer: a string
// for scalar field types, []string for checkbox. Absent keys are unanswered.
type FormResponse struct {
	ID        string                 `json:"id"`
	FormID    string                 `json:"formId"`
	Data      map[string]interface{} `json:"data"`
	Identity  string                 `json:"identity,omitempty"`
	CreatedAt string                 `json:"createdAt,omitempty"`
}

// Event is an external happening a form can be linked to. Submitting a
// linked form also registers the submitter for the event.
type Event struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CallbackURL *string `json:"callbackUrl,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
}

// Registration records one identity signed up for one event. The
// (event, identity) pair is unique; re-registering is reported as
// ErrAlreadyRegistered, which callers treat as success.
type Registration struct {
	ID         string `json:"id"`
	EventID    string `json:"eventId"`
	Identity   string `json:"identity"`
	ResponseID string `json:"responseId,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// TrackLink is a short redirect slug whose hits are counted.
type TrackLink struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	TargetURL string `json:"targetUrl"`
	Hits      int64  `json:"hits"`
	CreatedAt string `json:"createdAt,omitempty"`
}
