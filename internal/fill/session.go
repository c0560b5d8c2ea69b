package fill

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"beconforms/internal/model"
)

// Status is the lifecycle state of one fill session.
type Status string

const (
	StatusLoading   Status = "LOADING"
	StatusError     Status = "ERROR"
	StatusReady     Status = "READY"
	StatusSubmitted Status = "SUBMITTED"
)

// SubmitFunc sends the accumulated answers as one atomic call and returns
// the created response id. Injected so the same session engine serves both
// the standalone and the popup rendering, each with its own side effect.
type SubmitFunc func(ctx context.Context, data map[string]interface{}, identity string) (string, error)

// Session walks a visitor through one form definition a section at a time.
// It accumulates answers across pages and only ever submits the whole map.
type Session struct {
	def        *model.FormDefinition
	sections   []int
	page       int
	status     Status
	answers    map[string]interface{}
	identity   string
	submit     SubmitFunc
	responseID string
	loadErr    error
}

// NewSession starts in StatusLoading; call Load or Fail once the definition
// fetch resolves.
func NewSession(identity string, submit SubmitFunc) *Session {
	return &Session{
		status:   StatusLoading,
		identity: identity,
		submit:   submit,
	}
}

// Load installs a fully fetched definition and moves to StatusReady on the
// first page. Every field gets an initial answer: "" for scalar types, an
// empty array for checkbox.
func (s *Session) Load(def *model.FormDefinition) error {
	if s.status != StatusLoading {
		return fmt.Errorf("cannot load in state %s", s.status)
	}
	s.def = def
	s.sections = DeriveSections(def.Fields)
	s.answers = make(map[string]interface{}, len(def.Fields))
	for _, f := range def.Fields {
		if f.Type.Multi() {
			s.answers[f.ID] = []string{}
		} else {
			s.answers[f.ID] = ""
		}
	}
	s.page = 0
	s.status = StatusReady
	return nil
}

// Fail moves Loading to the terminal Error state. A partially loaded
// definition is never rendered.
func (s *Session) Fail(err error) {
	if s.status == StatusLoading {
		s.status = StatusError
		s.loadErr = err
	}
}

func (s *Session) Status() Status { return s.status }

// Err returns the load failure, if any.
func (s *Session) Err() error { return s.loadErr }

// ResponseID returns the id of the created response once submitted.
func (s *Session) ResponseID() string { return s.responseID }

// Page reports the current page index and the total page count.
func (s *Session) Page() (current, total int) {
	return s.page, len(s.sections)
}

// PageFields returns the fields of the current page in ascending order.
func (s *Session) PageFields() []model.FormField {
	if s.status != StatusReady {
		return nil
	}
	return SectionFields(s.def.Fields, s.sections[s.page])
}

// Answer returns the accumulated answer for a field.
func (s *Session) Answer(fieldID string) interface{} {
	return s.answers[fieldID]
}

// Answers returns the full accumulated answer map.
func (s *Session) Answers() map[string]interface{} {
	out := make(map[string]interface{}, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// SetAnswer stores a scalar answer. Checkbox fields only change through
// Toggle.
func (s *Session) SetAnswer(fieldID, value string) error {
	f, ok := s.field(fieldID)
	if !ok {
		return fmt.Errorf("unknown field %q: %w", fieldID, model.ErrNotFound)
	}
	if f.Type.Multi() {
		return fmt.Errorf("field %q takes toggled options, not a scalar", fieldID)
	}
	s.answers[fieldID] = value
	return nil
}

// Toggle flips set membership of one checkbox option. Selecting an already
// selected option removes it; the array keeps selection order.
func (s *Session) Toggle(fieldID, option string) error {
	f, ok := s.field(fieldID)
	if !ok {
		return fmt.Errorf("unknown field %q: %w", fieldID, model.ErrNotFound)
	}
	if !f.Type.Multi() {
		return fmt.Errorf("field %q is not a checkbox", fieldID)
	}
	cur, _ := s.answers[fieldID].([]string)
	for i, v := range cur {
		if v == option {
			s.answers[fieldID] = append(append([]string{}, cur[:i]...), cur[i+1:]...)
			return nil
		}
	}
	s.answers[fieldID] = append(cur, option)
	return nil
}

// Next validates the current page and advances. The whole transition is
// blocked on the first empty required field.
func (s *Session) Next() error {
	if s.status != StatusReady {
		return fmt.Errorf("cannot advance in state %s", s.status)
	}
	if s.page >= len(s.sections)-1 {
		return errors.New("already on the last page")
	}
	if err := s.validatePage(); err != nil {
		return err
	}
	s.page++
	return nil
}

// Previous moves back one page without validating; answers are kept.
func (s *Session) Previous() error {
	if s.status != StatusReady {
		return fmt.Errorf("cannot go back in state %s", s.status)
	}
	if s.page == 0 {
		return errors.New("already on the first page")
	}
	s.page--
	return nil
}

// Submit validates the last page and sends the full accumulated map. A
// failed send leaves the session on the last page with answers intact so it
// can be retried. The already-registered condition from a linked event is a
// success, not a failure.
func (s *Session) Submit(ctx context.Context) error {
	if s.status != StatusReady {
		return fmt.Errorf("cannot submit in state %s", s.status)
	}
	if s.page != len(s.sections)-1 {
		return errors.New("submit is only allowed from the last page")
	}
	if err := s.validatePage(); err != nil {
		return err
	}
	if s.def.RequireAuth && s.identity == "" {
		return model.ErrAuthRequired
	}
	id, err := s.submit(ctx, s.Answers(), s.identity)
	if err != nil && !errors.Is(err, model.ErrAlreadyRegistered) {
		return err
	}
	s.responseID = id
	s.status = StatusSubmitted
	return nil
}

func (s *Session) field(id string) (model.FormField, bool) {
	for _, f := range s.def.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return model.FormField{}, false
}

func (s *Session) validatePage() error {
	return ValidateRequired(s.PageFields(), s.answers)
}

// DeriveSections collects the distinct section numbers actually used and
// sorts them ascending. Gaps are fine; pages map positionally onto the
// sorted values. A form with no fields still yields one implicit section.
func DeriveSections(fields []model.FormField) []int {
	seen := make(map[int]bool)
	var sections []int
	for _, f := range fields {
		if !seen[f.Section] {
			seen[f.Section] = true
			sections = append(sections, f.Section)
		}
	}
	if len(sections) == 0 {
		return []int{0}
	}
	sort.Ints(sections)
	return sections
}

// SectionFields returns the fields of one section in ascending sort order.
func SectionFields(fields []model.FormField, section int) []model.FormField {
	var out []model.FormField
	for _, f := range fields {
		if f.Section == section {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// ValidateRequired checks every required field in fields for a non-empty
// answer: "" or nil for scalars, an empty array for checkbox. The first
// missing field is reported.
func ValidateRequired(fields []model.FormField, answers map[string]interface{}) error {
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if Empty(answers[f.ID]) {
			return &model.ValidationError{FieldID: f.ID, Label: f.Label}
		}
	}
	return nil
}

// Empty reports whether an answer value counts as unanswered.
func Empty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	}
	return false
}
