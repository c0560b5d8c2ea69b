package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beconforms/internal/db"
	"beconforms/internal/editor"
	"beconforms/internal/fill"
	"beconforms/internal/model"
	"beconforms/internal/schema"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

// EventBus publishes form activity for the admin live feed.
type EventBus interface {
	PublishForm(formID string, event map[string]interface{}) error
}

// FormService owns form definitions and responses.
type FormService struct {
	queries   *db.Queries
	validator *schema.Validator
	regSvc    *RegistrationService
	bus       EventBus
	jobClient JobClient
}

func NewFormService(queries *db.Queries, validator *schema.Validator, regSvc *RegistrationService, bus EventBus) *FormService {
	return &FormService{
		queries:   queries,
		validator: validator,
		regSvc:    regSvc,
		bus:       bus,
	}
}

// SetJobClient sets the client for scheduling background jobs.
func (s *FormService) SetJobClient(client JobClient) {
	s.jobClient = client
}

// GetPublicForm returns a published definition. Missing and unpublished
// forms are indistinguishable to the public caller.
func (s *FormService) GetPublicForm(ctx context.Context, id string) (*model.FormDefinition, error) {
	form, err := s.loadForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if !form.IsPublished {
		return nil, fmt.Errorf("form %s is not published: %w", id, model.ErrNotFound)
	}
	return form, nil
}

// GetAdminForm returns the full definition plus the response count.
func (s *FormService) GetAdminForm(ctx context.Context, id string) (*model.FormDefinition, error) {
	form, err := s.loadForm(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.queries.CountResponses(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}
	form.ResponseCount = count
	return form, nil
}

// CreateForm creates an unpublished form with no fields.
func (s *FormService) CreateForm(ctx context.Context, title, description string) (*model.FormDefinition, error) {
	row, err := s.queries.CreateForm(ctx, ulid.Make().String(), title, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}
	form := dbFormToModel(row)
	form.Fields = []model.FormField{}
	return form, nil
}

type UpdateSettingsInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	BannerURL   string  `json:"bannerUrl"`
	IsPublished bool    `json:"isPublished"`
	RequireAuth bool    `json:"requireAuth"`
	EventID     *string `json:"eventId"`
}

func (s *FormService) UpdateSettings(ctx context.Context, id string, input UpdateSettingsInput) (*model.FormDefinition, error) {
	row, err := s.queries.UpdateFormSettings(ctx, id, db.UpdateFormSettingsParams{
		Title:       input.Title,
		Description: input.Description,
		BannerURL:   input.BannerURL,
		IsPublished: input.IsPublished,
		RequireAuth: input.RequireAuth,
		EventID:     input.EventID,
	})
	if err != nil {
		return nil, wrapNotFound(err, "failed to update settings")
	}
	_ = s.bus.PublishForm(id, map[string]interface{}{
		"type":   "form.updated",
		"formId": id,
	})
	return s.formWithFields(ctx, row)
}

// AddField validates the spec and appends the field at the end of the form.
// The server assigns the id and the sort order.
func (s *FormService) AddField(ctx context.Context, formID string, spec model.FormField) (*model.FormField, error) {
	if err := validateFieldSpec(spec); err != nil {
		return nil, err
	}
	if _, err := s.queries.GetFormByID(ctx, formID); err != nil {
		return nil, wrapNotFound(err, "form lookup failed")
	}
	row, err := s.queries.InsertField(ctx, db.InsertFieldParams{
		ID:          ulid.Make().String(),
		FormID:      formID,
		Label:       spec.Label,
		Type:        string(spec.Type),
		Required:    spec.Required,
		Options:     spec.Options,
		Placeholder: spec.Placeholder,
		ImageURL:    spec.ImageURL,
		Section:     spec.Section,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add field: %w", err)
	}
	field := dbFieldToModel(row)
	return &field, nil
}

func (s *FormService) UpdateField(ctx context.Context, formID, fieldID string, spec model.FormField) (*model.FormField, error) {
	if err := validateFieldSpec(spec); err != nil {
		return nil, err
	}
	row, err := s.queries.UpdateField(ctx, formID, fieldID, db.UpdateFieldParams{
		Label:       spec.Label,
		Type:        string(spec.Type),
		Required:    spec.Required,
		Options:     spec.Options,
		Placeholder: spec.Placeholder,
		ImageURL:    spec.ImageURL,
		Section:     spec.Section,
	})
	if err != nil {
		return nil, wrapNotFound(err, "failed to update field")
	}
	field := dbFieldToModel(row)
	return &field, nil
}

func (s *FormService) DeleteField(ctx context.Context, formID, fieldID string) error {
	if err := s.queries.DeleteField(ctx, formID, fieldID); err != nil {
		return wrapNotFound(err, "failed to delete field")
	}
	return nil
}

// ReorderFields rejects any list that is not exactly the current field-id
// set, then reassigns a dense 0..N-1 order in one transaction.
func (s *FormService) ReorderFields(ctx context.Context, formID string, orderedIDs []string) error {
	fields, err := s.queries.ListFields(ctx, formID)
	if err != nil {
		return fmt.Errorf("failed to list fields: %w", err)
	}
	current := make([]string, len(fields))
	for i, f := range fields {
		current[i] = f.ID
	}
	if err := editor.VerifyComplete(current, orderedIDs); err != nil {
		return err
	}
	if err := s.queries.ReorderFields(ctx, formID, orderedIDs); err != nil {
		return fmt.Errorf("failed to reorder fields: %w", err)
	}
	return nil
}

// SubmitResponse stores one submission. Auth is enforced before anything is
// written; required fields are checked section by section so the failure
// names the first missing label; the payload shape is validated against the
// derived schema. A linked event triggers registration with the same data,
// where the already-registered condition is tolerated as success.
func (s *FormService) SubmitResponse(ctx context.Context, formID string, data map[string]interface{}, identity string) (*model.FormResponse, error) {
	form, err := s.GetPublicForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.RequireAuth && identity == "" {
		return nil, model.ErrAuthRequired
	}
	for _, section := range fill.DeriveSections(form.Fields) {
		if err := fill.ValidateRequired(fill.SectionFields(form.Fields, section), data); err != nil {
			return nil, err
		}
	}
	if err := s.validator.ValidateResponse(ctx, form, data); err != nil {
		return nil, err
	}

	row, err := s.queries.CreateResponse(ctx, ulid.Make().String(), formID, data, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to create response: %w", err)
	}
	response := dbResponseToModel(row)

	if form.EventID != nil && identity != "" {
		reg, err := s.regSvc.Register(ctx, *form.EventID, identity, response.ID)
		if err != nil && !errors.Is(err, model.ErrAlreadyRegistered) {
			return nil, fmt.Errorf("event registration failed: %w", err)
		}
		if reg != nil && s.jobClient != nil {
			_ = s.jobClient.ScheduleRegistrationConfirm(reg.ID)
		}
	}

	_ = s.bus.PublishForm(formID, map[string]interface{}{
		"type":       "response.created",
		"formId":     formID,
		"responseId": response.ID,
	})

	if s.jobClient != nil {
		_ = s.jobClient.ScheduleWebhookDelivery(response.ID)
	}

	return response, nil
}

// ListResponses returns all responses, newest first.
func (s *FormService) ListResponses(ctx context.Context, formID string) ([]model.FormResponse, error) {
	rows, err := s.queries.ListResponses(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	responses := make([]model.FormResponse, len(rows))
	for i, r := range rows {
		responses[i] = *dbResponseToModel(r)
	}
	return responses, nil
}

func (s *FormService) loadForm(ctx context.Context, id string) (*model.FormDefinition, error) {
	row, err := s.queries.GetFormByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "form lookup failed")
	}
	return s.formWithFields(ctx, row)
}

func (s *FormService) formWithFields(ctx context.Context, row db.Form) (*model.FormDefinition, error) {
	fields, err := s.queries.ListFields(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	form := dbFormToModel(row)
	form.Fields = make([]model.FormField, len(fields))
	for i, f := range fields {
		form.Fields[i] = dbFieldToModel(f)
	}
	return form, nil
}

func validateFieldSpec(spec model.FormField) error {
	if spec.Label == "" {
		return errors.New("field label is required")
	}
	if !spec.Type.Valid() {
		return fmt.Errorf("unknown field type %q", spec.Type)
	}
	if spec.Section < 0 {
		return errors.New("section must be non-negative")
	}
	if !spec.Type.HasOptions() && len(spec.Options) > 0 {
		return fmt.Errorf("type %q does not take options", spec.Type)
	}
	return nil
}

func wrapNotFound(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, model.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func dbFormToModel(f db.Form) *model.FormDefinition {
	return &model.FormDefinition{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		BannerURL:   f.BannerURL,
		IsPublished: f.IsPublished,
		RequireAuth: f.RequireAuth,
		EventID:     f.EventID,
		CreatedAt:   f.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   f.UpdatedAt.Format(time.RFC3339),
	}
}

func dbFieldToModel(f db.FormField) model.FormField {
	return model.FormField{
		ID:          f.ID,
		Label:       f.Label,
		Type:        model.FieldType(f.Type),
		Required:    f.Required,
		Options:     f.Options,
		Placeholder: f.Placeholder,
		ImageURL:    f.ImageURL,
		Section:     f.Section,
		SortOrder:   f.SortOrder,
	}
}

func dbResponseToModel(r db.FormResponse) *model.FormResponse {
	return &model.FormResponse{
		ID:        r.ID,
		FormID:    r.FormID,
		Data:      r.Data,
		Identity:  r.Identity,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}
