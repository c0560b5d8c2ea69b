package api

import (
	"net/http"

	"beconforms/internal/auth"
	"beconforms/internal/model"
	"beconforms/internal/richtext"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// publicField is the definition shape the public renderer sees: no order,
// no publish flag.
type publicField struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Type        model.FieldType `json:"type"`
	Required    bool            `json:"required"`
	Options     []string        `json:"options"`
	Placeholder string          `json:"placeholder,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Section     int             `json:"section"`
}

func (d Dependencies) getPublicForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	form, err := d.formService().GetPublicForm(r.Context(), id)
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}

	fields := make([]publicField, len(form.Fields))
	for i, f := range form.Fields {
		fields[i] = publicField{
			ID:          f.ID,
			Label:       f.Label,
			Type:        f.Type,
			Required:    f.Required,
			Options:     f.Options,
			Placeholder: f.Placeholder,
			ImageURL:    f.ImageURL,
			Section:     f.Section,
		}
	}

	render.JSON(w, r, map[string]interface{}{
		"id":              form.ID,
		"title":           form.Title,
		"description":     form.Description,
		"descriptionRuns": richtext.Parse(form.Description),
		"bannerUrl":       form.BannerURL,
		"requireAuth":     form.RequireAuth,
		"fields":          fields,
	})
}

type submitRequest struct {
	Data map[string]interface{} `json:"data"`
}

func (d Dependencies) submitResponse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req submitRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}
	if req.Data == nil {
		req.Data = map[string]interface{}{}
	}

	response, err := d.formService().SubmitResponse(r.Context(), id, req.Data, auth.Identity(r.Context()))
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"responseId": response.ID,
		"status":     "SUBMITTED",
	})
}
