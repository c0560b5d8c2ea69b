package api

import (
	"net/http"
	"sort"

	"beconforms/internal/export"
	"beconforms/internal/model"
	"beconforms/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type createFormRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (d Dependencies) createForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}
	if req.Title == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Title is required", d.Log)
		return
	}

	form, err := d.formService().CreateForm(r.Context(), req.Title, req.Description)
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, form)
}

func (d Dependencies) getAdminForm(w http.ResponseWriter, r *http.Request) {
	form, err := d.formService().GetAdminForm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}
	render.JSON(w, r, form)
}

func (d Dependencies) updateFormSettings(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSettingsInput
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	form, err := d.formService().UpdateSettings(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}
	render.JSON(w, r, form)
}

func (d Dependencies) addField(w http.ResponseWriter, r *http.Request) {
	var spec model.FormField
	if err := render.DecodeJSON(r.Body, &spec); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	field, err := d.formService().AddField(r.Context(), chi.URLParam(r, "id"), spec)
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, field)
}

func (d Dependencies) updateField(w http.ResponseWriter, r *http.Request) {
	var spec model.FormField
	if err := render.DecodeJSON(r.Body, &spec); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	field, err := d.formService().UpdateField(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "fieldId"), spec)
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}
	render.JSON(w, r, field)
}

func (d Dependencies) deleteField(w http.ResponseWriter, r *http.Request) {
	err := d.formService().DeleteField(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "fieldId"))
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	FieldOrders []struct {
		ID    string `json:"id"`
		Order int    `json:"order"`
	} `json:"fieldOrders"`
}

func (d Dependencies) reorderFields(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	sort.SliceStable(req.FieldOrders, func(i, j int) bool {
		return req.FieldOrders[i].Order < req.FieldOrders[j].Order
	})
	ids := make([]string, len(req.FieldOrders))
	for i, o := range req.FieldOrders {
		ids[i] = o.ID
	}

	if err := d.formService().ReorderFields(r.Context(), chi.URLParam(r, "id"), ids); err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d Dependencies) listResponses(w http.ResponseWriter, r *http.Request) {
	responses, err := d.formService().ListResponses(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"responses": responses,
	})
}

func (d Dependencies) exportResponsesCSV(w http.ResponseWriter, r *http.Request) {
	svc := d.formService()
	id := chi.URLParam(r, "id")

	form, err := svc.GetAdminForm(r.Context(), id)
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}
	responses, err := svc.ListResponses(r.Context(), id)
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="responses.csv"`)
	if err := export.ResponsesCSV(w, form.Fields, responses); err != nil {
		d.Log.Error("CSV export failed", zap.Error(err))
	}
}

type createEventRequest struct {
	Name        string  `json:"name"`
	CallbackURL *string `json:"callbackUrl"`
}

func (d Dependencies) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}
	if req.Name == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Name is required", d.Log)
		return
	}

	event, err := d.DB.Queries.CreateEvent(r.Context(), ulid.Make().String(), req.Name, req.CallbackURL)
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"id":          event.ID,
		"name":        event.Name,
		"callbackUrl": event.CallbackURL,
	})
}
