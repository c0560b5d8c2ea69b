package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"beconforms/internal/db"
	"beconforms/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func hitKey(slug string) string {
	return fmt.Sprintf("link:hits:%s", slug)
}

func (d Dependencies) redirectTrackLink(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	link, err := d.DB.Queries.GetTrackLinkBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			WriteTypedError(w, r, model.ErrNotFound, d.Log)
			return
		}
		WriteTypedError(w, r, err, d.Log)
		return
	}

	// Counting is best-effort; a redis blip never blocks the redirect.
	if d.RDB != nil {
		if err := d.RDB.Incr(r.Context(), hitKey(slug)).Err(); err != nil {
			d.Log.Warn("Failed to count link hit", zap.String("slug", slug), zap.Error(err))
		}
	}

	http.Redirect(w, r, link.TargetURL, http.StatusFound)
}

type createLinkRequest struct {
	Slug      string `json:"slug"`
	TargetURL string `json:"targetUrl"`
}

func (d Dependencies) createTrackLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}
	if req.Slug == "" || req.TargetURL == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Slug and targetUrl are required", d.Log)
		return
	}

	link, err := d.DB.Queries.CreateTrackLink(r.Context(), ulid.Make().String(), req.Slug, req.TargetURL)
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, linkToModel(link, 0))
}

func (d Dependencies) listTrackLinks(w http.ResponseWriter, r *http.Request) {
	links, err := d.DB.Queries.ListTrackLinks(r.Context())
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}

	out := make([]model.TrackLink, len(links))
	for i, link := range links {
		var hits int64
		if d.RDB != nil {
			val, err := d.RDB.Get(r.Context(), hitKey(link.Slug)).Result()
			if err == nil {
				hits, _ = strconv.ParseInt(val, 10, 64)
			} else if !errors.Is(err, redis.Nil) {
				d.Log.Warn("Failed to read link hits", zap.String("slug", link.Slug), zap.Error(err))
			}
		}
		out[i] = linkToModel(link, hits)
	}

	render.JSON(w, r, map[string]interface{}{
		"links": out,
	})
}

func (d Dependencies) deleteTrackLink(w http.ResponseWriter, r *http.Request) {
	if err := d.DB.Queries.DeleteTrackLink(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			WriteTypedError(w, r, model.ErrNotFound, d.Log)
			return
		}
		WriteTypedError(w, r, err, d.Log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func linkToModel(link db.TrackLink, hits int64) model.TrackLink {
	return model.TrackLink{
		ID:        link.ID,
		Slug:      link.Slug,
		TargetURL: link.TargetURL,
		Hits:      hits,
		CreatedAt: link.CreatedAt.UTC().Format(time.RFC3339),
	}
}
