package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"beconforms/internal/auth"
	"beconforms/internal/fill"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/oklog/ulid/v2"
)

// SessionStore keeps active fill sessions in memory. Abandoned sessions age
// out of the LRU; a user fills one form at a time so a session is never
// touched concurrently, but the mutex guards against misbehaving clients.
type SessionStore struct {
	sessions *expirable.LRU[string, *fillSession]
}

type fillSession struct {
	mu      sync.Mutex
	session *fill.Session
}

func NewSessionStore(maxSize int, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: expirable.NewLRU[string, *fillSession](maxSize, nil, ttl),
	}
}

func (s *SessionStore) add(id string, session *fill.Session) {
	s.sessions.Add(id, &fillSession{session: session})
}

func (s *SessionStore) get(id string) (*fillSession, bool) {
	return s.sessions.Get(id)
}

func (d Dependencies) createSession(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "id")
	svc := d.formService()
	identity := auth.Identity(r.Context())

	session := fill.NewSession(identity, func(ctx context.Context, data map[string]interface{}, id string) (string, error) {
		response, err := svc.SubmitResponse(ctx, formID, data, id)
		if err != nil {
			return "", err
		}
		return response.ID, nil
	})

	form, err := svc.GetPublicForm(r.Context(), formID)
	if err != nil {
		session.Fail(err)
		WriteTypedError(w, r, err, d.Log)
		return
	}
	if err := session.Load(form); err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}

	sessionID := ulid.Make().String()
	d.Sessions.add(sessionID, session)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sessionState(sessionID, session))
}

func (d Dependencies) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fs, ok := d.Sessions.get(id)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "not_found", "Session not found", d.Log)
		return
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	render.JSON(w, r, sessionState(id, fs.session))
}

type answerRequest struct {
	FieldID string  `json:"fieldId"`
	Value   *string `json:"value,omitempty"`
	Toggle  *string `json:"toggle,omitempty"`
}

func (d Dependencies) putAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fs, ok := d.Sessions.get(id)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "not_found", "Session not found", d.Log)
		return
	}

	var req answerRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	var err error
	switch {
	case req.Toggle != nil:
		err = fs.session.Toggle(req.FieldID, *req.Toggle)
	case req.Value != nil:
		err = fs.session.SetAnswer(req.FieldID, *req.Value)
	default:
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "Either value or toggle is required", d.Log)
		return
	}
	if err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}
	render.JSON(w, r, sessionState(id, fs.session))
}

func (d Dependencies) sessionNext(w http.ResponseWriter, r *http.Request) {
	d.advanceSession(w, r, func(ctx context.Context, s *fill.Session) error {
		return s.Next()
	})
}

func (d Dependencies) sessionPrevious(w http.ResponseWriter, r *http.Request) {
	d.advanceSession(w, r, func(ctx context.Context, s *fill.Session) error {
		return s.Previous()
	})
}

func (d Dependencies) sessionSubmit(w http.ResponseWriter, r *http.Request) {
	d.advanceSession(w, r, func(ctx context.Context, s *fill.Session) error {
		return s.Submit(ctx)
	})
}

func (d Dependencies) advanceSession(w http.ResponseWriter, r *http.Request, move func(context.Context, *fill.Session) error) {
	id := chi.URLParam(r, "id")
	fs, ok := d.Sessions.get(id)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "not_found", "Session not found", d.Log)
		return
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := move(r.Context(), fs.session); err != nil {
		WriteTypedError(w, r, err, d.Log)
		return
	}
	render.JSON(w, r, sessionState(id, fs.session))
}

func sessionState(id string, s *fill.Session) map[string]interface{} {
	page, total := s.Page()
	state := map[string]interface{}{
		"sessionId": id,
		"status":    s.Status(),
		"page":      page,
		"pages":     total,
	}
	if s.Status() == fill.StatusReady {
		fields := s.PageFields()
		out := make([]map[string]interface{}, len(fields))
		for i, f := range fields {
			out[i] = map[string]interface{}{
				"id":          f.ID,
				"label":       f.Label,
				"type":        f.Type,
				"required":    f.Required,
				"options":     f.Options,
				"placeholder": f.Placeholder,
				"imageUrl":    f.ImageURL,
				"answer":      s.Answer(f.ID),
			}
		}
		state["fields"] = out
	}
	if s.Status() == fill.StatusSubmitted {
		state["responseId"] = s.ResponseID()
	}
	return state
}
