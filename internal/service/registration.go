package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beconforms/internal/db"
	"beconforms/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// RegistrationService signs identities up for events. Registering twice for
// the same event is idempotent: the second attempt reports
// model.ErrAlreadyRegistered and writes nothing.
type RegistrationService struct {
	queries *db.Queries
	log     *zap.Logger
}

func NewRegistrationService(queries *db.Queries, log *zap.Logger) *RegistrationService {
	return &RegistrationService{queries: queries, log: log}
}

// Register creates a registration for identity on eventID, linked to the
// response that triggered it.
func (s *RegistrationService) Register(ctx context.Context, eventID, identity, responseID string) (*model.Registration, error) {
	if _, err := s.queries.GetEventByID(ctx, eventID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", eventID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("event lookup failed: %w", err)
	}

	respRef := &responseID
	if responseID == "" {
		respRef = nil
	}
	row, err := s.queries.CreateRegistration(ctx, ulid.Make().String(), eventID, identity, respRef)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateRegistration) {
			s.log.Info("identity already registered",
				zap.String("event_id", eventID),
				zap.String("identity", identity),
			)
			return nil, model.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	return dbRegistrationToModel(row), nil
}

func dbRegistrationToModel(r db.Registration) *model.Registration {
	reg := &model.Registration{
		ID:        r.ID,
		EventID:   r.EventID,
		Identity:  r.Identity,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.ResponseID != nil {
		reg.ResponseID = *r.ResponseID
	}
	return reg
}
