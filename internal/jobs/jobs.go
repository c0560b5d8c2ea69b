package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"beconforms/internal/db"
	"beconforms/internal/pubsub"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type JobServer struct {
	server *asynq.Server
	client *asynq.Client
	db     *db.Pool
	bus    *pubsub.Bus
	log    *zap.Logger
	http   *http.Client
}

func NewJobServer(redisAddr string, dbPool *db.Pool, bus *pubsub.Bus, log *zap.Logger) (*JobServer, *asynq.Client) {
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	client := asynq.NewClient(redisOpt)

	return &JobServer{
		server: server,
		client: client,
		db:     dbPool,
		bus:    bus,
		log:    log,
		http:   &http.Client{Timeout: 10 * time.Second},
	}, client
}

func (js *JobServer) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc("registration:confirm", js.handleRegistrationConfirm)
	mux.HandleFunc("webhook:deliver", js.handleWebhookDelivery)

	return js.server.Start(mux)
}

func (js *JobServer) Stop() {
	js.server.Shutdown()
	js.client.Close()
}

// Job handlers

func (js *JobServer) handleRegistrationConfirm(ctx context.Context, t *asynq.Task) error {
	registrationID := string(t.Payload())

	reg, err := js.db.Queries.GetRegistrationByID(ctx, registrationID)
	if err != nil {
		return fmt.Errorf("failed to get registration: %w", err)
	}

	event, err := js.db.Queries.GetEventByID(ctx, reg.EventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}

	_ = js.bus.PublishEvent(reg.EventID, map[string]interface{}{
		"type":           "registration.confirmed",
		"registrationId": registrationID,
		"eventId":        reg.EventID,
		"eventName":      event.Name,
		"identity":       reg.Identity,
	})

	js.log.Info("Registration confirmed",
		zap.String("registration_id", registrationID),
		zap.String("event_id", reg.EventID),
	)
	return nil
}

// handleWebhookDelivery posts the submitted data to the linked event's
// callback URL. Asynq retries on failure.
func (js *JobServer) handleWebhookDelivery(ctx context.Context, t *asynq.Task) error {
	responseID := string(t.Payload())

	resp, err := js.db.Queries.GetResponseByID(ctx, responseID)
	if err != nil {
		return fmt.Errorf("failed to get response: %w", err)
	}

	form, err := js.db.Queries.GetFormByID(ctx, resp.FormID)
	if err != nil {
		return fmt.Errorf("failed to get form: %w", err)
	}
	if form.EventID == nil {
		return nil
	}

	event, err := js.db.Queries.GetEventByID(ctx, *form.EventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event.CallbackURL == nil || *event.CallbackURL == "" {
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"responseId": resp.ID,
		"formId":     resp.FormID,
		"identity":   resp.Identity,
		"data":       resp.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *event.CallbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := js.http.Do(req)
	if err != nil {
		return fmt.Errorf("callback delivery failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", res.StatusCode)
	}

	js.log.Info("Webhook delivered",
		zap.String("response_id", responseID),
		zap.String("url", *event.CallbackURL),
	)
	return nil
}

// Schedule jobs

func ScheduleRegistrationConfirm(client *asynq.Client, registrationID string) error {
	task := asynq.NewTask("registration:confirm", []byte(registrationID))
	_, err := client.Enqueue(task, asynq.Queue("default"))
	return err
}

func ScheduleWebhookDelivery(client *asynq.Client, responseID string) error {
	task := asynq.NewTask("webhook:deliver", []byte(responseID))
	_, err := client.Enqueue(task, asynq.Queue("critical"), asynq.MaxRetry(5))
	return err
}
