package service

import (
	"beconforms/internal/jobs"

	"github.com/hibiken/asynq"
)

// JobClient interface for scheduling background jobs
type JobClient interface {
	ScheduleRegistrationConfirm(registrationID string) error
	ScheduleWebhookDelivery(responseID string) error
}

// AsynqJobClient implements JobClient using asynq
type AsynqJobClient struct {
	client *asynq.Client
}

func NewAsynqJobClient(client *asynq.Client) *AsynqJobClient {
	return &AsynqJobClient{client: client}
}

func (c *AsynqJobClient) ScheduleRegistrationConfirm(registrationID string) error {
	return jobs.ScheduleRegistrationConfirm(c.client, registrationID)
}

func (c *AsynqJobClient) ScheduleWebhookDelivery(responseID string) error {
	return jobs.ScheduleWebhookDelivery(c.client, responseID)
}
