// Package queue provides the SQS-based producer that hands fired forecast
// alerts to the out-of-band delivery worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"weatherdash/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// AlertPublisher serializes AlertEvents and sends them to the alert queue,
// where the delivery worker picks them up.
type AlertPublisher struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

// NewAlertPublisher creates an AlertPublisher for the given queue URL.
// logger falls back to the default logger when nil.
func NewAlertPublisher(client SQSSender, queueURL string, logger *slog.Logger) *AlertPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// Publish serializes the event to JSON and dispatches it to the alert
// queue. The city travels as a message attribute alongside the body.
func (p *AlertPublisher) Publish(ctx context.Context, event types.AlertEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("queue: failed to marshal AlertEvent: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"city": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.City),
			},
		},
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("queue: failed to send AlertEvent to %s: %w", p.queueURL, err)
	}

	p.logger.InfoContext(ctx, "alert event sent",
		"queue_url", p.queueURL,
		"event_id", event.EventID,
		"city", event.City,
		"alerts", len(event.Alerts),
	)
	return nil
}
