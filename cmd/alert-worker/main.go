// Package main is the entrypoint for the Alert Worker Lambda function.
//
// The Alert Worker consumes AlertEvent messages from the alert SQS queue and
// forwards them to the configured dashboard webhook as signed JSON POSTs.
// Delivery is at-least-once: the handler returns partial batch responses so
// SQS retries only the messages that failed.
//
// Cold Start (main):
//  1. Initialize structured logger.
//  2. Resolve SSM-referenced secrets into the environment.
//  3. Read ALERT_WEBHOOK_URL (required) and ALERT_WEBHOOK_SECRET (optional).
//  4. Register handler and call lambda.Start.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"weatherdash/internal/config"
	"weatherdash/internal/types"
)

const (
	defaultDeliveryTimeout = 10 * time.Second
	deliveryUserAgent      = "Weatherdash-Alerts/1.0"

	// signatureHeader carries the HMAC signature when a signing secret is
	// configured. Format: t=<unix>,v1=<hex>.
	signatureHeader = "X-Weatherdash-Signature"
)

// Handler holds the dependencies for the alert worker Lambda handler.
type Handler struct {
	webhookURL string
	secret     string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewHandler creates a Handler for the given webhook destination. secret may
// be empty, in which case deliveries are unsigned.
func NewHandler(webhookURL, secret string, httpClient *http.Client, logger *slog.Logger) *Handler {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultDeliveryTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		webhookURL: webhookURL,
		secret:     secret,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle processes an SQS event containing one or more alert events. Each
// message is processed independently; messages that fail delivery are
// returned in batchItemFailures so SQS retries only them.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	response := events.SQSEventResponse{}

	for _, record := range sqsEvent.Records {
		if err := h.processMessage(ctx, record); err != nil {
			h.logger.Error("failed to process SQS message",
				"message_id", record.MessageId,
				"error", err.Error(),
			)
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
	}

	return response, nil
}

// processMessage delivers a single alert event to the webhook.
func (h *Handler) processMessage(ctx context.Context, record events.SQSMessage) error {
	var event types.AlertEvent
	if err := json.Unmarshal([]byte(record.Body), &event); err != nil {
		h.logger.Error("failed to unmarshal alert event",
			"message_id", record.MessageId,
			"error", err.Error(),
		)
		// Permanent parse failure - do not retry (return nil to ACK).
		return nil
	}

	logger := h.logger.With(
		"event_id", event.EventID,
		"city", event.City,
		"alert_count", len(event.Alerts),
		"request_id", event.RequestID,
	)

	if len(event.Alerts) == 0 {
		logger.Warn("alert event carries no alerts, skipping delivery")
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", deliveryUserAgent)
	if h.secret != "" {
		req.Header.Set(signatureHeader, signPayload(payload, h.secret, h.now()))
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver alert webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	logger.Info("alert event delivered", "status", resp.StatusCode)
	return nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("Alert Worker Lambda initializing (cold start)")

	// Resolve SSM-referenced secrets (no-op when APP_ENV=local or when no
	// _SSM_PARAM variables are present).
	if err := config.ResolveSecrets(config.NewSSMProvider(os.Getenv("AWS_REGION"))); err != nil {
		logger.Error("Failed to resolve SSM secrets", "error", err)
		os.Exit(1)
	}

	webhookURL := os.Getenv("ALERT_WEBHOOK_URL")
	if webhookURL == "" {
		logger.Error("ALERT_WEBHOOK_URL is required")
		os.Exit(1)
	}
	secret := os.Getenv("ALERT_WEBHOOK_SECRET")

	timeout := defaultDeliveryTimeout
	if timeoutStr := os.Getenv("ALERT_WEBHOOK_TIMEOUT"); timeoutStr != "" {
		if d, parseErr := time.ParseDuration(timeoutStr); parseErr == nil {
			timeout = d
		}
	}

	handler := NewHandler(webhookURL, secret, &http.Client{Timeout: timeout}, logger)

	logger.Info("Alert Worker Lambda initialized, starting handler",
		"timeout", timeout.String(),
		"signing_enabled", secret != "",
	)

	lambda.Start(handler.Handle)
}
