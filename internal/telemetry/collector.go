// Package telemetry emits request metrics to AWS CloudWatch. It implements
// the chassis MetricsCollector contract behind a narrow client interface so
// tests can capture emitted data without AWS credentials.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"weatherdash/internal/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchCollector records API request telemetry to CloudWatch.
//
// Metrics emitted per request:
//   - RequestCount:   Dims {Method, Route, Status} -- one count per request
//   - RequestLatency: Dims {Method, Route} -- handler wall time in ms
//
// Emission is fire-and-forget: a PutMetricData failure is logged and
// swallowed, never surfaced to the request path.
type CloudWatchCollector struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchCollector creates a collector publishing to the given
// namespace. An empty namespace falls back to the service default.
func NewCloudWatchCollector(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchCollector {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchCollector{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordRequest emits the count and latency metrics for one completed
// request. Both datums travel in a single PutMetricData call.
func (c *CloudWatchCollector) RecordRequest(method, route, status string, duration time.Duration) {
	routeDims := []cwtypes.Dimension{
		{Name: aws.String(types.DimMethod), Value: aws.String(method)},
		{Name: aws.String(types.DimRoute), Value: aws.String(route)},
	}
	countDims := append(append([]cwtypes.Dimension{}, routeDims...), cwtypes.Dimension{
		Name:  aws.String(types.DimStatus),
		Value: aws.String(status),
	})

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(c.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricRequestCount),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: countDims,
			},
			{
				MetricName: aws.String(types.MetricRequestLatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: routeDims,
			},
		},
	}

	// Metrics must never block or fail a render; use a short background
	// deadline rather than the (already finished) request context.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := c.client.PutMetricData(ctx, input); err != nil {
		c.logger.Warn("failed to record request metrics",
			"error", err,
			"method", method,
			"route", route,
			"status", status,
		)
	}
}

// NoopCollector discards all metrics. It serves the local and test
// configurations where CloudWatch is not available.
type NoopCollector struct{}

// RecordRequest does nothing.
func (NoopCollector) RecordRequest(_, _, _ string, _ time.Duration) {}
