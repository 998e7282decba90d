package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricRequestCount    = "RequestCount"
	MetricRequestLatency  = "RequestLatency"
	MetricUpstreamFailure = "UpstreamFailure"
	MetricAlertPublished  = "AlertPublished"

	// Dimension Keys
	DimMethod   = "Method"
	DimRoute    = "Route"
	DimStatus   = "Status"
	DimProvider = "Provider"

	// Metric Namespace
	MetricNamespace = "Weatherdash"
)
