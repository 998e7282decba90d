package types

// ResponseMeta contains non-blocking metadata returned with API responses.
// Warnings carry the soft-failure messages (e.g. an unavailable sunrise/sunset
// enrichment) that accompany otherwise successful data.
type ResponseMeta struct {
	Warnings []string `json:"warnings,omitempty"`
}
