package models

// ExternalTx is the canonical shape every fetcher normalizes upstream
// payloads into. Amount is in human units of Currency.
type ExternalTx struct {
	ExternalID       string  `json:"external_id"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	OccurredAtMillis int64   `json:"occurred_at_millis"`
	Status           string  `json:"status"` // StatusPending | StatusCompleted
}
