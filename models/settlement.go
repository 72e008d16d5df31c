package models

import "time"

// Settlement is the immutable receipt produced by clearing the ledger.
type Settlement struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	FromTime         string    `json:"from_time"`
	ToTime           string    `json:"to_time"`
	TotalAmountCNY   float64   `json:"total_amount_cny"`
	TotalAmountUSDT  float64   `json:"total_amount_usdt"`
	TransactionCount int       `json:"transaction_count"`
}

// ShareAdjustmentLog records one manual split edit. The log is
// append-only and wiped in full on every settlement.
type ShareAdjustmentLog struct {
	ID            string        `json:"id"`
	TransactionID string        `json:"transaction_id"`
	Time          time.Time     `json:"time"`
	Operator      string        `json:"operator"`
	OldShares     []SplitDetail `json:"old_shares"`
	NewShares     []SplitDetail `json:"new_shares"`
	Remark        string        `json:"remark,omitempty"`
}
