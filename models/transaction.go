package models

import "time"

// TimeLayout is the minute-precision timestamp format stored on
// transactions. It sorts lexicographically.
const TimeLayout = "2006-01-02 15:04"

const (
	CurrencyCNY  = "CNY"
	CurrencyUSDT = "USDT"

	StatusPending   = "Pending"
	StatusCompleted = "Completed"

	SourceWallet = "USDT Wallet"
	SourceManual = "Manual"
)

type SplitDetail struct {
	UserID   string  `json:"user_id"`
	UserName string  `json:"user_name"`
	Ratio    float64 `json:"ratio"`
	Amount   float64 `json:"amount"` // CNY
}

type Transaction struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"` // TimeLayout, minute precision
	Source    string `json:"source"`
	Currency  string `json:"currency"`

	OriginalAmount float64 `json:"original_amount"`
	CnyAmount      float64 `json:"cny_amount"`

	// Fee fields stay zero when the source charges nothing.
	FeeAmount    float64 `json:"fee_amount,omitempty"`
	FeeAmountCNY float64 `json:"fee_amount_cny,omitempty"`
	NetAmount    float64 `json:"net_amount,omitempty"`
	NetAmountCNY float64 `json:"net_amount_cny,omitempty"`

	Status string        `json:"status"`
	Splits []SplitDetail `json:"splits"`

	// SplitAdjusted marks a manual split edit. Read-time recompute
	// leaves adjusted splits alone; a config-change recompute overwrites
	// them and clears the flag.
	SplitAdjusted bool `json:"split_adjusted,omitempty"`

	ExternalTxID string `json:"external_tx_id,omitempty"`

	Cleared      bool       `json:"cleared"`
	ClearedAt    *time.Time `json:"cleared_at,omitempty"`
	SettlementID string     `json:"settlement_id,omitempty"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
}

// EffectiveNetCNY is the base amount splits are computed against: net
// when a fee applies, gross otherwise.
func (t *Transaction) EffectiveNetCNY() float64 {
	if t.FeeAmount > 0 {
		return t.NetAmountCNY
	}
	return t.CnyAmount
}
