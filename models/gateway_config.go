package models

// Adapter types the gateway fetcher registry knows about.
const (
	AdapterGeneric = "generic"
	AdapterCodepay = "codepay"
)

// GatewayConfig describes a third-party payment gateway. Name doubles as
// the Source on transactions it produces, so renames must migrate
// historical transactions.
type GatewayConfig struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	BaseURL       string  `json:"base_url"`
	Provider      string  `json:"provider"`
	MerchantID    string  `json:"merchant_id,omitempty"`
	FeePercentage float64 `json:"fee_percentage"` // of gross, in [0,1]
	IsActive      bool    `json:"is_active"`
	AdapterType   string  `json:"adapter_type"`

	LastSyncTime string `json:"last_sync_time,omitempty"`
	LastTxID     string `json:"last_tx_id,omitempty"`
}
