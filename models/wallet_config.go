package models

const (
	NetworkTRC20 = "TRC20"
	NetworkERC20 = "ERC20"
	NetworkBTC   = "BTC"

	WalletActive   = "Active"
	WalletInactive = "Inactive"
)

// WalletConfig is a monitored on-chain address. FeeAmount is a fixed fee
// in the source currency deducted from every ingested deposit.
type WalletConfig struct {
	ID           string  `json:"id"`
	Address      string  `json:"address"`
	Network      string  `json:"network"` // TRC20 | ERC20 | BTC
	Label        string  `json:"label"`
	Status       string  `json:"status"` // Active | Inactive
	LastSyncTime string  `json:"last_sync_time,omitempty"`
	LastTxID     string  `json:"last_tx_id,omitempty"`
	FeeAmount    float64 `json:"fee_amount"`
}
