package providers

import (
	"errors"
	"strings"

	"splitbook/models"
)

// ErrMissingCredentials is returned by fetchers whose API keys or
// secrets are absent from the environment. The sync path treats it as a
// logged no-op, never a crash.
var ErrMissingCredentials = errors.New("missing provider credentials")

// ChainFetcher pulls deposits for a monitored wallet address from a
// block explorer and normalizes them. Implementations must filter to
// transfers whose destination is the wallet address (case-insensitive)
// and apply the since cutoff locally; upstream filter parameters are not
// trusted. A page failure after the first must not discard pages already
// fetched.
type ChainFetcher interface {
	FetchDeposits(wallet models.WalletConfig, sinceMillis int64) ([]models.ExternalTx, error)
}

// GatewayFetcher pulls paid orders from a third-party payment gateway.
// ExternalID comes back namespaced "<provider>:<orderId>" so ids can
// never collide across providers.
type GatewayFetcher interface {
	FetchOrders(cfg models.GatewayConfig, sinceMillis int64) ([]models.ExternalTx, error)
}

var (
	chainFetchers   = map[string]ChainFetcher{}
	gatewayFetchers = map[string]GatewayFetcher{}
)

func RegisterChainFetcher(network string, f ChainFetcher) {
	chainFetchers[strings.ToUpper(network)] = f
}

func GetChainFetcher(network string) ChainFetcher {
	return chainFetchers[strings.ToUpper(network)]
}

func RegisterGatewayFetcher(adapterType string, f GatewayFetcher) {
	gatewayFetchers[strings.ToLower(adapterType)] = f
}

func GetGatewayFetcher(adapterType string) GatewayFetcher {
	return gatewayFetchers[strings.ToLower(adapterType)]
}
