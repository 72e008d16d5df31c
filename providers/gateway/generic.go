package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"splitbook/models"
	"splitbook/providers"
)

const genericPageSize = 100

// genericMaxPages bounds one sync cycle; dedup makes a short scan safe
// because anything missed is picked up next cycle.
const genericMaxPages = 10

// Generic talks to gateways exposing a plain JSON order-list endpoint
// with bearer-token auth. The API key is read from
// GATEWAY_<PROVIDER>_API_KEY.
type Generic struct {
	Client *http.Client
}

func NewGeneric() *Generic {
	return &Generic{Client: &http.Client{Timeout: 30 * time.Second}}
}

func init() {
	providers.RegisterGatewayFetcher(models.AdapterGeneric, NewGeneric())
}

type genericOrder struct {
	OrderID  string                `json:"order_id"`
	Amount   models.FlexibleString `json:"amount"`
	Currency string                `json:"currency"`
	Status   string                `json:"status"`
	PaidAt   models.FlexibleString `json:"paid_at"`
}

type genericResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    []genericOrder `json:"data"`
}

func (g *Generic) FetchOrders(cfg models.GatewayConfig, sinceMillis int64) ([]models.ExternalTx, error) {
	apiKey := os.Getenv("GATEWAY_" + strings.ToUpper(cfg.Provider) + "_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("gateway %s: %w", cfg.Provider, providers.ErrMissingCredentials)
	}

	var out []models.ExternalTx
	for page := 1; page <= genericMaxPages; page++ {
		orders, err := g.fetchPage(cfg, apiKey, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			log.Warnf("gateway %s: page %d failed, returning partial result: %v", cfg.Provider, page, err)
			return out, nil
		}

		for _, o := range orders {
			tx, ok := normalizeGenericOrder(cfg, o, sinceMillis)
			if !ok {
				continue
			}
			out = append(out, tx)
		}

		if len(orders) < genericPageSize {
			return out, nil
		}
	}
	log.Warnf("gateway %s: stopping after %d pages, remainder picked up next cycle", cfg.Provider, genericMaxPages)
	return out, nil
}

func (g *Generic) fetchPage(cfg models.GatewayConfig, apiKey string, page int) ([]genericOrder, error) {
	url := fmt.Sprintf("%s/api/orders?merchant_id=%s&page=%d&page_size=%d",
		strings.TrimRight(cfg.BaseURL, "/"), cfg.MerchantID, page, genericPageSize)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed genericResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}
	if parsed.Code != 0 {
		return nil, fmt.Errorf("gateway error %d: %s", parsed.Code, parsed.Message)
	}
	return parsed.Data, nil
}

func normalizeGenericOrder(cfg models.GatewayConfig, o genericOrder, sinceMillis int64) (models.ExternalTx, bool) {
	var status string
	switch strings.ToLower(o.Status) {
	case "paid", "success", "completed":
		status = models.StatusCompleted
	case "pending", "created":
		status = models.StatusPending
	default:
		return models.ExternalTx{}, false
	}

	amount, err := o.Amount.ToFloat64()
	if err != nil || amount <= 0 {
		log.Warnf("gateway %s: skip order %s: bad amount %q", cfg.Provider, o.OrderID, o.Amount)
		return models.ExternalTx{}, false
	}

	paidAt, err := o.PaidAt.ToInt64()
	if err != nil {
		log.Warnf("gateway %s: skip order %s: bad paid_at %q", cfg.Provider, o.OrderID, o.PaidAt)
		return models.ExternalTx{}, false
	}
	if sinceMillis > 0 && paidAt <= sinceMillis {
		return models.ExternalTx{}, false
	}

	currency := strings.ToUpper(o.Currency)
	if currency == "" {
		currency = models.CurrencyCNY
	}
	if currency != models.CurrencyCNY && currency != models.CurrencyUSDT {
		log.Warnf("gateway %s: skip order %s: unsupported currency %s", cfg.Provider, o.OrderID, currency)
		return models.ExternalTx{}, false
	}

	return models.ExternalTx{
		ExternalID:       cfg.Provider + ":" + o.OrderID,
		Amount:           amount,
		Currency:         currency,
		OccurredAtMillis: paidAt,
		Status:           status,
	}, true
}
