package chain

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"splitbook/models"
	"splitbook/providers"
)

const trongridPageLimit = 50

// trongridMaxPages bounds one sync cycle; dedup makes a short scan safe
// because anything missed is picked up next cycle.
const trongridMaxPages = 10

// TronGrid watches a TRC20 address for incoming USDT transfers via the
// TronGrid account API.
type TronGrid struct {
	BaseURL string
	Client  *http.Client
}

func NewTronGrid(baseURL string) *TronGrid {
	return &TronGrid{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func init() {
	providers.RegisterChainFetcher(models.NetworkTRC20, NewTronGrid(""))
}

type trongridTransfer struct {
	TransactionID  string                `json:"transaction_id"`
	BlockTimestamp int64                 `json:"block_timestamp"`
	From           string                `json:"from"`
	To             string                `json:"to"`
	Type           string                `json:"type"`
	Value          models.FlexibleString `json:"value"`
	TokenInfo      struct {
		Symbol   string `json:"symbol"`
		Decimals int32  `json:"decimals"`
	} `json:"token_info"`
}

type trongridResponse struct {
	Success bool               `json:"success"`
	Data    []trongridTransfer `json:"data"`
	Meta    struct {
		Fingerprint string `json:"fingerprint"`
	} `json:"meta"`
}

func (t *TronGrid) baseURL() string {
	if t.BaseURL != "" {
		return t.BaseURL
	}
	if url := os.Getenv("TRONGRID_API_URL"); url != "" {
		return url
	}
	return "https://api.trongrid.io"
}

func (t *TronGrid) FetchDeposits(wallet models.WalletConfig, sinceMillis int64) ([]models.ExternalTx, error) {
	var out []models.ExternalTx
	fingerprint := ""

	for page := 0; page < trongridMaxPages; page++ {
		resp, err := t.fetchPage(wallet.Address, fingerprint)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			// keep what earlier pages already gave us
			log.Warnf("trongrid: page %d for %s failed, returning partial result: %v", page+1, wallet.Address, err)
			return out, nil
		}

		for _, tr := range resp.Data {
			if tr.Type != "Transfer" {
				continue
			}
			if !strings.EqualFold(tr.To, wallet.Address) {
				continue
			}
			if !strings.EqualFold(tr.TokenInfo.Symbol, "USDT") {
				continue
			}
			// local since filter; the min_timestamp query param is
			// advisory only
			if sinceMillis > 0 && tr.BlockTimestamp <= sinceMillis {
				continue
			}
			amount, err := trc20Amount(tr.Value, tr.TokenInfo.Decimals)
			if err != nil {
				log.Warnf("trongrid: skip transfer %s: %v", tr.TransactionID, err)
				continue
			}
			out = append(out, models.ExternalTx{
				ExternalID:       tr.TransactionID,
				Amount:           amount,
				Currency:         models.CurrencyUSDT,
				OccurredAtMillis: tr.BlockTimestamp,
				Status:           models.StatusCompleted,
			})
		}

		if resp.Meta.Fingerprint == "" || len(resp.Data) < trongridPageLimit {
			break
		}
		fingerprint = resp.Meta.Fingerprint
	}

	return out, nil
}

func (t *TronGrid) fetchPage(address, fingerprint string) (*trongridResponse, error) {
	url := fmt.Sprintf("%s/v1/accounts/%s/transactions/trc20?limit=%d&only_confirmed=true&only_to=true",
		t.baseURL(), address, trongridPageLimit)
	if fingerprint != "" {
		url += "&fingerprint=" + fingerprint
	}

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	if key := os.Getenv("TRONGRID_API_KEY"); key != "" {
		req.Header.Set("TRON-PRO-API-KEY", key)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trongrid status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed trongridResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("trongrid reported failure: %s", string(raw))
	}
	return &parsed, nil
}

func trc20Amount(value models.FlexibleString, decimals int32) (float64, error) {
	raw, err := value.ToInt64()
	if err != nil {
		return 0, fmt.Errorf("bad value %q: %w", value, err)
	}
	if decimals <= 0 {
		decimals = 6
	}
	f, _ := decimal.New(raw, -decimals).Float64()
	return f, nil
}
