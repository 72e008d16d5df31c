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

// usdtContract is the mainnet ERC20 USDT token contract.
const usdtContract = "0xdac17f958d2ee523a2206206994597c13d831ec7"

const etherscanPageSize = 200

// etherscanMaxPages bounds one sync cycle; dedup makes a short scan safe
// because anything missed is picked up next cycle.
const etherscanMaxPages = 10

// Etherscan watches an ERC20 address for incoming USDT token transfers.
type Etherscan struct {
	BaseURL string
	Client  *http.Client
}

func NewEtherscan(baseURL string) *Etherscan {
	return &Etherscan{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func init() {
	providers.RegisterChainFetcher(models.NetworkERC20, NewEtherscan(""))
}

type etherscanTokenTx struct {
	Hash          string                `json:"hash"`
	TimeStamp     models.FlexibleString `json:"timeStamp"`
	From          string                `json:"from"`
	To            string                `json:"to"`
	Value         models.FlexibleString `json:"value"`
	TokenSymbol   string                `json:"tokenSymbol"`
	TokenDecimal  models.FlexibleString `json:"tokenDecimal"`
	Confirmations models.FlexibleString `json:"confirmations"`
}

type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (e *Etherscan) baseURL() string {
	if e.BaseURL != "" {
		return e.BaseURL
	}
	if url := os.Getenv("ETHERSCAN_API_URL"); url != "" {
		return url
	}
	return "https://api.etherscan.io"
}

func (e *Etherscan) FetchDeposits(wallet models.WalletConfig, sinceMillis int64) ([]models.ExternalTx, error) {
	apiKey := os.Getenv("ETHERSCAN_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("etherscan: %w", providers.ErrMissingCredentials)
	}

	var out []models.ExternalTx
	for page := 1; page <= etherscanMaxPages; page++ {
		txs, err := e.fetchPage(wallet.Address, apiKey, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			// keep what earlier pages already gave us
			log.Warnf("etherscan: page %d for %s failed, returning partial result: %v", page, wallet.Address, err)
			return out, nil
		}

		for _, tx := range txs {
			if !strings.EqualFold(tx.To, wallet.Address) {
				continue
			}
			if tx.TokenSymbol != "" && !strings.EqualFold(tx.TokenSymbol, "USDT") {
				continue
			}
			ts, err := tx.TimeStamp.ToInt64()
			if err != nil {
				log.Warnf("etherscan: skip transfer %s: bad timestamp %q", tx.Hash, tx.TimeStamp)
				continue
			}
			occurred := ts * 1000
			// results arrive newest first, so the rest of the scan is older
			if sinceMillis > 0 && occurred <= sinceMillis {
				return out, nil
			}
			amount, err := erc20Amount(tx.Value, tx.TokenDecimal)
			if err != nil {
				log.Warnf("etherscan: skip transfer %s: %v", tx.Hash, err)
				continue
			}
			status := models.StatusCompleted
			if conf, err := tx.Confirmations.ToInt64(); err == nil && conf < 1 {
				status = models.StatusPending
			}
			out = append(out, models.ExternalTx{
				ExternalID:       tx.Hash,
				Amount:           amount,
				Currency:         models.CurrencyUSDT,
				OccurredAtMillis: occurred,
				Status:           status,
			})
		}

		if len(txs) < etherscanPageSize {
			return out, nil
		}
	}
	log.Warnf("etherscan: stopping after %d pages for %s, remainder picked up next cycle", etherscanMaxPages, wallet.Address)
	return out, nil
}

func (e *Etherscan) fetchPage(address, apiKey string, page int) ([]etherscanTokenTx, error) {
	url := fmt.Sprintf("%s/api?module=account&action=tokentx&contractaddress=%s&address=%s&page=%d&offset=%d&sort=desc&apikey=%s",
		e.baseURL(), usdtContract, address, page, etherscanPageSize, apiKey)

	resp, err := e.Client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("etherscan status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed etherscanResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}
	// Etherscan reports an empty result set as status 0.
	if parsed.Status != "1" {
		if strings.Contains(parsed.Message, "No transactions") {
			return nil, nil
		}
		return nil, fmt.Errorf("etherscan error: %s", parsed.Message)
	}

	var txs []etherscanTokenTx
	if err := json.Unmarshal(parsed.Result, &txs); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return txs, nil
}

func erc20Amount(value, tokenDecimal models.FlexibleString) (float64, error) {
	raw, err := value.ToInt64()
	if err != nil {
		return 0, fmt.Errorf("bad value %q: %w", value, err)
	}
	dec, err := tokenDecimal.ToInt64()
	if err != nil || dec <= 0 {
		dec = 6
	}
	f, _ := decimal.New(raw, -int32(dec)).Float64()
	return f, nil
}
