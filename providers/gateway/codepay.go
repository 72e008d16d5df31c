package gateway

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"splitbook/models"
	"splitbook/providers"
)

// Codepay talks to codepay-style gateways that authenticate each request
// with an MD5 signature over merchant id, timestamp and a shared secret
// (GATEWAY_<PROVIDER>_SECRET).
type Codepay struct {
	Client *http.Client
}

func NewCodepay() *Codepay {
	return &Codepay{Client: &http.Client{Timeout: 30 * time.Second}}
}

func init() {
	providers.RegisterGatewayFetcher(models.AdapterCodepay, NewCodepay())
}

type codepayOrder struct {
	TradeNo string                `json:"trade_no"`
	Money   models.FlexibleString `json:"money"`
	PayTime models.FlexibleString `json:"pay_time"` // unix seconds
	State   int                   `json:"state"`    // 1 = paid, 0 = pending
}

type codepayResponse struct {
	Status int            `json:"status"`
	Msg    string         `json:"msg"`
	Orders []codepayOrder `json:"orders"`
}

func (cp *Codepay) FetchOrders(cfg models.GatewayConfig, sinceMillis int64) ([]models.ExternalTx, error) {
	secret := os.Getenv("GATEWAY_" + strings.ToUpper(cfg.Provider) + "_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("gateway %s: %w", cfg.Provider, providers.ErrMissingCredentials)
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	raw := cfg.MerchantID + ts + secret
	hash := md5.Sum([]byte(raw))
	sign := hex.EncodeToString(hash[:])

	url := fmt.Sprintf("%s/api/v1/orders?merchant_id=%s&timestamp=%s&sign=%s",
		strings.TrimRight(cfg.BaseURL, "/"), cfg.MerchantID, ts, sign)

	resp, err := cp.Client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway status %d: %s", resp.StatusCode, string(body))
	}

	var parsed codepayResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}
	if parsed.Status != 1 {
		return nil, fmt.Errorf("gateway error: %s", parsed.Msg)
	}

	var out []models.ExternalTx
	for _, o := range parsed.Orders {
		amount, err := o.Money.ToFloat64()
		if err != nil || amount <= 0 {
			log.Warnf("gateway %s: skip order %s: bad money %q", cfg.Provider, o.TradeNo, o.Money)
			continue
		}
		paySec, err := o.PayTime.ToInt64()
		if err != nil {
			log.Warnf("gateway %s: skip order %s: bad pay_time %q", cfg.Provider, o.TradeNo, o.PayTime)
			continue
		}
		occurred := paySec * 1000
		if sinceMillis > 0 && occurred <= sinceMillis {
			continue
		}
		status := models.StatusPending
		if o.State == 1 {
			status = models.StatusCompleted
		}
		out = append(out, models.ExternalTx{
			ExternalID:       cfg.Provider + ":" + o.TradeNo,
			Amount:           amount,
			Currency:         models.CurrencyCNY,
			OccurredAtMillis: occurred,
			Status:           status,
		})
	}

	return out, nil
}
