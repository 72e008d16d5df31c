package services

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"splitbook/helpers"
	"splitbook/models"
	"splitbook/providers"
)

// SyncResult is what one source sync produced.
type SyncResult struct {
	SourceID     string               `json:"source_id"`
	Added        int                  `json:"added"`
	Transactions []models.Transaction `json:"transactions"`
	Error        string               `json:"error,omitempty"`
}

// SyncSource ingests new external transactions for one wallet or
// gateway. Inactive sources and provider failures degrade to an empty
// result; the checkpoint only advances after a successful fetch.
func (l *Ledger) SyncSource(sourceID string) (SyncResult, error) {
	res := SyncResult{SourceID: sourceID, Transactions: []models.Transaction{}}

	l.syncMu.Lock()
	if l.syncing[sourceID] {
		l.syncMu.Unlock()
		return res, fmt.Errorf("%w: sync already in flight for %s", ErrPrecondition, sourceID)
	}
	l.syncing[sourceID] = true
	l.syncMu.Unlock()
	defer func() {
		l.syncMu.Lock()
		delete(l.syncing, sourceID)
		l.syncMu.Unlock()
	}()

	l.mu.Lock()
	wallet := cloneWallet(l.store.FindWallet(sourceID))
	gateway := cloneGateway(l.store.FindGateway(sourceID))
	l.mu.Unlock()

	if wallet == nil && gateway == nil {
		return res, fmt.Errorf("%w: source %s", ErrNotFound, sourceID)
	}

	// The fetch runs without the store lock; the in-flight permit above
	// keeps the fetch-dedup-append sequence single-file per source.
	var (
		fetched []models.ExternalTx
		source  string
		err     error
	)
	switch {
	case wallet != nil:
		if wallet.Status != models.WalletActive {
			return res, nil
		}
		source = models.SourceWallet
		fetched, err = fetchWallet(*wallet)
	default:
		if !gateway.IsActive {
			return res, nil
		}
		source = gateway.Name
		fetched, err = fetchGateway(*gateway)
	}
	if err != nil {
		// degrade to empty so batch syncs and timers keep going
		if errors.Is(err, providers.ErrMissingCredentials) {
			log.Warnf("sync %s skipped: %v", sourceID, err)
		} else {
			log.Errorf("sync %s: %v", sourceID, fmt.Errorf("%w: %v", ErrUpstreamFetch, err))
		}
		return res, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	known := l.store.KnownExternalIDs()
	stakeholders := l.store.Stakeholders()
	rate := l.store.ExchangeRate()

	var (
		added    []*models.Transaction
		maxTs    int64
		lastTxID string
	)
	for _, ext := range fetched {
		if ext.ExternalID == "" {
			continue
		}
		if _, dup := known[ext.ExternalID]; dup {
			continue
		}
		known[ext.ExternalID] = struct{}{}

		tx := &models.Transaction{
			Timestamp:      time.UnixMilli(ext.OccurredAtMillis).Format(models.TimeLayout),
			Source:         source,
			Currency:       ext.Currency,
			OriginalAmount: helpers.RoundCents(ext.Amount),
			Status:         ext.Status,
			ExternalTxID:   ext.ExternalID,
		}
		if wallet != nil {
			tx.ID = fmt.Sprintf("wtx-%s-%s", wallet.ID, shortID())
		} else {
			tx.ID = fmt.Sprintf("gtx-%s-%s", gateway.ID, shortID())
		}
		l.recomputeTxLocked(tx, stakeholders, rate, true)
		added = append(added, tx)

		if ext.OccurredAtMillis > maxTs {
			maxTs = ext.OccurredAtMillis
			lastTxID = ext.ExternalID
		}
	}

	// single batch append so the reported count always matches the store
	l.store.AppendTransactions(added)

	checkpoint := time.Now().Format(models.TimeLayout)
	if maxTs > 0 {
		checkpoint = time.UnixMilli(maxTs).Format(models.TimeLayout)
	}
	if wallet != nil {
		l.store.UpdateWalletCheckpoint(wallet.ID, checkpoint, lastTxID)
	} else {
		l.store.UpdateGatewayCheckpoint(gateway.ID, checkpoint, lastTxID)
	}

	res.Added = len(added)
	for _, tx := range added {
		res.Transactions = append(res.Transactions, *tx)
	}
	return res, nil
}

// SyncAll fans out over every active wallet and gateway. Each source's
// failure is isolated; one dead provider never blocks the rest.
func (l *Ledger) SyncAll() []SyncResult {
	l.mu.Lock()
	var ids []string
	for _, w := range l.store.Wallets() {
		if w.Status == models.WalletActive {
			ids = append(ids, w.ID)
		}
	}
	for _, g := range l.store.Gateways() {
		if g.IsActive {
			ids = append(ids, g.ID)
		}
	}
	l.mu.Unlock()

	results := make([]SyncResult, 0, len(ids))
	for _, id := range ids {
		res, err := l.SyncSource(id)
		if err != nil {
			log.Errorf("sync %s failed: %v", id, err)
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

func fetchWallet(w models.WalletConfig) ([]models.ExternalTx, error) {
	fetcher := providers.GetChainFetcher(w.Network)
	if fetcher == nil {
		return nil, fmt.Errorf("no fetcher registered for network %s: %w", w.Network, providers.ErrMissingCredentials)
	}
	return fetcher.FetchDeposits(w, parseCheckpoint(w.LastSyncTime))
}

func fetchGateway(g models.GatewayConfig) ([]models.ExternalTx, error) {
	fetcher := providers.GetGatewayFetcher(g.AdapterType)
	if fetcher == nil {
		return nil, fmt.Errorf("no fetcher registered for adapter %s: %w", g.AdapterType, providers.ErrMissingCredentials)
	}
	return fetcher.FetchOrders(g, parseCheckpoint(g.LastSyncTime))
}

func parseCheckpoint(ts string) int64 {
	if ts == "" {
		return 0
	}
	t, err := time.ParseInLocation(models.TimeLayout, ts, time.Local)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

func cloneWallet(w *models.WalletConfig) *models.WalletConfig {
	if w == nil {
		return nil
	}
	c := *w
	return &c
}

func cloneGateway(g *models.GatewayConfig) *models.GatewayConfig {
	if g == nil {
		return nil
	}
	c := *g
	return &c
}
