package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"splitbook/helpers"
	"splitbook/models"
	"splitbook/store"
)

// ratioTolerance is how far the stakeholder ratio sum may drift from 1.0
// before we warn about it.
const ratioTolerance = 0.01

// Ledger owns the in-memory store and serializes every operation on it.
// Fetch I/O happens outside the store lock; a per-source permit prevents
// two syncs of the same source from racing through the dedup check.
type Ledger struct {
	mu    sync.Mutex
	store *store.Store

	syncMu  sync.Mutex
	syncing map[string]bool
}

func NewLedger(s *store.Store) *Ledger {
	return &Ledger{
		store:   s,
		syncing: make(map[string]bool),
	}
}

func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// --- recompute engine ---

// recomputeLocked re-derives fee, net and split figures for every active
// transaction from the current configuration. Historical rows track the
// latest ratios and fee policy until they are settled; that retroactive
// behavior is intentional. Manually adjusted splits survive a read-time
// recompute (force=false) and are overwritten by a config-change
// recompute (force=true).
func (l *Ledger) recomputeLocked(force bool) {
	rate := l.store.ExchangeRate()
	stakeholders := l.store.Stakeholders()

	for _, tx := range l.store.Transactions() {
		l.recomputeTxLocked(tx, stakeholders, rate, force)
	}
}

func (l *Ledger) recomputeTxLocked(tx *models.Transaction, stakeholders []models.Stakeholder, rate float64, force bool) {
	if tx.Currency == models.CurrencyUSDT {
		tx.CnyAmount = helpers.UsdtToCny(tx.OriginalAmount, rate)
	} else {
		tx.CnyAmount = helpers.RoundCents(tx.OriginalAmount)
	}

	fee, feeCNY := l.feeForLocked(tx, rate)
	if fee > 0 {
		tx.FeeAmount = fee
		tx.FeeAmountCNY = feeCNY
		tx.NetAmount = helpers.FeeFloor(tx.OriginalAmount, fee)
		tx.NetAmountCNY = helpers.FeeFloor(tx.CnyAmount, feeCNY)
	} else {
		tx.FeeAmount = 0
		tx.FeeAmountCNY = 0
		tx.NetAmount = 0
		tx.NetAmountCNY = 0
	}

	if tx.SplitAdjusted && !force {
		return
	}
	tx.SplitAdjusted = false

	if len(stakeholders) == 0 {
		// nothing to split against; leave the transaction readable
		tx.Splits = []models.SplitDetail{}
		return
	}

	base := tx.EffectiveNetCNY()
	splits := make([]models.SplitDetail, 0, len(stakeholders))
	for _, sh := range stakeholders {
		splits = append(splits, models.SplitDetail{
			UserID:   sh.ID,
			UserName: sh.Name,
			Ratio:    sh.Ratio,
			Amount:   helpers.SplitAmount(base, sh.Ratio),
		})
	}
	tx.Splits = splits
}

// feeForLocked resolves the fee for a transaction from current config:
// percentage of gross for gateway sources, fixed amount in source
// currency for wallet sources, zero otherwise.
func (l *Ledger) feeForLocked(tx *models.Transaction, rate float64) (fee, feeCNY float64) {
	if gw := l.store.GatewayByName(tx.Source); gw != nil && gw.IsActive && gw.FeePercentage > 0 {
		fee = helpers.PercentOf(tx.OriginalAmount, gw.FeePercentage)
		feeCNY = helpers.PercentOf(tx.CnyAmount, gw.FeePercentage)
		return fee, feeCNY
	}
	if w := l.store.WalletForTxID(tx.ID); w != nil && w.FeeAmount > 0 {
		fee = helpers.RoundCents(w.FeeAmount)
		if tx.Currency == models.CurrencyUSDT {
			feeCNY = helpers.UsdtToCny(w.FeeAmount, rate)
		} else {
			feeCNY = fee
		}
		return fee, feeCNY
	}
	return 0, 0
}

// --- reads ---

type ListFilters struct {
	Source   string
	Currency string
	Status   string
}

// List recomputes the whole ledger against current config, then returns
// matching transactions newest first.
func (l *Ledger) List(f ListFilters) []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.recomputeLocked(false)

	out := make([]models.Transaction, 0)
	for _, tx := range l.store.Transactions() {
		if f.Source != "" && tx.Source != f.Source {
			continue
		}
		if f.Currency != "" && tx.Currency != f.Currency {
			continue
		}
		if f.Status != "" && tx.Status != f.Status {
			continue
		}
		out = append(out, *tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

func (l *Ledger) GetTransaction(id string) (models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.recomputeLocked(false)
	tx := l.store.FindTransaction(id)
	if tx == nil {
		return models.Transaction{}, fmt.Errorf("%w: transaction %s", ErrNotFound, id)
	}
	return *tx, nil
}

// --- manual entry ---

func (l *Ledger) AddManual(amount float64, currency, status string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if currency != models.CurrencyCNY && currency != models.CurrencyUSDT {
		return models.Transaction{}, fmt.Errorf("%w: unsupported currency %q", ErrValidation, currency)
	}
	if status == "" {
		status = models.StatusCompleted
	}
	if status != models.StatusPending && status != models.StatusCompleted {
		return models.Transaction{}, fmt.Errorf("%w: unsupported status %q", ErrValidation, status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &models.Transaction{
		ID:             "mtx-" + shortID(),
		Timestamp:      time.Now().Format(models.TimeLayout),
		Source:         models.SourceManual,
		Currency:       currency,
		OriginalAmount: helpers.RoundCents(amount),
		Status:         status,
	}
	l.recomputeTxLocked(tx, l.store.Stakeholders(), l.store.ExchangeRate(), true)
	l.store.AppendTransactions([]*models.Transaction{tx})
	return *tx, nil
}

// --- stakeholders ---

func (l *Ledger) Stakeholders() []models.Stakeholder {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Stakeholder, len(l.store.Stakeholders()))
	copy(out, l.store.Stakeholders())
	return out
}

// ReplaceStakeholders swaps the whole stakeholder set and forces a full
// split recompute. A ratio sum away from 1.0 is allowed but warned.
func (l *Ledger) ReplaceStakeholders(list []models.Stakeholder) error {
	sum := 0.0
	seen := make(map[string]bool, len(list))
	for _, sh := range list {
		if sh.ID == "" || sh.Name == "" {
			return fmt.Errorf("%w: stakeholder id and name are required", ErrValidation)
		}
		if sh.Ratio < 0 || sh.Ratio > 1 {
			return fmt.Errorf("%w: ratio %v for %s out of [0,1]", ErrValidation, sh.Ratio, sh.ID)
		}
		if seen[sh.ID] {
			return fmt.Errorf("%w: duplicate stakeholder id %s", ErrValidation, sh.ID)
		}
		seen[sh.ID] = true
		sum += sh.Ratio
	}
	if len(list) > 0 && math.Abs(sum-1.0) > ratioTolerance {
		log.Warnf("stakeholder ratios sum to %.4f, expected 1.0", sum)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.ReplaceStakeholders(list)
	l.recomputeLocked(true)
	return nil
}

// --- gateway configs ---

func (l *Ledger) Gateways() []models.GatewayConfig {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.GatewayConfig, len(l.store.Gateways()))
	copy(out, l.store.Gateways())
	return out
}

// ReplaceGateways swaps all gateway configs. A renamed config migrates
// the source field of every transaction it previously produced, then a
// forced recompute applies any fee changes.
func (l *Ledger) ReplaceGateways(list []models.GatewayConfig) error {
	for _, cfg := range list {
		if cfg.ID == "" || cfg.Name == "" {
			return fmt.Errorf("%w: gateway id and name are required", ErrValidation)
		}
		if cfg.FeePercentage < 0 || cfg.FeePercentage > 1 {
			return fmt.Errorf("%w: fee percentage %v for %s out of [0,1]", ErrValidation, cfg.FeePercentage, cfg.ID)
		}
		if cfg.AdapterType == "" {
			return fmt.Errorf("%w: gateway %s needs an adapter type", ErrValidation, cfg.ID)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, cfg := range list {
		old := l.store.FindGateway(cfg.ID)
		if old == nil || old.Name == cfg.Name {
			continue
		}
		migrated := 0
		for _, tx := range l.store.Transactions() {
			if tx.Source == old.Name {
				tx.Source = cfg.Name
				migrated++
			}
		}
		if migrated > 0 {
			log.Infof("gateway %s renamed %q -> %q, migrated %d transactions", cfg.ID, old.Name, cfg.Name, migrated)
		}
	}

	l.store.ReplaceGateways(list)
	l.recomputeLocked(true)
	return nil
}

// --- wallet configs ---

func (l *Ledger) Wallets() []models.WalletConfig {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.WalletConfig, len(l.store.Wallets()))
	copy(out, l.store.Wallets())
	return out
}

func (l *Ledger) ReplaceWallets(list []models.WalletConfig) error {
	for _, w := range list {
		if w.ID == "" || w.Address == "" {
			return fmt.Errorf("%w: wallet id and address are required", ErrValidation)
		}
		switch w.Network {
		case models.NetworkTRC20, models.NetworkERC20, models.NetworkBTC:
		default:
			return fmt.Errorf("%w: unsupported network %q", ErrValidation, w.Network)
		}
		switch w.Status {
		case models.WalletActive, models.WalletInactive:
		default:
			return fmt.Errorf("%w: unsupported wallet status %q", ErrValidation, w.Status)
		}
		if w.FeeAmount < 0 {
			return fmt.Errorf("%w: wallet fee must not be negative", ErrValidation)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.ReplaceWallets(list)
	l.recomputeLocked(true)
	return nil
}

// --- exchange rate ---

func (l *Ledger) ExchangeRate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.ExchangeRate()
}

func (l *Ledger) SetExchangeRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("%w: exchange rate must be positive", ErrValidation)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.SetExchangeRate(rate)
	return nil
}
