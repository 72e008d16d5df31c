package store

import (
	"strings"

	"splitbook/models"
)

// Store holds every collection the ledger works on. It replaces what a
// database would be in a persistent deployment: constructed once at
// process start and injected into the service layer. It does no locking
// of its own; the owning service serializes access (the whole ledger is
// a single-writer domain, and settlement in particular must see a frozen
// snapshot across its mark/archive/receipt/purge steps).
type Store struct {
	transactions []*models.Transaction
	archived     map[string][]models.Transaction
	stakeholders []models.Stakeholder
	gateways     []models.GatewayConfig
	wallets      []models.WalletConfig
	settlements  []models.Settlement
	auditLogs    []models.ShareAdjustmentLog
	exchangeRate float64
}

func New(exchangeRate float64) *Store {
	return &Store{
		archived:     make(map[string][]models.Transaction),
		exchangeRate: exchangeRate,
	}
}

// --- transactions ---

// Transactions returns the live active-ledger slice. Callers mutate the
// pointed-to records in place during recompute.
func (s *Store) Transactions() []*models.Transaction {
	return s.transactions
}

func (s *Store) AppendTransactions(txs []*models.Transaction) {
	s.transactions = append(s.transactions, txs...)
}

func (s *Store) FindTransaction(id string) *models.Transaction {
	for _, tx := range s.transactions {
		if tx.ID == id {
			return tx
		}
	}
	return nil
}

// KnownExternalIDs is the global dedup set over the active ledger and
// the archive, so re-ingesting an already-settled deposit stays a no-op.
func (s *Store) KnownExternalIDs() map[string]struct{} {
	known := make(map[string]struct{}, len(s.transactions))
	for _, tx := range s.transactions {
		if tx.ExternalTxID != "" {
			known[tx.ExternalTxID] = struct{}{}
		}
	}
	for _, txs := range s.archived {
		for _, tx := range txs {
			if tx.ExternalTxID != "" {
				known[tx.ExternalTxID] = struct{}{}
			}
		}
	}
	return known
}

// RemoveTransactions drops the given ids from the active ledger and
// returns how many were removed.
func (s *Store) RemoveTransactions(ids map[string]struct{}) int {
	kept := s.transactions[:0]
	removed := 0
	for _, tx := range s.transactions {
		if _, ok := ids[tx.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, tx)
	}
	s.transactions = kept
	return removed
}

// Archive files cleared transactions under their settlement id. The
// active ledger never sees them again; they stay retrievable for audit.
func (s *Store) Archive(settlementID string, txs []models.Transaction) {
	s.archived[settlementID] = append(s.archived[settlementID], txs...)
}

func (s *Store) ArchivedBySettlement(settlementID string) []models.Transaction {
	out := make([]models.Transaction, len(s.archived[settlementID]))
	copy(out, s.archived[settlementID])
	return out
}

// --- stakeholders ---

func (s *Store) Stakeholders() []models.Stakeholder {
	return s.stakeholders
}

func (s *Store) ReplaceStakeholders(list []models.Stakeholder) {
	s.stakeholders = list
}

// --- gateway configs ---

func (s *Store) Gateways() []models.GatewayConfig {
	return s.gateways
}

func (s *Store) ReplaceGateways(list []models.GatewayConfig) {
	s.gateways = list
}

func (s *Store) FindGateway(id string) *models.GatewayConfig {
	for i := range s.gateways {
		if s.gateways[i].ID == id {
			return &s.gateways[i]
		}
	}
	return nil
}

func (s *Store) GatewayByName(name string) *models.GatewayConfig {
	for i := range s.gateways {
		if s.gateways[i].Name == name {
			return &s.gateways[i]
		}
	}
	return nil
}

func (s *Store) UpdateGatewayCheckpoint(id, lastSyncTime, lastTxID string) {
	for i := range s.gateways {
		if s.gateways[i].ID == id {
			s.gateways[i].LastSyncTime = lastSyncTime
			if lastTxID != "" {
				s.gateways[i].LastTxID = lastTxID
			}
			return
		}
	}
}

// --- wallet configs ---

func (s *Store) Wallets() []models.WalletConfig {
	return s.wallets
}

func (s *Store) ReplaceWallets(list []models.WalletConfig) {
	s.wallets = list
}

func (s *Store) FindWallet(id string) *models.WalletConfig {
	for i := range s.wallets {
		if s.wallets[i].ID == id {
			return &s.wallets[i]
		}
	}
	return nil
}

// WalletForTxID matches a wallet whose id is embedded in a
// wallet-originated transaction id ("wtx-<walletID>-<suffix>").
func (s *Store) WalletForTxID(txID string) *models.WalletConfig {
	for i := range s.wallets {
		if strings.HasPrefix(txID, "wtx-"+s.wallets[i].ID+"-") {
			return &s.wallets[i]
		}
	}
	return nil
}

func (s *Store) UpdateWalletCheckpoint(id, lastSyncTime, lastTxID string) {
	for i := range s.wallets {
		if s.wallets[i].ID == id {
			s.wallets[i].LastSyncTime = lastSyncTime
			if lastTxID != "" {
				s.wallets[i].LastTxID = lastTxID
			}
			return
		}
	}
}

// --- settlements ---

func (s *Store) Settlements() []models.Settlement {
	out := make([]models.Settlement, len(s.settlements))
	copy(out, s.settlements)
	return out
}

func (s *Store) AddSettlement(st models.Settlement) {
	s.settlements = append(s.settlements, st)
}

// --- share adjustment audit log ---

func (s *Store) AuditLogs() []models.ShareAdjustmentLog {
	out := make([]models.ShareAdjustmentLog, len(s.auditLogs))
	copy(out, s.auditLogs)
	return out
}

func (s *Store) AppendAuditLog(entry models.ShareAdjustmentLog) {
	s.auditLogs = append(s.auditLogs, entry)
}

// PurgeAuditLogs wipes the whole log and reports how many entries died.
func (s *Store) PurgeAuditLogs() int {
	n := len(s.auditLogs)
	s.auditLogs = nil
	return n
}

// --- exchange rate ---

func (s *Store) ExchangeRate() float64 {
	return s.exchangeRate
}

func (s *Store) SetExchangeRate(rate float64) {
	s.exchangeRate = rate
}
