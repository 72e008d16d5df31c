package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"splitbook/models"
)

// SettleResult reports what one settlement run did.
type SettleResult struct {
	Settlement       models.Settlement `json:"settlement"`
	DeletedCount     int               `json:"deleted_count"`
	ClearedLogsCount int               `json:"cleared_logs_count"`
}

// Settle clears every completed, unsettled transaction: totals are taken
// from a pre-removal snapshot, the rows are marked cleared and moved to
// the settlement archive, a receipt is recorded, and the whole share
// adjustment log is purged. The entire sequence runs under the store
// lock so no ingest or recompute can interleave with it. An empty
// eligible set is a rejected precondition, not a silent success.
func (l *Ledger) Settle() (SettleResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.recomputeLocked(false)

	var eligible []*models.Transaction
	for _, tx := range l.store.Transactions() {
		if tx.Status == models.StatusCompleted && !tx.Cleared {
			eligible = append(eligible, tx)
		}
	}
	if len(eligible) == 0 {
		return SettleResult{}, fmt.Errorf("%w: no completed unsettled transactions", ErrPrecondition)
	}

	rate := l.store.ExchangeRate()
	totalCNY := decimal.Zero
	totalUSDT := decimal.Zero
	fromTime, toTime := eligible[0].Timestamp, eligible[0].Timestamp
	for _, tx := range eligible {
		totalCNY = totalCNY.Add(decimal.NewFromFloat(tx.CnyAmount))
		if tx.Currency == models.CurrencyUSDT {
			totalUSDT = totalUSDT.Add(decimal.NewFromFloat(tx.OriginalAmount))
		} else {
			// fold CNY into the USDT total at the current rate
			totalUSDT = totalUSDT.Add(decimal.NewFromFloat(tx.CnyAmount).Div(decimal.NewFromFloat(rate)))
		}
		if tx.Timestamp < fromTime {
			fromTime = tx.Timestamp
		}
		if tx.Timestamp > toTime {
			toTime = tx.Timestamp
		}
	}

	now := time.Now()
	settlement := models.Settlement{
		ID:               "stl-" + shortID(),
		CreatedAt:        now,
		FromTime:         fromTime,
		ToTime:           toTime,
		TotalAmountCNY:   round2(totalCNY),
		TotalAmountUSDT:  round2(totalUSDT),
		TransactionCount: len(eligible),
	}

	// mark ahead of removal so the archived rows carry their clearance
	ids := make(map[string]struct{}, len(eligible))
	archived := make([]models.Transaction, 0, len(eligible))
	for _, tx := range eligible {
		clearedAt := now
		settledAt := now
		tx.Cleared = true
		tx.ClearedAt = &clearedAt
		tx.SettlementID = settlement.ID
		tx.SettledAt = &settledAt
		ids[tx.ID] = struct{}{}
		archived = append(archived, *tx)
	}

	deleted := l.store.RemoveTransactions(ids)
	l.store.Archive(settlement.ID, archived)
	l.store.AddSettlement(settlement)
	clearedLogs := l.store.PurgeAuditLogs()

	log.Infof("settlement %s cleared %d transactions (%.2f CNY), purged %d audit entries",
		settlement.ID, deleted, settlement.TotalAmountCNY, clearedLogs)

	return SettleResult{
		Settlement:       settlement,
		DeletedCount:     deleted,
		ClearedLogsCount: clearedLogs,
	}, nil
}

func (l *Ledger) Settlements() []models.Settlement {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Settlements()
}

// SettledTransactions returns the archived rows a settlement cleared.
func (l *Ledger) SettledTransactions(settlementID string) ([]models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	found := false
	for _, s := range l.store.Settlements() {
		if s.ID == settlementID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: settlement %s", ErrNotFound, settlementID)
	}
	return l.store.ArchivedBySettlement(settlementID), nil
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
