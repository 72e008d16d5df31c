package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"splitbook/helpers"
	"splitbook/models"
)

// ApplyManualSplit overwrites a transaction's splits verbatim. Amounts
// are caller-supplied and intentionally not re-derived from the ratios,
// so a lopsided adjustment is allowed. Every attempt is logged, even one
// that writes back identical shares.
func (l *Ledger) ApplyManualSplit(txID string, newSplits []models.SplitDetail, operator, remark string) (models.Transaction, error) {
	if len(newSplits) == 0 {
		return models.Transaction{}, fmt.Errorf("%w: at least one split entry is required", ErrValidation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := l.store.FindTransaction(txID)
	if tx == nil {
		return models.Transaction{}, fmt.Errorf("%w: transaction %s", ErrNotFound, txID)
	}

	stakeholders := l.store.Stakeholders()
	cleaned := make([]models.SplitDetail, 0, len(newSplits))
	for _, sp := range newSplits {
		if sp.UserID == "" {
			return models.Transaction{}, fmt.Errorf("%w: split entry missing user id", ErrValidation)
		}
		if math.IsNaN(sp.Ratio) || math.IsInf(sp.Ratio, 0) {
			return models.Transaction{}, fmt.Errorf("%w: split ratio for %s is not a number", ErrValidation, sp.UserID)
		}
		if math.IsNaN(sp.Amount) || math.IsInf(sp.Amount, 0) {
			return models.Transaction{}, fmt.Errorf("%w: split amount for %s is not a number", ErrValidation, sp.UserID)
		}
		if sp.UserName == "" {
			sp.UserName = stakeholderName(stakeholders, sp.UserID)
		}
		sp.Amount = helpers.RoundCents(sp.Amount)
		cleaned = append(cleaned, sp)
	}

	oldShares := make([]models.SplitDetail, len(tx.Splits))
	copy(oldShares, tx.Splits)

	tx.Splits = cleaned
	tx.SplitAdjusted = true

	l.store.AppendAuditLog(models.ShareAdjustmentLog{
		ID:            "adj-" + shortID(),
		TransactionID: tx.ID,
		Time:          time.Now(),
		Operator:      operator,
		OldShares:     oldShares,
		NewShares:     cleaned,
		Remark:        remark,
	})

	return *tx, nil
}

// stakeholderName resolves a display name; unknown ids fall back to the
// id itself so arbitrary parties can still be recorded.
func stakeholderName(stakeholders []models.Stakeholder, userID string) string {
	for _, sh := range stakeholders {
		if sh.ID == userID {
			return sh.Name
		}
	}
	return userID
}

type AuditFilters struct {
	TransactionID string
	Operator      string
	Since         time.Time
	Limit         int
}

// AuditLogs lists share adjustment entries newest first.
func (l *Ledger) AuditLogs(f AuditFilters) []models.ShareAdjustmentLog {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.store.AuditLogs()
	out := make([]models.ShareAdjustmentLog, 0, len(entries))
	for _, e := range entries {
		if f.TransactionID != "" && e.TransactionID != f.TransactionID {
			continue
		}
		if f.Operator != "" && e.Operator != f.Operator {
			continue
		}
		if !f.Since.IsZero() && e.Time.Before(f.Since) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
