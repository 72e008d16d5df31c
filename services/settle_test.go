package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitbook/models"
)

func TestSettleClearsCompletedTransactions(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.AddManual(100, models.CurrencyCNY, models.StatusCompleted)
	require.NoError(t, err)
	_, err = l.AddManual(50, models.CurrencyUSDT, models.StatusCompleted) // 350 CNY at 7.0
	require.NoError(t, err)
	pending, err := l.AddManual(999, models.CurrencyCNY, models.StatusPending)
	require.NoError(t, err)

	res, err := l.Settle()
	require.NoError(t, err)

	assert.Equal(t, 2, res.DeletedCount)
	assert.Equal(t, 2, res.Settlement.TransactionCount)
	assert.Equal(t, 450.0, res.Settlement.TotalAmountCNY)
	// 50 USDT plus 100 CNY folded at the current rate
	assert.InDelta(t, 50.0+100.0/7.0, res.Settlement.TotalAmountUSDT, 0.01)

	t.Run("pending transaction survives", func(t *testing.T) {
		remaining := l.List(ListFilters{})
		require.Len(t, remaining, 1)
		assert.Equal(t, pending.ID, remaining[0].ID)
	})

	t.Run("receipt recorded", func(t *testing.T) {
		settlements := l.Settlements()
		require.Len(t, settlements, 1)
		assert.Equal(t, res.Settlement.ID, settlements[0].ID)
	})

	t.Run("archive keeps cleared rows", func(t *testing.T) {
		archived, err := l.SettledTransactions(res.Settlement.ID)
		require.NoError(t, err)
		require.Len(t, archived, 2)
		for _, tx := range archived {
			assert.True(t, tx.Cleared)
			assert.Equal(t, res.Settlement.ID, tx.SettlementID)
			assert.NotNil(t, tx.ClearedAt)
			assert.NotNil(t, tx.SettledAt)
		}
	})
}

func TestSettleRejectsEmptyEligibleSet(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.Settle()
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = l.AddManual(10, models.CurrencyCNY, models.StatusPending)
	require.NoError(t, err)

	_, err = l.Settle()
	assert.ErrorIs(t, err, ErrPrecondition, "pending-only ledger has nothing to settle")
}

func TestSettlePurgesAuditLogUnconditionally(t *testing.T) {
	l := newTestLedger(t)
	tx, err := l.AddManual(100, models.CurrencyCNY, models.StatusCompleted)
	require.NoError(t, err)
	other, err := l.AddManual(20, models.CurrencyCNY, models.StatusPending)
	require.NoError(t, err)

	_, err = l.ApplyManualSplit(tx.ID, []models.SplitDetail{{UserID: "A", Ratio: 1, Amount: 100}}, "admin", "")
	require.NoError(t, err)
	// an edit on a transaction that will NOT be settled is purged too
	_, err = l.ApplyManualSplit(other.ID, []models.SplitDetail{{UserID: "B", Ratio: 1, Amount: 20}}, "admin", "")
	require.NoError(t, err)
	require.Len(t, l.AuditLogs(AuditFilters{}), 2)

	res, err := l.Settle()
	require.NoError(t, err)
	assert.Equal(t, 2, res.ClearedLogsCount)
	assert.Empty(t, l.AuditLogs(AuditFilters{}))
}

func TestSettleTotalsSnapshotPreDeletion(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.AddManual(300, models.CurrencyCNY, models.StatusCompleted)
	require.NoError(t, err)

	res, err := l.Settle()
	require.NoError(t, err)
	require.Equal(t, 300.0, res.Settlement.TotalAmountCNY)

	t.Run("active ledger no longer contains settled ids", func(t *testing.T) {
		assert.Empty(t, l.List(ListFilters{}))
	})

	t.Run("second settle finds nothing", func(t *testing.T) {
		_, err := l.Settle()
		assert.ErrorIs(t, err, ErrPrecondition)
	})
}

func TestSettleTimeWindow(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.AddManual(10, models.CurrencyCNY, models.StatusCompleted)
	require.NoError(t, err)
	_, err = l.AddManual(20, models.CurrencyCNY, models.StatusCompleted)
	require.NoError(t, err)

	res, err := l.Settle()
	require.NoError(t, err)
	assert.NotEmpty(t, res.Settlement.FromTime)
	assert.LessOrEqual(t, res.Settlement.FromTime, res.Settlement.ToTime)
}
