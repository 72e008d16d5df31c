package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitbook/models"
	"splitbook/providers"
	"splitbook/store"
)

type stubChainFetcher struct {
	txs   []models.ExternalTx
	err   error
	calls int
}

func (s *stubChainFetcher) FetchDeposits(models.WalletConfig, int64) ([]models.ExternalTx, error) {
	s.calls++
	return s.txs, s.err
}

type stubGatewayFetcher struct {
	txs []models.ExternalTx
	err error
}

func (s *stubGatewayFetcher) FetchOrders(models.GatewayConfig, int64) ([]models.ExternalTx, error) {
	return s.txs, s.err
}

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger(store.New(7.0))
	require.NoError(t, l.ReplaceStakeholders([]models.Stakeholder{
		{ID: "A", Name: "Alice", Ratio: 0.6},
		{ID: "B", Name: "Bob", Ratio: 0.4},
	}))
	return l
}

func usdtWallet(fee float64) []models.WalletConfig {
	return []models.WalletConfig{{
		ID:        "w1",
		Address:   "TXYZabc",
		Network:   models.NetworkTRC20,
		Label:     "hot wallet",
		Status:    models.WalletActive,
		FeeAmount: fee,
	}}
}

func TestIngestWalletDeposit(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.ReplaceWallets(usdtWallet(3)))

	providers.RegisterChainFetcher(models.NetworkTRC20, &stubChainFetcher{txs: []models.ExternalTx{{
		ExternalID:       "chain-tx-1",
		Amount:           100,
		Currency:         models.CurrencyUSDT,
		OccurredAtMillis: 1_700_000_000_000,
		Status:           models.StatusCompleted,
	}}})

	res, err := l.SyncSource("w1")
	require.NoError(t, err)
	require.Equal(t, 1, res.Added)

	tx := res.Transactions[0]
	assert.Equal(t, models.SourceWallet, tx.Source)
	assert.Equal(t, models.CurrencyUSDT, tx.Currency)
	assert.Equal(t, 100.0, tx.OriginalAmount)
	assert.Equal(t, 700.0, tx.CnyAmount)
	assert.Equal(t, 3.0, tx.FeeAmount)
	assert.Equal(t, 97.0, tx.NetAmount)
	assert.Equal(t, 679.0, tx.NetAmountCNY)

	require.Len(t, tx.Splits, 2)
	assert.Equal(t, 407.40, tx.Splits[0].Amount)
	assert.Equal(t, 271.60, tx.Splits[1].Amount)
	assert.Equal(t, "Alice", tx.Splits[0].UserName)

	t.Run("wallet id embedded in transaction id", func(t *testing.T) {
		assert.Contains(t, tx.ID, "wtx-w1-")
	})

	t.Run("checkpoint advanced", func(t *testing.T) {
		w := l.Wallets()[0]
		assert.NotEmpty(t, w.LastSyncTime)
		assert.Equal(t, "chain-tx-1", w.LastTxID)
	})
}

func TestSplitSumMatchesNet(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.ReplaceStakeholders([]models.Stakeholder{
		{ID: "A", Name: "Alice", Ratio: 0.33},
		{ID: "B", Name: "Bob", Ratio: 0.33},
		{ID: "C", Name: "Carol", Ratio: 0.34},
	}))

	_, err := l.AddManual(1234.56, models.CurrencyCNY, "")
	require.NoError(t, err)

	txs := l.List(ListFilters{})
	require.Len(t, txs, 1)

	sum := 0.0
	for _, sp := range txs[0].Splits {
		sum += sp.Amount
	}
	assert.InDelta(t, txs[0].EffectiveNetCNY(), sum, 0.01)
}

func TestFeeNeverPushesNetNegative(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.ReplaceWallets(usdtWallet(5)))

	providers.RegisterChainFetcher(models.NetworkTRC20, &stubChainFetcher{txs: []models.ExternalTx{{
		ExternalID:       "tiny",
		Amount:           3,
		Currency:         models.CurrencyUSDT,
		OccurredAtMillis: 1_700_000_000_000,
		Status:           models.StatusCompleted,
	}}})

	res, err := l.SyncSource("w1")
	require.NoError(t, err)
	require.Equal(t, 1, res.Added)

	tx := res.Transactions[0]
	assert.Equal(t, 0.0, tx.NetAmount)
	assert.Equal(t, 0.0, tx.NetAmountCNY)
	for _, sp := range tx.Splits {
		assert.Equal(t, 0.0, sp.Amount)
	}
}

func TestRecomputeTracksCurrentConfig(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.AddManual(100, models.CurrencyUSDT, "")
	require.NoError(t, err)

	t.Run("exchange rate change applies on next read", func(t *testing.T) {
		require.NoError(t, l.SetExchangeRate(7.5))
		txs := l.List(ListFilters{})
		require.Len(t, txs, 1)
		assert.Equal(t, 750.0, txs[0].CnyAmount)
	})

	t.Run("ratio change rewrites every split", func(t *testing.T) {
		require.NoError(t, l.ReplaceStakeholders([]models.Stakeholder{
			{ID: "A", Name: "Alice", Ratio: 1.0},
		}))
		txs := l.List(ListFilters{})
		require.Len(t, txs[0].Splits, 1)
		assert.Equal(t, 750.0, txs[0].Splits[0].Amount)
	})

	t.Run("zero stakeholders leaves splits empty", func(t *testing.T) {
		require.NoError(t, l.ReplaceStakeholders(nil))
		txs := l.List(ListFilters{})
		require.Len(t, txs, 1)
		assert.Empty(t, txs[0].Splits)
	})
}

func TestGatewayRenamePropagatesToTransactions(t *testing.T) {
	l := newTestLedger(t)
	gw := models.GatewayConfig{
		ID: "g1", Name: "AlphaPay", BaseURL: "https://alpha.example",
		Provider: "alpha", FeePercentage: 0.02, IsActive: true, AdapterType: "stub",
	}
	require.NoError(t, l.ReplaceGateways([]models.GatewayConfig{gw}))

	providers.RegisterGatewayFetcher("stub", &stubGatewayFetcher{txs: []models.ExternalTx{{
		ExternalID:       "alpha:order-1",
		Amount:           200,
		Currency:         models.CurrencyCNY,
		OccurredAtMillis: 1_700_000_000_000,
		Status:           models.StatusCompleted,
	}}})

	res, err := l.SyncSource("g1")
	require.NoError(t, err)
	require.Equal(t, 1, res.Added)
	assert.Equal(t, "AlphaPay", res.Transactions[0].Source)
	assert.Equal(t, 4.0, res.Transactions[0].FeeAmount)
	assert.Equal(t, 196.0, res.Transactions[0].NetAmountCNY)

	gw.Name = "AlphaPay CN"
	require.NoError(t, l.ReplaceGateways([]models.GatewayConfig{gw}))

	txs := l.List(ListFilters{})
	require.Len(t, txs, 1)
	assert.Equal(t, "AlphaPay CN", txs[0].Source)
	// fee still resolves through the renamed config
	assert.Equal(t, 4.0, txs[0].FeeAmount)

	t.Run("fee change recomputes matching transactions", func(t *testing.T) {
		gw.Name = "AlphaPay CN"
		gw.FeePercentage = 0.05
		require.NoError(t, l.ReplaceGateways([]models.GatewayConfig{gw}))

		txs := l.List(ListFilters{})
		assert.Equal(t, 10.0, txs[0].FeeAmount)
		assert.Equal(t, 190.0, txs[0].NetAmountCNY)
	})
}

func TestListFilters(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.AddManual(50, models.CurrencyCNY, models.StatusCompleted)
	require.NoError(t, err)
	_, err = l.AddManual(10, models.CurrencyUSDT, models.StatusPending)
	require.NoError(t, err)

	assert.Len(t, l.List(ListFilters{}), 2)
	assert.Len(t, l.List(ListFilters{Currency: models.CurrencyUSDT}), 1)
	assert.Len(t, l.List(ListFilters{Status: models.StatusPending}), 1)
	assert.Len(t, l.List(ListFilters{Source: models.SourceManual}), 2)
	assert.Empty(t, l.List(ListFilters{Source: "nope"}))
}

func TestGetTransaction(t *testing.T) {
	l := newTestLedger(t)
	created, err := l.AddManual(70, models.CurrencyCNY, models.StatusCompleted)
	require.NoError(t, err)

	got, err := l.GetTransaction(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.InDelta(t, 42.0, got.Splits[0].Amount, 0.001)

	_, err = l.GetTransaction("mtx-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceStakeholdersValidation(t *testing.T) {
	l := newTestLedger(t)

	err := l.ReplaceStakeholders([]models.Stakeholder{{ID: "", Name: "x", Ratio: 0.5}})
	assert.ErrorIs(t, err, ErrValidation)

	err = l.ReplaceStakeholders([]models.Stakeholder{{ID: "A", Name: "x", Ratio: 1.5}})
	assert.ErrorIs(t, err, ErrValidation)

	err = l.ReplaceStakeholders([]models.Stakeholder{
		{ID: "A", Name: "x", Ratio: 0.5},
		{ID: "A", Name: "y", Ratio: 0.5},
	})
	assert.ErrorIs(t, err, ErrValidation)

	// ratios not summing to 1.0 are warned about, not rejected
	err = l.ReplaceStakeholders([]models.Stakeholder{{ID: "A", Name: "x", Ratio: 0.5}})
	assert.NoError(t, err)
}

func TestManualEntryValidation(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.AddManual(-5, models.CurrencyCNY, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = l.AddManual(5, "EUR", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = l.AddManual(5, models.CurrencyCNY, "Settled")
	assert.ErrorIs(t, err, ErrValidation)
}
