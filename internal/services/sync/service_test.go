package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finaos/internal/common"
	"github.com/bobmcallan/finaos/internal/interfaces"
	"github.com/bobmcallan/finaos/internal/models"
)

type mockVault struct {
	accounts []*models.Account
	listErr  error
	replaced map[string][]*models.HoldingLot
	replErr  map[string]error
	saved    []*models.Account
}

func newMockVault(accounts ...*models.Account) *mockVault {
	return &mockVault{
		accounts: accounts,
		replaced: map[string][]*models.HoldingLot{},
		replErr:  map[string]error{},
	}
}

func (m *mockVault) SaveAccount(ctx context.Context, account *models.Account) error {
	m.saved = append(m.saved, account)
	return nil
}
func (m *mockVault) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return nil, nil
}
func (m *mockVault) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return m.accounts, m.listErr
}
func (m *mockVault) DeleteAccount(ctx context.Context, accountID string) error { return nil }
func (m *mockVault) ReadHoldings(ctx context.Context) ([]*models.HoldingLot, error) {
	return nil, nil
}
func (m *mockVault) ReplaceHoldings(ctx context.Context, accountID string, lots []*models.HoldingLot) error {
	if err := m.replErr[accountID]; err != nil {
		return err
	}
	m.replaced[accountID] = lots
	return nil
}
func (m *mockVault) AppendAudit(ctx context.Context, source, action, detail string) error {
	return nil
}
func (m *mockVault) ListAudit(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	return nil, nil
}
func (m *mockVault) Close() error { return nil }

type mockBrokerage struct {
	holdings map[string][]*models.BrokerageHolding
	errs     map[string]error
}

func (m *mockBrokerage) GetHoldings(ctx context.Context, accessToken string) ([]*models.BrokerageHolding, error) {
	if err := m.errs[accessToken]; err != nil {
		return nil, err
	}
	return m.holdings[accessToken], nil
}

func account(id, token string) *models.Account {
	return &models.Account{AccountID: id, Name: id, Type: "investment", AccessToken: token}
}

func holding(ticker string, qty, basis float64) *models.BrokerageHolding {
	return &models.BrokerageHolding{Ticker: ticker, Quantity: qty, CostBasisPerShare: basis, Currency: "USD"}
}

func TestSyncAll_RefreshesEveryAccount(t *testing.T) {
	vault := newMockVault(account("acct-1", "tok-1"), account("acct-2", "tok-2"))
	brokerage := &mockBrokerage{holdings: map[string][]*models.BrokerageHolding{
		"tok-1": {holding("AAPL", 10, 150), holding("VTI", 4, 200)},
		"tok-2": {holding("MSFT", 2, 300)},
	}}

	result, err := NewService(vault, brokerage, common.NewSilentLogger()).SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Accounts)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 3, result.Lots)
	assert.Empty(t, result.Failures)

	require.Len(t, vault.replaced["acct-1"], 2)
	assert.Equal(t, "AAPL", vault.replaced["acct-1"][0].RawTicker)
	assert.Equal(t, "acct-1", vault.replaced["acct-1"][0].AccountID)
	assert.InDelta(t, 150, vault.replaced["acct-1"][0].CostBasisPerShare, 0.0001)

	// LastSynced is stamped on each synced account.
	require.Len(t, vault.saved, 2)
	assert.False(t, vault.saved[0].LastSynced.IsZero())
}

func TestSyncAll_NoAccounts(t *testing.T) {
	result, err := NewService(newMockVault(), &mockBrokerage{}, common.NewSilentLogger()).SyncAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Accounts)
	assert.Zero(t, result.Synced)
}

func TestSyncAll_UnsupportedAccountSkippedQuietly(t *testing.T) {
	vault := newMockVault(account("checking", "tok-chk"), account("acct-1", "tok-1"))
	brokerage := &mockBrokerage{
		holdings: map[string][]*models.BrokerageHolding{"tok-1": {holding("AAPL", 10, 150)}},
		errs:     map[string]error{"tok-chk": interfaces.ErrUnsupportedAccount},
	}

	result, err := NewService(vault, brokerage, common.NewSilentLogger()).SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Synced)
	// An unsupported product is not a failure.
	assert.Empty(t, result.Failures)
	assert.NotContains(t, vault.replaced, "checking")
}

func TestSyncAll_FetchFailureRecordedAndPassContinues(t *testing.T) {
	vault := newMockVault(account("acct-bad", "tok-bad"), account("acct-good", "tok-good"))
	brokerage := &mockBrokerage{
		holdings: map[string][]*models.BrokerageHolding{"tok-good": {holding("VTI", 4, 200)}},
		errs:     map[string]error{"tok-bad": errors.New("token revoked")},
	}

	result, err := NewService(vault, brokerage, common.NewSilentLogger()).SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, []string{"acct-bad"}, result.Failures)
	assert.Contains(t, vault.replaced, "acct-good")
}

func TestSyncAll_ReplaceFailureRecorded(t *testing.T) {
	vault := newMockVault(account("acct-1", "tok-1"))
	vault.replErr["acct-1"] = errors.New("vault locked")
	brokerage := &mockBrokerage{holdings: map[string][]*models.BrokerageHolding{
		"tok-1": {holding("AAPL", 10, 150)},
	}}

	result, err := NewService(vault, brokerage, common.NewSilentLogger()).SyncAll(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Synced)
	assert.Equal(t, []string{"acct-1"}, result.Failures)
	assert.Empty(t, vault.saved)
}

func TestSyncAll_ListFailure(t *testing.T) {
	vault := newMockVault()
	vault.listErr = errors.New("vault closed")

	_, err := NewService(vault, &mockBrokerage{}, common.NewSilentLogger()).SyncAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault closed")
}
