package ui

import (
	"testing"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	"github.com/Mohsinsiddi/tokenapp/internal/wallet"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func feed(m wizardModel, msgs ...tea.Msg) (wizardModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(wizardModel)
	}
	return m, cmd
}

func TestWizardInjectedSkipsNodeQuestions(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	m := newWizard(cfg)
	assert.Equal(t, "provider", m.questions[m.step].key)

	m, _ = feed(m, key(tea.KeyEnter)) // injected, the default
	assert.Equal(t, "wallet_endpoint", m.questions[m.step].key)

	m, _ = feed(m, runes("http://localhost:1248"), key(tea.KeyEnter))
	assert.Equal(t, "contract_address", m.questions[m.step].key)

	m, cmd := feed(m,
		key(tea.KeyEnter),              // keep contract
		runes("6"), key(tea.KeyEnter),  // decimals
		runes("USDC"), key(tea.KeyEnter),
	)
	require.NotNil(t, cmd)

	r := m.result
	require.NoError(t, r.Apply(cfg))
	assert.Equal(t, config.ProviderInjected, cfg.Provider)
	assert.Equal(t, "http://localhost:1248", cfg.WalletEndpoint)
	assert.Equal(t, config.DefaultContractAddress, cfg.ContractAddress)
	assert.EqualValues(t, 6, cfg.TokenDecimals)
	assert.Equal(t, "USDC", cfg.TokenSymbol)
}

func TestWizardKeystoreAsksForNodes(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	m, _ := feed(newWizard(cfg), key(tea.KeyDown), key(tea.KeyEnter))
	assert.Equal(t, "rpc_urls", m.questions[m.step].key)

	m, _ = feed(m, runes("http://a, http://b"), key(tea.KeyEnter))
	assert.Equal(t, "rpc_algorithm", m.questions[m.step].key)
	m, _ = feed(m, key(tea.KeyDown), key(tea.KeyEnter))

	require.NoError(t, m.result.Apply(cfg))
	assert.Equal(t, config.ProviderKeystore, cfg.Provider)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.RPCURLs)
	assert.Equal(t, "round-robin", cfg.RPCAlgorithm)
}

func TestWizardCancel(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	m, cmd := feed(newWizard(cfg), key(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.True(t, m.result.Canceled)
	assert.Empty(t, m.View())
}

func TestWalletItemsMarksDefaultAndWatchOnly(t *testing.T) {
	wallets := []*wallet.Wallet{
		{Name: "cold", Address: "0x1111111111111111111111111111111111111111", Type: wallet.TypeWatchOnly},
		{Name: "hot", Address: "0x2222222222222222222222222222222222222222", Type: wallet.TypeSigning, IsDefault: true},
	}

	items, cursor := WalletItems(wallets)
	require.Len(t, items, 2)
	assert.Equal(t, 1, cursor)
	assert.Equal(t, wallet.TypeWatchOnly, items[0].Tag)
	assert.Equal(t, "default", items[1].Tag)
	assert.Equal(t, "0x1111…1111", items[0].SubLabel)
}

func TestPickerSelects(t *testing.T) {
	items, _ := WalletItems([]*wallet.Wallet{
		{Name: "a", Address: "0x1111111111111111111111111111111111111111"},
		{Name: "b", Address: "0x2222222222222222222222222222222222222222"},
	})
	var m tea.Model = pickerModel{title: "Select", items: items}

	m, _ = m.Update(runes("j"))
	m, cmd := m.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	require.NotNil(t, m.(pickerModel).selected)
	assert.Equal(t, "b", m.(pickerModel).selected.Value)
}
