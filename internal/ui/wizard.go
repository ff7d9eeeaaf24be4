package ui

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/tokenapp/internal/config"
	tea "github.com/charmbracelet/bubbletea"
)

// WizardResult holds the answers collected by `tokenapp init`, keyed by
// config key. Skipped questions keep the current value.
type WizardResult struct {
	Answers  map[string]string
	Canceled bool
}

// Apply writes the answers into cfg in question order.
func (r *WizardResult) Apply(cfg *config.Config) error {
	for _, k := range config.Keys() {
		v, ok := r.Answers[k]
		if !ok || v == "" {
			continue
		}
		if err := cfg.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// question is one wizard step: either a menu (choices) or free text.
type question struct {
	key     string
	prompt  string
	choices []string
	current string
}

type wizardModel struct {
	questions []question
	step      int
	cursor    int
	input     string
	result    WizardResult
}

func newWizard(cfg *config.Config) wizardModel {
	m := wizardModel{result: WizardResult{Answers: map[string]string{}}}
	m.questions = []question{
		{
			key:     "provider",
			prompt:  "How should tokenapp reach your wallet?",
			choices: []string{config.ProviderInjected, config.ProviderKeystore},
			current: cfg.Provider,
		},
	}
	m.cursor = indexOf(m.questions[0].choices, cfg.Provider)
	m.extend(cfg)
	return m
}

// extend appends the questions that follow the provider choice.
func (m *wizardModel) extend(cfg *config.Config) {
	m.questions = append(m.questions[:1],
		question{key: "wallet_endpoint", prompt: "Wallet RPC endpoint", current: cfg.WalletEndpoint},
		question{key: "rpc_urls", prompt: "Node RPC URLs (comma separated)", current: strings.Join(cfg.RPCURLs, ",")},
		question{key: "rpc_algorithm", prompt: "Node selection", choices: []string{"fastest", "round-robin", "failover"}, current: cfg.RPCAlgorithm},
		question{key: "contract_address", prompt: "Token contract address", current: cfg.ContractAddress},
		question{key: "token_decimals", prompt: "Token decimals", current: fmt.Sprint(cfg.TokenDecimals)},
		question{key: "token_symbol", prompt: "Token symbol", current: cfg.TokenSymbol},
	)
}

// skip reports whether a question does not apply to the chosen provider.
func (m wizardModel) skip(q question) bool {
	switch m.result.Answers["provider"] {
	case config.ProviderInjected:
		return q.key == "rpc_urls" || q.key == "rpc_algorithm"
	case config.ProviderKeystore:
		return q.key == "wallet_endpoint"
	}
	return false
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.step >= len(m.questions) {
		return m, nil
	}
	q := m.questions[m.step]

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.result.Canceled = true
		return m, tea.Quit
	case tea.KeyUp:
		if q.choices != nil && m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if q.choices != nil && m.cursor < len(q.choices)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		if q.choices != nil {
			m.result.Answers[q.key] = q.choices[m.cursor]
		} else {
			m.result.Answers[q.key] = strings.Trim(strings.TrimSpace(m.input), "[]")
		}
		if m.advance() {
			return m, tea.Quit
		}
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		if q.choices == nil {
			m.input += string(key.Runes)
		}
	}
	return m, nil
}

// advance moves to the next applicable question and reports whether the
// wizard is finished.
func (m *wizardModel) advance() bool {
	m.input = ""
	for {
		m.step++
		if m.step >= len(m.questions) {
			return true
		}
		if q := m.questions[m.step]; !m.skip(q) {
			m.cursor = indexOf(q.choices, q.current)
			return false
		}
	}
}

func (m wizardModel) View() string {
	if m.step >= len(m.questions) || m.result.Canceled {
		return ""
	}
	q := m.questions[m.step]

	s := StyleTitle.Render(q.prompt) + "\n"
	if q.choices != nil {
		for i, c := range q.choices {
			if i == m.cursor {
				s += StyleSelected.Render("▸ "+c) + "\n"
			} else {
				s += "  " + Val(c) + "\n"
			}
		}
		s += "\n" + Meta("↑/↓ navigate · enter select · esc cancel")
	} else {
		if q.current != "" {
			s += Meta("current: "+q.current) + "\n"
		}
		s += "> " + Addr(m.input) + "█\n"
		s += "\n" + Meta("enter to keep the current value · esc cancel")
	}
	return StyleBorder.Render(s) + "\n"
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return 0
}

// RunWizard walks the user through the settings `init` cares about.
func RunWizard(cfg *config.Config) (*WizardResult, error) {
	p := tea.NewProgram(newWizard(cfg))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard: %w", err)
	}
	result := final.(wizardModel).result
	return &result, nil
}
