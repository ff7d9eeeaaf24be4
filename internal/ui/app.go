package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/tokenapp/internal/provider"
	"github.com/Mohsinsiddi/tokenapp/internal/view"
	tea "github.com/charmbracelet/bubbletea"
)

// AppConfig wires the interactive view.
type AppConfig struct {
	Controller *view.Controller
	Version    string
	// PollInterval is how often the wallet's accounts are re-checked.
	PollInterval time.Duration
	// Approvals delivers keystore signature requests. Nil when the wallet
	// shows its own prompt.
	Approvals <-chan ApprovalRequest
	// Describe renders a pending transaction for the approval box.
	Describe func(provider.PendingTx) [][2]string
}

type field int

const (
	fieldRecipient field = iota
	fieldAmount
)

type (
	connectedMsg struct{ err error }
	balanceMsg   struct{ err error }
	transferMsg  struct {
		out view.Outcome
		err error
	}
	syncMsg     struct{ err error }
	pollMsg     time.Time
	approvalMsg ApprovalRequest
)

// appModel is the Bubble Tea model for the single token view.
type appModel struct {
	ctx  context.Context
	cfg  AppConfig
	snap view.Snapshot

	recipient string
	amount    string
	focus     field
	busy      string
	pending   *ApprovalRequest
	quitting  bool
}

func newAppModel(ctx context.Context, cfg AppConfig) appModel {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return appModel{ctx: ctx, cfg: cfg, snap: cfg.Controller.Snapshot(), busy: "Connecting to wallet…"}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.connectCmd(), m.pollCmd(), m.approvalCmd())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectedMsg, balanceMsg, syncMsg:
		m.busy = ""
		m.snap = m.cfg.Controller.Snapshot()

	case transferMsg:
		m.busy = ""
		m.snap = m.cfg.Controller.Snapshot()
		if msg.err == nil {
			m.recipient, m.amount, m.focus = "", "", fieldRecipient
		}

	case pollMsg:
		cmds := []tea.Cmd{m.pollCmd()}
		if m.busy == "" && m.snap.Connected() {
			cmds = append(cmds, m.syncCmd())
		}
		return m, tea.Batch(cmds...)

	case approvalMsg:
		req := ApprovalRequest(msg)
		m.pending = &req
		return m, m.approvalCmd()
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		if m.pending != nil {
			m.pending.Answer(false)
		}
		m.quitting = true
		return m, tea.Quit
	}

	if m.pending != nil {
		switch msg.String() {
		case "y", "Y":
			m.pending.Answer(true)
			m.pending = nil
			m.busy = "Broadcasting…"
		case "n", "N", "esc":
			m.pending.Answer(false)
			m.pending = nil
		}
		return m, nil
	}

	if m.busy != "" {
		return m, nil
	}

	if m.snap.State == view.TransferSucceeded || m.snap.State == view.TransferFailed {
		m.cfg.Controller.Acknowledge()
		m.snap = m.cfg.Controller.Snapshot()
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.focus = 1 - m.focus
	case tea.KeyCtrlR:
		if m.snap.Connected() {
			m.busy = "Refreshing balance…"
			return m, m.balanceCmd()
		}
	case tea.KeyCtrlL:
		if !m.snap.Connected() {
			m.busy = "Connecting to wallet…"
			return m, m.connectCmd()
		}
	case tea.KeyEnter:
		if m.focus == fieldRecipient {
			m.focus = fieldAmount
			return m, nil
		}
		if !m.snap.Connected() {
			return m, nil
		}
		m.busy = "Waiting for the wallet to sign…"
		return m, m.transferCmd(m.recipient, m.amount)
	case tea.KeyBackspace:
		m.edit(func(s string) string {
			if s == "" {
				return s
			}
			r := []rune(s)
			return string(r[:len(r)-1])
		})
	case tea.KeyRunes, tea.KeySpace:
		text := string(msg.Runes)
		m.edit(func(s string) string { return s + strings.TrimSpace(text) })
	}
	return m, nil
}

func (m *appModel) edit(f func(string) string) {
	if m.focus == fieldRecipient {
		m.recipient = f(m.recipient)
	} else {
		m.amount = f(m.amount)
	}
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(Banner(m.cfg.Version) + "\n\n")

	if m.snap.Connected() {
		sb.WriteString(Meta("Account   ") + Addr(m.snap.Account.Hex()) + "\n")
		balance := Meta("not loaded")
		if b := m.snap.Balance; b != nil {
			balance = Amount(b.Display(), b.Symbol)
		}
		sb.WriteString(Meta("Balance   ") + balance + "\n\n")
	} else {
		sb.WriteString(Warn("Not connected") + "\n\n")
	}

	sb.WriteString(m.renderField(fieldRecipient, "Recipient", m.recipient) + "\n")
	sb.WriteString(m.renderField(fieldAmount, "Amount", m.amount) + "\n\n")

	switch {
	case m.pending != nil:
		rows := [][2]string{{"Contract", m.pending.Tx.To.Hex()}}
		if m.cfg.Describe != nil {
			rows = m.cfg.Describe(m.pending.Tx)
		}
		sb.WriteString(KeyValueBlock("Signature request", rows) + "\n")
		sb.WriteString(StyleWarning.Render("Sign and broadcast? ") + Meta("[y] sign  [n] reject") + "\n")
	case m.busy != "":
		sb.WriteString(Info(m.busy) + "\n")
	case m.snap.State == view.TransferSucceeded:
		sb.WriteString(Success(m.snap.Message) + "\n")
	case m.snap.Err != nil:
		sb.WriteString(Err(m.snap.Message) + "\n")
	case m.snap.Message != "":
		sb.WriteString(Meta(m.snap.Message) + "\n")
	}

	sb.WriteString("\n" + Meta(m.helpLine()) + "\n")
	return sb.String()
}

func (m appModel) renderField(f field, label, value string) string {
	line := fmt.Sprintf("%-10s", label) + value
	if f == m.focus {
		return StyleFocused.Render(line + "█")
	}
	return StyleBlurred.Render(line)
}

func (m appModel) helpLine() string {
	if !m.snap.Connected() {
		return "ctrl+l connect · esc quit"
	}
	return "tab switch field · enter send · ctrl+r refresh · esc quit"
}

// --- commands ---

func (m appModel) connectCmd() tea.Cmd {
	ctrl, ctx := m.cfg.Controller, m.ctx
	return func() tea.Msg {
		if err := ctrl.Connect(ctx); err != nil {
			return connectedMsg{err: err}
		}
		return connectedMsg{err: ctrl.LoadBalance(ctx)}
	}
}

func (m appModel) balanceCmd() tea.Cmd {
	ctrl, ctx := m.cfg.Controller, m.ctx
	return func() tea.Msg {
		return balanceMsg{err: ctrl.LoadBalance(ctx)}
	}
}

func (m appModel) transferCmd(to, amount string) tea.Cmd {
	ctrl, ctx := m.cfg.Controller, m.ctx
	return func() tea.Msg {
		out, err := ctrl.Transfer(ctx, to, amount)
		return transferMsg{out: out, err: err}
	}
}

func (m appModel) syncCmd() tea.Cmd {
	ctrl, ctx := m.cfg.Controller, m.ctx
	return func() tea.Msg {
		_, err := ctrl.SyncAccount(ctx)
		return syncMsg{err: err}
	}
}

func (m appModel) pollCmd() tea.Cmd {
	return tea.Tick(m.cfg.PollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m appModel) approvalCmd() tea.Cmd {
	if m.cfg.Approvals == nil {
		return nil
	}
	ch, ctx := m.cfg.Approvals, m.ctx
	return func() tea.Msg {
		select {
		case req := <-ch:
			return approvalMsg(req)
		case <-ctx.Done():
			return nil
		}
	}
}

// RunApp runs the interactive view until the user quits. The controller is
// left as it was; the caller disconnects it.
func RunApp(ctx context.Context, cfg AppConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newAppModel(ctx, cfg), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}
