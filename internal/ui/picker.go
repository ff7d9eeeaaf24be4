package ui

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/tokenapp/internal/wallet"
	tea "github.com/charmbracelet/bubbletea"
)

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // wallet name
	SubLabel string // address, shown dimmed
	Tag      string // "default", "watch-only"
	Value    string // returned on selection
}

// WalletItems builds picker entries for wallets, flagging the default and
// wallets that cannot sign. It also returns the index of the default.
func WalletItems(wallets []*wallet.Wallet) ([]PickerItem, int) {
	items := make([]PickerItem, 0, len(wallets))
	cursor := 0
	for i, w := range wallets {
		var tags []string
		if w.IsDefault {
			tags = append(tags, "default")
			cursor = i
		}
		if !w.CanSign() {
			tags = append(tags, wallet.TypeWatchOnly)
		}
		items = append(items, PickerItem{
			Label:    w.Name,
			SubLabel: TruncateAddr(w.Address),
			Tag:      strings.Join(tags, ", "),
			Value:    w.Name,
		})
	}
	return items, cursor
}

type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.items) > 0 {
			item := m.items[m.cursor]
			m.selected = &item
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n" + StyleTitle.Render("  "+m.title) + "\n")

	for i, item := range m.items {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}
		line := prefix + fmt.Sprintf("%-16s", item.Label)
		if item.SubLabel != "" {
			line += "  " + item.SubLabel
		}
		if item.Tag != "" {
			line += "  (" + item.Tag + ")"
		}
		if i == m.cursor {
			sb.WriteString(StyleSelected.Render(line) + "\n")
		} else {
			sb.WriteString(StyleBlurred.Render(line) + "\n")
		}
	}

	sb.WriteString("\n" + Meta("  ↑↓ / jk navigate · enter select · q cancel") + "\n")
	return sb.String()
}

// PickWallet lets the user choose among wallets and returns the chosen
// name. Returns ("", nil) if the user cancels.
func PickWallet(wallets []*wallet.Wallet) (string, error) {
	if len(wallets) == 0 {
		return "", wallet.ErrWalletNotFound
	}
	items, cursor := WalletItems(wallets)

	p := tea.NewProgram(pickerModel{title: "Select default wallet", items: items, cursor: cursor})
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}

	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}
