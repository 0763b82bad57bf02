package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/account"
	"github.com/MrJamesThe3rd/expenso/internal/money"
)

type accountsState int

const (
	accountsStateBrowse accountsState = iota
	accountsStateCreate
)

type loadAccountsMsg struct {
	accs []*account.Account
	err  error
}

type accountSavedMsg struct {
	err error
}

type AccountsModel struct {
	CommonModel
	accountService *account.Service
	userID         uuid.UUID

	state accountsState
	table table.Model
	accs  []*account.Account
	form  *huh.Form
	vals  *accountForm

	status string
	err    error
}

// accountForm holds the form bindings on the heap so the form and the save
// command observe the same values across model copies.
type accountForm struct {
	name     string
	currency string
	balance  string
}

func NewAccountsModel(accountSvc *account.Service, userID uuid.UUID) AccountsModel {
	columns := []table.Column{
		{Title: "Name", Width: 25},
		{Title: "Balance", Width: 18},
		{Title: "Currency", Width: 8},
		{Title: "Created", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return AccountsModel{
		accountService: accountSvc,
		userID:         userID,
		table:          t,
	}
}

func (m AccountsModel) Title() string { return "Accounts" }

func (m AccountsModel) ShortHelp() string {
	if m.state == accountsStateCreate {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new account | x: delete | r: refresh"
}

func (m AccountsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.accs = msg.accs
		m.err = nil
		m.refreshTable()

		return m, nil

	case accountSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = ""
		}

		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == accountsStateCreate {
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		switch m.form.State {
		case huh.StateCompleted:
			return m, m.saveCmd()
		case huh.StateAborted:
			m.state = accountsStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}

		return m, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "n":
			m.vals = &accountForm{balance: "0"}
			m.form = m.newForm()
			m.state = accountsStateCreate
			m.table.Blur()

			return m, m.form.Init()
		case "x":
			if acc := m.selected(); acc != nil {
				return m, m.deleteCmd(acc.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *AccountsModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.vals.name),
			huh.NewInput().
				Title("Currency (ISO code)").
				CharLimit(3).
				Value(&m.vals.currency),
			huh.NewInput().
				Title("Starting balance").
				Value(&m.vals.balance),
		),
	)
}

func (m *AccountsModel) selected() *account.Account {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.accs) {
		return nil
	}

	return m.accs[idx]
}

func (m *AccountsModel) refreshTable() {
	rows := make([]table.Row, len(m.accs))
	for i, acc := range m.accs {
		rows[i] = table.Row{
			acc.Name,
			acc.Balance.Amount.StringFixed(2),
			string(acc.Balance.Currency),
			FormatDate(acc.CreatedAt),
		}
	}

	m.table.SetRows(rows)
}

func (m AccountsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accs, err := m.accountService.List(ctx, m.userID)

		return loadAccountsMsg{accs: accs, err: err}
	}
}

func (m AccountsModel) saveCmd() tea.Cmd {
	name, rawCurrency, rawBalance := m.vals.name, m.vals.currency, m.vals.balance

	return func() tea.Msg {
		currency, err := money.ParseCurrency(rawCurrency)
		if err != nil {
			return accountSavedMsg{err: err}
		}

		balance, err := decimal.NewFromString(rawBalance)
		if err != nil {
			return accountSavedMsg{err: fmt.Errorf("invalid balance: %w", err)}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		_, err = m.accountService.Create(ctx, m.userID, account.CreateParams{
			Name:     name,
			Balance:  balance,
			Currency: currency,
		})

		return accountSavedMsg{err: err}
	}
}

func (m AccountsModel) deleteCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return accountSavedMsg{err: m.accountService.Delete(ctx, m.userID, id)}
	}
}

func (m AccountsModel) View() string {
	if m.state == accountsStateCreate {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	view := m.table.View()

	if m.err != nil {
		view += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.status != "" {
		view += "\n" + m.status
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(view)
}
