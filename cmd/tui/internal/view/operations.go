package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/expenso/internal/operation"
)

var operationKinds = []operation.Kind{
	operation.KindExpense,
	operation.KindIncome,
	operation.KindTransfer,
}

type loadOperationsMsg struct {
	ops []*operation.Operation
	err error
}

type operationDeletedMsg struct {
	err error
}

type OperationsModel struct {
	CommonModel
	operationService *operation.Service
	userID           uuid.UUID

	kindIdx int
	table   table.Model
	ops     []*operation.Operation

	status string
	err    error
}

func NewOperationsModel(operationSvc *operation.Service, userID uuid.UUID) OperationsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 18},
		{Title: "Credited", Width: 18},
		{Title: "Note", Width: 40},
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

	return OperationsModel{
		operationService: operationSvc,
		userID:           userID,
		table:            t,
	}
}

func (m OperationsModel) kind() operation.Kind {
	return operationKinds[m.kindIdx]
}

func (m OperationsModel) Title() string {
	return fmt.Sprintf("Operations (%ss)", m.kind())
}

func (m OperationsModel) ShortHelp() string {
	return "Esc: back | tab: switch kind | x: delete | r: refresh"
}

func (m OperationsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m OperationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadOperationsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.ops = msg.ops
		m.err = nil
		m.refreshTable()

		return m, nil

	case operationDeletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = "Operation deleted, balances restored"
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "tab":
			m.kindIdx = (m.kindIdx + 1) % len(operationKinds)
			m.status = ""

			return m, m.loadCmd()
		case "r":
			return m, m.loadCmd()
		case "x":
			if op := m.selected(); op != nil {
				return m, m.deleteCmd(op.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *OperationsModel) selected() *operation.Operation {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.ops) {
		return nil
	}

	return m.ops[idx]
}

func (m *OperationsModel) refreshTable() {
	rows := make([]table.Row, len(m.ops))

	for i, op := range m.ops {
		credited := ""
		if op.Conversion != nil {
			credited = FormatMoney(op.Conversion.Amount)
		}

		rows[i] = table.Row{
			FormatDate(op.CreatedAt),
			FormatMoney(op.Amount),
			credited,
			op.Note,
		}
	}

	m.table.SetRows(rows)
}

func (m OperationsModel) loadCmd() tea.Cmd {
	kind := m.kind()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		ops, err := m.operationService.List(ctx, m.userID, kind, operation.ListFilter{})

		return loadOperationsMsg{ops: ops, err: err}
	}
}

func (m OperationsModel) deleteCmd(id uuid.UUID) tea.Cmd {
	kind := m.kind()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return operationDeletedMsg{err: m.operationService.Delete(ctx, m.userID, id, kind)}
	}
}

func (m OperationsModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render(m.Title())
	view := header + "\n\n" + m.table.View()

	if m.err != nil {
		view += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.status != "" {
		view += "\n" + m.status
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(view)
}
