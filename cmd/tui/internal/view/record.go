package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/account"
	"github.com/MrJamesThe3rd/expenso/internal/category"
	"github.com/MrJamesThe3rd/expenso/internal/operation"
)

type recordRefsMsg struct {
	accs        []*account.Account
	incomeCats  []*category.Category
	expenseCats []*category.Category
	err         error
}

type recordSavedMsg struct {
	op  *operation.Operation
	err error
}

// RecordModel is the form for recording a new income, expense, or transfer.
type RecordModel struct {
	CommonModel
	accountService   *account.Service
	categoryService  *category.Service
	operationService *operation.Service
	userID           uuid.UUID

	accs        []*account.Account
	incomeCats  []*category.Category
	expenseCats []*category.Category

	form   *huh.Form
	vals   *recordForm
	status string
	err    error
}

// recordForm holds the form bindings on the heap so the form and the save
// command observe the same values across model copies.
type recordForm struct {
	kind       operation.Kind
	accountID  uuid.UUID
	toID       uuid.UUID
	categoryID uuid.UUID
	amount     string
	rate       string
	note       string
}

func NewRecordModel(
	accountSvc *account.Service,
	categorySvc *category.Service,
	operationSvc *operation.Service,
	userID uuid.UUID,
) RecordModel {
	return RecordModel{
		accountService:   accountSvc,
		categoryService:  categorySvc,
		operationService: operationSvc,
		userID:           userID,
	}
}

func (m RecordModel) Title() string { return "Record Operation" }

func (m RecordModel) ShortHelp() string { return "Navigate form | Esc: back" }

func (m RecordModel) Init() tea.Cmd {
	return m.loadRefsCmd()
}

func (m RecordModel) loadRefsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accs, err := m.accountService.List(ctx, m.userID)
		if err != nil {
			return recordRefsMsg{err: err}
		}

		incomeCats, err := m.categoryService.List(ctx, m.userID, category.KindIncome)
		if err != nil {
			return recordRefsMsg{err: err}
		}

		expenseCats, err := m.categoryService.List(ctx, m.userID, category.KindExpense)
		if err != nil {
			return recordRefsMsg{err: err}
		}

		return recordRefsMsg{accs: accs, incomeCats: incomeCats, expenseCats: expenseCats}
	}
}

func (m *RecordModel) newForm() *huh.Form {
	m.vals = &recordForm{kind: operation.KindExpense}
	vals := m.vals

	accOptions := make([]huh.Option[uuid.UUID], len(m.accs))
	for i, acc := range m.accs {
		accOptions[i] = huh.NewOption(fmt.Sprintf("%s (%s)", acc.Name, FormatMoney(acc.Balance)), acc.ID)
	}

	catOptions := func(cats []*category.Category) []huh.Option[uuid.UUID] {
		opts := make([]huh.Option[uuid.UUID], len(cats))
		for i, c := range cats {
			opts[i] = huh.NewOption(c.Name, c.ID)
		}

		return opts
	}

	incomeCats, expenseCats := m.incomeCats, m.expenseCats

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[operation.Kind]().
				Title("Kind").
				Options(
					huh.NewOption("Expense", operation.KindExpense),
					huh.NewOption("Income", operation.KindIncome),
					huh.NewOption("Transfer", operation.KindTransfer),
				).
				Value(&vals.kind),
		),
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Account").
				Options(accOptions...).
				Value(&vals.accountID),
			huh.NewSelect[uuid.UUID]().
				Title("Category").
				OptionsFunc(func() []huh.Option[uuid.UUID] {
					if vals.kind == operation.KindIncome {
						return catOptions(incomeCats)
					}

					return catOptions(expenseCats)
				}, &vals.kind).
				Value(&vals.categoryID),
		).WithHideFunc(func() bool { return vals.kind == operation.KindTransfer }),
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("From account").
				Options(accOptions...).
				Value(&vals.accountID),
			huh.NewSelect[uuid.UUID]().
				Title("To account").
				Options(accOptions...).
				Value(&vals.toID),
			huh.NewInput().
				Title("Exchange rate (blank when currencies match)").
				Value(&vals.rate),
		).WithHideFunc(func() bool { return vals.kind != operation.KindTransfer }),
		huh.NewGroup(
			huh.NewInput().
				Title("Amount").
				Value(&vals.amount),
			huh.NewInput().
				Title("Note").
				Value(&vals.note),
		),
	)
}

func (m RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordRefsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.accs = msg.accs
		m.incomeCats = msg.incomeCats
		m.expenseCats = msg.expenseCats
		m.form = m.newForm()

		return m, m.form.Init()

	case recordSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Recorded %s of %s", msg.op.Kind, FormatMoney(msg.op.Amount))
		}

		m.form = m.newForm()

		return m, m.form.Init()
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.saveCmd()
	case huh.StateAborted:
		return m, Back
	}

	return m, cmd
}

func (m RecordModel) saveCmd() tea.Cmd {
	kind := m.vals.kind
	accountID, toID, categoryID := m.vals.accountID, m.vals.toID, m.vals.categoryID
	rawAmount, rawRate, note := m.vals.amount, m.vals.rate, m.vals.note

	return func() tea.Msg {
		amount, err := decimal.NewFromString(rawAmount)
		if err != nil {
			return recordSavedMsg{err: fmt.Errorf("invalid amount: %w", err)}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		if kind == operation.KindTransfer {
			var rate *decimal.Decimal

			if rawRate != "" {
				r, err := decimal.NewFromString(rawRate)
				if err != nil {
					return recordSavedMsg{err: fmt.Errorf("invalid rate: %w", err)}
				}

				rate = &r
			}

			op, err := m.operationService.CreateTransfer(ctx, m.userID, operation.CreateTransferParams{
				FromAccountID: accountID,
				ToAccountID:   toID,
				Amount:        amount,
				ExchangeRate:  rate,
				Note:          note,
			})

			return recordSavedMsg{op: op, err: err}
		}

		params := operation.CreateParams{
			AccountID:  accountID,
			CategoryID: categoryID,
			Amount:     amount,
			Note:       note,
		}

		create := m.operationService.CreateIncome
		if kind == operation.KindExpense {
			create = m.operationService.CreateExpense
		}

		op, err := create(ctx, m.userID, params)

		return recordSavedMsg{op: op, err: err}
	}
}

func (m RecordModel) View() string {
	if m.form == nil {
		if m.err != nil {
			return lipgloss.NewStyle().Padding(1, 2).Render(fmt.Sprintf("Error: %v", m.err))
		}

		return lipgloss.NewStyle().Padding(1, 2).Render("Loading...")
	}

	view := m.form.View()

	if m.status != "" {
		view += "\n" + m.status
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(view)
}
