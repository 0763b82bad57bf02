package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/expenso/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/expenso/internal/account"
	accountStore "github.com/MrJamesThe3rd/expenso/internal/account/store"
	"github.com/MrJamesThe3rd/expenso/internal/category"
	categoryStore "github.com/MrJamesThe3rd/expenso/internal/category/store"
	"github.com/MrJamesThe3rd/expenso/internal/config"
	"github.com/MrJamesThe3rd/expenso/internal/database"
	"github.com/MrJamesThe3rd/expenso/internal/operation"
	operationStore "github.com/MrJamesThe3rd/expenso/internal/operation/store"
	"github.com/MrJamesThe3rd/expenso/internal/user"
	userStore "github.com/MrJamesThe3rd/expenso/internal/user/store"
)

type model struct {
	userService      *user.Service
	accountService   *account.Service
	categoryService  *category.Service
	operationService *operation.Service

	userID      uuid.UUID
	currentView View

	loginView      view.LoginModel
	accountsView   view.AccountsModel
	operationsView view.OperationsModel
	recordView     view.RecordModel
}

type View int

const (
	ViewLogin      View = 0
	ViewMenu       View = 1
	ViewAccounts   View = 2
	ViewOperations View = 3
	ViewRecord     View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	userSvc := user.NewService(userStore.New(db))
	accountSvc := account.NewService(accountStore.New(db))
	categorySvc := category.NewService(categoryStore.New(db))
	operationSvc := operation.NewService(operationStore.New(db))

	return model{
		userService:      userSvc,
		accountService:   accountSvc,
		categoryService:  categorySvc,
		operationService: operationSvc,
		currentView:      ViewLogin,
		loginView:        view.NewLoginModel(userSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case view.LoggedInMsg:
		m.userID = msg.UserID
		m.currentView = ViewMenu

		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewAccounts
				m.accountsView = view.NewAccountsModel(m.accountService, m.userID)

				return m, m.accountsView.Init()
			case "2":
				m.currentView = ViewOperations
				m.operationsView = view.NewOperationsModel(m.operationService, m.userID)

				return m, m.operationsView.Init()
			case "3":
				m.currentView = ViewRecord
				m.recordView = view.NewRecordModel(m.accountService, m.categoryService, m.operationService, m.userID)

				return m, m.recordView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewAccounts:
		var newModel tea.Model
		newModel, cmd = m.accountsView.Update(msg)
		m.accountsView = newModel.(view.AccountsModel)
	case ViewOperations:
		var newModel tea.Model
		newModel, cmd = m.operationsView.Update(msg)
		m.operationsView = newModel.(view.OperationsModel)
	case ViewRecord:
		var newModel tea.Model
		newModel, cmd = m.recordView.Update(msg)
		m.recordView = newModel.(view.RecordModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Expenso TUI\n\n" +
				"1. Accounts\n" +
				"2. Browse Operations\n" +
				"3. Record Operation\n\n" +
				"q. Quit",
		)
	case ViewAccounts:
		return m.accountsView.View()
	case ViewOperations:
		return m.operationsView.View()
	case ViewRecord:
		return m.recordView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
