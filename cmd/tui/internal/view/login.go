package view

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/expenso/internal/user"
)

// LoggedInMsg is emitted once credentials have been verified.
type LoggedInMsg struct {
	UserID uuid.UUID
}

type loginResultMsg struct {
	userID uuid.UUID
	err    error
}

// loginForm holds the form bindings on the heap so the form and the submit
// command observe the same values across model copies.
type loginForm struct {
	email    string
	password string
	register bool
}

type LoginModel struct {
	CommonModel
	userService *user.Service

	form *huh.Form
	vals *loginForm
	err  error
}

func NewLoginModel(userSvc *user.Service) LoginModel {
	m := LoginModel{userService: userSvc}
	m.resetForm()

	return m
}

func (m *LoginModel) resetForm() {
	m.vals = &loginForm{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&m.vals.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.vals.password),
			huh.NewConfirm().
				Title("New user?").
				Affirmative("Register").
				Negative("Login").
				Value(&m.vals.register),
		),
	)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		if result.err != nil {
			m.err = result.err
			m.resetForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{UserID: result.userID} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.submitCmd()
	}

	return m, cmd
}

func (m LoginModel) submitCmd() tea.Cmd {
	email, password, register := m.vals.email, m.vals.password, m.vals.register

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if register {
			u, err := m.userService.Register(ctx, email, password)
			if err != nil {
				if errors.Is(err, user.ErrEmailTaken) {
					return loginResultMsg{err: errors.New("email already registered")}
				}

				return loginResultMsg{err: err}
			}

			return loginResultMsg{userID: u.ID}
		}

		u, err := m.userService.Authenticate(ctx, email, password)
		if err != nil {
			if errors.Is(err, user.ErrInvalidCredentials) {
				return loginResultMsg{err: errors.New("invalid email or password")}
			}

			return loginResultMsg{err: err}
		}

		return loginResultMsg{userID: u.ID}
	}
}

func (m LoginModel) View() string {
	view := m.form.View()
	if m.err != nil {
		view += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(view)
}
