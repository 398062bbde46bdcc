package login

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/theme"
)

// SignedInMsg tells the application root a token was issued.
type SignedInMsg struct {
	Token string
}

// signInResultMsg is the raw outcome of the signin call.
type signInResultMsg struct {
	token string
	err   error
}

// signUpResultMsg is the outcome of the signup call.
type signUpResultMsg struct {
	err error
}

// bindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type bindings struct {
	username string
	password string
	email    string
}

// Model is the sign-in / sign-up gate shown before any data view.
type Model struct {
	client *api.Client

	form       *huh.Form
	fb         *bindings
	signupMode bool
	submitting bool
	banner     string
	notice     string

	ctx    context.Context
	cancel context.CancelFunc
	width  int
	height int
}

// New creates the login view in sign-in mode with the form ready.
func New(client *api.Client, width, height int) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		client: client,
		fb:     &bindings{},
		ctx:    ctx,
		cancel: cancel,
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the sign-in form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Close cancels the view's in-flight requests.
func (m *Model) Close() {
	m.cancel()
}

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case signInResultMsg:
		m.submitting = false
		if msg.err != nil {
			if api.IsAuth(msg.err) {
				m.banner = "Invalid username or password."
			} else {
				m.banner = "Sign in failed. Please try again later."
			}
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		token := msg.token
		return m, func() tea.Msg { return SignedInMsg{Token: token} }

	case signUpResultMsg:
		m.submitting = false
		if msg.err != nil {
			if api.IsValidation(msg.err) {
				m.banner = "Sign up rejected: " + msg.err.Error()
			} else {
				m.banner = "Sign up failed. Please try again later."
			}
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		m.banner = ""
		m.notice = "Account created. Sign in to continue."
		m.signupMode = false
		m.fb.password = ""
		m.form = m.buildForm()
		return m, m.form.Init()

	case tea.KeyMsg:
		// Tab belongs to the form's field navigation.
		if msg.String() == "ctrl+s" && !m.submitting {
			m.signupMode = !m.signupMode
			m.banner = ""
			m.notice = ""
			m.form = m.buildForm()
			return m, m.form.Init()
		}
	}

	if m.form == nil || m.submitting {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		if m.signupMode {
			return m, m.submitSignUp()
		}
		return m, m.submitSignIn()
	}
	if m.form.State == huh.StateAborted {
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	return m, cmd
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Username").
			Value(&m.fb.username).
			Validate(validateRequired("Username")),
	}
	if m.signupMode {
		fields = append(fields,
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" || !strings.Contains(s, "@") {
						return fmt.Errorf("Enter a valid email address")
					}
					return nil
				}),
		)
	}
	fields = append(fields,
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.password).
			Validate(validateRequired("Password")),
	)

	return huh.NewForm(huh.NewGroup(fields...))
}

func (m Model) submitSignIn() tea.Cmd {
	req := api.SignInRequest{
		Username: strings.TrimSpace(m.fb.username),
		Password: m.fb.password,
	}
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		res, err := client.SignIn(ctx, req)
		return signInResultMsg{token: res.Token, err: err}
	}
}

func (m Model) submitSignUp() tea.Cmd {
	req := api.SignUpRequest{
		Username: strings.TrimSpace(m.fb.username),
		Email:    strings.TrimSpace(m.fb.email),
		Password: m.fb.password,
		Role:     "admin",
	}
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		return signUpResultMsg{err: client.SignUp(ctx, req)}
	}
}

// View renders the login view.
func (m Model) View() string {
	var b strings.Builder

	title := "Sign In"
	if m.signupMode {
		title = "Sign Up"
	}
	b.WriteString(theme.HeaderStyle.Render(title))
	b.WriteString("\n\n")

	if m.banner != "" {
		b.WriteString(theme.ErrorBannerStyle.Render(m.banner))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(theme.SuccessStyle.Render(m.notice))
		b.WriteString("\n")
	}

	if m.submitting {
		b.WriteString(theme.HelpStyle.Render("Signing in..."))
	} else if m.form != nil {
		b.WriteString(m.form.View())
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("ctrl+s switch sign in / sign up"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Banner exposes the current error banner, empty when none is shown.
func (m Model) Banner() string { return m.banner }

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
