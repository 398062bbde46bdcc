package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/keys"
	"github.com/bidii/sacco-admin/internal/model"
	"github.com/bidii/sacco-admin/internal/theme"
)

// ProfileLoadedMsg carries the signed-in account's profile.
type ProfileLoadedMsg struct {
	Info model.UserInfo
	Err  error
}

// ProfileSavedMsg is the outcome of a profile update.
type ProfileSavedMsg struct {
	Info model.UserInfo
	Err  error
}

// SignOutRequestMsg asks the application root to end the session.
type SignOutRequestMsg struct{}

// profileBindings holds form field values on the heap so that huh's
// Value() pointers remain valid across Bubble Tea model copies.
type profileBindings struct {
	username string
	email    string
}

// Model is the account settings view: profile edits and sign-out.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	info   model.UserInfo
	loaded bool
	banner string
	notice string

	form *huh.Form
	fb   *profileBindings

	ctx    context.Context
	cancel context.CancelFunc
	width  int
	height int
}

// New creates the settings view.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		client: client,
		keys:   k,
		fb:     &profileBindings{},
		ctx:    ctx,
		cancel: cancel,
		width:  width,
		height: height,
	}
}

// Init fetches the account profile.
func (m Model) Init() tea.Cmd {
	return m.fetchProfile()
}

func (m Model) fetchProfile() tea.Cmd {
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		info, err := client.UserInfo(ctx)
		return ProfileLoadedMsg{Info: info, Err: err}
	}
}

// Close cancels the view's in-flight requests.
func (m *Model) Close() {
	m.cancel()
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProfileLoadedMsg:
		if msg.Err != nil {
			m.banner = "Failed to load account settings. Please try again later."
			return m, nil
		}
		m.banner = ""
		m.info = msg.Info
		m.loaded = true
		return m, nil

	case ProfileSavedMsg:
		if msg.Err != nil {
			if api.IsValidation(msg.Err) {
				m.banner = "Save rejected: " + msg.Err.Error()
			} else {
				m.banner = "Failed to save account settings. Please try again later."
			}
			return m, nil
		}
		m.banner = ""
		m.notice = "Account settings saved."
		m.info = msg.Info
		return m, nil

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.handleKeys(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Edit):
		if !m.loaded {
			return m, nil
		}
		m.notice = ""
		m.fb.username = m.info.Username
		m.fb.email = m.info.Email
		m.form = m.buildForm()
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchProfile()
	}

	if msg.String() == "o" {
		return m, func() tea.Msg { return SignOutRequestMsg{} }
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.form = nil
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		submit := m.submit()
		m.form = nil
		return m, submit
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, nil
	}

	return m, cmd
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.fb.username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("Username is required")
					}
					return nil
				}),
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
		),
	)
}

func (m Model) submit() tea.Cmd {
	info := m.info
	info.Username = strings.TrimSpace(m.fb.username)
	info.Email = strings.TrimSpace(m.fb.email)

	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		updated, err := client.UpdateUserInfo(ctx, info)
		return ProfileSavedMsg{Info: updated, Err: err}
	}
}

// View renders the settings view.
func (m Model) View() string {
	if m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			theme.HeaderStyle.Render("Edit Account") + "\n\n" + m.form.View(),
		)
	}

	var b strings.Builder

	if m.banner != "" {
		b.WriteString(theme.ErrorBannerStyle.Render(m.banner))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(theme.SuccessStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(theme.HeaderStyle.Render("Account Settings"))
	b.WriteString("\n")

	if !m.loaded {
		b.WriteString(theme.HelpStyle.Render("Loading account settings..."))
		return b.String()
	}

	b.WriteString(theme.PanelStyle.Render(fmt.Sprintf(
		"Username: %s\nEmail:    %s\nRole:     %s",
		m.info.Username, m.info.Email, m.info.Role,
	)))
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("e edit | o sign out"))
	return b.String()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Banner exposes the current error banner, empty when none is shown.
func (m Model) Banner() string { return m.banner }

// Capturing reports whether the view currently owns text input.
func (m Model) Capturing() bool { return m.form != nil }
