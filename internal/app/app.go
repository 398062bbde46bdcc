package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/bus"
	"github.com/bidii/sacco-admin/internal/keys"
	"github.com/bidii/sacco-admin/internal/pipeline"
	"github.com/bidii/sacco-admin/internal/session"
	"github.com/bidii/sacco-admin/internal/snapshot"
	"github.com/bidii/sacco-admin/internal/ui"
	"github.com/bidii/sacco-admin/internal/ui/advances"
	"github.com/bidii/sacco-admin/internal/ui/credits"
	"github.com/bidii/sacco-admin/internal/ui/dashboard"
	"github.com/bidii/sacco-admin/internal/ui/groups"
	"github.com/bidii/sacco-admin/internal/ui/history"
	"github.com/bidii/sacco-admin/internal/ui/login"
	"github.com/bidii/sacco-admin/internal/ui/notifications"
	"github.com/bidii/sacco-admin/internal/ui/settings"
)

// View identifies the active view in the application.
type View int

const (
	ViewLogin View = iota
	ViewDashboard
	ViewGroups
	ViewAdvances
	ViewCredits
	ViewNotifications
	ViewHistory
	ViewSettings
)

// signedOutMsg reports the outcome of the logout call. The local token
// is already cleared by the time this arrives.
type signedOutMsg struct{}

// Model is the root Bubble Tea model: view routing, the refresh signal
// bus, the session, and the offline snapshot cache.
type Model struct {
	currentView View
	layout      ui.Layout
	keys        *keys.KeyMap

	client  *api.Client
	bus     *bus.Bus
	sub     *bus.Subscription
	pipe    *pipeline.Pipeline
	session *session.Session
	cache   *snapshot.Store

	loginView    login.Model
	dashView     dashboard.Model
	groupsView   groups.Model
	advancesView advances.Model
	creditsView  credits.Model
	notifView    notifications.Model
	historyView  history.Model
	settingsView settings.Model

	ready bool
}

// New wires the root model. The snapshot cache may be nil, in which case
// no offline restore happens.
func New(client *api.Client, b *bus.Bus, sess *session.Session, cache *snapshot.Store) Model {
	k := keys.DefaultKeyMap()
	pipe := pipeline.New(client, b)

	m := Model{
		currentView:  ViewLogin,
		keys:         k,
		client:       client,
		bus:          b,
		sub:          b.Subscribe(),
		pipe:         pipe,
		session:      sess,
		cache:        cache,
		loginView:    login.New(client, 80, 24),
		dashView:     dashboard.New(client, k, 80, 24),
		groupsView:   groups.New(client, pipe, k, 80, 24),
		advancesView: advances.New(client, pipe, k, 80, 24),
		creditsView:  credits.New(client, b, k, 80, 24),
		notifView:    notifications.New(client, b, k, 80, 24),
		historyView:  history.New(client, k, 80, 24),
		settingsView: settings.New(client, k, 80, 24),
	}

	if sess.Authenticated() {
		m.currentView = ViewDashboard
	}
	m.restoreSnapshots()
	return m
}

// Init starts the bus waiter and, when already signed in, the initial
// fetches; otherwise the login form.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.sub.Wait()}
	if m.currentView == ViewLogin {
		cmds = append(cmds, m.loginView.Init())
	} else {
		cmds = append(cmds, m.initialFetches())
	}
	return tea.Batch(cmds...)
}

// initialFetches loads every list view once after sign-in.
func (m Model) initialFetches() tea.Cmd {
	return tea.Batch(
		m.dashView.Init(),
		m.creditsView.Init(),
		m.notifView.Init(),
		m.historyView.Init(),
		m.settingsView.Init(),
		m.advancesView.Init(),
		m.groupsView.Init(),
	)
}

// Update handles messages and dispatches to the owning view. Fetch and
// mutation results are routed by type so a background view still
// receives its responses while another view is active.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.dashView.SetSize(w, h)
		m.groupsView.SetSize(w, h)
		m.advancesView.SetSize(w, h)
		m.creditsView.SetSize(w, h)
		m.notifView.SetSize(w, h)
		m.historyView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		// Forward to the active view so huh forms can lay themselves out.
		return m.updateActiveView(msg)

	case bus.RefreshMsg:
		return m, tea.Batch(m.dispatchRefresh(msg.Topic), m.sub.Wait())

	case login.SignedInMsg:
		// Keyring persistence may fail; the in-memory token still
		// authenticates this run.
		_ = m.session.SetToken(msg.Token)
		m.currentView = ViewDashboard
		return m, m.initialFetches()

	case settings.SignOutRequestMsg:
		return m, m.signOut()

	case signedOutMsg:
		m.currentView = ViewLogin
		m.loginView = login.New(m.client, m.layout.ContentWidth(), m.layout.ContentHeight())
		return m, m.loginView.Init()

	case credits.OpenAdvancesMsg:
		m.currentView = ViewAdvances
		return m, m.advancesView.SetGroup(msg.GroupID, msg.GroupName)

	case dashboard.PerformancesLoadedMsg, dashboard.SummaryLoadedMsg,
		dashboard.RowSavedMsg, dashboard.RowCreatedMsg:
		var cmd tea.Cmd
		m.dashView, cmd = m.dashView.Update(msg)
		m.persistPerformances()
		return m, cmd

	case groups.PerformancesLoadedMsg, groups.RowSavedMsg, groups.FormGeneratedMsg:
		var cmd tea.Cmd
		m.groupsView, cmd = m.groupsView.Update(msg)
		return m, cmd

	case advances.AdvancesLoadedMsg, advances.PaidSavedMsg,
		advances.AdvanceCreatedMsg, advances.FormGeneratedMsg,
		advances.MembersLoadedMsg:
		var cmd tea.Cmd
		m.advancesView, cmd = m.advancesView.Update(msg)
		return m, cmd

	case credits.LoadedMsg, credits.CreatedMsg:
		var cmd tea.Cmd
		m.creditsView, cmd = m.creditsView.Update(msg)
		m.persistCredits()
		return m, cmd

	case notifications.LoadedMsg, notifications.MutatedMsg:
		var cmd tea.Cmd
		m.notifView, cmd = m.notifView.Update(msg)
		m.persistNotifications()
		return m, cmd

	case history.LoadedMsg, history.RecordsLoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		m.persistHistories()
		return m, cmd

	case settings.ProfileLoadedMsg, settings.ProfileSavedMsg:
		var cmd tea.Cmd
		m.settingsView, cmd = m.settingsView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if newM, cmd, handled := m.handleGlobalKeys(msg); handled {
			return newM, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that switch views or quit. View
// switching stays off while a view is capturing text input.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.teardown()
		return m, tea.Quit, true
	}
	if m.currentView == ViewLogin || m.activeViewCapturing() {
		return m, nil, false
	}

	switch msg.String() {
	case "1":
		m.currentView = ViewDashboard
		return m, nil, true
	case "2":
		m.currentView = ViewGroups
		return m, nil, true
	case "3":
		m.currentView = ViewAdvances
		return m, nil, true
	case "4":
		m.currentView = ViewCredits
		return m, nil, true
	case "5":
		m.currentView = ViewNotifications
		return m, nil, true
	case "6":
		m.currentView = ViewHistory
		return m, nil, true
	case "7":
		m.currentView = ViewSettings
		return m, nil, true
	case "q":
		if m.currentView == ViewDashboard {
			m.teardown()
			return m, tea.Quit, true
		}
	}
	return m, nil, false
}

// activeViewCapturing reports whether the active view currently owns
// text input (forms, inline editors, search), in which case digits and
// letters belong to it.
func (m Model) activeViewCapturing() bool {
	switch m.currentView {
	case ViewAdvances:
		return m.advancesView.Capturing()
	case ViewGroups:
		return m.groupsView.Capturing()
	case ViewDashboard:
		return m.dashView.Capturing()
	case ViewCredits:
		return m.creditsView.Capturing()
	case ViewNotifications:
		return m.notifView.Capturing()
	case ViewHistory:
		return m.historyView.Capturing()
	case ViewSettings:
		return m.settingsView.Capturing()
	}
	return false
}

// dispatchRefresh routes a bus signal to the view owning the topic's
// collection. Views refetch in the background even when not active, so
// the data is current by the time the user switches back.
func (m *Model) dispatchRefresh(topic bus.Topic) tea.Cmd {
	switch topic {
	case bus.TopicAdvances:
		return m.advancesView.Refetch()
	case bus.TopicPerformances:
		return tea.Batch(m.dashView.Refetch(), m.groupsView.Refetch())
	case bus.TopicNotifications:
		return m.notifView.Refetch()
	case bus.TopicCredits:
		return m.creditsView.Refetch()
	case bus.TopicHistories:
		return m.historyView.Refetch()
	}
	return nil
}

// signOut clears the local token and snapshots unconditionally, then
// tells the backend. The next account must not restore this account's
// cached collections.
func (m *Model) signOut() tea.Cmd {
	_ = m.session.Clear()
	if m.cache != nil {
		_ = m.cache.DeleteAll(context.Background())
	}
	client := m.client
	return func() tea.Msg {
		// Best effort: the session is already gone locally.
		_ = client.Logout(context.Background())
		return signedOutMsg{}
	}
}

// teardown cancels every view's in-flight work and releases the bus
// subscription.
func (m *Model) teardown() {
	m.sub.Unsubscribe()
	m.loginView.Close()
	m.dashView.Close()
	m.groupsView.Close()
	m.advancesView.Close()
	m.creditsView.Close()
	m.notifView.Close()
	m.historyView.Close()
	m.settingsView.Close()
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewDashboard:
		m.dashView, cmd = m.dashView.Update(msg)
	case ViewGroups:
		m.groupsView, cmd = m.groupsView.Update(msg)
	case ViewAdvances:
		m.advancesView, cmd = m.advancesView.Update(msg)
	case ViewCredits:
		m.creditsView, cmd = m.creditsView.Update(msg)
	case ViewNotifications:
		m.notifView, cmd = m.notifView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Sacco Admin"
	if unread := m.notifView.UnreadCount(); unread > 0 && m.currentView != ViewLogin {
		title = fmt.Sprintf("Sacco Admin [%d unread]", unread)
	}

	header := m.layout.RenderHeader(title, m.viewLabel())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewDashboard:
		return m.dashView.View()
	case ViewGroups:
		return m.groupsView.View()
	case ViewAdvances:
		return m.advancesView.View()
	case ViewCredits:
		return m.creditsView.View()
	case ViewNotifications:
		return m.notifView.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

func (m Model) viewLabel() string {
	switch m.currentView {
	case ViewLogin:
		return "sign in"
	case ViewDashboard:
		return "dashboard"
	case ViewGroups:
		return "groups"
	case ViewAdvances:
		return "advances"
	case ViewCredits:
		return "credits"
	case ViewNotifications:
		return "notifications"
	case ViewHistory:
		return "history"
	case ViewSettings:
		return "settings"
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewLogin:
		return "enter submit | ctrl+s sign in / sign up | ctrl+c quit"
	case ViewDashboard:
		return "q quit | 1-7 views | n new | e edit | r refresh"
	case ViewGroups:
		return "1-7 views | e edit row | g generate form | r refresh | esc group select"
	case ViewAdvances:
		return "1-7 views | n new | e edit paid | g generate form | r refresh | esc group select"
	case ViewCredits:
		return "1-7 views | n new | enter open advances | r refresh"
	case ViewNotifications:
		return "1-7 views | m mark read | M mark all | d delete | u unread | / search"
	case ViewHistory:
		return "1-7 views | tab filter source | enter open records | r refresh"
	case ViewSettings:
		return "1-7 views | e edit | o sign out"
	default:
		return ""
	}
}
