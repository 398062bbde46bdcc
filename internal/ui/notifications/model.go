package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/bus"
	"github.com/bidii/sacco-admin/internal/keys"
	"github.com/bidii/sacco-admin/internal/model"
	"github.com/bidii/sacco-admin/internal/theme"
	"github.com/bidii/sacco-admin/internal/viewstate"
)

// LoadedMsg carries the result of a notifications fetch.
type LoadedMsg struct {
	Seq  uint64
	Rows []model.Notification
	Err  error
}

// MutatedMsg is the outcome of a mark-read, mark-all-read, or delete call.
type MutatedMsg struct {
	Err error
}

// Model is the notifications view: the full notification window with
// read-state filtering, substring search, and bulk mark-read.
type Model struct {
	client *api.Client
	bus    *bus.Bus
	keys   *keys.KeyMap

	store       *viewstate.Store[model.Notification]
	cursor      int
	banner      string
	unreadOnly  bool
	searchMode  bool
	searchInput textinput.Model
	query       string

	ctx    context.Context
	cancel context.CancelFunc
	width  int
	height int
}

// New creates the notifications view.
func New(client *api.Client, b *bus.Bus, k *keys.KeyMap, width, height int) Model {
	ctx, cancel := context.WithCancel(context.Background())

	si := textinput.New()
	si.Placeholder = "search notifications..."
	si.Prompt = "/ "

	return Model{
		client:      client,
		bus:         b,
		keys:        k,
		store:       viewstate.New(func(n model.Notification) int64 { return n.ID }),
		searchInput: si,
		ctx:         ctx,
		cancel:      cancel,
		width:       width,
		height:      height,
	}
}

// Init fetches the notification list.
func (m Model) Init() tea.Cmd {
	return m.Refetch()
}

// Refetch issues a sequence-tagged fetch of all notifications.
func (m Model) Refetch() tea.Cmd {
	seq := m.store.Begin()
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		rows, err := client.ListNotifications(ctx)
		return LoadedMsg{Seq: seq, Rows: rows, Err: err}
	}
}

// Close cancels the view's in-flight requests.
func (m *Model) Close() {
	m.cancel()
}

// UnreadCount returns the number of cached unread notifications, shown as
// the bell count in the application header.
func (m Model) UnreadCount() int {
	count := 0
	for _, n := range m.store.Records() {
		if !n.Read {
			count++
		}
	}
	return count
}

// Restore seeds the cache from an offline snapshot. A later fetch
// replaces it wholesale.
func (m *Model) Restore(rows []model.Notification) {
	m.store.Restore(rows)
}

// Update handles messages for the notifications view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if m.store.Resolve(msg.Seq, msg.Rows, msg.Err) && msg.Err != nil {
			m.banner = "Failed to load notifications. Please try again later."
		} else if msg.Err == nil {
			m.banner = ""
		}
		m.clampCursor()
		return m, nil

	case MutatedMsg:
		if msg.Err != nil {
			m.banner = "Failed to update notifications. Please try again later."
			return m, nil
		}
		m.banner = ""
		// Subscribers, this view included, refetch on the signal.
		m.bus.Publish(bus.TopicNotifications)
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleListKeys(msg)
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = strings.TrimSpace(m.searchInput.Value())
		m.cursor = 0
		return m, nil
	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Refetch()

	case key.Matches(msg, m.keys.MarkRead):
		rows := m.visible()
		if m.cursor >= len(rows) {
			return m, nil
		}
		return m, m.markRead(rows[m.cursor].ID)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.markAllRead()

	case key.Matches(msg, m.keys.Delete):
		rows := m.visible()
		if m.cursor >= len(rows) {
			return m, nil
		}
		return m, m.remove(rows[m.cursor].ID)
	}

	switch msg.String() {
	case "u":
		m.unreadOnly = !m.unreadOnly
		m.cursor = 0
		return m, nil
	case "/":
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()
	}
	return m, nil
}

func (m Model) markRead(id int64) tea.Cmd {
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		return MutatedMsg{Err: client.MarkNotificationRead(ctx, id)}
	}
}

func (m Model) markAllRead() tea.Cmd {
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		return MutatedMsg{Err: client.MarkAllNotificationsRead(ctx)}
	}
}

func (m Model) remove(id int64) tea.Cmd {
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		return MutatedMsg{Err: client.DeleteNotification(ctx, id)}
	}
}

// visible applies the unread filter and substring search to the cache.
func (m Model) visible() []model.Notification {
	rows := m.store.Records()
	if !m.unreadOnly && m.query == "" {
		return rows
	}

	query := strings.ToLower(m.query)
	var out []model.Notification
	for _, n := range rows {
		if m.unreadOnly && n.Read {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(n.Message), query) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// View renders the notifications view.
func (m Model) View() string {
	var b strings.Builder

	if m.banner != "" {
		b.WriteString(theme.ErrorBannerStyle.Render(m.banner))
		b.WriteString("\n")
	}

	title := fmt.Sprintf("Notifications (%d unread)", m.UnreadCount())
	if m.unreadOnly {
		title += " — unread only"
	}
	b.WriteString(theme.HeaderStyle.Render(title))
	b.WriteString("\n")

	if m.searchMode {
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	} else if m.query != "" {
		b.WriteString(theme.HelpStyle.Render("filter: " + m.query))
		b.WriteString("\n")
	}

	rows := m.visible()
	if m.store.Loading() && len(rows) == 0 {
		b.WriteString(theme.HelpStyle.Render("Loading notifications..."))
		return b.String()
	}
	if len(rows) == 0 {
		b.WriteString(theme.HelpStyle.Render("No notifications."))
		return b.String()
	}

	for i, n := range rows {
		marker := "●"
		style := theme.UnreadStyle
		if n.Read {
			marker = " "
			style = theme.ReadStyle
		}
		line := fmt.Sprintf("%s %s  %s",
			marker,
			n.CreatedAt.Format("2006-01-02 15:04"),
			n.Message,
		)
		if i == m.cursor {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(style.Render(line)))
		}
		b.WriteString("\n")
	}
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
func (m Model) Capturing() bool { return m.searchMode }

// Rows exposes the cached notifications.
func (m Model) Rows() []model.Notification { return m.store.Records() }

func (m *Model) clampCursor() {
	if n := len(m.visible()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	} else if n == 0 {
		m.cursor = 0
	}
}
