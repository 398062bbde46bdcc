package credits

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/bus"
	"github.com/bidii/sacco-admin/internal/keys"
	"github.com/bidii/sacco-admin/internal/model"
	"github.com/bidii/sacco-admin/internal/theme"
	"github.com/bidii/sacco-admin/internal/viewstate"
)

// LoadedMsg carries the result of a credits fetch.
type LoadedMsg struct {
	Seq  uint64
	Rows []model.MonthlyAdvanceCredit
	Err  error
}

// CreatedMsg is the outcome of posting a new credit record.
type CreatedMsg struct {
	Credit model.MonthlyAdvanceCredit
	Err    error
}

// OpenAdvancesMsg asks the application root to switch to the advances
// view for the selected group.
type OpenAdvancesMsg struct {
	GroupID   int64
	GroupName string
}

// addBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type addBindings struct {
	groupName  string
	date       string
	total      string
	deductions string
}

// Model is the monthly advance credits view.
type Model struct {
	client *api.Client
	bus    *bus.Bus
	keys   *keys.KeyMap

	store  *viewstate.Store[model.MonthlyAdvanceCredit]
	cursor int
	banner string

	form *huh.Form
	fb   *addBindings

	ctx    context.Context
	cancel context.CancelFunc
	width  int
	height int
}

// New creates the credits view.
func New(client *api.Client, b *bus.Bus, k *keys.KeyMap, width, height int) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		client: client,
		bus:    b,
		keys:   k,
		store:  viewstate.New(func(c model.MonthlyAdvanceCredit) int64 { return c.ID }),
		fb:     &addBindings{},
		ctx:    ctx,
		cancel: cancel,
		width:  width,
		height: height,
	}
}

// Init fetches the credit list.
func (m Model) Init() tea.Cmd {
	return m.Refetch()
}

// Refetch issues a sequence-tagged fetch of all credit records.
func (m Model) Refetch() tea.Cmd {
	seq := m.store.Begin()
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		rows, err := client.ListMonthlyAdvanceCredits(ctx)
		return LoadedMsg{Seq: seq, Rows: rows, Err: err}
	}
}

// Close cancels the view's in-flight requests.
func (m *Model) Close() {
	m.cancel()
}

// Restore seeds the cache from an offline snapshot.
func (m *Model) Restore(rows []model.MonthlyAdvanceCredit) {
	m.store.Restore(rows)
}

// Update handles messages for the credits view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if m.store.Resolve(msg.Seq, msg.Rows, msg.Err) && msg.Err != nil {
			m.banner = "Failed to load advance credits. Please try again later."
		} else if msg.Err == nil {
			m.banner = ""
		}
		m.clampCursor()
		return m, nil

	case CreatedMsg:
		if msg.Err != nil {
			if api.IsValidation(msg.Err) {
				m.banner = "Save rejected: " + msg.Err.Error()
			} else {
				m.banner = "Failed to create credit record. Please try again later."
			}
			return m, nil
		}
		m.banner = ""
		m.store.Append(msg.Credit)
		m.bus.Publish(bus.TopicCredits)
		return m, nil

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.handleListKeys(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.store.Len()-1 {
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

	case key.Matches(msg, m.keys.Select):
		rows := m.store.Records()
		if m.cursor >= len(rows) {
			return m, nil
		}
		row := rows[m.cursor]
		return m, func() tea.Msg {
			return OpenAdvancesMsg{GroupID: row.GroupID, GroupName: row.GroupName}
		}

	case key.Matches(msg, m.keys.New):
		m.fb.groupName = ""
		m.fb.date = ""
		m.fb.total = ""
		m.fb.deductions = ""
		m.form = m.buildAddForm()
		return m, m.form.Init()
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
		submit := m.submitAdd()
		m.form = nil
		return m, submit
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, nil
	}

	return m, cmd
}

func (m *Model) buildAddForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Group Name").
				Value(&m.fb.groupName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("Group Name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.date).
				Validate(func(s string) error {
					if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("Date must be YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Total Advance Amount").
				Value(&m.fb.total).
				Validate(validateAmount("Total Advance Amount")),
			huh.NewInput().
				Title("Deductions").
				Value(&m.fb.deductions).
				Validate(validateAmount("Deductions")),
		),
	)
}

func (m Model) submitAdd() tea.Cmd {
	credit := api.NewMonthlyAdvanceCredit{
		GroupName: strings.TrimSpace(m.fb.groupName),
	}
	credit.Date, _ = time.Parse("2006-01-02", strings.TrimSpace(m.fb.date))
	credit.TotalAdvanceAmount, _ = strconv.ParseFloat(strings.TrimSpace(m.fb.total), 64)
	credit.Deductions, _ = strconv.ParseFloat(strings.TrimSpace(m.fb.deductions), 64)

	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		created, err := client.CreateMonthlyAdvanceCredit(ctx, credit)
		return CreatedMsg{Credit: created, Err: err}
	}
}

// View renders the credits view.
func (m Model) View() string {
	if m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			theme.HeaderStyle.Render("New Advance Credit") + "\n\n" + m.form.View(),
		)
	}

	var b strings.Builder

	if m.banner != "" {
		b.WriteString(theme.ErrorBannerStyle.Render(m.banner))
		b.WriteString("\n")
	}

	b.WriteString(theme.HeaderStyle.Render("Monthly Advance Credits"))
	b.WriteString("\n")

	rows := m.store.Records()
	if m.store.Loading() && len(rows) == 0 {
		b.WriteString(theme.HelpStyle.Render("Loading advance credits..."))
		return b.String()
	}
	if len(rows) == 0 {
		b.WriteString(theme.HelpStyle.Render("No credit records yet. Press n to add one."))
		return b.String()
	}

	b.WriteString(theme.ListItemStyle.Render(fmt.Sprintf(
		"%-24s %-12s %14s %12s",
		"Group", "Date", "Total Advance", "Deductions",
	)))
	b.WriteString("\n")

	for i, row := range rows {
		line := fmt.Sprintf(
			"%-24s %-12s %14s %12s",
			row.GroupName,
			row.Date.Format("2006-01-02"),
			formatAmount(row.TotalAdvanceAmount),
			formatAmount(row.Deductions),
		)
		if i == m.cursor {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
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
func (m Model) Capturing() bool { return m.form != nil }

// Rows exposes the cached credit records.
func (m Model) Rows() []model.MonthlyAdvanceCredit { return m.store.Records() }

func (m *Model) clampCursor() {
	if n := m.store.Len(); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	} else if n == 0 {
		m.cursor = 0
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func validateAmount(field string) func(string) error {
	return func(s string) error {
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return fmt.Errorf("%s must be a number", field)
		}
		return nil
	}
}
