package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/keys"
	"github.com/bidii/sacco-admin/internal/model"
	"github.com/bidii/sacco-admin/internal/theme"
	"github.com/bidii/sacco-admin/internal/viewstate"
)

// PerformancesLoadedMsg carries the result of a monthly performances fetch.
type PerformancesLoadedMsg struct {
	Seq  uint64
	Rows []model.MonthlyPerformance
	Err  error
}

// SummaryLoadedMsg carries the office-wide totals for the stats header.
type SummaryLoadedMsg struct {
	Summary model.MemberSummary
	Err     error
}

// RowSavedMsg is the outcome of a PUT for an edited row.
type RowSavedMsg struct {
	Row model.MonthlyPerformance
	Err error
}

// RowCreatedMsg is the outcome of a POST for a new row.
type RowCreatedMsg struct {
	Row model.MonthlyPerformance
	Err error
}

// rowBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type rowBindings struct {
	groupName string
	month     string
	year      string
	banking   string
	fee       string
}

// Model is the dashboard view: office-wide stats plus the monthly
// performance table with row editing.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	store      *viewstate.Store[model.MonthlyPerformance]
	summary    model.MemberSummary
	summaryErr bool

	cursor   int
	banner   string
	form     *huh.Form
	fb       *rowBindings
	editMode bool
	editRow  model.MonthlyPerformance

	ctx    context.Context
	cancel context.CancelFunc
	width  int
	height int
}

// New creates the dashboard view.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		client: client,
		keys:   k,
		store:  viewstate.New(func(r model.MonthlyPerformance) int64 { return r.ID }),
		fb:     &rowBindings{},
		ctx:    ctx,
		cancel: cancel,
		width:  width,
		height: height,
	}
}

// Init fetches the performance table and the stats header.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Refetch(), m.fetchSummary())
}

// Refetch issues a sequence-tagged fetch of the monthly performances.
func (m Model) Refetch() tea.Cmd {
	seq := m.store.Begin()
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		rows, err := client.ListMonthlyPerformances(ctx)
		return PerformancesLoadedMsg{Seq: seq, Rows: rows, Err: err}
	}
}

func (m Model) fetchSummary() tea.Cmd {
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		summary, err := client.MemberSummary(ctx)
		return SummaryLoadedMsg{Summary: summary, Err: err}
	}
}

// Close cancels the view's in-flight requests.
func (m *Model) Close() {
	m.cancel()
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PerformancesLoadedMsg:
		if m.store.Resolve(msg.Seq, msg.Rows, msg.Err) && msg.Err != nil {
			m.banner = "Failed to load monthly performances. Please try again later."
		} else if msg.Err == nil {
			m.banner = ""
		}
		m.clampCursor()
		return m, nil

	case SummaryLoadedMsg:
		if msg.Err != nil {
			m.summaryErr = true
			return m, nil
		}
		m.summaryErr = false
		m.summary = msg.Summary
		return m, nil

	case RowSavedMsg:
		if msg.Err != nil {
			m.banner = saveFailureBanner(msg.Err)
			return m, nil
		}
		m.banner = ""
		m.store.Splice(msg.Row)
		return m, nil

	case RowCreatedMsg:
		if msg.Err != nil {
			m.banner = saveFailureBanner(msg.Err)
			return m, nil
		}
		m.banner = ""
		m.store.Append(msg.Row)
		return m, m.Refetch()

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
		return m, tea.Batch(m.Refetch(), m.fetchSummary())

	case key.Matches(msg, m.keys.New):
		m.editMode = false
		m.fb.groupName = ""
		m.fb.month = ""
		m.fb.year = ""
		m.fb.banking = ""
		m.fb.fee = ""
		m.form = m.buildForm()
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		rows := m.store.Records()
		if m.cursor >= len(rows) {
			return m, nil
		}
		row := rows[m.cursor]
		m.editMode = true
		m.editRow = row
		m.fb.groupName = row.GroupName
		m.fb.month = row.Month
		m.fb.year = strconv.Itoa(row.Year)
		m.fb.banking = formatAmount(row.Banking)
		m.fb.fee = formatAmount(row.ServiceFee)
		m.form = m.buildForm()
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
		submit := m.submitForm()
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
				Title("Group").
				Value(&m.fb.groupName).
				Validate(validateRequired("Group")),
			huh.NewInput().
				Title("Month").
				Placeholder("January").
				Value(&m.fb.month).
				Validate(validateRequired("Month")),
			huh.NewInput().
				Title("Year").
				Placeholder("2026").
				Value(&m.fb.year).
				Validate(validateInt("Year")),
			huh.NewInput().
				Title("Banking").
				Value(&m.fb.banking).
				Validate(validateAmount("Banking")),
			huh.NewInput().
				Title("Service Fee").
				Value(&m.fb.fee).
				Validate(validateAmount("Service Fee")),
		),
	).WithWidth(formWidth(m.width))
}

func (m Model) submitForm() tea.Cmd {
	row := model.MonthlyPerformance{
		GroupName: strings.TrimSpace(m.fb.groupName),
		Month:     strings.TrimSpace(m.fb.month),
	}
	row.Year, _ = strconv.Atoi(strings.TrimSpace(m.fb.year))
	row.Banking, _ = strconv.ParseFloat(strings.TrimSpace(m.fb.banking), 64)
	row.ServiceFee, _ = strconv.ParseFloat(strings.TrimSpace(m.fb.fee), 64)

	ctx := m.ctx
	client := m.client

	if m.editMode {
		row.ID = m.editRow.ID
		row.LoanForm = m.editRow.LoanForm
		row.Passbook = m.editRow.Passbook
		row.OfficeDebtPaid = m.editRow.OfficeDebtPaid
		row.OfficeBanking = m.editRow.OfficeBanking
		return func() tea.Msg {
			updated, err := client.UpdateMonthlyPerformance(ctx, row)
			return RowSavedMsg{Row: updated, Err: err}
		}
	}
	return func() tea.Msg {
		created, err := client.CreateMonthlyPerformance(ctx, row)
		return RowCreatedMsg{Row: created, Err: err}
	}
}

// View renders the dashboard.
func (m Model) View() string {
	if m.form != nil {
		title := "New Performance Record"
		if m.editMode {
			title = "Edit Performance Record"
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(
			theme.HeaderStyle.Render(title) + "\n\n" + m.form.View(),
		)
	}

	var b strings.Builder

	if m.banner != "" {
		b.WriteString(theme.ErrorBannerStyle.Render(m.banner))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStats())
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	return b.String()
}

func (m Model) renderStats() string {
	if m.summaryErr {
		return theme.HelpStyle.Render("Stats unavailable.")
	}
	return theme.PanelStyle.Render(fmt.Sprintf(
		"Welcome, %s\nMembers: %d   Active users: %d\nSavings/Shares B/F: %s   Loan Balance B/F: %s",
		m.summary.CurrentFirstName,
		m.summary.TotalMemberDetails,
		m.summary.TotalActiveUsers,
		formatAmount(m.summary.TotalSavingsSharesBF),
		formatAmount(m.summary.TotalLoanBalanceBF),
	))
}

func (m Model) renderTable() string {
	rows := m.store.Records()
	if m.store.Loading() && len(rows) == 0 {
		return theme.HelpStyle.Render("Loading monthly performances...")
	}
	if len(rows) == 0 {
		return theme.HelpStyle.Render("No performance records yet. Press n to add one.")
	}

	var b strings.Builder
	b.WriteString(theme.ListItemStyle.Render(fmt.Sprintf(
		"%-20s %-10s %-6s %12s %12s", "Group", "Month", "Year", "Banking", "Fee",
	)))
	b.WriteString("\n")

	for i, row := range rows {
		line := fmt.Sprintf(
			"%-20s %-10s %-6d %12s %12s",
			row.GroupName, row.Month, row.Year,
			formatAmount(row.Banking), formatAmount(row.ServiceFee),
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

// Restore seeds the cache from an offline snapshot. A later fetch
// replaces it wholesale.
func (m *Model) Restore(rows []model.MonthlyPerformance) {
	m.store.Restore(rows)
}

// Rows exposes the cached performance records.
func (m Model) Rows() []model.MonthlyPerformance { return m.store.Records() }

func (m *Model) clampCursor() {
	if n := m.store.Len(); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	} else if n == 0 {
		m.cursor = 0
	}
}

func saveFailureBanner(err error) string {
	if api.IsValidation(err) {
		return "Save rejected: " + err.Error()
	}
	return "Failed to save record. Please try again later."
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formWidth(w int) int {
	w -= 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateInt(field string) func(string) error {
	return func(s string) error {
		if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
			return fmt.Errorf("%s must be a whole number", field)
		}
		return nil
	}
}

func validateAmount(field string) func(string) error {
	return func(s string) error {
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return fmt.Errorf("%s must be a number", field)
		}
		return nil
	}
}
