package groups

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/keys"
	"github.com/bidii/sacco-admin/internal/model"
	"github.com/bidii/sacco-admin/internal/pipeline"
	"github.com/bidii/sacco-admin/internal/theme"
	"github.com/bidii/sacco-admin/internal/viewstate"
)

// PerformancesLoadedMsg carries the result of a group performances fetch.
type PerformancesLoadedMsg struct {
	Seq  uint64
	Page model.GroupPerformancePage
	Err  error
}

// RowSavedMsg is the outcome of posting an edited member row.
type RowSavedMsg struct {
	Err error
}

// FormGeneratedMsg is the outcome of the group-form pipeline.
type FormGeneratedMsg struct {
	Result pipeline.Result
	Err    error
}

// rowBindings holds edit-form field values on the heap so that huh's
// Value() pointers remain valid across Bubble Tea model copies.
type rowBindings struct {
	totalPaid string
	principal string
	interest  string
	shares    string
	fines     string
}

// Model is the group performance view: one group's member rows with row
// editing and monthly form generation through the pipeline.
type Model struct {
	client *api.Client
	pipe   *pipeline.Pipeline
	keys   *keys.KeyMap

	store     *viewstate.Store[model.GroupPerformance]
	groupID   int64
	groupName string

	groupInput textinput.Model
	selectMode bool
	cursor     int
	banner     string
	notice     string

	form    *huh.Form
	fb      *rowBindings
	editRow model.GroupPerformance

	ctx    context.Context
	cancel context.CancelFunc
	width  int
	height int
}

// New creates the group performance view with no group selected.
func New(client *api.Client, pipe *pipeline.Pipeline, k *keys.KeyMap, width, height int) Model {
	ctx, cancel := context.WithCancel(context.Background())

	gi := textinput.New()
	gi.Placeholder = "group id"
	gi.Prompt = "Group: "
	gi.CharLimit = 12
	gi.Focus()

	return Model{
		client:     client,
		pipe:       pipe,
		keys:       k,
		store:      viewstate.New(func(r model.GroupPerformance) int64 { return r.ID }),
		groupInput: gi,
		selectMode: true,
		fb:         &rowBindings{},
		ctx:        ctx,
		cancel:     cancel,
		width:      width,
		height:     height,
	}
}

// Init starts the selector cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Refetch issues a sequence-tagged fetch for the selected group.
func (m Model) Refetch() tea.Cmd {
	if m.groupID == 0 {
		return nil
	}
	seq := m.store.Begin()
	ctx := m.ctx
	client := m.client
	groupID := m.groupID
	return func() tea.Msg {
		page, err := client.ListGroupPerformances(ctx, groupID)
		return PerformancesLoadedMsg{Seq: seq, Page: page, Err: err}
	}
}

// Close cancels the view's in-flight requests.
func (m *Model) Close() {
	m.cancel()
}

// Update handles messages for the group performance view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PerformancesLoadedMsg:
		if m.store.Resolve(msg.Seq, msg.Page.Performances, msg.Err) {
			if msg.Err != nil {
				m.banner = "Failed to load group performances. Please try again later."
			} else {
				m.banner = ""
				m.groupName = msg.Page.GroupName
			}
		}
		m.clampCursor()
		return m, nil

	case RowSavedMsg:
		if msg.Err != nil {
			if api.IsValidation(msg.Err) {
				m.banner = "Save rejected: " + msg.Err.Error()
			} else {
				m.banner = "Failed to save row. Please try again later."
			}
			return m, nil
		}
		m.banner = ""
		return m, m.Refetch()

	case FormGeneratedMsg:
		if msg.Err != nil {
			m.banner = "Failed to generate group form. Please try again later."
			return m, nil
		}
		m.notice = msg.Result.PrimaryMessage
		if m.notice == "" {
			m.notice = "Group form generated."
		}
		return m, nil

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.selectMode {
			return m.handleSelectKeys(msg)
		}
		return m.handleListKeys(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleSelectKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		id, err := strconv.ParseInt(strings.TrimSpace(m.groupInput.Value()), 10, 64)
		if err != nil || id <= 0 {
			m.banner = "Enter a numeric group id."
			return m, nil
		}
		m.banner = ""
		m.groupID = id
		m.selectMode = false
		m.cursor = 0
		m.groupInput.Blur()
		return m, m.Refetch()

	case "esc":
		m.banner = ""
		m.selectMode = false
		m.groupInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.groupInput, cmd = m.groupInput.Update(msg)
	return m, cmd
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

	case key.Matches(msg, m.keys.Back):
		m.selectMode = true
		m.groupInput.SetValue("")
		return m, m.groupInput.Focus()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Refetch()

	case key.Matches(msg, m.keys.Edit):
		rows := m.store.Records()
		if m.cursor >= len(rows) {
			return m, nil
		}
		row := rows[m.cursor]
		m.editRow = row
		m.fb.totalPaid = formatAmount(row.TotalPaid)
		m.fb.principal = formatAmount(row.Principal)
		m.fb.interest = formatAmount(row.LoanInterest)
		m.fb.shares = formatAmount(row.ThisMonthShares)
		m.fb.fines = formatAmount(row.FineAndCharges)
		m.form = m.buildEditForm()
		return m, m.form.Init()

	case key.Matches(msg, m.keys.GenerateForm):
		return m, m.generateForm()
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
		submit := m.submitEdit()
		m.form = nil
		return m, submit
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, nil
	}

	return m, cmd
}

func (m *Model) buildEditForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Total Paid").Value(&m.fb.totalPaid).Validate(validateAmount("Total Paid")),
			huh.NewInput().Title("Principal").Value(&m.fb.principal).Validate(validateAmount("Principal")),
			huh.NewInput().Title("Loan Interest").Value(&m.fb.interest).Validate(validateAmount("Loan Interest")),
			huh.NewInput().Title("This Month Shares").Value(&m.fb.shares).Validate(validateAmount("This Month Shares")),
			huh.NewInput().Title("Fines & Charges").Value(&m.fb.fines).Validate(validateAmount("Fines & Charges")),
		),
	)
}

func (m Model) submitEdit() tea.Cmd {
	row := m.editRow
	row.TotalPaid, _ = strconv.ParseFloat(strings.TrimSpace(m.fb.totalPaid), 64)
	row.Principal, _ = strconv.ParseFloat(strings.TrimSpace(m.fb.principal), 64)
	row.LoanInterest, _ = strconv.ParseFloat(strings.TrimSpace(m.fb.interest), 64)
	row.ThisMonthShares, _ = strconv.ParseFloat(strings.TrimSpace(m.fb.shares), 64)
	row.FineAndCharges, _ = strconv.ParseFloat(strings.TrimSpace(m.fb.fines), 64)

	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		return RowSavedMsg{Err: client.SaveGroupPerformance(ctx, row)}
	}
}

func (m Model) generateForm() tea.Cmd {
	ctx := m.ctx
	pipe := m.pipe
	req := pipeline.Request{
		GroupID:   m.groupID,
		GroupName: m.groupName,
		Kind:      pipeline.KindGroupForm,
	}
	return func() tea.Msg {
		result, err := pipe.Run(ctx, req)
		return FormGeneratedMsg{Result: result, Err: err}
	}
}

// View renders the group performance view.
func (m Model) View() string {
	if m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			theme.HeaderStyle.Render("Edit Member Row") + "\n\n" + m.form.View(),
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

	if m.selectMode {
		b.WriteString(theme.PanelStyle.Render(
			"Select a group to view its performance form.\n\n" + m.groupInput.View(),
		))
		return b.String()
	}

	if m.groupID == 0 {
		b.WriteString(theme.HelpStyle.Render("No group selected. Press esc to choose one."))
		return b.String()
	}

	title := "Group Performance"
	if m.groupName != "" {
		title = "Group Performance: " + m.groupName
	}
	b.WriteString(theme.HeaderStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	return b.String()
}

func (m Model) renderTable() string {
	rows := m.store.Records()
	if m.store.Loading() && len(rows) == 0 {
		return theme.HelpStyle.Render("Loading group performances...")
	}
	if len(rows) == 0 {
		return theme.HelpStyle.Render("No member rows for this group.")
	}

	var b strings.Builder
	b.WriteString(theme.ListItemStyle.Render(fmt.Sprintf(
		"%-24s %12s %12s %12s %12s",
		"Member", "Savings B/F", "Paid", "Principal", "Loan C/F",
	)))
	b.WriteString("\n")

	for i, row := range rows {
		line := fmt.Sprintf(
			"%-24s %12s %12s %12s %12s",
			row.MemberDetails,
			formatAmount(row.SavingsSharesBF),
			formatAmount(row.TotalPaid),
			formatAmount(row.Principal),
			formatAmount(row.LoanCF),
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
func (m Model) Capturing() bool { return m.form != nil || m.selectMode }

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
