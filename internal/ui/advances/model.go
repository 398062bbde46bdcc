package advances

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

// AdvancesLoadedMsg carries the result of an advances fetch for a group.
type AdvancesLoadedMsg struct {
	Seq  uint64
	Page model.AdvancePage
	Err  error
}

// PaidSavedMsg is the outcome of a paid-amount PATCH.
type PaidSavedMsg struct {
	AdvanceID int64
	Err       error
}

// AdvanceCreatedMsg is the outcome of creating a new advance.
type AdvanceCreatedMsg struct {
	Advance model.Advance
	Err     error
}

// FormGeneratedMsg is the outcome of the monthly-advance-form pipeline.
type FormGeneratedMsg struct {
	Result pipeline.Result
	Err    error
}

// MembersLoadedMsg carries member names for the add-advance suggestions.
type MembersLoadedMsg struct {
	Names []string
	Err   error
}

// addBindings holds add-form field values on the heap so that huh's
// Value() pointers remain valid across Bubble Tea model copies.
type addBindings struct {
	memberName string
	amount     string
}

// Model is the advances view: one group's member advances with paid-amount
// editing, advance creation, and monthly form generation.
type Model struct {
	client *api.Client
	pipe   *pipeline.Pipeline
	keys   *keys.KeyMap

	store     *viewstate.Store[model.Advance]
	groupID   int64
	groupName string

	groupInput  textinput.Model
	selectMode  bool
	cursor      int
	banner      string
	notice      string
	memberNames []string

	// Paid-amount edit state. editIndex is -1 when no row is being edited.
	editIndex    int
	editInput    textinput.Model
	editOriginal float64

	form *huh.Form
	fb   *addBindings

	ctx    context.Context
	cancel context.CancelFunc
	width  int
	height int
}

// New creates the advances view with no group selected.
func New(client *api.Client, pipe *pipeline.Pipeline, k *keys.KeyMap, width, height int) Model {
	ctx, cancel := context.WithCancel(context.Background())

	gi := textinput.New()
	gi.Placeholder = "group id"
	gi.Prompt = "Group: "
	gi.CharLimit = 12
	gi.Focus()

	ei := textinput.New()
	ei.Prompt = ""
	ei.CharLimit = 16

	return Model{
		client:     client,
		pipe:       pipe,
		keys:       k,
		store:      viewstate.New(func(a model.Advance) int64 { return a.ID }),
		groupInput: gi,
		selectMode: true,
		editIndex:  -1,
		editInput:  ei,
		fb:         &addBindings{},
		ctx:        ctx,
		cancel:     cancel,
		width:      width,
		height:     height,
	}
}

// Init focuses the group selector and loads member-name suggestions.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchMembers())
}

// SetGroup selects a group directly (e.g. from the credits view) and
// fetches its advances.
func (m *Model) SetGroup(groupID int64, groupName string) tea.Cmd {
	m.groupID = groupID
	m.groupName = groupName
	m.selectMode = false
	m.cursor = 0
	m.editIndex = -1
	return m.Refetch()
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
		page, err := client.ListAdvances(ctx, groupID)
		return AdvancesLoadedMsg{Seq: seq, Page: page, Err: err}
	}
}

func (m Model) fetchMembers() tea.Cmd {
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		names, err := client.MemberDetails(ctx)
		return MembersLoadedMsg{Names: names, Err: err}
	}
}

// Close cancels the view's in-flight requests.
func (m *Model) Close() {
	m.cancel()
}

// Update handles messages for the advances view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case AdvancesLoadedMsg:
		if m.store.Resolve(msg.Seq, msg.Page.Advances, msg.Err) {
			if msg.Err != nil {
				m.banner = "Failed to load advances. Please try again later."
			} else {
				m.banner = ""
				m.groupName = msg.Page.GroupName
			}
		}
		m.clampCursor()
		return m, nil

	case MembersLoadedMsg:
		if msg.Err == nil {
			m.memberNames = msg.Names
		}
		return m, nil

	case PaidSavedMsg:
		if msg.Err != nil {
			// A rejected save keeps the row in edit mode showing the
			// value the backend still holds.
			if api.IsValidation(msg.Err) {
				m.banner = "Save rejected: " + msg.Err.Error()
			} else {
				m.banner = "Failed to save paid amount. Please try again later."
			}
			m.editInput.SetValue(formatAmount(m.editOriginal))
			return m, nil
		}
		m.banner = ""
		m.editIndex = -1
		m.editInput.Blur()
		return m, m.Refetch()

	case AdvanceCreatedMsg:
		if msg.Err != nil {
			m.banner = "Failed to create advance. Please try again later."
			return m, nil
		}
		m.banner = ""
		m.store.Append(msg.Advance)
		return m, m.Refetch()

	case FormGeneratedMsg:
		if msg.Err != nil {
			m.banner = "Failed to generate advance form. Please try again later."
			return m, nil
		}
		m.notice = msg.Result.PrimaryMessage
		if m.notice == "" {
			m.notice = "Advance form generated."
		}
		return m, nil

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.selectMode {
			return m.handleSelectKeys(msg)
		}
		if m.editIndex >= 0 {
			return m.handleEditKeys(msg)
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
		m.selectMode = false
		m.groupInput.Blur()
		return m, m.SetGroup(id, "")

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

func (m Model) handleEditKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		amount, err := strconv.ParseFloat(strings.TrimSpace(m.editInput.Value()), 64)
		if err != nil {
			m.banner = "Paid amount must be a number."
			m.editInput.SetValue(formatAmount(m.editOriginal))
			return m, nil
		}
		rows := m.store.Records()
		if m.editIndex >= len(rows) {
			m.editIndex = -1
			return m, nil
		}
		return m, m.savePaidAmount(rows[m.editIndex].ID, amount)

	case "esc":
		m.editIndex = -1
		m.banner = ""
		m.editInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
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
		m.editIndex = m.cursor
		m.editOriginal = rows[m.cursor].PaidAmount
		m.editInput.SetValue(formatAmount(m.editOriginal))
		m.banner = ""
		return m, m.editInput.Focus()

	case key.Matches(msg, m.keys.New):
		m.fb.memberName = ""
		m.fb.amount = ""
		m.form = m.buildAddForm()
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
	member := huh.NewInput().
		Title("Member").
		Value(&m.fb.memberName).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("Member is required")
			}
			return nil
		})
	if len(m.memberNames) > 0 {
		member = member.Suggestions(m.memberNames)
	}

	return huh.NewForm(
		huh.NewGroup(
			member,
			huh.NewInput().
				Title("Initial Amount").
				Value(&m.fb.amount).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v <= 0 {
						return fmt.Errorf("Initial Amount must be a positive number")
					}
					return nil
				}),
		),
	)
}

func (m Model) submitAdd() tea.Cmd {
	amount, _ := strconv.ParseFloat(strings.TrimSpace(m.fb.amount), 64)
	adv := model.NewAdvance{
		GroupID:       m.groupID,
		MemberName:    strings.TrimSpace(m.fb.memberName),
		InitialAmount: amount,
	}
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		created, err := client.CreateAdvance(ctx, adv)
		return AdvanceCreatedMsg{Advance: created, Err: err}
	}
}

func (m Model) savePaidAmount(advanceID int64, amount float64) tea.Cmd {
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		err := client.UpdatePaidAmount(ctx, advanceID, amount)
		return PaidSavedMsg{AdvanceID: advanceID, Err: err}
	}
}

func (m Model) generateForm() tea.Cmd {
	ctx := m.ctx
	pipe := m.pipe
	req := pipeline.Request{
		GroupID:   m.groupID,
		GroupName: m.groupName,
		Kind:      pipeline.KindMonthlyAdvanceForm,
	}
	return func() tea.Msg {
		result, err := pipe.Run(ctx, req)
		return FormGeneratedMsg{Result: result, Err: err}
	}
}

// View renders the advances view.
func (m Model) View() string {
	if m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			theme.HeaderStyle.Render("New Advance") + "\n\n" + m.form.View(),
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
			"Select a group to view its advances.\n\n" + m.groupInput.View(),
		))
		return b.String()
	}

	if m.groupID == 0 {
		b.WriteString(theme.HelpStyle.Render("No group selected. Press esc to choose one."))
		return b.String()
	}

	title := "Advances"
	if m.groupName != "" {
		title = "Advances: " + m.groupName
	}
	b.WriteString(theme.HeaderStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	return b.String()
}

func (m Model) renderTable() string {
	rows := m.store.Records()
	if m.store.Loading() && len(rows) == 0 {
		return theme.HelpStyle.Render("Loading advances...")
	}
	if len(rows) == 0 {
		return theme.HelpStyle.Render("No advances for this group. Press n to add one.")
	}

	var b strings.Builder
	b.WriteString(theme.ListItemStyle.Render(fmt.Sprintf(
		"%-24s %12s %12s %12s  %s",
		"Member", "Initial", "Paid", "Due", "Status",
	)))
	b.WriteString("\n")

	for i, adv := range rows {
		paid := formatAmount(adv.PaidAmount)
		if i == m.editIndex {
			paid = m.editInput.View()
		}
		line := fmt.Sprintf(
			"%-24s %12s %12s %12s  %s",
			adv.MemberName,
			formatAmount(adv.InitialAmount),
			paid,
			formatAmount(adv.TotalAmountDue),
			theme.StatusStyle(adv.Status).Render(adv.Status),
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
func (m Model) Capturing() bool {
	return m.form != nil || m.selectMode || m.editIndex >= 0
}

// Editing reports whether a row is currently in paid-amount edit mode,
// and which row it is.
func (m Model) Editing() (int, bool) { return m.editIndex, m.editIndex >= 0 }

// EditValue exposes the paid-amount editor's current text.
func (m Model) EditValue() string { return m.editInput.Value() }

// Rows exposes the cached advances.
func (m Model) Rows() []model.Advance { return m.store.Records() }

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
