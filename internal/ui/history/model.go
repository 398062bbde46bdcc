package history

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/keys"
	"github.com/bidii/sacco-admin/internal/model"
	"github.com/bidii/sacco-admin/internal/theme"
	"github.com/bidii/sacco-admin/internal/viewstate"
)

// Source filter values for the history listing.
const (
	SourceAll         = "all"
	SourcePerformance = "performance"
	SourceAdvance     = "advance"
)

var sourceCycle = []string{SourceAll, SourcePerformance, SourceAdvance}

// LoadedMsg carries the merged result of the history fetches.
type LoadedMsg struct {
	Seq  uint64
	Rows []model.HistoryEntry
	Err  error
}

// RecordsLoadedMsg carries the archived form rows for one history entry.
type RecordsLoadedMsg struct {
	HistoryID int64
	Rows      []model.FormRecord
	Err       error
}

// Model is the history view: generated-form and advance-summary entries,
// with drill-down into the archived rows of a single form.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	store  *viewstate.Store[model.HistoryEntry]
	cursor int
	banner string
	source string

	// Drill-down state for one entry's archived form rows.
	recordsMode bool
	recordsID   int64
	records     []model.FormRecord
	sortField   int
	searchMode  bool
	searchInput textinput.Model
	query       string

	ctx    context.Context
	cancel context.CancelFunc
	width  int
	height int
}

// Sort fields for the drill-down table.
const (
	sortByMember = iota
	sortBySavings
	sortByLoan
)

// New creates the history view.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	ctx, cancel := context.WithCancel(context.Background())

	si := textinput.New()
	si.Placeholder = "search members..."
	si.Prompt = "/ "

	return Model{
		client:      client,
		keys:        k,
		store:       viewstate.New(func(h model.HistoryEntry) int64 { return h.ID }),
		source:      SourceAll,
		searchInput: si,
		ctx:         ctx,
		cancel:      cancel,
		width:       width,
		height:      height,
	}
}

// Init fetches the history listing.
func (m Model) Init() tea.Cmd {
	return m.Refetch()
}

// Refetch issues a sequence-tagged fetch. Both the generated-form
// histories and the advance summaries are fetched and merged; the source
// filter is applied locally so switching filters needs no refetch.
func (m Model) Refetch() tea.Cmd {
	seq := m.store.Begin()
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		performances, err := client.ListHistories(ctx)
		if err != nil {
			return LoadedMsg{Seq: seq, Err: err}
		}
		advances, err := client.ListAdvanceSummaries(ctx)
		if err != nil {
			return LoadedMsg{Seq: seq, Err: err}
		}

		merged := make([]model.HistoryEntry, 0, len(performances)+len(advances))
		for _, h := range performances {
			h.Source = SourcePerformance
			merged = append(merged, h)
		}
		for _, h := range advances {
			h.Source = SourceAdvance
			merged = append(merged, h)
		}
		sort.SliceStable(merged, func(i, j int) bool {
			return merged[i].Date > merged[j].Date
		})
		return LoadedMsg{Seq: seq, Rows: merged}
	}
}

// Close cancels the view's in-flight requests.
func (m *Model) Close() {
	m.cancel()
}

// Restore seeds the cache from an offline snapshot.
func (m *Model) Restore(rows []model.HistoryEntry) {
	m.store.Restore(rows)
}

// Update handles messages for the history view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if m.store.Resolve(msg.Seq, msg.Rows, msg.Err) && msg.Err != nil {
			m.banner = "Failed to load history. Please try again later."
		} else if msg.Err == nil {
			m.banner = ""
		}
		m.clampCursor()
		return m, nil

	case RecordsLoadedMsg:
		if msg.HistoryID != m.recordsID {
			// User already drilled into a different entry.
			return m, nil
		}
		if msg.Err != nil {
			m.banner = "Failed to load form records. Please try again later."
			m.recordsMode = false
			return m, nil
		}
		m.banner = ""
		m.records = msg.Rows
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		if m.recordsMode {
			return m.handleRecordKeys(msg)
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
		return m, nil
	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
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

	case key.Matches(msg, m.keys.Select):
		rows := m.visible()
		if m.cursor >= len(rows) {
			return m, nil
		}
		entry := rows[m.cursor]
		if entry.Source != SourcePerformance {
			// Advance summaries have no archived form rows.
			return m, nil
		}
		m.recordsMode = true
		m.recordsID = entry.ID
		m.records = nil
		m.query = ""
		m.sortField = sortByMember
		return m, m.fetchRecords(entry.ID)
	}

	if msg.String() == "tab" {
		m.source = nextSource(m.source)
		m.cursor = 0
		return m, nil
	}
	return m, nil
}

func (m Model) handleRecordKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.recordsMode = false
		m.records = nil
		m.query = ""
		return m, nil
	case "s":
		m.sortField = (m.sortField + 1) % 3
		return m, nil
	case "/":
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()
	}
	return m, nil
}

func (m Model) fetchRecords(historyID int64) tea.Cmd {
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		rows, err := client.ListFormRecords(ctx, historyID)
		return RecordsLoadedMsg{HistoryID: historyID, Rows: rows, Err: err}
	}
}

// visible applies the source filter to the merged listing.
func (m Model) visible() []model.HistoryEntry {
	rows := m.store.Records()
	if m.source == SourceAll {
		return rows
	}
	var out []model.HistoryEntry
	for _, h := range rows {
		if h.Source == m.source {
			out = append(out, h)
		}
	}
	return out
}

// sortedRecords returns the drill-down rows filtered by the member search
// and ordered by the active sort field.
func (m Model) sortedRecords() []model.FormRecord {
	var out []model.FormRecord
	query := strings.ToLower(m.query)
	for _, r := range m.records {
		if query != "" && !strings.Contains(strings.ToLower(r.MemberDetails), query) {
			continue
		}
		out = append(out, r)
	}

	switch m.sortField {
	case sortBySavings:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].SavingsSharesBF > out[j].SavingsSharesBF
		})
	case sortByLoan:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LoanBalanceBF > out[j].LoanBalanceBF
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].MemberDetails < out[j].MemberDetails
		})
	}
	return out
}

// View renders the history view.
func (m Model) View() string {
	var b strings.Builder

	if m.banner != "" {
		b.WriteString(theme.ErrorBannerStyle.Render(m.banner))
		b.WriteString("\n")
	}

	if m.recordsMode {
		b.WriteString(m.renderRecords())
		return b.String()
	}

	b.WriteString(theme.HeaderStyle.Render("History — " + m.source))
	b.WriteString("\n")

	rows := m.visible()
	if m.store.Loading() && len(rows) == 0 {
		b.WriteString(theme.HelpStyle.Render("Loading history..."))
		return b.String()
	}
	if len(rows) == 0 {
		b.WriteString(theme.HelpStyle.Render("No history entries."))
		return b.String()
	}

	for i, h := range rows {
		line := fmt.Sprintf("%-12s %-24s %s", h.Date, h.GroupName, h.Source)
		if i == m.cursor {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRecords() string {
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render("Form Records"))
	b.WriteString("\n")

	if m.searchMode {
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	} else if m.query != "" {
		b.WriteString(theme.HelpStyle.Render("filter: " + m.query))
		b.WriteString("\n")
	}

	rows := m.sortedRecords()
	if len(rows) == 0 {
		b.WriteString(theme.HelpStyle.Render("No records."))
		return b.String()
	}

	b.WriteString(theme.ListItemStyle.Render(fmt.Sprintf(
		"%-24s %14s %14s %12s",
		"Member", "Savings B/F", "Loan B/F", "Paid",
	)))
	b.WriteString("\n")

	for _, r := range rows {
		b.WriteString(theme.ListItemStyle.Render(fmt.Sprintf(
			"%-24s %14s %14s %12s",
			r.MemberDetails,
			formatAmount(r.SavingsSharesBF),
			formatAmount(r.LoanBalanceBF),
			formatAmount(r.TotalPaid),
		)))
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

// Rows exposes the cached history entries.
func (m Model) Rows() []model.HistoryEntry { return m.store.Records() }

func (m *Model) clampCursor() {
	if n := len(m.visible()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	} else if n == 0 {
		m.cursor = 0
	}
}

func nextSource(current string) string {
	for i, s := range sourceCycle {
		if s == current {
			return sourceCycle[(i+1)%len(sourceCycle)]
		}
	}
	return SourceAll
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
