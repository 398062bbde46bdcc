package history

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/keys"
	"github.com/bidii/sacco-admin/internal/model"
)

func newTestModel(t *testing.T, srv *httptest.Server) Model {
	t.Helper()
	client := api.NewClient(srv.URL, api.StaticToken("token"), time.Second)
	return New(client, keys.DefaultKeyMap(), 80, 24)
}

func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if msg == nil {
		t.Fatal("command produced no message")
	}
	m, _ = m.Update(msg)
	return m
}

func testServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /histories", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.HistoryEntry{
			{ID: 1, GroupName: "Umoja", Date: "2026-08-01"},
			{ID: 2, GroupName: "Bidii", Date: "2026-07-01"},
		})
	})
	mux.HandleFunc("GET /query_advance_summary", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.HistoryEntry{
			{ID: 7, GroupName: "Umoja", Date: "2026-08-15"},
		})
	})
	mux.HandleFunc("GET /form_records/1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.FormRecord{
			{MemberDetails: "Wanjiku", SavingsSharesBF: 300, LoanBalanceBF: 100},
			{MemberDetails: "Achieng", SavingsSharesBF: 500, LoanBalanceBF: 40},
		})
	})
	return httptest.NewServer(mux)
}

func TestMergedFetchTagsAndFilters(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	m := newTestModel(t, srv)
	m = drive(t, m, m.Init())

	if got := len(m.visible()); got != 3 {
		t.Fatalf("merged rows = %d, want 3", got)
	}
	// Newest first across both sources.
	if m.visible()[0].ID != 7 || m.visible()[0].Source != SourceAdvance {
		t.Fatalf("first row = %+v, want advance summary dated 2026-08-15", m.visible()[0])
	}

	// Cycle all -> performance.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	rows := m.visible()
	if len(rows) != 2 {
		t.Fatalf("performance rows = %d, want 2", len(rows))
	}
	for _, h := range rows {
		if h.Source != SourcePerformance {
			t.Fatalf("row %d has source %q", h.ID, h.Source)
		}
	}

	// performance -> advance.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	rows = m.visible()
	if len(rows) != 1 || rows[0].Source != SourceAdvance {
		t.Fatalf("advance rows = %+v", rows)
	}
}

func TestDrillDownSortsAndSearches(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	m := newTestModel(t, srv)
	m = drive(t, m, m.Init())

	// Filter to performance entries and open the first one (ID 1).
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drive(t, m, cmd)

	records := m.sortedRecords()
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	// Default sort is by member name.
	if records[0].MemberDetails != "Achieng" {
		t.Fatalf("first record = %q, want Achieng", records[0].MemberDetails)
	}

	// Cycle to savings sort: highest first.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if got := m.sortedRecords()[0].SavingsSharesBF; got != 500 {
		t.Fatalf("first savings = %v, want 500", got)
	}

	// Member search narrows the table.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	for _, r := range "wanj" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	records = m.sortedRecords()
	if len(records) != 1 || records[0].MemberDetails != "Wanjiku" {
		t.Fatalf("searched records = %+v", records)
	}
}

func TestAdvanceSummaryHasNoDrillDown(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	m := newTestModel(t, srv)
	m = drive(t, m, m.Init())

	// First visible row is the advance summary; enter must be a no-op.
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no command for an advance summary entry")
	}
}
