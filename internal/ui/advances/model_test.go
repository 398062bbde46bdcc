package advances

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/bus"
	"github.com/bidii/sacco-admin/internal/keys"
	"github.com/bidii/sacco-admin/internal/model"
	"github.com/bidii/sacco-admin/internal/pipeline"
)

func newTestModel(t *testing.T, srv *httptest.Server) Model {
	t.Helper()
	client := api.NewClient(srv.URL, api.StaticToken("token"), time.Second)
	pipe := pipeline.New(client, bus.New())
	return New(client, pipe, keys.DefaultKeyMap(), 80, 24)
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

func TestRejectedSaveKeepsRowInEditMode(t *testing.T) {
	page := model.AdvancePage{
		GroupName: "Umoja",
		Advances: []model.Advance{
			{ID: 12, GroupID: 5, MemberName: "Achieng", PaidAmount: 50, TotalAmountDue: 120, Status: model.AdvanceStatusActive},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /advances", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(page)
	})
	mux.HandleFunc("PATCH /advances/12", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "paid amount exceeds total due"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := newTestModel(t, srv)
	m = drive(t, m, m.SetGroup(5, "Umoja"))
	if len(m.Rows()) != 1 {
		t.Fatalf("rows = %d, want 1", len(m.Rows()))
	}

	// Enter edit mode on the only row.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if _, ok := m.Editing(); !ok {
		t.Fatal("expected row to be in edit mode")
	}
	if got := m.EditValue(); got != "50.00" {
		t.Fatalf("edit value = %q, want 50.00", got)
	}

	// Submit; the backend rejects with 422.
	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drive(t, m, cmd)

	if _, ok := m.Editing(); !ok {
		t.Fatal("row left edit mode after rejected save")
	}
	if got := m.EditValue(); got != "50.00" {
		t.Fatalf("edit value after rejection = %q, want original 50.00", got)
	}
	if m.Banner() == "" {
		t.Fatal("expected an error banner after rejected save")
	}
	if got := m.Rows()[0].PaidAmount; got != 50 {
		t.Fatalf("cached paid amount = %v, want untouched 50", got)
	}
}

func TestSuccessfulSaveLeavesEditModeAndRefetches(t *testing.T) {
	paid := 50.0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /advances", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.AdvancePage{
			GroupName: "Umoja",
			Advances: []model.Advance{
				{ID: 12, GroupID: 5, MemberName: "Achieng", PaidAmount: paid, TotalAmountDue: 120},
			},
		})
	})
	mux.HandleFunc("PATCH /advances/12", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PaidAmount float64 `json:"paid_amount"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		paid = body.PaidAmount
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := newTestModel(t, srv)
	m = drive(t, m, m.SetGroup(5, "Umoja"))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlU}) // clear the input
	for _, r := range "75" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = m.Update(cmd()) // PaidSavedMsg; schedules the refetch
	if _, ok := m.Editing(); ok {
		t.Fatal("row still in edit mode after successful save")
	}

	m = drive(t, m, cmd)
	if got := m.Rows()[0].PaidAmount; got != 75 {
		t.Fatalf("paid amount after refetch = %v, want 75", got)
	}
}

func TestGroupSelectEscReleasesCapture(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /member_details", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := newTestModel(t, srv)
	if !m.Capturing() {
		t.Fatal("the view starts in group select and must capture input")
	}

	// Digits belong to the selector while it is capturing.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	if !m.Capturing() {
		t.Fatal("typing a digit must not leave group select")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Capturing() {
		t.Fatal("esc must leave group select so global keys get through")
	}

	// esc from the list re-opens the selector.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.Capturing() {
		t.Fatal("esc from the list should re-open group select")
	}
}
