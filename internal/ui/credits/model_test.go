package credits

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
)

func newTestModel(t *testing.T, srv *httptest.Server) (Model, *bus.Bus) {
	t.Helper()
	b := bus.New()
	client := api.NewClient(srv.URL, api.StaticToken("token"), time.Second)
	return New(client, b, keys.DefaultKeyMap(), 80, 24), b
}

func TestAddCreditPostsGroupNameAndDate(t *testing.T) {
	var posted api.NewMonthlyAdvanceCredit
	mux := http.NewServeMux()
	mux.HandleFunc("POST /monthly_advance_credits", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
			t.Errorf("decoding credit payload: %v", err)
		}
		json.NewEncoder(w).Encode(model.MonthlyAdvanceCredit{
			ID:                 7,
			GroupID:            3,
			GroupName:          posted.GroupName,
			Date:               posted.Date,
			TotalAdvanceAmount: posted.TotalAdvanceAmount,
			Deductions:         posted.Deductions,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m, b := newTestModel(t, srv)
	sub := b.Subscribe(bus.TopicCredits)
	defer sub.Unsubscribe()

	m.fb.groupName = "Umoja"
	m.fb.date = "2026-08-01"
	m.fb.total = "1500.00"
	m.fb.deductions = "120.00"

	msg := m.submitAdd()()
	created, ok := msg.(CreatedMsg)
	if !ok {
		t.Fatalf("submit produced %T, want CreatedMsg", msg)
	}
	if created.Err != nil {
		t.Fatalf("create failed: %v", created.Err)
	}
	m, _ = m.Update(created)

	if posted.GroupName != "Umoja" {
		t.Fatalf("posted group_name = %q, want Umoja", posted.GroupName)
	}
	wantDate := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	if !posted.Date.Equal(wantDate) {
		t.Fatalf("posted date = %v, want %v", posted.Date, wantDate)
	}
	if posted.TotalAdvanceAmount != 1500 || posted.Deductions != 120 {
		t.Fatalf("posted amounts = %v / %v", posted.TotalAdvanceAmount, posted.Deductions)
	}

	if rows := m.Rows(); len(rows) != 1 || rows[0].ID != 7 {
		t.Fatalf("rows after create = %#v", rows)
	}
	if sub.Pending() != 1 {
		t.Fatalf("pending signals = %d, want 1", sub.Pending())
	}
	if topic, ok := sub.Next(); !ok || topic != bus.TopicCredits {
		t.Fatalf("signal = %v %v, want credits topic", topic, ok)
	}
}

func TestAddFormCapturesInput(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	defer srv.Close()

	m, _ := newTestModel(t, srv)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if !m.Capturing() {
		t.Fatal("n should open the add form and capture input")
	}
	if cmd == nil {
		t.Fatal("opening the form should return its init command")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Capturing() {
		t.Fatal("esc should abort the form and release input")
	}
}
