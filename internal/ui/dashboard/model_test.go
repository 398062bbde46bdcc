package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/keys"
	"github.com/bidii/sacco-admin/internal/model"
)

func newTestModel(t *testing.T, srv *httptest.Server) Model {
	t.Helper()
	client := api.NewClient(srv.URL, api.StaticToken("token"), time.Second)
	return New(client, keys.DefaultKeyMap(), 80, 24)
}

func testServer(rows *[]model.MonthlyPerformance) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /monthly_performances", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(*rows)
	})
	mux.HandleFunc("GET /member_names", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.MemberSummary{
			TotalMemberDetails: 40,
			CurrentFirstName:   "Grace",
		})
	})
	return httptest.NewServer(mux)
}

func TestFetchFailureKeepsRowsAndShowsBanner(t *testing.T) {
	rows := []model.MonthlyPerformance{
		{ID: 1, GroupName: "Umoja", Month: "July", Year: 2026, Banking: 1000},
	}
	srv := testServer(&rows)

	m := newTestModel(t, srv)
	m, _ = m.Update(m.Refetch()())
	if len(m.Rows()) != 1 {
		t.Fatalf("rows = %d, want 1", len(m.Rows()))
	}
	if m.Banner() != "" {
		t.Fatalf("unexpected banner %q", m.Banner())
	}

	srv.Close()
	m, _ = m.Update(m.Refetch()())

	if len(m.Rows()) != 1 {
		t.Fatalf("rows after failed fetch = %d, want 1", len(m.Rows()))
	}
	if m.Banner() == "" {
		t.Fatal("expected an error banner after failed fetch")
	}
}

func TestSavedRowIsSpliced(t *testing.T) {
	rows := []model.MonthlyPerformance{
		{ID: 1, GroupName: "Umoja", Month: "July", Year: 2026, Banking: 1000},
		{ID: 2, GroupName: "Bidii", Month: "July", Year: 2026, Banking: 800},
	}
	srv := testServer(&rows)
	defer srv.Close()

	m := newTestModel(t, srv)
	m, _ = m.Update(m.Refetch()())

	m, _ = m.Update(RowSavedMsg{Row: model.MonthlyPerformance{
		ID: 2, GroupName: "Bidii", Month: "July", Year: 2026, Banking: 950,
	}})

	got := m.Rows()
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	if got[1].Banking != 950 {
		t.Fatalf("spliced banking = %v, want 950", got[1].Banking)
	}
	if got[0].Banking != 1000 {
		t.Fatalf("untouched row banking = %v, want 1000", got[0].Banking)
	}
}

func TestStaleResponseDoesNotOverwriteNewer(t *testing.T) {
	rows := []model.MonthlyPerformance{{ID: 1, GroupName: "Umoja"}}
	srv := testServer(&rows)
	defer srv.Close()

	m := newTestModel(t, srv)

	// Issue two fetches; resolve them out of order.
	first := m.Refetch()
	firstMsg := first().(PerformancesLoadedMsg)

	rows = []model.MonthlyPerformance{{ID: 1, GroupName: "Umoja"}, {ID: 2, GroupName: "Bidii"}}
	second := m.Refetch()
	secondMsg := second().(PerformancesLoadedMsg)

	m, _ = m.Update(secondMsg)
	m, _ = m.Update(firstMsg)

	if len(m.Rows()) != 2 {
		t.Fatalf("rows = %d, want the newer fetch's 2", len(m.Rows()))
	}
}
