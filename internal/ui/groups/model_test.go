package groups

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/bus"
	"github.com/bidii/sacco-admin/internal/keys"
	"github.com/bidii/sacco-admin/internal/pipeline"
)

func newTestModel(t *testing.T, srv *httptest.Server) Model {
	t.Helper()
	client := api.NewClient(srv.URL, api.StaticToken("token"), time.Second)
	pipe := pipeline.New(client, bus.New())
	return New(client, pipe, keys.DefaultKeyMap(), 80, 24)
}

func TestGroupSelectEscReleasesCapture(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	defer srv.Close()

	m := newTestModel(t, srv)
	if !m.Capturing() {
		t.Fatal("the view starts in group select and must capture input")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	if !m.Capturing() {
		t.Fatal("typing a digit must not leave group select")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Capturing() {
		t.Fatal("esc must leave group select so global keys get through")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.Capturing() {
		t.Fatal("esc from the list should re-open group select")
	}
}
