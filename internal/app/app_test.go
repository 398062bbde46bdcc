package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/bus"
	"github.com/bidii/sacco-admin/internal/model"
	"github.com/bidii/sacco-admin/internal/session"
	"github.com/bidii/sacco-admin/internal/snapshot"
	"github.com/bidii/sacco-admin/internal/ui/settings"
)

// memStore is an in-memory TokenStore for tests.
type memStore struct {
	token string
}

func (m *memStore) Load() (string, error)   { return m.token, nil }
func (m *memStore) Save(token string) error { m.token = token; return nil }
func (m *memStore) Clear() error            { m.token = ""; return nil }

func TestSignOutWipesTokenAndSnapshots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cache, err := snapshot.Open(":memory:")
	if err != nil {
		t.Fatalf("opening snapshot store: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	ctx := context.Background()
	seed := []model.Notification{{ID: 1, Message: "hello"}}
	if err := cache.Save(ctx, snapshot.CollectionNotifications, seed); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}

	sess := session.New(&memStore{token: "token"})
	client := api.NewClient(srv.URL, sess, time.Second)
	root := New(client, bus.New(), sess, cache)

	// The seeded snapshot is restored at construction.
	if got := root.notifView.Rows(); len(got) != 1 {
		t.Fatalf("restored rows = %d, want 1", len(got))
	}

	mdl, cmd := root.Update(settings.SignOutRequestMsg{})
	if cmd == nil {
		t.Fatal("sign-out should return the logout command")
	}
	root = mdl.(Model)

	if sess.Authenticated() {
		t.Fatal("session still authenticated after sign-out")
	}
	var left []model.Notification
	if _, err := cache.Load(ctx, snapshot.CollectionNotifications, &left); !errors.Is(err, snapshot.ErrNoSnapshot) {
		t.Fatalf("snapshot load after sign-out = %v, want ErrNoSnapshot", err)
	}

	if _, ok := cmd().(signedOutMsg); !ok {
		t.Fatal("logout command should finish with the signed-out message")
	}
}
