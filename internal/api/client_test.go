package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bidii/sacco-admin/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, StaticToken(token), 5*time.Second)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]model.Notification{})
	}, "tok-123")

	if _, err := c.ListNotifications(context.Background()); err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestEmptyTokenOmitsHeader(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth, hasAuth = r.Header.Get("Authorization"), r.Header.Get("Authorization") != ""
		json.NewEncoder(w).Encode(SignInResponse{Token: "t"})
	}, "")

	if _, err := c.SignIn(context.Background(), SignInRequest{Username: "a", Password: "b"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if hasAuth {
		t.Fatalf("unexpected Authorization header %q on unauthenticated call", gotAuth)
	}
}

func TestQueryParameters(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(model.AdvancePage{GroupName: "Umoja"})
	}, "tok")

	page, err := c.ListAdvances(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListAdvances: %v", err)
	}
	if gotQuery != "group_id=5" {
		t.Fatalf("query = %q", gotQuery)
	}
	if page.GroupName != "Umoja" {
		t.Fatalf("group name = %q", page.GroupName)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"auth", http.StatusUnauthorized, IsAuth},
		{"validation", http.StatusUnprocessableEntity, IsValidation},
		{"not found", http.StatusNotFound, IsServer},
		{"server", http.StatusInternalServerError, IsServer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
			}, "tok")

			_, err := c.ListNotifications(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if !tc.check(err) {
				t.Fatalf("misclassified error: %v", err)
			}
			if StatusCode(err) != tc.status {
				t.Fatalf("status = %d, want %d", StatusCode(err), tc.status)
			}
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // shut down before use so the dial fails

	c := NewClient(ts.URL, StaticToken("tok"), time.Second)
	_, err := c.ListNotifications(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNetwork(err) {
		t.Fatalf("want network failure, got %v", err)
	}
	if StatusCode(err) != 0 {
		t.Fatalf("network failure should carry no status, got %d", StatusCode(err))
	}
}

func TestErrorMessageFromBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "paid_amount must be positive"})
	}, "tok")

	err := c.UpdatePaidAmount(context.Background(), 9, -1)
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("want *Error, got %T", err)
	}
	if apiErr.Message != "paid_amount must be positive" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestNoRetryOnFailure(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}, "tok")

	if _, err := c.ListHistories(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("failures must be terminal per call; server saw %d requests", calls)
	}
}

func TestDeleteSendsNoBody(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}, "tok")

	if err := c.DeleteNotification(context.Background(), 42); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/notifications/42" {
		t.Fatalf("got %s %s", gotMethod, gotPath)
	}
}
