package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/bus"
	"github.com/bidii/sacco-admin/internal/model"
)

// fakeGateway lets tests inject failures at either pipeline step.
type fakeGateway struct {
	genErr           error
	notifyErr        error
	genCalls         int
	notifyCalls      int
	lastNotification model.NewNotification
	generateResult   api.GenerateFormResult
}

func (f *fakeGateway) GenerateForm(ctx context.Context, groupID int64) (api.GenerateFormResult, error) {
	f.genCalls++
	if f.genErr != nil {
		return api.GenerateFormResult{}, f.genErr
	}
	return f.generateResult, nil
}

func (f *fakeGateway) GenerateMonthlyForm(ctx context.Context, groupID int64) (api.GenerateFormResult, error) {
	return f.GenerateForm(ctx, groupID)
}

func (f *fakeGateway) CreateNotification(ctx context.Context, n model.NewNotification) (model.Notification, error) {
	f.notifyCalls++
	f.lastNotification = n
	if f.notifyErr != nil {
		return model.Notification{}, f.notifyErr
	}
	return model.Notification{ID: 1, UserID: n.UserID, Message: n.Message, CreatedAt: n.CreatedAt}, nil
}

func TestPrimaryFailureSkipsNotification(t *testing.T) {
	gw := &fakeGateway{genErr: &api.Error{StatusCode: 500, Message: "boom"}}
	b := bus.New()
	sub := b.Subscribe()
	defer sub.Unsubscribe()

	p := New(gw, b)
	res, err := p.Run(context.Background(), Request{GroupID: 5, GroupName: "Umoja"})
	if err == nil {
		t.Fatal("expected error")
	}
	if res.State != StateFailed {
		t.Fatalf("state = %v", res.State)
	}
	if gw.notifyCalls != 0 {
		t.Fatalf("notification write count = %d, want 0", gw.notifyCalls)
	}
	if sub.Pending() != 0 {
		t.Fatalf("no refresh signal may fire on primary failure, pending = %d", sub.Pending())
	}
}

func TestNotificationFailureKeepsPrimarySuccess(t *testing.T) {
	gw := &fakeGateway{
		generateResult: api.GenerateFormResult{Message: "Form generated", UserID: 42},
		notifyErr:      errors.New("notifications endpoint down"),
	}
	b := bus.New()
	primary := b.Subscribe(bus.TopicPerformances)
	notif := b.Subscribe(bus.TopicNotifications)
	defer primary.Unsubscribe()
	defer notif.Unsubscribe()

	p := New(gw, b)
	res, err := p.Run(context.Background(), Request{GroupID: 5, GroupName: "Umoja", Kind: KindGroupForm})
	if err != nil {
		t.Fatalf("notification failure must not fail the invocation: %v", err)
	}
	if res.State != StateDone {
		t.Fatalf("state = %v", res.State)
	}
	if res.PrimaryMessage != "Form generated" || res.UserID != 42 {
		t.Fatalf("primary outcome lost: %+v", res)
	}
	if res.NotificationErr == nil {
		t.Fatal("notification error should be surfaced in the result")
	}

	// The primary refresh fired before (and regardless of) the
	// notification outcome; the notifications topic stayed silent.
	if primary.Pending() != 1 {
		t.Fatalf("primary topic signals = %d, want 1", primary.Pending())
	}
	if notif.Pending() != 0 {
		t.Fatalf("notifications topic signals = %d, want 0", notif.Pending())
	}
}

func TestNotificationMessageUsesGroupName(t *testing.T) {
	gw := &fakeGateway{generateResult: api.GenerateFormResult{UserID: 7}}
	p := New(gw, bus.New())

	_, err := p.Run(context.Background(), Request{GroupID: 5, GroupName: "Bidii", Kind: KindMonthlyAdvanceForm})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(gw.lastNotification.Message, "Bidii") {
		t.Fatalf("message = %q", gw.lastNotification.Message)
	}
	if gw.lastNotification.UserID != 7 {
		t.Fatalf("user id = %d", gw.lastNotification.UserID)
	}

	// Without a resolved name the group id is used instead.
	_, err = p.Run(context.Background(), Request{GroupID: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(gw.lastNotification.Message, "5") {
		t.Fatalf("message = %q", gw.lastNotification.Message)
	}
}

// TestGenerateFormEndToEnd drives the pipeline through the real API
// client against a stub backend: submit group 5, expect the notification
// write with the acting user and a fresh timestamp, then both refresh
// topics.
func TestGenerateFormEndToEnd(t *testing.T) {
	var notifyBody model.NewNotification
	var notifyCalls int

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/generate_form":
			var req struct {
				GroupID int64 `json:"group_id"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if req.GroupID != 5 {
				t.Errorf("group_id = %d", req.GroupID)
			}
			json.NewEncoder(w).Encode(api.GenerateFormResult{Message: "ok", UserID: 42})
		case "/notifications":
			notifyCalls++
			json.NewDecoder(r.Body).Decode(&notifyBody)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(model.Notification{ID: 1, UserID: notifyBody.UserID, Message: notifyBody.Message})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client := api.NewClient(ts.URL, api.StaticToken("tok"), 5*time.Second)
	b := bus.New()
	perf := b.Subscribe(bus.TopicPerformances)
	notif := b.Subscribe(bus.TopicNotifications)
	defer perf.Unsubscribe()
	defer notif.Unsubscribe()

	before := time.Now()
	res, err := New(client, b).Run(context.Background(), Request{GroupID: 5, GroupName: "Umoja", Kind: KindGroupForm})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateDone || res.NotificationErr != nil {
		t.Fatalf("result = %+v", res)
	}

	if notifyCalls != 1 {
		t.Fatalf("notification writes = %d", notifyCalls)
	}
	if notifyBody.UserID != 42 {
		t.Fatalf("notification user_id = %d", notifyBody.UserID)
	}
	if !strings.Contains(notifyBody.Message, "Umoja") {
		t.Fatalf("notification message = %q", notifyBody.Message)
	}
	if notifyBody.CreatedAt.Before(before.Add(-time.Second)) ||
		notifyBody.CreatedAt.After(time.Now().Add(time.Second)) {
		t.Fatalf("created_at = %v", notifyBody.CreatedAt)
	}

	if perf.Pending() != 1 {
		t.Fatalf("performances signals = %d", perf.Pending())
	}
	if notif.Pending() != 1 {
		t.Fatalf("notifications signals = %d", notif.Pending())
	}
}
