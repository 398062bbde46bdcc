// Package pipeline implements the two-step write used by the "generate
// form" actions: a primary form-generation write followed by a
// notification write describing it, with refresh signals published so
// other views refetch.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/bus"
	"github.com/bidii/sacco-admin/internal/model"
)

// State tracks one pipeline invocation.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateNotificationPending
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateNotificationPending:
		return "notification-pending"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Kind selects which form-generation endpoint the primary write hits.
type Kind int

const (
	// KindGroupForm snapshots a group's monthly performance form.
	KindGroupForm Kind = iota

	// KindMonthlyAdvanceForm snapshots a group's monthly advance form.
	KindMonthlyAdvanceForm
)

// Request describes one form generation.
type Request struct {
	GroupID   int64
	GroupName string
	Kind      Kind
}

// Result is the terminal outcome of a pipeline invocation. When State is
// StateDone the primary write succeeded; NotificationErr is non-nil when
// the follow-up notification write failed, which does not demote the
// primary success.
type Result struct {
	State           State
	PrimaryMessage  string
	UserID          int64
	NotificationErr error
}

// Gateway is the slice of the API client the pipeline needs.
type Gateway interface {
	GenerateForm(ctx context.Context, groupID int64) (api.GenerateFormResult, error)
	GenerateMonthlyForm(ctx context.Context, groupID int64) (api.GenerateFormResult, error)
	CreateNotification(ctx context.Context, n model.NewNotification) (model.Notification, error)
}

// Pipeline runs form generations. One Pipeline serves the whole program;
// each Run is an independent invocation.
type Pipeline struct {
	gw  Gateway
	bus *bus.Bus
	now func() time.Time
}

// New creates a pipeline over the given gateway and signal bus.
func New(gw Gateway, b *bus.Bus) *Pipeline {
	return &Pipeline{gw: gw, bus: b, now: time.Now}
}

// Run executes one invocation to a terminal state.
//
// The primary write runs first; if it fails the pipeline halts and no
// notification is attempted. On primary success the refresh signal for
// the primary collection fires immediately, before the notification
// write, so subscribers refetch even if the notification step later
// fails. The notification write then runs; its failure is recorded in
// the result but the invocation still reports primary success.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	var (
		gen api.GenerateFormResult
		err error
	)

	switch req.Kind {
	case KindMonthlyAdvanceForm:
		gen, err = p.gw.GenerateMonthlyForm(ctx, req.GroupID)
	default:
		gen, err = p.gw.GenerateForm(ctx, req.GroupID)
	}
	if err != nil {
		return Result{State: StateFailed}, fmt.Errorf("generating form for group %d: %w", req.GroupID, err)
	}

	p.bus.Publish(p.primaryTopic(req.Kind))

	res := Result{
		State:          StateNotificationPending,
		PrimaryMessage: gen.Message,
		UserID:         gen.UserID,
	}

	notification := model.NewNotification{
		UserID:    gen.UserID,
		Message:   notificationMessage(req),
		CreatedAt: p.now(),
	}
	if _, nerr := p.gw.CreateNotification(ctx, notification); nerr != nil {
		res.State = StateDone
		res.NotificationErr = nerr
		return res, nil
	}

	p.bus.Publish(bus.TopicNotifications)
	res.State = StateDone
	return res, nil
}

// primaryTopic maps a form kind to the collection it mutates.
func (p *Pipeline) primaryTopic(kind Kind) bus.Topic {
	if kind == KindMonthlyAdvanceForm {
		return bus.TopicAdvances
	}
	return bus.TopicPerformances
}

// notificationMessage builds the user-facing text for the follow-up
// notification.
func notificationMessage(req Request) string {
	name := req.GroupName
	if name == "" {
		name = fmt.Sprintf("%d", req.GroupID)
	}
	if req.Kind == KindMonthlyAdvanceForm {
		return fmt.Sprintf("Advance form generated successfully for group %s", name)
	}
	return fmt.Sprintf("Group form generated successfully for group %s", name)
}
