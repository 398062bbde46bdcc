// Package bus is the process-wide refresh signal bus. A publish on a topic
// tells every subscribed view that the backend state behind that topic
// changed and its collection should be refetched. Signals carry no payload
// beyond the topic itself: subscribers refetch, they never patch.
package bus

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Topic names one refetchable collection.
type Topic string

const (
	TopicAdvances      Topic = "advances"
	TopicPerformances  Topic = "performances"
	TopicNotifications Topic = "notifications"
	TopicCredits       Topic = "credits"
	TopicHistories     Topic = "histories"
)

// RefreshMsg is the tea.Msg delivered to the program when a subscribed
// topic fires.
type RefreshMsg struct {
	Topic Topic
}

// Bus fans topic signals out to subscriptions. There is exactly one Bus
// per process, created at application root and alive for the session.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int]*Subscription)}
}

// Subscribe registers interest in the given topics. With no topics the
// subscription receives every publish. Each subscription must eventually
// be released with Unsubscribe.
func (b *Bus) Subscribe(topics ...Topic) *Subscription {
	s := &Subscription{
		bus:    b,
		topics: make(map[Topic]bool, len(topics)),
		wake:   make(chan struct{}, 1),
	}
	for _, t := range topics {
		s.topics[t] = true
	}

	b.mu.Lock()
	s.id = b.nextID
	b.nextID++
	b.subs[s.id] = s
	b.mu.Unlock()

	return s
}

// Publish signals that the collection behind topic changed. Every
// subscription registered at this moment whose topic set matches observes
// exactly one signal for this call; none are coalesced away.
func (b *Bus) Publish(topic Topic) {
	b.mu.Lock()
	matched := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if len(s.topics) == 0 || s.topics[topic] {
			matched = append(matched, s)
		}
	}
	b.mu.Unlock()

	for _, s := range matched {
		s.push(topic)
	}
}

// remove drops a subscription from the fan-out set.
func (b *Bus) remove(id int) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Subscription is one view's handle on the bus. Pending signals queue up
// until consumed, so a slow view still observes every publish.
type Subscription struct {
	bus    *Bus
	id     int
	topics map[Topic]bool

	mu      sync.Mutex
	pending []Topic
	closed  bool
	wake    chan struct{}
}

// push queues one signal and wakes a blocked Next.
func (s *Subscription) push(t Topic) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending, t)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Next blocks until a signal is available or the subscription is closed.
// The second return is false once the subscription is closed and drained.
func (s *Subscription) Next() (Topic, bool) {
	for {
		s.mu.Lock()
		if len(s.pending) > 0 {
			t := s.pending[0]
			s.pending = s.pending[1:]
			s.mu.Unlock()
			return t, true
		}
		if s.closed {
			s.mu.Unlock()
			return "", false
		}
		s.mu.Unlock()

		<-s.wake
	}
}

// Pending returns the number of queued, unconsumed signals.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Unsubscribe releases the subscription and unblocks any waiter. Safe to
// call more than once.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.bus.remove(s.id)

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wait returns a tea.Cmd that blocks until the next signal and delivers
// it as a RefreshMsg. After handling the message the caller re-arms by
// calling Wait again, the same way the result channel of a background
// poller is re-armed.
func (s *Subscription) Wait() tea.Cmd {
	return func() tea.Msg {
		t, ok := s.Next()
		if !ok {
			return nil
		}
		return RefreshMsg{Topic: t}
	}
}
