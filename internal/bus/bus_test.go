package bus

import (
	"testing"
	"time"
)

func TestEverySubscriberObservesEveryPublish(t *testing.T) {
	b := New()
	s1 := b.Subscribe(TopicAdvances)
	s2 := b.Subscribe(TopicAdvances)
	defer s1.Unsubscribe()
	defer s2.Unsubscribe()

	const publishes = 25
	for i := 0; i < publishes; i++ {
		b.Publish(TopicAdvances)
	}

	for _, s := range []*Subscription{s1, s2} {
		if got := s.Pending(); got != publishes {
			t.Fatalf("pending = %d, want %d", got, publishes)
		}
		for i := 0; i < publishes; i++ {
			topic, ok := s.Next()
			if !ok || topic != TopicAdvances {
				t.Fatalf("signal %d: topic=%q ok=%v", i, topic, ok)
			}
		}
	}
}

func TestTopicFiltering(t *testing.T) {
	b := New()
	advances := b.Subscribe(TopicAdvances)
	all := b.Subscribe()
	defer advances.Unsubscribe()
	defer all.Unsubscribe()

	b.Publish(TopicNotifications)
	b.Publish(TopicAdvances)

	if got := advances.Pending(); got != 1 {
		t.Fatalf("filtered subscription pending = %d, want 1", got)
	}
	if got := all.Pending(); got != 2 {
		t.Fatalf("catch-all subscription pending = %d, want 2", got)
	}

	topic, _ := advances.Next()
	if topic != TopicAdvances {
		t.Fatalf("filtered subscription received %q", topic)
	}
}

func TestLateSubscriberMissesEarlierPublishes(t *testing.T) {
	b := New()
	b.Publish(TopicCredits)

	s := b.Subscribe(TopicCredits)
	defer s.Unsubscribe()

	if got := s.Pending(); got != 0 {
		t.Fatalf("late subscriber pending = %d, want 0", got)
	}
}

func TestNextBlocksUntilPublish(t *testing.T) {
	b := New()
	s := b.Subscribe(TopicHistories)
	defer s.Unsubscribe()

	got := make(chan Topic, 1)
	go func() {
		topic, _ := s.Next()
		got <- topic
	}()

	time.Sleep(10 * time.Millisecond)
	b.Publish(TopicHistories)

	select {
	case topic := <-got:
		if topic != TopicHistories {
			t.Fatalf("topic = %q", topic)
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not wake on publish")
	}
}

func TestUnsubscribeUnblocksWaiter(t *testing.T) {
	b := New()
	s := b.Subscribe(TopicPerformances)

	done := make(chan bool, 1)
	go func() {
		_, ok := s.Next()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	s.Unsubscribe()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("Next reported a signal after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not return after unsubscribe")
	}

	// Publishing after unsubscribe must not queue anything.
	b.Publish(TopicPerformances)
	if got := s.Pending(); got != 0 {
		t.Fatalf("pending after unsubscribe = %d", got)
	}
}

func TestWaitDeliversRefreshMsg(t *testing.T) {
	b := New()
	s := b.Subscribe(TopicNotifications)
	defer s.Unsubscribe()

	b.Publish(TopicNotifications)

	msg := s.Wait()()
	refresh, ok := msg.(RefreshMsg)
	if !ok {
		t.Fatalf("msg type = %T", msg)
	}
	if refresh.Topic != TopicNotifications {
		t.Fatalf("topic = %q", refresh.Topic)
	}
}
