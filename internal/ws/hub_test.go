package ws

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type chanSubscriber struct {
	ch     chan []byte
	fail   bool
	closed bool
}

func newChanSubscriber() *chanSubscriber {
	return &chanSubscriber{ch: make(chan []byte, 8)}
}

func (s *chanSubscriber) Send(payload []byte) error {
	if s.fail {
		return errors.New("connection gone")
	}
	s.ch <- payload
	return nil
}

func (s *chanSubscriber) Close() {
	s.closed = true
}

func receive(t *testing.T, sub *chanSubscriber) []byte {
	t.Helper()
	select {
	case payload := <-sub.ch:
		return payload
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for payload")
		return nil
	}
}

func assertSilent(t *testing.T, sub *chanSubscriber) {
	t.Helper()
	select {
	case payload := <-sub.ch:
		t.Fatalf("unexpected payload %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishReachesOnlySubscribedQuestion(t *testing.T) {
	hub := NewHub()
	subQ1 := newChanSubscriber()
	subQ2 := newChanSubscriber()
	hub.Register("q1", subQ1)
	hub.Register("q2", subQ2)

	hub.Publish(Event{Type: "like", QuestionID: "q1", ItemID: "q1", ItemType: "question", UserID: "u1", TotalLikes: 3})

	var event Event
	if err := json.Unmarshal(receive(t, subQ1), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Type != "like" || event.QuestionID != "q1" || event.TotalLikes != 3 {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.OccurredAt.IsZero() {
		t.Fatalf("expected event timestamp")
	}
	assertSilent(t, subQ2)
}

func TestBroadcastEvictsFailedSubscriber(t *testing.T) {
	hub := NewHub()
	healthy := newChanSubscriber()
	broken := newChanSubscriber()
	broken.fail = true
	hub.Register("q1", healthy)
	hub.Register("q1", broken)

	hub.Broadcast("q1", []byte("first"))
	if got := string(receive(t, healthy)); got != "first" {
		t.Fatalf("unexpected payload %q", got)
	}

	// The broken subscriber was evicted on failure; later payloads still
	// reach the healthy one.
	hub.Broadcast("q1", []byte("second"))
	if got := string(receive(t, healthy)); got != "second" {
		t.Fatalf("unexpected payload %q", got)
	}
	if !broken.closed {
		t.Fatalf("expected failed subscriber closed")
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := newChanSubscriber()
	hub.Register("q1", sub)
	hub.Unregister("q1", sub)

	hub.Broadcast("q1", []byte("late"))
	assertSilent(t, sub)
}

func TestPublishOnNilHubIsNoOp(t *testing.T) {
	var hub *Hub
	hub.Publish(Event{Type: "like", QuestionID: "q1"})
}

func TestPublishWithoutQuestionIsDropped(t *testing.T) {
	hub := NewHub()
	sub := newChanSubscriber()
	hub.Register("q1", sub)

	hub.Publish(Event{Type: "like"})
	assertSilent(t, sub)
}
