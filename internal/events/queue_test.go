package events

import (
	"context"
	"errors"
	"testing"
)

func TestQueuePublishReachesAllSubscribers(t *testing.T) {
	q := NewQueue(4)
	a := q.Subscribe()
	b := q.Subscribe()
	if q.SubscriberCount() != 2 {
		t.Fatalf("SubscriberCount = %d", q.SubscriberCount())
	}

	if err := q.Publish(context.Background(), MessageStart{Role: RoleAssistant}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	for _, ch := range []<-chan Event{a, b} {
		evt := <-ch
		if _, ok := evt.(MessageStart); !ok {
			t.Fatalf("subscriber got %T", evt)
		}
	}
}

func TestQueueDropsForSlowSubscriber(t *testing.T) {
	q := NewQueue(1)
	_ = q.Subscribe()
	ctx := context.Background()

	if err := q.Publish(ctx, StepStart{}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := q.Publish(ctx, StepStop{}); !errors.Is(err, ErrEventDropped) {
		t.Fatalf("second publish err = %v, want ErrEventDropped", err)
	}
}

func TestQueueCloseIsTerminal(t *testing.T) {
	q := NewQueue(1)
	ch := q.Subscribe()
	q.Close()
	q.Close()

	if _, open := <-ch; open {
		t.Fatalf("subscriber channel still open after Close")
	}
	if err := q.Publish(context.Background(), AgentStop{}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("publish after close err = %v", err)
	}
	if ch2 := q.Subscribe(); ch2 == nil {
		t.Fatalf("Subscribe after close returned nil channel")
	} else if _, open := <-ch2; open {
		t.Fatalf("post-close subscription must be closed immediately")
	}
}
