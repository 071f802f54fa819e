package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
}

func (e testEvent) EventName() string { return "test.event" }

func TestPublishOutlivesPublisherContext(t *testing.T) {
	bus := NewInMemoryBus(nil)

	observed := make(chan error, 1)
	released := make(chan struct{})
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, _ Event) error {
		<-released
		observed <- ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent()})
	cancel()
	close(released)

	select {
	case err := <-observed:
		if err != nil {
			t.Errorf("handler context error = %v, want nil after publisher cancel", err)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)

	failure := errors.New("boom")
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error { return failure }))
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error { return nil }))

	if err := bus.PublishSync(context.Background(), testEvent{}); !errors.Is(err, failure) {
		t.Errorf("PublishSync error = %v, want %v joined", err, failure)
	}
}

func TestPublishRecoversPanickingHandler(t *testing.T) {
	bus := NewInMemoryBus(nil)

	ran := make(chan struct{})
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error { panic("bad subscriber") }))
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		close(ran)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{})

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("healthy subscriber never ran")
	}
}
