package events

import (
	"fmt"
	"testing"
)

func TestBroadcaster_FanOutToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	ch1, cancel1 := b.Subscribe(TopicRideRequested)
	defer cancel1()
	ch2, cancel2 := b.Subscribe(TopicRideRequested)
	defer cancel2()

	b.Publish(TopicRideRequested, "payload")

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case event := <-ch:
			if event.Payload != "payload" {
				t.Errorf("subscriber %d: unexpected payload %v", i, event.Payload)
			}
		default:
			t.Errorf("subscriber %d: expected an event", i)
		}
	}
}

func TestBroadcaster_TopicsAreIsolated(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	rideCh, cancelRide := b.Subscribe(TopicRideRequested)
	defer cancelRide()
	locCh, cancelLoc := b.Subscribe(TopicDriverLocationUpdated)
	defer cancelLoc()

	b.Publish(TopicRideRequested, "ride")

	select {
	case <-rideCh:
	default:
		t.Error("expected ride subscriber to receive")
	}
	select {
	case event := <-locCh:
		t.Errorf("location subscriber received foreign event: %v", event)
	default:
	}
}

func TestBroadcaster_DeliveryPreservesPublishOrder(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	ch, cancel := b.Subscribe(TopicRideStatusUpdated)
	defer cancel()

	for i := 0; i < 5; i++ {
		b.Publish(TopicRideStatusUpdated, i)
	}

	for want := 0; want < 5; want++ {
		select {
		case event := <-ch:
			if event.Payload != want {
				t.Fatalf("expected %d, got %v", want, event.Payload)
			}
		default:
			t.Fatalf("expected event %d to be buffered", want)
		}
	}
}

func TestBroadcaster_SlowSubscriberIsSkippedNotBlocked(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	ch, cancel := b.Subscribe(TopicRideRequested)
	defer cancel()

	// Overfill the buffer; Publish must return regardless.
	for i := 0; i < subscriberBuffer*2; i++ {
		b.Publish(TopicRideRequested, i)
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received != subscriberBuffer {
		t.Errorf("expected %d buffered events, got %d", subscriberBuffer, received)
	}
}

func TestBroadcaster_CancelStopsDelivery(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	ch, cancel := b.Subscribe(TopicRideRequested)
	cancel()
	cancel() // Safe to call twice.

	b.Publish(TopicRideRequested, "late")

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}
}

func TestBroadcaster_CloseClosesAllSubscribers(t *testing.T) {
	b := NewBroadcaster()

	channels := make([]<-chan Event, 0, 3)
	for i := 0; i < 3; i++ {
		ch, _ := b.Subscribe(fmt.Sprintf("topic-%d", i))
		channels = append(channels, ch)
	}

	b.Close()
	b.Close() // Idempotent.

	for i, ch := range channels {
		if _, ok := <-ch; ok {
			t.Errorf("subscriber %d: expected closed channel", i)
		}
	}

	// Subscribing after close yields a closed channel.
	ch, cancel := b.Subscribe("topic-0")
	defer cancel()
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after Close")
	}
}
