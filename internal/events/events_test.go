package events

import (
	"errors"
	"testing"
	"time"

	"github.com/filedash/filedash/internal/models"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventCatalogUpdated)

	files := []models.FileRecord{{ID: "1", Filename: "report.pdf"}}
	bus.Publish(NewCatalogUpdatedEvent(3, models.SearchCriteria{Query: "rep"}, files))

	select {
	case received := <-ch:
		ev, ok := received.(*CatalogEvent)
		if !ok {
			t.Fatal("Expected CatalogEvent")
		}
		if ev.Seq != 3 {
			t.Errorf("Seq = %d, want 3", ev.Seq)
		}
		if ev.Criteria.Query != "rep" {
			t.Errorf("Query = %q, want rep", ev.Criteria.Query)
		}
		if len(ev.Files) != 1 || ev.Files[0].Filename != "report.pdf" {
			t.Errorf("unexpected files %+v", ev.Files)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch1 := bus.Subscribe(EventStatus)
	ch2 := bus.Subscribe(EventStatus)

	bus.Publish(NewStatusEvent(models.StatusMessage{Text: "File uploaded successfully", Kind: models.StatusSuccess}))

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d did not receive the event", i+1)
		}
	}
}

func TestEventBus_DifferentEventTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	previewCh := bus.Subscribe(EventPreviewChanged)
	statusCh := bus.Subscribe(EventStatus)

	bus.Publish(NewPreviewEvent(nil))

	select {
	case <-previewCh:
	case <-time.After(100 * time.Millisecond):
		t.Error("preview subscriber didn't receive event")
	}

	select {
	case <-statusCh:
		t.Error("status subscriber received wrong event type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	allCh := bus.SubscribeAll()

	bus.Publish(NewCatalogErrorEvent(1, models.SearchCriteria{}, errors.New("boom")))
	bus.Publish(NewSignedOutEvent())

	count := 0
	for i := 0; i < 2; i++ {
		select {
		case <-allCh:
			count++
		case <-time.After(100 * time.Millisecond):
		}
	}

	if count != 2 {
		t.Errorf("Expected to receive 2 events, got %d", count)
	}
}

func TestEventBus_NonBlocking(t *testing.T) {
	bus := NewEventBus(2)
	defer bus.Close()

	ch := bus.Subscribe(EventCatalogLoading)

	for i := 0; i < 10; i++ {
		bus.Publish(NewCatalogLoadingEvent(uint64(i+1), models.SearchCriteria{}))
	}

	if got := bus.GetDroppedEventCount(); got != 8 {
		t.Errorf("dropped = %d, want 8", got)
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		case <-time.After(10 * time.Millisecond):
			goto done
		}
	}
done:

	if count != 2 {
		t.Errorf("received %d events, want 2 (buffer size)", count)
	}
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(10)

	ch := bus.Subscribe(EventStatus)

	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("Channel should be closed after bus.Close()")
	}

	// Publishing after close should not panic
	bus.Publish(NewStatusClearedEvent())

	// Subscribing after close returns a closed channel
	if _, ok := <-bus.Subscribe(EventStatus); ok {
		t.Error("Subscribe after Close should return a closed channel")
	}
}

func TestEventBus_NilIsNoop(t *testing.T) {
	var bus *EventBus
	bus.Publish(NewStatusClearedEvent())
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventProfileChanged)
	all := bus.SubscribeAll()

	bus.Unsubscribe(EventProfileChanged, ch)
	bus.UnsubscribeAll(all)

	if _, ok := <-ch; ok {
		t.Error("unsubscribed channel should be closed")
	}
	if _, ok := <-all; ok {
		t.Error("unsubscribed all-channel should be closed")
	}

	// Must not panic on send to a closed channel
	bus.Publish(NewProfileEvent(true, nil))
}
