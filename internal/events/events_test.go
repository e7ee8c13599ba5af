package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSONDeliversToSubscriber(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	bus.Subscribe(EventClientCreated, func(event *Event) error {
		received = event
		return nil
	})

	err := bus.PublishJSON(EventClientCreated, ClientEventPayload{
		ClientID: "c-123",
		Contract: "240115-101500",
	})
	require.NoError(t, err)
	require.NotNil(t, received)
	assert.Equal(t, EventClientCreated, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded ClientEventPayload
	require.NoError(t, json.Unmarshal(received.Payload, &decoded))
	assert.Equal(t, "c-123", decoded.ClientID)
	assert.Equal(t, "240115-101500", decoded.Contract)
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe(EventClientArchived, func(_ *Event) error { count1++; return nil })
	bus.Subscribe(EventClientArchived, func(_ *Event) error { count2++; return nil })
	bus.Subscribe(EventClientDeleted, func(_ *Event) error {
		t.Error("subscriber of another type must not fire")
		return nil
	})

	bus.Publish(&Event{Type: EventClientArchived})

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestPublishWithoutSubscribersDoesNotPanic(t *testing.T) {
	bus := NewEventBus()

	assert.NotPanics(t, func() {
		bus.Publish(&Event{Type: "unknown"})
	})
	assert.NoError(t, bus.PublishJSON("unknown", nil))
}

func TestPublishJSONOnNilBus(t *testing.T) {
	var bus *EventBus
	// сервисы зовут шину без nil-проверок, паблиш должен быть no-op
	assert.NoError(t, bus.PublishJSON(EventLeadSubmitted, nil))
}

func TestNewJSONEvent(t *testing.T) {
	event, err := NewJSONEvent(EventClientUpdated, ClientEventPayload{ClientID: "c-9"})
	require.NoError(t, err)
	assert.Equal(t, EventClientUpdated, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded ClientEventPayload
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, "c-9", decoded.ClientID)
}
