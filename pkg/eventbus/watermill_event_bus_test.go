package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/masarflow/masar/pkg/channels/gochannel"
	"github.com/masarflow/masar/pkg/eventbus"
	"github.com/masarflow/masar/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := newTestBus(t)
	received := make(chan *events.WorkflowCreated, 1)

	err := bus.Handle(events.WorkflowCreatedEvent, func(_ context.Context, event any) error {
		created, ok := event.(*events.WorkflowCreated)
		require.True(t, ok)

		received <- created

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	published := events.WorkflowCreated{
		BaseEvent: events.NewBaseEvent(events.WorkflowCreatedEvent, 42),
		Title:     "Trip to Luxor",
		StepCount: 5,
		Source:    "ai",
	}

	require.NoError(t, bus.Publish(ctx, "workflow-42", published))

	select {
	case got := <-received:
		assert.Equal(t, int64(42), got.WorkflowID)
		assert.Equal(t, "Trip to Luxor", got.Title)
		assert.Equal(t, "ai", got.Source)
		assert.Equal(t, events.WorkflowCreatedEvent, got.GetType())
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledTypeIsAcked(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := newTestBus(t)
	received := make(chan *events.ChecklistToggled, 1)

	err := bus.Handle(events.ChecklistToggledEvent, func(_ context.Context, event any) error {
		received <- event.(*events.ChecklistToggled)

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for deletions; the bus must keep consuming.
	require.NoError(t, bus.Publish(ctx, "workflow-1", events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, 1),
	}))

	require.NoError(t, bus.Publish(ctx, "workflow-1", events.ChecklistToggled{
		BaseEvent: events.NewBaseEvent(events.ChecklistToggledEvent, 1),
		StepID:    "s2",
		ItemID:    "chk-1",
		Checked:   true,
	}))

	select {
	case got := <-received:
		assert.Equal(t, "chk-1", got.ItemID)
		assert.True(t, got.Checked)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
