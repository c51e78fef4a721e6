package events

import (
	"testing"

	"github.com/kahvecikaan/catalog-browser/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewEventBus[any]()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish(PageChanged{SessionID: "s1", Page: 2, TotalPages: 3})

	for _, sub := range []Subscriber[any]{a, b} {
		select {
		case ev := <-sub:
			pc, ok := ev.(PageChanged)
			require.True(t, ok)
			assert.Equal(t, 2, pc.Page)
			assert.Equal(t, "s1", pc.Session())
		default:
			t.Fatal("expected an event")
		}
	}
}

func TestUnsubscribeClosesChannelOnce(t *testing.T) {
	bus := NewEventBus[any]()
	sub := bus.Subscribe()
	require.Equal(t, 1, bus.Len())

	bus.Unsubscribe(sub)
	bus.Unsubscribe(sub)

	_, open := <-sub
	assert.False(t, open)
	assert.Equal(t, 0, bus.Len())

	// publishing with no subscribers must not block
	bus.Publish(VisibilityChanged{SessionID: "s1"})
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	bus := NewEventBus[any]()
	sub := bus.Subscribe()

	before := testutil.ToFloat64(metrics.EventsDroppedTotal)

	for i := 0; i < cap(sub)+10; i++ {
		bus.Publish(ListLoaded{SessionID: "s1", Count: i})
	}

	assert.Len(t, sub, cap(sub))
	assert.Equal(t, before+10, testutil.ToFloat64(metrics.EventsDroppedTotal))
}

func TestSessionFilter(t *testing.T) {
	bus := NewEventBus[any]()
	mine := bus.SubscribeWhere(ForSession("s1"))
	all := bus.Subscribe()

	bus.Publish(VisibilityChanged{SessionID: "s2", Visible: false})
	bus.Publish("not a session event")
	bus.Publish(PageChanged{SessionID: "s1", Page: 2, TotalPages: 3})

	require.Len(t, mine, 1)
	ev := <-mine
	assert.Equal(t, "s1", ev.(PageChanged).Session())
	assert.Len(t, all, 3)
}
