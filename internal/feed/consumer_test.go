package feed

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/pkg/contracts/feed"
)

func newDropCounter() (map[string]int, func(string)) {
	drops := make(map[string]int)
	return drops, func(reason string) { drops[reason]++ }
}

func TestDispatchDropsEventWithoutFixtureID(t *testing.T) {
	store := &fakeFixtureStore{}
	drops, onDropped := newDropCounter()
	c := &Consumer{
		Log:       zap.NewNop(),
		Product:   "prematch",
		Handlers:  &Handlers{Log: zap.NewNop(), Fixtures: store},
		OnDropped: onDropped,
	}

	msg := feed.Message{
		Header: feed.Header{Type: feed.TypeFixtureUpdate},
		Body: feed.Body{Events: feed.EventList{
			{Fixture: &feed.Fixture{Status: "live"}}, // sem fixture id
			{FixtureID: "sr:match:1", Fixture: &feed.Fixture{Status: "live"}},
		}},
	}
	c.dispatch(context.Background(), msg)

	if drops["no_fixture_id"] != 1 {
		t.Errorf("drops = %v, want one no_fixture_id", drops)
	}
	if len(store.upserts) != 1 {
		t.Errorf("upserts = %d, want 1 (only the keyed event)", len(store.upserts))
	}
}

func TestDispatchDropsUnknownTypeSilently(t *testing.T) {
	drops, onDropped := newDropCounter()
	c := &Consumer{
		Log:       zap.NewNop(),
		Product:   "prematch",
		Handlers:  &Handlers{Log: zap.NewNop()},
		OnDropped: onDropped,
	}

	msg := feed.Message{
		Header: feed.Header{Type: 99},
		Body:   feed.Body{Events: feed.EventList{{FixtureID: "sr:match:1"}}},
	}
	c.dispatch(context.Background(), msg)

	if drops["unknown_type"] != 1 {
		t.Errorf("drops = %v, want one unknown_type", drops)
	}
}

func TestDispatchConnectivityAlertIsLogOnly(t *testing.T) {
	store := &fakeFixtureStore{}
	drops, onDropped := newDropCounter()
	c := &Consumer{
		Log:       zap.NewNop(),
		Product:   "inplay",
		Handlers:  &Handlers{Log: zap.NewNop(), Fixtures: store},
		OnDropped: onDropped,
	}

	msg := feed.Message{
		Header: feed.Header{Type: feed.TypeConnectivityAlert},
		Body:   feed.Body{Events: feed.EventList{{FixtureID: "sr:match:1"}}},
	}
	c.dispatch(context.Background(), msg)

	if len(drops) != 0 || len(store.upserts) != 0 {
		t.Errorf("connectivity alert must not dispatch or drop: drops=%v upserts=%d",
			drops, len(store.upserts))
	}
}
