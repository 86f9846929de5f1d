package feed

import (
	"encoding/json"
	"testing"
)

func TestEventListAcceptsObjectOrArray(t *testing.T) {
	t.Run("events como lista", func(t *testing.T) {
		raw := `{"header":{"type":3,"serverTimestamp":1700000000000},
			"body":{"events":[{"fixtureId":"a"},{"fixtureId":"b"}]}}`
		var msg Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(msg.Body.Events) != 2 {
			t.Fatalf("events = %d, want 2", len(msg.Body.Events))
		}
		if msg.Body.Events[1].FixtureID != "b" {
			t.Errorf("second event = %+v", msg.Body.Events[1])
		}
	})

	t.Run("events como objeto único", func(t *testing.T) {
		raw := `{"header":{"type":1},"body":{"events":{"fixtureId":"a"}}}`
		var msg Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(msg.Body.Events) != 1 || msg.Body.Events[0].FixtureID != "a" {
			t.Fatalf("events = %+v, want single event a", msg.Body.Events)
		}
	})
}

func TestMarketListAcceptsObjectOrArray(t *testing.T) {
	t.Run("markets como objeto único", func(t *testing.T) {
		raw := `{"fixtureId":"a","markets":{"id":"1x2","providers":[{"bets":[{"name":"1","price":2.1,"status":1}]}]}}`
		var ev Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(ev.Markets) != 1 || ev.Markets[0].ID != "1x2" {
			t.Fatalf("markets = %+v", ev.Markets)
		}
		if ev.Markets[0].Providers[0].Bets[0].Price != 2.1 {
			t.Errorf("bet = %+v", ev.Markets[0].Providers[0].Bets[0])
		}
	})

	t.Run("markets como lista", func(t *testing.T) {
		raw := `{"fixtureId":"a","markets":[{"id":"1x2"},{"id":"over_under"}]}`
		var ev Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(ev.Markets) != 2 {
			t.Fatalf("markets = %d, want 2", len(ev.Markets))
		}
	})
}
