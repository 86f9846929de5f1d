package fixture

import "testing"

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		feed string
		want string
	}{
		{feed: "live", want: StatusLive},
		{feed: "ended", want: StatusEnded},
		{feed: "cancelled", want: StatusCancelled},
		{feed: "scheduled", want: StatusScheduled},
		{feed: "whatever", want: StatusScheduled},
		{feed: "", want: StatusScheduled},
	}
	for _, tt := range tests {
		if got := NormalizeStatus(tt.feed); got != tt.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.feed, got, tt.want)
		}
	}
}

func TestStatusRankIsForwardOnly(t *testing.T) {
	if !(StatusRank(StatusScheduled) < StatusRank(StatusLive)) {
		t.Error("scheduled must rank below live")
	}
	if !(StatusRank(StatusLive) < StatusRank(StatusEnded)) {
		t.Error("live must rank below ended")
	}
	// cancelled é terminal no mesmo nível de ended
	if StatusRank(StatusCancelled) != StatusRank(StatusEnded) {
		t.Error("cancelled and ended are both terminal")
	}
	if StatusRank("garbage") != -1 {
		t.Error("unknown status must rank below everything")
	}
}
