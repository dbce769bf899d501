package rules

import (
	"testing"

	"github.com/abhasgawali/neon-domination/internal/domain/player"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		in   string
		want Action
		ok   bool
	}{
		{"capture", ActionCapture, true},
		{"conquer", ActionCapture, true},
		{"trap", ActionTrap, true},
		{"mine", ActionTrap, true},
		{"shield", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseAction(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseAction(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCosts(t *testing.T) {
	if CostOf(ActionCapture) != 10 || CostOf(ActionTrap) != 60 {
		t.Errorf("unexpected action costs")
	}
	if DetonationCost() != 40 {
		t.Errorf("DetonationCost = %d, want 40", DetonationCost())
	}
}

func TestPickWinner(t *testing.T) {
	mk := func(id string, score, energy int) *player.Player {
		return &player.Player{ID: id, Name: id, Score: score, Energy: energy}
	}

	if PickWinner(nil) != nil {
		t.Errorf("expected no winner for an empty room")
	}

	cases := []struct {
		name    string
		players []*player.Player
		want    string
	}{
		{"highest score", []*player.Player{mk("a", 3, 0), mk("b", 5, 0)}, "b"},
		{"energy breaks ties", []*player.Player{mk("a", 4, 20), mk("b", 4, 30)}, "b"},
		{"exact tie keeps first", []*player.Player{mk("a", 4, 30), mk("b", 4, 30)}, "a"},
		{"score beats energy", []*player.Player{mk("a", 2, 500), mk("b", 3, 0)}, "b"},
		{"zero scores still pick someone", []*player.Player{mk("a", 0, 0)}, "a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PickWinner(tc.players)
			if got == nil || got.ID != tc.want {
				t.Fatalf("PickWinner = %v, want %s", got, tc.want)
			}
		})
	}
}

func TestBotCount(t *testing.T) {
	cases := []struct{ seated, capacity, want int }{
		{1, 4, 3},
		{2, 4, 2},
		{4, 4, 0},
		{0, 8, 3},
		{5, 4, 0},
	}
	for _, tc := range cases {
		if got := BotCount(tc.seated, tc.capacity); got != tc.want {
			t.Errorf("BotCount(%d, %d) = %d, want %d", tc.seated, tc.capacity, got, tc.want)
		}
	}
}
