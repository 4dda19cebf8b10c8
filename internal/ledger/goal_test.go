package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"rastreador/internal/core"
)

func goal(target, current string) core.Goal {
	t, err := core.ParseAmount(target)
	if err != nil {
		panic(err)
	}
	c, err := core.ParseAmount(current)
	if err != nil {
		panic(err)
	}
	return core.Goal{
		Name:    "Vacation",
		Target:  t,
		Current: c,
		Start:   core.NewDate(2025, 1, 1),
		End:     core.NewDate(2025, 12, 31),
	}
}

func TestProgressOf(t *testing.T) {
	cases := []struct {
		target, current string
		percent         float64
		complete        bool
	}{
		{"500.00", "500.00", 100, true},
		{"500.00", "250.00", 50, false},
		{"500.00", "0", 0, false},
		{"400.00", "500.00", 125, true},
	}
	for _, tc := range cases {
		p := ProgressOf(goal(tc.target, tc.current))
		if p.Percent != tc.percent {
			t.Fatalf("progress(%s/%s) = %v, want %v", tc.current, tc.target, p.Percent, tc.percent)
		}
		if p.Complete != tc.complete {
			t.Fatalf("complete(%s/%s) = %v, want %v", tc.current, tc.target, p.Complete, tc.complete)
		}
	}
}

func TestProgressOfZeroTarget(t *testing.T) {
	g := goal("500.00", "100.00")
	g.Target = decimal.Zero

	if p := ProgressOf(g); p.Percent != 0 || p.Complete {
		t.Fatalf("zero target: got %+v, want 0%% incomplete", p)
	}
}

func TestProgressDisplayClamped(t *testing.T) {
	p := ProgressOf(goal("400.00", "500.00"))
	if p.Display() != 100 {
		t.Fatalf("display = %v, want 100", p.Display())
	}
	p = ProgressOf(goal("400.00", "100.00"))
	if p.Display() != 25 {
		t.Fatalf("display = %v, want 25", p.Display())
	}
}
