package app

import (
	"testing"
)

func TestFinalizeTopFourShares(t *testing.T) {
	entries := Finalize(map[string]int{"A": 10, "B": 20, "C": 30, "D": 40, "E": 5})
	if len(entries) != 4 {
		t.Fatalf("expected top 4, got %d entries", len(entries))
	}
	want := map[string]int{"D": 40, "C": 30, "B": 20, "A": 10}
	for i, e := range entries {
		if e.Category == "E" {
			t.Fatalf("expected E excluded, got %+v", entries)
		}
		if e.Percentage != want[e.Category] {
			t.Fatalf("entry %d: expected %s at %d%%, got %d%%", i, e.Category, want[e.Category], e.Percentage)
		}
	}
	if entries[0].Category != "D" || entries[3].Category != "A" {
		t.Fatalf("expected descending score order, got %+v", entries)
	}
}

func TestFinalizePercentagesNormalized(t *testing.T) {
	cases := []map[string]int{
		{"A": 1},
		{"A": 3, "B": 3, "C": 3},
		{"A": 7, "B": 5, "C": 3, "D": 2, "E": 1, "F": 0},
		{"A": 1, "B": 1, "C": 1, "D": 1, "E": 1},
	}
	for _, scores := range cases {
		entries := Finalize(scores)
		sum := 0
		for _, e := range entries {
			if e.Percentage < 0 || e.Percentage > 100 {
				t.Fatalf("percentage out of range: %+v", e)
			}
			sum += e.Percentage
		}
		slack := len(entries) - 1
		if sum < 100-slack || sum > 100+slack {
			t.Fatalf("percentages sum %d outside rounding slack for %v", sum, scores)
		}
	}
}

func TestFinalizeAllZeroScores(t *testing.T) {
	entries := Finalize(map[string]int{"A": 0, "B": 0})
	for _, e := range entries {
		if e.Percentage != 0 {
			t.Fatalf("expected 0%% on zero scores, got %+v", e)
		}
	}
}

func TestFinalizeTieBreakByName(t *testing.T) {
	entries := Finalize(map[string]int{"Warrior": 5, "Jester": 5, "Sage": 5, "Lover": 5, "Magician": 5})
	want := []string{"Jester", "Lover", "Magician", "Sage"}
	for i, name := range want {
		if entries[i].Category != name {
			t.Fatalf("expected tie-break by name, got %+v", entries)
		}
	}
}
