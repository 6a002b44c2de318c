package model

import "testing"

func TestDominates(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want bool
	}{
		{"strictly better both", []float64{1, 1}, []float64{2, 2}, true},
		{"equal", []float64{5, 5}, []float64{5, 5}, false},
		{"mixed", []float64{5, 10}, []float64{10, 5}, false},
		{"one better one equal", []float64{5, 5}, []float64{5, 6}, true},
		{"7,7 dominates 8,8", []float64{7, 7}, []float64{8, 8}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Dominates(c.a, c.b); got != c.want {
				t.Errorf("Dominates(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}
