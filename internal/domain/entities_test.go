package domain_test

import (
	"testing"

	"github.com/openfinbr/conciliador/internal/domain"
)

func TestClampScore(t *testing.T) {
	evidence := func(contribs ...int) []domain.Evidence {
		out := make([]domain.Evidence, len(contribs))
		for i, c := range contribs {
			out[i] = domain.Evidence{Feature: "f", Contribution: c}
		}
		return out
	}

	cases := []struct {
		name      string
		score     int
		contribs  []int
		wantScore int
		wantLast  []int
	}{
		{"under the cap", 85, []int{50, 35}, 85, []int{50, 35}},
		{"exactly at the cap", 100, []int{50, 35, 15}, 100, []int{50, 35, 15}},
		{"overage within the last entry", 107, []int{50, 35, 12, 10}, 100, []int{50, 35, 12, 3}},
		{"overage consumes the last entry", 110, []int{50, 35, 15, 10}, 100, []int{50, 35, 15, 0}},
		{"overage spans several entries", 120, []int{50, 40, 20, 10}, 100, []int{50, 40, 10, 0}},
	}
	for _, tc := range cases {
		score, ev := domain.ClampScore(tc.score, evidence(tc.contribs...))
		if score != tc.wantScore {
			t.Errorf("%s: score = %d, want %d", tc.name, score, tc.wantScore)
		}
		sum := 0
		for i, e := range ev {
			sum += e.Contribution
			if e.Contribution != tc.wantLast[i] {
				t.Errorf("%s: contribution[%d] = %d, want %d", tc.name, i, e.Contribution, tc.wantLast[i])
			}
			if e.Contribution < 0 {
				t.Errorf("%s: contribution[%d] went negative", tc.name, i)
			}
		}
		if sum != score {
			t.Errorf("%s: contributions sum to %d, score is %d", tc.name, sum, score)
		}
	}
}
