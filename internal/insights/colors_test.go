package insights

import "testing"

func TestScoreToColor(t *testing.T) {
	cases := map[int]string{
		1:  "#ef4444",
		2:  "#f97316",
		3:  "#eab308",
		4:  "#62f28b",
		5:  "#048509",
		0:  "#e2e8f0",
		6:  "#e2e8f0",
		-1: "#e2e8f0",
	}
	for score, want := range cases {
		if got := ScoreToColor(score); got != want {
			t.Errorf("ScoreToColor(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestScoreColorsAreDistinct(t *testing.T) {
	seen := map[string]int{ColorNoData: 0}
	for score := 1; score <= 5; score++ {
		c := ScoreToColor(score)
		if prev, ok := seen[c]; ok {
			t.Fatalf("score %d shares color %s with %d", score, c, prev)
		}
		seen[c] = score
	}
}
