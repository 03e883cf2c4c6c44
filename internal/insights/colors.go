package insights

// Display colors for rounded mood scores, from very negative to very positive.
const (
	ColorScore1 = "#ef4444"
	ColorScore2 = "#f97316"
	ColorScore3 = "#eab308"
	ColorScore4 = "#62f28b"
	ColorScore5 = "#048509"

	// ColorNoData marks days without entries and any score outside 1..5.
	ColorNoData = "#e2e8f0"
)

var scoreColors = [...]string{ColorScore1, ColorScore2, ColorScore3, ColorScore4, ColorScore5}

// ScoreToColor maps a rounded score to its display color.
func ScoreToColor(score int) string {
	if score < 1 || score > len(scoreColors) {
		return ColorNoData
	}
	return scoreColors[score-1]
}
