package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	GradientTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(12)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// GradientText creates a gradient effect on text using color interpolation
func GradientText(text string, startColor, endColor lipgloss.Color) string {
	if len(text) == 0 {
		return ""
	}

	// Parse hex colors
	sr, sg, sb := parseHex(string(startColor))
	er, eg, eb := parseHex(string(endColor))

	var result strings.Builder
	n := len(text)

	for i, c := range text {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		r := int(float64(sr) + t*float64(er-sr))
		g := int(float64(sg) + t*float64(eg-sg))
		b := int(float64(sb) + t*float64(eb-sb))

		color := lipgloss.Color(hexColor(r, g, b))
		style := lipgloss.NewStyle().Foreground(color)
		result.WriteString(style.Render(string(c)))
	}

	return result.String()
}

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// SliderBar renders value within [lo, hi] as a filled bar.
func SliderBar(value, lo, hi, width int) string {
	frac := 0.0
	if hi > lo {
		frac = float64(value-lo) / float64(hi-lo)
	}
	filled := max(0, min(width, int(math.Round(frac*float64(width)))))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case frac > 0.8:
		return SparkLow.Render(bar)
	case frac > 0.4:
		return SparkMid.Render(bar)
	}
	return SparkHigh.Render(bar)
}

// Sparkline renders the last width values, scaled to their own range.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return Subtle.Render(strings.Repeat("─", width))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var result strings.Builder
	for _, v := range values {
		norm := (v - lo) / span
		c := string(chars[max(0, min(len(chars)-1, int(norm*float64(len(chars)-1))))])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}
	return result.String()
}

// parseHex reads #rrggbb, falling back to white.
func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 255, 255, 255
	}
	return int(v>>16&0xff), int(v>>8&0xff), int(v&0xff)
}

func hexColor(r, g, b int) string {
	clamp := func(v int) int { return max(0, min(255, v)) }
	return fmt.Sprintf("#%02x%02x%02x", clamp(r), clamp(g), clamp(b))
}
