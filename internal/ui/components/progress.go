package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/acompana/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label   string
	Percent float64
	Width   int

	// Caption replaces the percentage shown after the bar when set.
	Caption string
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Width:   width,
	}
}

// NewStepBar creates a bar for step current of total, captioned "3/5".
// An approximate total is captioned "3/~5".
func NewStepBar(current, total int, approximate bool, width int) ProgressBar {
	var pct float64
	if total > 0 {
		pct = float64(current) / float64(total)
	}
	caption := fmt.Sprintf("%d/%d", current, total)
	if approximate {
		caption = fmt.Sprintf("%d/~%d", current, total)
	}
	return ProgressBar{Percent: pct, Width: width, Caption: caption}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += theme.Body.Render(p.Label) + "  "
	}

	caption := p.Caption
	if caption == "" {
		caption = fmt.Sprintf("%d%%", int(p.Percent*100))
	}
	caption = "  " + caption

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(caption)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	filled = max(0, min(filled, barWidth))

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
	result += theme.Hint.UnsetItalic().Render(caption)
	return result
}
