package components

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBarWidth(t *testing.T) {
	for _, pct := range []float64{-1, 0, 0.4, 1, 3} {
		bar := NewProgressBar("Progreso", pct, 40).View()
		assert.Equal(t, 40, lipgloss.Width(bar), "percent %v", pct)
	}
}

func TestStepBarCaption(t *testing.T) {
	assert.Contains(t, NewStepBar(3, 5, false, 30).View(), "3/5")
	assert.Contains(t, NewStepBar(2, 7, true, 30).View(), "2/~7")
	assert.NotPanics(t, func() { NewStepBar(0, 0, false, 10).View() })
}

func TestOptionList(t *testing.T) {
	v := OptionList{Options: []string{"Sí", "No"}, Selected: map[int]bool{1: true}}.View()
	lines := strings.Split(v, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "1)")
	assert.Contains(t, lines[0], "Sí")
	assert.Contains(t, lines[1], "✓")
}

func TestParseKeys(t *testing.T) {
	got, err := ParseKeys("1, 3", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got)

	got, err = ParseKeys(" 2 ", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)

	for _, bad := range []string{"", "0", "4", "dos", "1,,x"} {
		_, err := ParseKeys(bad, 3)
		assert.Error(t, err, "input %q", bad)
	}
}
