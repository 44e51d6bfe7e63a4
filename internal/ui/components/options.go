package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/acompana/internal/ui/theme"
)

// OptionList renders numbered answer options. Keys are 1-based.
type OptionList struct {
	Options  []string
	Selected map[int]bool // 0-based indices to highlight
}

// View renders one option per line.
func (l OptionList) View() string {
	var b strings.Builder
	for i, opt := range l.Options {
		key := theme.OptionKey.Render(fmt.Sprintf("%2d)", i+1))
		text := theme.Body.Render(opt)
		if l.Selected[i] {
			text = theme.Selected.Render(opt + " ✓")
		}
		b.WriteString(key + " " + text)
		if i < len(l.Options)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// ParseKeys turns input such as "1", "2 3" or "1,3" into 0-based indices.
// It fails on anything outside 1..n.
func ParseKeys(input string, n int) ([]int, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("elige una opción entre 1 y %d", n)
	}
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		k, err := strconv.Atoi(f)
		if err != nil || k < 1 || k > n {
			return nil, fmt.Errorf("%q no es una opción válida (1-%d)", f, n)
		}
		out = append(out, k-1)
	}
	return out, nil
}
