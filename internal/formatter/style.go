package formatter

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var labelColors = map[string]string{
	KindHex:     "#10B981",
	KindBinary:  "#3B82F6",
	KindOctal:   "#F59E0B",
	KindDecimal: "#A855F7",
}

// LabelStyle returns the label style for kind, bound to a renderer for w so
// color output follows w's terminal capabilities.
func LabelStyle(w io.Writer, kind string) lipgloss.Style {
	return LabelStyleFor(lipgloss.NewRenderer(w), kind)
}

// LabelStyleFor returns the label style for kind using renderer r.
func LabelStyleFor(r *lipgloss.Renderer, kind string) lipgloss.Style {
	style := r.NewStyle().Bold(true)
	if c, ok := labelColors[kind]; ok {
		style = style.Foreground(lipgloss.Color(c))
	}
	return style
}
