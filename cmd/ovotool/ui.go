package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/Faultbox/ovokit/internal/report"
	"github.com/Faultbox/ovokit/pkg/scene"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)

	kindStyles = map[scene.Kind]lipgloss.Style{
		scene.KindNode:  lipgloss.NewStyle().Bold(true),
		scene.KindMesh:  lipgloss.NewStyle().Foreground(colorGreen),
		scene.KindLight: lipgloss.NewStyle().Foreground(colorYellow),
	}
	styleRoot = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
)

func printField(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%s %v\n", styleLabel.Render(fmt.Sprintf("%-10s", label+":")), value)
}

func printWarnings(w io.Writer, warns []report.Warning) {
	for _, wr := range warns {
		fmt.Fprintf(w, "  %s %s\n", styleWarning.Render(iconWarning), wr)
	}
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", styleSuccess.Render(iconSuccess), fmt.Sprintf(format, args...))
}
