package output

import (
	"github.com/fatih/color"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Title      *color.Color
	Label      *color.Color
	Value      *color.Color
	Percentile *color.Color
	Success    *color.Color
	Warning    *color.Color
	Error      *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Title:      color.New(color.FgCyan, color.Bold),
		Label:      color.New(color.FgYellow),
		Value:      color.New(color.FgWhite),
		Percentile: color.New(color.FgBlue, color.Bold),
		Success:    color.New(color.FgGreen),
		Warning:    color.New(color.FgYellow, color.Bold),
		Error:      color.New(color.FgRed, color.Bold),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()

	scheme.Title.DisableColor()
	scheme.Label.DisableColor()
	scheme.Value.DisableColor()
	scheme.Percentile.DisableColor()
	scheme.Success.DisableColor()
	scheme.Warning.DisableColor()
	scheme.Error.DisableColor()

	return scheme
}

// WarningIcon returns a warning symbol with appropriate color
func WarningIcon(noColor bool) string {
	if noColor {
		return "⚠"
	}
	return color.New(color.FgYellow).Sprint("⚠")
}
