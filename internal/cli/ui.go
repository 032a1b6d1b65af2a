package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. Numbers are ANSI 256 colors.
var (
	colorAccent = lipgloss.Color("36")  // teal: spinner, fork counts
	colorOK     = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber: unreachable regions
	colorFail   = lipgloss.Color("167") // soft red
	colorValue  = lipgloss.Color("255")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

var (
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
	styleValue = lipgloss.NewStyle().Foreground(colorValue)
	styleWarn  = lipgloss.NewStyle().Foreground(colorWarn)
	styleKey   = lipgloss.NewStyle().Foreground(colorLabel).Width(12)

	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCached  = lipgloss.NewStyle().Foreground(colorOK)
	styleFresh   = lipgloss.NewStyle().Foreground(colorLabel)

	// Line markers.
	markOK   = lipgloss.NewStyle().Foreground(colorOK).Render("✓")
	markFail = lipgloss.NewStyle().Foreground(colorFail).Render("✗")
	markWarn = lipgloss.NewStyle().Foreground(colorWarn).Render("!")
	markInfo = lipgloss.NewStyle().Foreground(colorLabel).Render("›")
)

// line writes a marked status line.
func line(w io.Writer, mark, text string) {
	fmt.Fprintln(w, mark+" "+text)
}

func printSuccess(w io.Writer, format string, args ...any) {
	line(w, markOK, fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	line(w, markFail, fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	line(w, markWarn, styleWarn.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	line(w, markInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented muted line under a status line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+styleMuted.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written output file.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+styleMuted.Render("→")+" "+styleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats summarizes one routed scene:
//
//	2 links · 5 regions · 1 unreachable · cached
func printStats(w io.Writer, links, regions, unreachable int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d links", links),
		fmt.Sprintf("%d regions", regions),
	}
	if unreachable > 0 {
		parts = append(parts, styleWarn.Render(fmt.Sprintf("%d unreachable", unreachable)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleFresh.Render("fresh"))
	}
	fmt.Fprintln(w, "  "+strings.Join(parts, styleMuted.Render(" · ")))
}

// humanBytes formats n with a binary unit, e.g. "1.5 MiB".
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
