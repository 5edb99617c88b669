package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pipedag/pkg/graph"
	"github.com/matzehuels/pipedag/pkg/validate"
)

// stdout receives all human-readable command output.
var stdout io.Writer = os.Stdout

// Terminal palette (ANSI 256).
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorBright = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

// Styles shared with the editor view.
var (
	StyleTitle   = fg(colorAccent).Bold(true)
	StyleDim     = fg(colorFaint)
	StyleValue   = fg(colorBright)
	StyleSuccess = fg(colorOK)
	StyleWarning = fg(colorWarn)
	StyleError   = fg(colorFail)
)

var (
	styleIconSpinner = fg(colorAccent)
	styleIconError   = fg(colorFail)
	styleCached      = fg(colorOK)
	styleComputed    = fg(colorMuted)
	styleCommand     = fg(colorLink)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Lines
// =============================================================================

// status writes "<icon> <msg>" to stdout.
func status(icon string, iconStyle lipgloss.Style, msg string) {
	fmt.Fprintln(stdout, iconStyle.Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	status(iconSuccess, fg(colorOK), fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	status(iconError, styleIconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	status(iconWarning, fg(colorWarn), StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	status(iconInfo, fg(colorMuted), fmt.Sprintf(format, args...))
}

// printDetail writes an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile names a file the command wrote.
func printFile(path string) {
	fmt.Fprintf(stdout, "  %s %s\n", StyleDim.Render(iconArrow), StyleValue.Render(path))
}

// =============================================================================
// Validation Output
// =============================================================================

// printValidation prints the banner and one line per violated rule.
func printValidation(res validate.Result) {
	if res.Valid {
		printSuccess("%s", res.Banner())
		return
	}
	printError("%s", StyleError.Render(res.Banner()))
	for _, rule := range res.Violations {
		printDetail("%s  %s", rule.Message(), "("+rule.String()+")")
	}
}

// =============================================================================
// Node Badges
// =============================================================================

// badge renders a node type as a colored tag.
func badge(t graph.NodeType) string {
	t = t.Normalize()
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ffffff")).
		Background(lipgloss.Color(t.Color())).
		Padding(0, 1)
	if t == graph.TypeWarning {
		style = style.Foreground(lipgloss.Color("#000000"))
	}
	return style.Render(t.Badge())
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints graph statistics on a single line. cached is nil when
// the command does not use the cache.
func printStats(nodeCount, edgeCount int, cached *bool) {
	parts := []string{
		StyleDim.Render(plural(nodeCount, "node")),
		StyleDim.Render(plural(edgeCount, "edge")),
	}
	if cached != nil {
		if *cached {
			parts = append(parts, styleCached.Render(iconCached))
		} else {
			parts = append(parts, styleComputed.Render(iconFresh))
		}
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Fprintln(stdout)
}
