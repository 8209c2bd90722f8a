package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/scrumebox/scrume/internal/models"
)

// UI provides colored output and respects verbose mode.
type UI struct {
	Verbose bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
	magenta       = color.New(color.FgHiMagenta).SprintFunc()
	gray          = color.New(color.FgHiBlack).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Green returns a green-colored string.
func Green(s string) string { return green(s) }

// Yellow returns a yellow-colored string.
func Yellow(s string) string { return yellow(s) }

// Red returns a red-colored string.
func Red(s string) string { return red(s) }

// SprintStatusColor returns the sprint status colored for display.
func SprintStatusColor(status models.SprintStatus) string {
	s := string(status)
	switch status {
	case models.SprintPlanning:
		return yellow(s)
	case models.SprintActive:
		return green(s)
	case models.SprintCompleted:
		return cyan(s)
	case models.SprintCancelled:
		return red(s)
	default:
		return s
	}
}

// StoryStatusColor returns the story status colored for display.
func StoryStatusColor(status models.StoryStatus) string {
	s := string(status)
	switch status {
	case models.StoryTodo:
		return gray(s)
	case models.StoryInProgress:
		return yellow(s)
	case models.StoryDone:
		return green(s)
	default:
		return s
	}
}

// PriorityColor returns the priority name colored by urgency.
func PriorityColor(p models.Priority) string {
	s := p.String()
	switch p {
	case models.PriorityLow:
		return green(s)
	case models.PriorityMedium:
		return cyan(s)
	case models.PriorityHigh:
		return yellow(s)
	case models.PriorityCritical:
		return red(s)
	default:
		return s
	}
}

// RoleColor returns the role name colored for display.
func RoleColor(r models.Role) string {
	s := string(r)
	switch r {
	case models.RoleProductOwner:
		return yellow(s)
	case models.RoleScrumMaster:
		return magenta(s)
	case models.RoleDeveloper:
		return cyan(s)
	case models.RoleDesigner:
		return green(s)
	case models.RoleTester:
		return red(s)
	default:
		return s
	}
}

// ProgressBar renders a fixed-width bar for a percentage in [0,100].
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		width = 20
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent/100*float64(width) + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3.0f%%", bar, percent)
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
