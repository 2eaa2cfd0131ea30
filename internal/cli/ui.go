package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/pipeline"
)

var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	accentStyle  = lipgloss.NewStyle().Foreground(purple)
	successStyle = lipgloss.NewStyle().Foreground(green)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
)

func SuccessMsg(format string, a ...any) string {
	return successStyle.Render("✓") + " " + fmt.Sprintf(format, a...)
}

func ErrorMsg(format string, a ...any) string {
	return errorStyle.Render("✗") + " " + fmt.Sprintf(format, a...)
}

func InfoMsg(format string, a ...any) string {
	return accentStyle.Render("●") + " " + fmt.Sprintf(format, a...)
}

// renderTable renders a styled table with rounded borders.
func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	oddStyle := cellStyle.Foreground(dim)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return cellStyle
			default:
				return oddStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}

func stepName(kind pipeline.StepKind, label string) string {
	if label == "" {
		return string(kind)
	}
	return string(kind) + "." + label
}

// ResultsTable renders a result log in the order it was produced.
func ResultsTable(results []pipeline.Result) string {
	rows := make([][]string, len(results))
	for i, r := range results {
		out := r.Out
		if out == "" {
			out = "-"
		}
		var value, size string
		switch v := r.Value.(type) {
		case *artifact.Artifact:
			value = fmt.Sprintf("%s %dx%d", v.Format, v.Width, v.Height)
			size = humanize.Bytes(uint64(v.Size()))
		case *artifact.SaveResult:
			value = fmt.Sprintf("%s (%s)", v.Location, v.Provider)
			size = humanize.Bytes(uint64(v.Size))
		default:
			value, size = "-", "-"
		}
		rows[i] = []string{
			strconv.Itoa(r.Index),
			stepName(r.Kind, r.Label),
			out,
			value,
			size,
			r.Duration.Round(time.Millisecond).String(),
		}
	}
	return renderTable([]string{"#", "Step", "Out", "Result", "Size", "Took"}, rows)
}

// PlanTable renders the waves of a pipeline, one row per step.
func PlanTable(waves []pipeline.Wave) string {
	var rows [][]string
	for w, wave := range waves {
		for _, node := range wave {
			needs := strings.Join(node.DependencyNames(), ", ")
			if needs == "" {
				needs = "-"
			}
			produces := strings.Join(node.Outputs, ", ")
			if produces == "" {
				produces = "-"
			}
			rows = append(rows, []string{
				strconv.Itoa(w + 1),
				strconv.Itoa(node.Index),
				stepName(node.Step.Kind(), node.Step.Label()),
				needs,
				produces,
			})
		}
	}
	return renderTable([]string{"Wave", "#", "Step", "Needs", "Produces"}, rows)
}
