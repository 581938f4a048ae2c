package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/piiscan/internal/engine"
	"github.com/dbsmedya/piiscan/internal/types"
)

const maxErrorPreview = 70

// Console renders human readable summaries.
type Console struct {
	w      io.Writer
	colors bool
}

// NewConsole creates a console printer. Colors are only emitted when
// colors is true.
func NewConsole(w io.Writer, colors bool) *Console {
	return &Console{w: w, colors: colors}
}

func (c *Console) paint(col color.Color, s string) string {
	if !c.colors {
		return s
	}
	return col.Sprint(s)
}

func riskColor(level types.RiskLevel) color.Color {
	switch level {
	case types.RiskHigh:
		return color.FgRed
	case types.RiskMedium:
		return color.FgYellow
	case types.RiskLow:
		return color.FgGreen
	case types.RiskError:
		return color.FgMagenta
	default:
		return color.FgDarkGray
	}
}

func severityColor(s Severity) color.Color {
	switch s {
	case SeverityCritical:
		return color.FgRed
	case SeverityWarning:
		return color.FgYellow
	default:
		return color.FgGreen
	}
}

// header prints a formatted header
func (c *Console) header(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := runewidth.StringWidth(title) + 4
	fmt.Fprintln(c.w, strings.Repeat("=", width))
	fmt.Fprintf(c.w, "  %s\n", c.paint(color.OpBold, title))
	fmt.Fprintln(c.w, strings.Repeat("=", width))
}

// section prints a section header
func (c *Console) section(title string) {
	fmt.Fprintf(c.w, "[%s]\n", title)
	fmt.Fprintln(c.w, strings.Repeat("-", runewidth.StringWidth(title)+2))
}

// ScanSummary prints the outcome of a scan run.
func (c *Console) ScanSummary(res *engine.ScanResult) {
	s := res.Summary

	c.header("Privacy Scan Summary")
	fmt.Fprintln(c.w)
	c.section("Run")
	fmt.Fprintf(c.w, "  Run ID:      %s\n", res.RunID)
	fmt.Fprintf(c.w, "  Duration:    %s\n", res.Duration().Round(time.Millisecond))
	fmt.Fprintf(c.w, "  Containers:  %d\n", len(res.Containers))
	if res.Cancelled {
		fmt.Fprintf(c.w, "  Status:      %s\n", c.paint(color.FgYellow, "cancelled (partial result)"))
	}

	fmt.Fprintln(c.w)
	c.section("Tables")
	fmt.Fprintf(c.w, "  Total:       %s\n", formatCount(int64(s.TotalTables)))
	for _, row := range []struct {
		level types.RiskLevel
		n     int
	}{
		{types.RiskHigh, s.HighRiskTables},
		{types.RiskMedium, s.MediumRiskTables},
		{types.RiskLow, s.LowRiskTables},
		{types.RiskEmpty, s.EmptyTables},
		{types.RiskError, s.ErrorTables},
	} {
		label := runewidth.FillRight(string(row.level)+":", 12)
		fmt.Fprintf(c.w, "  %s %s\n", c.paint(riskColor(row.level), label), formatCount(int64(row.n)))
	}
	fmt.Fprintf(c.w, "  Large:       %s\n", formatCount(int64(s.LargeTables)))
	fmt.Fprintf(c.w, "  Rows:        %s (sampled %s)\n", formatCount(s.TotalDataRows), formatCount(s.TotalSampledRows))

	for _, cs := range res.Containers {
		if cs.Error != "" {
			fmt.Fprintln(c.w)
			c.section("Container Errors")
			break
		}
	}
	for _, cs := range res.Containers {
		if cs.Error != "" {
			fmt.Fprintf(c.w, "  - %s: %s\n", cs.Container, preview(cs.Error))
		}
	}

	risky := RiskyTables(res.Containers)
	fmt.Fprintln(c.w)
	if len(risky) == 0 {
		fmt.Fprintln(c.w, c.paint(color.FgGreen, "No HIGH or MEDIUM risk tables found."))
		return
	}

	c.section("Tables To Review")
	t := &grid{
		headers: []string{"#", "Container", "Table", "Score", "Risk", "Sampled", "Categories"},
		right:   map[int]bool{0: true, 3: true, 5: true},
	}
	for i, r := range risky {
		t.rows = append(t.rows, []string{
			strconv.Itoa(i + 1),
			r.Container,
			r.Table,
			strconv.Itoa(r.Score),
			string(r.Level),
			fmt.Sprintf("%d/%s", r.SampledRows, formatCount(r.TotalRows)),
			strings.Join(r.Categories, ","),
		})
	}
	t.paint = func(row, col int, cell string) string {
		if col == 4 {
			return c.paint(riskColor(risky[row].Level), cell)
		}
		return cell
	}
	t.render(c.w)
}

// PreviewSummary prints a preview with its cost review.
func (c *Console) PreviewSummary(res *engine.PreviewResult) {
	s := res.Summary

	c.header("Structure Analysis")
	fmt.Fprintln(c.w)
	c.section("Scope")
	names := make([]string, 0, len(res.Containers))
	for _, a := range res.Containers {
		names = append(names, a.Container)
	}
	fmt.Fprintf(c.w, "  Containers:  %d (%s)\n", len(names), strings.Join(names, ", "))
	fmt.Fprintf(c.w, "  Tables:      %s\n", formatCount(int64(s.TotalTables)))
	fmt.Fprintf(c.w, "    %s %s\n", c.paint(color.FgGreen, "scannable:"), formatCount(int64(s.ScannableTables)))
	if s.EmptyTables > 0 {
		fmt.Fprintf(c.w, "    %s     %s\n", c.paint(color.FgDarkGray, "empty:"), formatCount(int64(s.EmptyTables)))
	}
	if s.ErrorTables > 0 {
		fmt.Fprintf(c.w, "    %s     %s\n", c.paint(color.FgRed, "error:"), formatCount(int64(s.ErrorTables)))
	}
	fmt.Fprintf(c.w, "  Rows:        %s\n", formatCount(s.TotalRows))
	fmt.Fprintf(c.w, "  Columns:     %s (%s text)\n", formatCount(int64(s.TotalColumns)), formatCount(int64(s.TotalTextColumns)))
	fmt.Fprintf(c.w, "  Large:       %s\n", formatCount(int64(s.LargeTables)))

	fmt.Fprintln(c.w)
	c.section("Estimated Cost")
	fmt.Fprintf(c.w, "  Sample memory: %.2f MB\n", s.EstimatedTotalMB)
	fmt.Fprintf(c.w, "  Scan time:     %s (%.2fs)\n", EstimatedDuration(s.EstimatedTotalScanSec), s.EstimatedTotalScanSec)

	c.printSkipped(res.Containers)

	costly := CostTables(res.Containers)
	fmt.Fprintln(c.w)
	if len(costly) == 0 {
		fmt.Fprintln(c.w, c.paint(color.FgGreen, "No large or slow tables."))
	} else {
		c.section(fmt.Sprintf("Tables To Review (top %d)", MaxReviewTables))
		t := &grid{
			headers: []string{"#", "Container", "Table", "Rows", "Time (sec)"},
			right:   map[int]bool{0: true, 3: true, 4: true},
		}
		for i, ct := range costly {
			if i == MaxReviewTables {
				break
			}
			t.rows = append(t.rows, []string{
				strconv.Itoa(i + 1),
				ct.Container,
				ct.Table,
				formatCount(ct.Rows),
				strconv.FormatFloat(ct.Sec, 'f', 2, 64),
			})
		}
		t.render(c.w)
		if len(costly) > MaxReviewTables {
			fmt.Fprintf(c.w, "  ... and %d more\n", len(costly)-MaxReviewTables)
		}
	}

	fmt.Fprintln(c.w)
	c.section("Recommendations")
	for _, r := range Recommend(s) {
		tag := runewidth.FillRight("["+r.Area+"]", 9)
		fmt.Fprintf(c.w, "  %s %s\n", c.paint(severityColor(r.Severity), tag), r.Message)
	}
}

func (c *Console) printSkipped(containers []engine.StructureAnalysis) {
	var empty, failed []string
	for _, a := range containers {
		if a.Error != "" {
			failed = append(failed, a.Container+": "+preview(a.Error))
		}
		a.Tables.Each(func(name string, t engine.TableEstimate) {
			switch t.Status {
			case engine.StatusEmpty:
				empty = append(empty, a.Container+"."+name)
			case engine.StatusError:
				failed = append(failed, a.Container+"."+name+": "+preview(t.Error))
			}
		})
	}
	if len(empty) == 0 && len(failed) == 0 {
		return
	}

	fmt.Fprintln(c.w)
	c.section("Skipped")
	c.list("empty", empty)
	c.list("error", failed)
}

func (c *Console) list(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(c.w, "  %s (%d)\n", label, len(items))
	for i, it := range items {
		if i == 5 {
			fmt.Fprintf(c.w, "    ... and %d more\n", len(items)-5)
			break
		}
		fmt.Fprintf(c.w, "    - %s\n", it)
	}
}

// Containers prints the user and system containers of a server.
func (c *Console) Containers(user, system []string) {
	c.section(fmt.Sprintf("User Containers (%d)", len(user)))
	for _, n := range user {
		fmt.Fprintf(c.w, "  %s\n", n)
	}
	fmt.Fprintln(c.w)
	c.section(fmt.Sprintf("System Containers (%d, skipped by default)", len(system)))
	for _, n := range system {
		fmt.Fprintf(c.w, "  %s\n", c.paint(color.FgDarkGray, n))
	}
}

// preview flattens and shortens an error message.
func preview(msg string) string {
	msg = strings.TrimSpace(strings.ReplaceAll(msg, "\n", " "))
	return runewidth.Truncate(msg, maxErrorPreview, "...")
}

// formatCount renders n with thousands separators.
func formatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// grid renders aligned columns. Widths are display widths, so Korean or
// other wide identifiers line up.
type grid struct {
	headers []string
	rows    [][]string
	right   map[int]bool
	paint   func(row, col int, cell string) string
}

func (g *grid) render(w io.Writer) {
	widths := make([]int, len(g.headers))
	for i, h := range g.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range g.rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	line := func(cells []string, rowIdx int) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			if g.right[i] {
				parts[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				parts[i] = runewidth.FillRight(cell, widths[i])
			}
			if rowIdx >= 0 && g.paint != nil {
				parts[i] = g.paint(rowIdx, i, parts[i])
			}
		}
		fmt.Fprintf(w, "  %s\n", strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	total := 0
	for _, wd := range widths {
		total += wd + 2
	}
	line(g.headers, -1)
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", total-2))
	for i, row := range g.rows {
		line(row, i)
	}
}
