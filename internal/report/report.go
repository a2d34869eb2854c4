// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report turns a RunReport into the user-facing summary and the
// process exit code.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/ffx/internal/color"
	"github.com/matt-FFFFFF/ffx/internal/runbatch"
	"github.com/matt-FFFFFF/ffx/internal/tool"
)

// Exit codes. ExitConfigError is produced before any formatter runs.
const (
	ExitSuccess           = 0
	ExitFormatterFailure  = 1
	ExitConfigError       = 2
	ExitExecutableMissing = 3
)

// maxAnnotationLines bounds the formatter output shown for a failed batch
// in non-verbose mode.
const maxAnnotationLines = 10

// Final status lines.
const (
	MsgSuccess = "All formatters succeeded"
	MsgFailed  = "Some formatters failed"
	MsgMissing = "Some formatters were not found"
)

// Output is the rendered report.
type Output struct {
	Summary  string // For stdout
	Details  string // For stderr: missing executables, runner errors and, when verbose, commands and full output
	ExitCode int
}

// ExitCode maps an outcome to the process exit code.
func ExitCode(o runbatch.Outcome) int {
	switch o {
	case runbatch.OutcomeExecutableMissing:
		return ExitExecutableMissing
	case runbatch.OutcomeFormatterFailure:
		return ExitFormatterFailure
	default:
		return ExitSuccess
	}
}

// Plural renders "1 file" or "n files".
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}

	suffix := "s"
	for _, end := range []string{"ch", "sh", "s", "x"} {
		if strings.HasSuffix(noun, end) {
			suffix = "es"
			break
		}
	}

	return fmt.Sprintf("%d %s%s", n, noun, suffix)
}

// ToolResults groups one tool's results.
type ToolResults struct {
	Tool    tool.Spec
	Results []*runbatch.BatchResult
}

// Files is the number of files attempted for the tool.
func (t ToolResults) Files() int {
	n := 0
	for _, r := range t.Results {
		n += len(r.Batch.Files)
	}

	return n
}

// Count returns how many of the tool's results have status s.
func (t ToolResults) Count(s runbatch.Status) int {
	n := 0

	for _, r := range t.Results {
		if r.Status == s {
			n++
		}
	}

	return n
}

// ByTool groups results by tool, keeping plan order.
func ByTool(results []*runbatch.BatchResult) []ToolResults {
	var out []ToolResults

	for _, r := range results {
		if len(out) == 0 || out[len(out)-1].Results[0].Batch.ToolIndex != r.Batch.ToolIndex {
			out = append(out, ToolResults{Tool: r.Batch.Tool})
		}

		out[len(out)-1].Results = append(out[len(out)-1].Results, r)
	}

	return out
}

var headerStyle = lipgloss.NewStyle().Bold(true)

func header(s string) string {
	if !color.Enabled() {
		return s
	}

	return headerStyle.Render(s)
}

// Render builds the summary and details for r.
func Render(r *runbatch.RunReport, verbose bool) Output {
	var summary, details strings.Builder

	verb := "Formatted"
	if r.Mode == tool.ModeCheck {
		verb = "Checked"
	}

	for _, tr := range ByTool(r.Results) {
		writeTool(&summary, &details, tr, verb, verbose)
	}

	if r.NotAttempted > 0 {
		reason := "fail-fast"
		if r.Cancelled {
			reason = "interrupted"
		}

		fmt.Fprintf(&summary, "%s %s not attempted (%s)\n", // nolint:errcheck
			color.Colorize("~", color.FgYellow), Plural(r.NotAttempted, "batch"), reason)
	}

	outcome := r.Outcome()

	if len(r.Results) > 0 || r.NotAttempted > 0 {
		summary.WriteString("\n")
	}

	switch outcome {
	case runbatch.OutcomeExecutableMissing:
		summary.WriteString(color.Colorize(MsgMissing, color.Bold, color.FgRed))
	case runbatch.OutcomeFormatterFailure:
		summary.WriteString(color.Colorize(MsgFailed, color.Bold, color.FgRed))
	default:
		summary.WriteString(color.Colorize(MsgSuccess, color.Bold, color.FgGreen))
	}

	summary.WriteString("\n")

	return Output{
		Summary:  summary.String(),
		Details:  details.String(),
		ExitCode: ExitCode(outcome),
	}
}

func writeTool(summary, details *strings.Builder, tr ToolResults, verb string, verbose bool) {
	title := header("[" + tr.Tool.Name + "]")
	files := tr.Files()

	switch {
	case tr.Count(runbatch.StatusExecutableMissing) > 0:
		fmt.Fprintf(summary, "%s %s %s not found (%s)\n", // nolint:errcheck
			title, color.Colorize("✗", color.FgRed), tr.Tool.Cmd, Plural(files, "file"))
		fmt.Fprintf(details, "[%s] %s: %v\n", tr.Tool.Name, tr.Tool.Cmd, tr.Results[0].Err) // nolint:errcheck

		if verbose {
			for _, r := range tr.Results {
				writeVerbose(details, r)
			}
		}

		return

	case tr.Count(runbatch.StatusFormatterFailed) == 0:
		fmt.Fprintf(summary, "%s %s %s %s\n", // nolint:errcheck
			title, color.Colorize("✓", color.FgGreen), verb, Plural(files, "file"))

	default:
		failed := tr.Count(runbatch.StatusFormatterFailed)
		fmt.Fprintf(summary, "%s %s %s of %d failed (%s)\n", // nolint:errcheck
			title, color.Colorize("✗", color.FgRed),
			Plural(failed, "batch"), len(tr.Results), Plural(files, "file"))
	}

	for _, r := range tr.Results {
		if r.Status == runbatch.StatusFormatterFailed {
			writeFailure(summary, r, verbose)

			if r.Err != nil {
				fmt.Fprintf(details, "[%s] %v\n", r.Batch.Label(), r.Err) // nolint:errcheck
			}
		}

		if verbose {
			writeVerbose(details, r)
		}
	}
}

// writeFailure prints the per-batch marker and, unless verbose, the start of
// the formatter's own output.
func writeFailure(w *strings.Builder, r *runbatch.BatchResult, verbose bool) {
	fmt.Fprintf(w, "  %s batch %d, %s", // nolint:errcheck
		color.Colorize("✗", color.FgRed), r.Batch.Index+1, Plural(len(r.Batch.Files), "file"))

	if r.ExitCode != 0 {
		fmt.Fprintf(w, " (exit code: %d)", r.ExitCode) // nolint:errcheck
	}

	w.WriteString("\n")

	if verbose {
		return
	}

	out := r.StdErr
	if len(strings.TrimSpace(string(out))) == 0 {
		out = r.StdOut
	}

	w.WriteString(formatOutput(truncateLines(out, maxAnnotationLines), "     "))
}

func writeVerbose(w *strings.Builder, r *runbatch.BatchResult) {
	fmt.Fprintf(w, "%s $ %s\n", // nolint:errcheck
		header("["+r.Batch.Label()+"]"), r.Command())

	if len(r.StdOut) > 0 {
		fmt.Fprintf(w, "  ➜ Output:\n%s", formatOutput(r.StdOut, "     ")) // nolint:errcheck
	}

	if len(r.StdErr) > 0 {
		fmt.Fprintf(w, "  %s\n%s", color.Colorize("➜ Error Output:", color.FgHiRed), formatOutput(r.StdErr, "     ")) // nolint:errcheck
	}

	if r.Err != nil {
		fmt.Fprintf(w, "  %s %v\n", color.Colorize("➜ Error:", color.FgRed), r.Err) // nolint:errcheck
	}
}

func truncateLines(b []byte, n int) []byte {
	lines := strings.SplitAfter(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) <= n {
		return b
	}

	more := len(lines) - n

	return []byte(strings.Join(lines[:n], "") + fmt.Sprintf("... %s\n", Plural(more, "more line")))
}

// formatOutput indents every non-empty line.
func formatOutput(output []byte, indent string) string {
	if len(output) == 0 {
		return ""
	}

	sb := strings.Builder{}
	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")
	sb.Grow(len(output) + len(lines)*len(indent))

	for _, line := range lines {
		if line == "" {
			sb.WriteString("\n")
			continue
		}

		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}
