// Package output renders pipeline progress and the final summary for humans.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zinc-sig/ghostci/internal/pipeline"
	"github.com/zinc-sig/ghostci/internal/report"
)

const ruleWidth = 50

// Console writes styled progress lines. Colors are dropped automatically when
// the writer is not a terminal.
type Console struct {
	w     io.Writer
	title cases.Caser

	header lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	label  lipgloss.Style
	count  lipgloss.Style
}

func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:      w,
		title:  cases.Title(language.English),
		header: r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		pass:   r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")),
		label:  r.NewStyle().Foreground(lipgloss.Color("8")),
		count:  r.NewStyle().Bold(true),
	}
}

var _ pipeline.Console = (*Console)(nil)

func (c *Console) StageStarted(stage pipeline.Stage) {
	fmt.Fprintf(c.w, "\n%s\n", c.header.Render("🔄 "+stage.Title()+"..."))
}

func (c *Console) StageFinished(stage pipeline.Stage, passed bool) {
	fmt.Fprintln(c.w, c.mark(passed, stage.Title()))
}

// Summary prints every recorded check, the stages that failed, and the
// aggregate counts.
func (c *Console) Summary(r *report.Report, stages []pipeline.StageResult, passed bool) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(c.w, "\n%s\n%s\n%s\n", rule, c.header.Render("📊 Test Summary"), rule)

	for _, name := range r.Results.Keys() {
		outcome, _ := r.Results.Get(name)
		if outcome.Kind() == report.KindSimple {
			fmt.Fprintln(c.w, c.mark(outcome.Passed(), c.Label(name)))
			continue
		}
		fmt.Fprintln(c.w, c.count.Render(c.Label(name)))
		for _, check := range outcome.Checks() {
			fmt.Fprintln(c.w, "  "+c.mark(check.Passed, c.Label(check.Name)))
		}
	}

	first := true
	for _, stage := range stages {
		if stage.Passed {
			continue
		}
		if first {
			fmt.Fprintln(c.w)
			first = false
		}
		fmt.Fprintln(c.w, c.fail.Render("💥 "+stage.Title+" failed"))
	}

	s := r.Summary
	fmt.Fprintf(c.w, "\n%s %s\n", c.label.Render("Total checks:"), c.count.Render(fmt.Sprint(s.TotalChecks)))
	fmt.Fprintf(c.w, "%s %s\n", c.label.Render("Passed:"), c.pass.Render(fmt.Sprint(s.PassedChecks)))
	fmt.Fprintf(c.w, "%s %s\n", c.label.Render("Failed:"), c.fail.Render(fmt.Sprint(s.FailedChecks)))
	fmt.Fprintf(c.w, "%s %s\n", c.label.Render("Success rate:"), c.count.Render(s.Rate().StringFixed(1)+"%"))

	if passed {
		fmt.Fprintf(c.w, "\n%s\n", c.pass.Render("🎉 All checks passed!"))
	} else {
		fmt.Fprintf(c.w, "\n%s\n", c.fail.Render("💥 Some checks failed"))
	}
}

// Label turns a result key such as "unit_tests" into "Unit Tests".
func (c *Console) Label(key string) string {
	return c.title.String(strings.ReplaceAll(key, "_", " "))
}

func (c *Console) mark(passed bool, text string) string {
	if passed {
		return c.pass.Render("✅ " + text)
	}
	return c.fail.Render("💥 " + text)
}

// ListStages writes each stage selector and title in execution order.
func ListStages(w io.Writer, stages []pipeline.Stage) {
	r := lipgloss.NewRenderer(w)
	name := r.NewStyle().Bold(true).Width(20)
	for _, stage := range stages {
		fmt.Fprintf(w, "%s%s\n", name.Render(stage.Name()), stage.Title())
	}
}
