// Package report renders validation reports for the command line.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	gpkgcheck "github.com/nvigis/gpkgcheck"
)

// Printer writes a validation report, one category block at a time.
type Printer struct {
	w io.Writer

	header    lipgloss.Style
	ok        lipgloss.Style
	violation lipgloss.Style
	failure   lipgloss.Style
}

// NewPrinter creates a Printer. With color disabled all styles render plain.
func NewPrinter(w io.Writer, color bool) *Printer {
	p := &Printer{
		w:         w,
		header:    lipgloss.NewStyle(),
		ok:        lipgloss.NewStyle(),
		violation: lipgloss.NewStyle(),
		failure:   lipgloss.NewStyle(),
	}
	if color {
		p.header = lipgloss.NewStyle().Bold(true)
		p.ok = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		p.violation = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		p.failure = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	}
	return p
}

// Print writes every category result and reports whether the run was clean.
func (p *Printer) Print(rep *gpkgcheck.Report) bool {
	for _, result := range rep.Results {
		p.printResult(result)
	}
	return rep.Clean()
}

func (p *Printer) printResult(result gpkgcheck.CategoryResult) {
	fmt.Fprintf(p.w, "\n%s\n", p.header.Render(result.Category.Title()+" VALIDATION RESULT:"))

	for _, v := range result.Violations {
		style := p.violation
		if iv, ok := v.(gpkgcheck.IntegrityViolation); ok && iv.OK() {
			style = p.ok
		}
		fmt.Fprintln(p.w, style.Render(v.String()))
	}

	switch {
	case result.Err != nil:
		fmt.Fprintln(p.w, p.failure.Render(
			fmt.Sprintf("---- %s VALIDATION FAILED ----", result.Category.Title())))
		fmt.Fprintln(p.w, p.failure.Render(result.Err.Error()))
	case len(result.Violations) == 0:
		fmt.Fprintln(p.w, p.ok.Render("NO VIOLATIONS FOUND"))
	}
}
