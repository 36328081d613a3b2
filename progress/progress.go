// Package progress renders the workflow's lifecycle event stream as terminal
// notices. The printer is purely observational: it never influences control
// flow, it only translates events into human-readable lines and tracks the
// latest merged state it has seen.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/promocoach/promocoach/coach"
	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/workflow"
)

var (
	startStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// displayNames maps step identifiers to what the operator sees.
var displayNames = map[workflow.StepID]string{
	coach.StepEntry:         "Session setup",
	coach.StepCompetency:    "Competency analysis",
	coach.StepGap:           "Gap analysis",
	coach.StepPreferences:   "Learning preferences",
	coach.StepOpportunity:   "Opportunity search",
	coach.StepToolExecution: "Course search",
	coach.StepToolResults:   "Opportunity synthesis",
	coach.StepHumanReview:   "Review",
	coach.StepPromotion:     "Promotion package",
	coach.StepSave:          "Saving outputs",
}

func displayName(id workflow.StepID) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	return string(id)
}

// Printer writes one notice per lifecycle event. Progress notices are
// deduplicated: at most one "in progress" line per step, rearmed when the
// step starts again (review loops, the reentrant save step).
type Printer struct {
	mu       sync.Mutex
	out      io.Writer
	notified map[workflow.StepID]bool
	cur      state.State
	seeded   bool
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:      out,
		notified: make(map[workflow.StepID]bool),
	}
}

// Seed records the initial state so FinalState reflects fields no completion
// event ever touches.
func (p *Printer) Seed(st state.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cur = st
	p.seeded = true
}

// Observe consumes one lifecycle event. Attach it to the executor with
// workflow.WithObserver.
func (p *Printer) Observe(ev workflow.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := displayName(ev.Step)
	switch ev.Kind {
	case workflow.EventStepStart:
		p.notified[ev.Step] = false
		fmt.Fprintln(p.out, startStyle.Render("▶ "+name))
	case workflow.EventStepProgress:
		if p.notified[ev.Step] {
			return
		}
		p.notified[ev.Step] = true
		fmt.Fprintln(p.out, progressStyle.Render("  … "+name+" in progress"))
	case workflow.EventStepComplete:
		p.cur = state.Apply(p.cur, ev.Update)
		fmt.Fprintln(p.out, completeStyle.Render("✔ "+name))
	case workflow.EventStepError:
		fmt.Fprintln(p.out, errorStyle.Render("✘ "+name+": "+ev.Err.Error()))
	}
}

// FinalState returns the last merged state the printer observed. It matches
// the executor's result when every completion event was delivered.
func (p *Printer) FinalState() (state.State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur, p.seeded
}
