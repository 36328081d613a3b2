package progress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promocoach/promocoach/coach"
	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/workflow"
)

func TestPrinterDeduplicatesProgressNotices(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	p.Observe(workflow.Event{Kind: workflow.EventStepStart, Step: coach.StepGap})
	p.Observe(workflow.Event{Kind: workflow.EventStepProgress, Step: coach.StepGap})
	p.Observe(workflow.Event{Kind: workflow.EventStepProgress, Step: coach.StepGap})
	p.Observe(workflow.Event{Kind: workflow.EventStepProgress, Step: coach.StepGap})
	p.Observe(workflow.Event{Kind: workflow.EventStepComplete, Step: coach.StepGap})

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "in progress"),
		"at most one progress notice per step per start")
}

func TestPrinterRearmsProgressOnRestart(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	// The review step loops: each new start rearms the progress notice.
	for i := 0; i < 2; i++ {
		p.Observe(workflow.Event{Kind: workflow.EventStepStart, Step: coach.StepHumanReview})
		p.Observe(workflow.Event{Kind: workflow.EventStepProgress, Step: coach.StepHumanReview})
		p.Observe(workflow.Event{Kind: workflow.EventStepProgress, Step: coach.StepHumanReview})
		p.Observe(workflow.Event{Kind: workflow.EventStepComplete, Step: coach.StepHumanReview})
	}

	assert.Equal(t, 2, strings.Count(buf.String(), "in progress"))
}

func TestPrinterUsesDisplayNames(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	p.Observe(workflow.Event{Kind: workflow.EventStepStart, Step: coach.StepCompetency})
	p.Observe(workflow.Event{Kind: workflow.EventStepStart, Step: workflow.StepID("mystery_step")})

	out := buf.String()
	assert.Contains(t, out, "Competency analysis")
	assert.Contains(t, out, "mystery_step", "unknown steps fall back to their identifier")
}

func TestPrinterAccumulatesFinalState(t *testing.T) {
	p := NewPrinter(&strings.Builder{})

	_, ok := p.FinalState()
	assert.False(t, ok, "no state before seeding")

	p.Seed(state.State{Profile: state.Profile{Name: "Ada"}})
	p.Observe(workflow.Event{
		Kind:   workflow.EventStepComplete,
		Step:   coach.StepGap,
		Update: state.Update{Gap: state.Text("gap output")},
	})
	p.Observe(workflow.Event{
		Kind:   workflow.EventStepComplete,
		Step:   coach.StepOpportunity,
		Update: state.Update{Opportunity: state.Text("opportunity output")},
	})

	final, ok := p.FinalState()
	require.True(t, ok)
	assert.Equal(t, "Ada", final.Profile.Name)
	assert.Equal(t, "gap output", final.Gap)
	assert.Equal(t, "opportunity output", final.Opportunity)
}

func TestPrinterReportsErrors(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	p.Observe(workflow.Event{
		Kind: workflow.EventStepError,
		Step: coach.StepSave,
		Err:  assert.AnError,
	})

	assert.Contains(t, buf.String(), "Saving outputs")
	assert.Contains(t, buf.String(), assert.AnError.Error())
}
