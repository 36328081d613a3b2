package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/promocoach/promocoach/coach"
	"github.com/promocoach/promocoach/state"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// terminal implements the interactive collaborator interfaces over stdio.
// Reads happen on a goroutine so a context cancellation (Ctrl-C) interrupts a
// pending prompt instead of blocking on stdin forever.
type terminal struct {
	reader *bufio.Reader
	out    io.Writer
}

func newTerminal(in io.Reader, out io.Writer) *terminal {
	return &terminal{reader: bufio.NewReader(in), out: out}
}

func (t *terminal) readLine(ctx context.Context) (string, error) {
	type lineResult struct {
		text string
		err  error
	}
	ch := make(chan lineResult, 1)
	go func() {
		text, err := t.reader.ReadString('\n')
		ch <- lineResult{text: strings.TrimSpace(text), err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.text, res.err
	}
}

func (t *terminal) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(t.out, questionStyle.Render(prompt)+" ")
	return t.readLine(ctx)
}

// Collect implements coach.PreferenceSource.
func (t *terminal) Collect(ctx context.Context, targetLevel string, prior state.Preferences, _ state.TriState) (state.Preferences, state.TriState, error) {
	fmt.Fprintln(t.out, headerStyle.Render("\nLearning preferences"))

	answer, err := t.ask(ctx, fmt.Sprintf("Search for courses to help you reach %s? [y/N]", targetLevel))
	if err != nil {
		return prior, state.No, err
	}
	if !strings.HasPrefix(strings.ToLower(answer), "y") {
		return prior, state.No, nil
	}

	prefs := prior
	if budget, err := t.ask(ctx, "Learning budget (e.g. $500, company-sponsored):"); err != nil {
		return prior, state.No, err
	} else if budget != "" {
		prefs.Budget = budget
	}
	if style, err := t.ask(ctx, "Learning style (online / in-person / hybrid):"); err != nil {
		return prior, state.No, err
	} else if style != "" {
		prefs.Style = style
	}
	if avail, err := t.ask(ctx, "Time availability (e.g. 3 hours per week):"); err != nil {
		return prior, state.No, err
	} else if avail != "" {
		prefs.TimeAvailability = avail
	}
	return prefs, state.Yes, nil
}

// Review implements coach.Reviewer.
func (t *terminal) Review(ctx context.Context, output string) (coach.ReviewDecision, error) {
	fmt.Fprintln(t.out, headerStyle.Render("\nOpportunity analysis ready for review"))
	fmt.Fprintln(t.out, output)
	fmt.Fprintln(t.out)

	for {
		answer, err := t.ask(ctx, "[a]pprove, [e]dit inline, [r]egenerate review, [s]kip?")
		if err != nil {
			return coach.ReviewDecision{}, err
		}
		switch strings.ToLower(answer) {
		case "a", "approve", "":
			return coach.ReviewDecision{Feedback: state.FeedbackApproved}, nil
		case "e", "edit":
			text, err := t.readEdit(ctx)
			if err != nil {
				return coach.ReviewDecision{}, err
			}
			return coach.ReviewDecision{Feedback: state.FeedbackEdited, EditedText: text}, nil
		case "r", "regenerate":
			return coach.ReviewDecision{Feedback: state.FeedbackEdit}, nil
		case "s", "skip":
			return coach.ReviewDecision{Feedback: state.FeedbackSkipped}, nil
		}
		fmt.Fprintln(t.out, "Please answer a, e, r, or s.")
	}
}

// readEdit collects replacement text until a line containing only ".".
func (t *terminal) readEdit(ctx context.Context) (string, error) {
	fmt.Fprintln(t.out, questionStyle.Render("Enter replacement text, end with a single '.' line:"))
	var lines []string
	for {
		line, err := t.readLine(ctx)
		if err != nil {
			return "", err
		}
		if line == "." {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}

// PrintSummary renders the final outputs at the end of a session.
func (t *terminal) PrintSummary(st state.State) {
	sections := []struct {
		title   string
		content string
	}{
		{"Competency analysis", st.Competency},
		{"Gap analysis", st.Gap},
		{"Opportunity analysis", st.Opportunity},
		{"Promotion package", st.PromotionPackage},
	}
	fmt.Fprintln(t.out, headerStyle.Render("\nSession results"))
	for _, s := range sections {
		if !state.NonEmpty(s.content) {
			continue
		}
		fmt.Fprintln(t.out, sectionStyle.Render("\n"+s.title))
		fmt.Fprintln(t.out, s.content)
	}
	if state.NonEmpty(st.HumanFeedback) {
		fmt.Fprintln(t.out, "\nReview decision:", st.HumanFeedback)
	}
}
