// Package state holds the shared workflow record and the merge engine that
// applies step updates to it.
//
// Every step receives a snapshot of State and returns an Update containing
// only the fields it changed. Apply combines the two under per-field merge
// policies: plain overwrite for most fields, a keep-non-empty reducer for the
// opportunity slot (which has two producers), and append-with-explicit-reset
// for the message log that carries tool rounds.
package state

import (
	"strings"

	"github.com/promocoach/promocoach/llm"
)

// WorkflowType selects the initial route. It is set once when the run is
// seeded and never reassigned.
type WorkflowType string

const (
	// FirstTime runs the full analysis chain from scratch.
	FirstTime WorkflowType = "first_time"
	// WithExistingOutputs resumes from previously persisted analyses and
	// skips the competency stage.
	WithExistingOutputs WorkflowType = "with_existing_outputs"
)

// TriState is a yes/no flag that distinguishes "never asked" from "answered
// no". The opportunity step uses it to tell a fresh preference collection
// (regenerate) apart from a resumed run (skip).
type TriState int8

const (
	Unset TriState = iota
	Yes
	No
)

func (t TriState) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	}
	return "unset"
}

// Profile identifies the engineer being coached. Immutable after seeding.
type Profile struct {
	Name         string `json:"name"`
	CurrentLevel string `json:"current_level"`
	TargetLevel  string `json:"target_level"`
	Discipline   string `json:"discipline"`
}

// Preferences captures how the engineer wants to learn.
type Preferences struct {
	Budget           string `json:"budget"`
	Style            string `json:"style"`
	TimeAvailability string `json:"time_availability"`
}

// Feedback values recorded by the review step.
const (
	FeedbackApproved = "approved"
	FeedbackEdited   = "edited"
	FeedbackSkipped  = "skipped"
	// FeedbackEdit requests another review round; the router loops back to
	// the review step while this value is set.
	FeedbackEdit = "edit"
)

// State is the single shared record threaded through every step.
type State struct {
	Profile   Profile           `json:"profile"`
	Documents map[string]string `json:"documents"`

	// Output slots, one per analysis stage.
	Competency       string `json:"competency"`
	Gap              string `json:"gap"`
	Opportunity      string `json:"opportunity"`
	PromotionPackage string `json:"promotion_package"`

	Prefs        Preferences `json:"prefs"`
	WantsCourses TriState    `json:"wants_courses"`

	HumanFeedback string       `json:"human_feedback"`
	Type          WorkflowType `json:"workflow_type"`

	// Messages transports one tool round: the assistant message carrying
	// tool calls plus the tool results answering them. It is cleared by the
	// step that consumes the round.
	Messages []llm.Message `json:"messages,omitempty"`
}

// Document returns the named document's content, or "" when absent.
func (s State) Document(key string) string {
	return s.Documents[key]
}

// PendingToolCalls returns the calls of the most recent assistant message
// that requested tools, if any.
func (s State) PendingToolCalls() []llm.ToolCall {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.Role == llm.RoleAssistant && len(m.ToolCalls) > 0 {
			return m.ToolCalls
		}
	}
	return nil
}

// ToolRound returns the most recent assistant message carrying tool calls and
// every tool result that follows it. ok is true only when both sides of the
// round are present, which is the synthesis step's precondition.
func (s State) ToolRound() (request llm.Message, results []llm.Message, ok bool) {
	idx := -1
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.Role == llm.RoleAssistant && len(m.ToolCalls) > 0 {
			idx = i
			request = m
			break
		}
	}
	if idx < 0 {
		return llm.Message{}, nil, false
	}
	for _, m := range s.Messages[idx+1:] {
		if m.Role == llm.RoleTool {
			results = append(results, m)
		}
	}
	return request, results, len(results) > 0
}

// Clone returns a deep-enough copy: the message log is copied so concurrent
// readers never observe in-flight appends. The document map is shared since
// it is immutable after seeding.
func (s State) Clone() State {
	out := s
	if len(s.Messages) > 0 {
		out.Messages = make([]llm.Message, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	return out
}

// NonEmpty reports whether the trimmed text has content. Slot readiness
// checks all go through this.
func NonEmpty(text string) bool {
	return strings.TrimSpace(text) != ""
}
