package state

import "github.com/promocoach/promocoach/llm"

// Reducer combines a field's current value with a step's update.
type Reducer[T any] func(current, update T) T

// Overwrite is the default policy: the update wins, including an update to
// the empty value.
func Overwrite[T any]() Reducer[T] {
	return func(_, update T) T { return update }
}

// KeepNonEmpty prefers the newer value but refuses to erase content with
// blank text: merge(old, new) = new when new is non-empty after trimming,
// old otherwise.
func KeepNonEmpty() Reducer[string] {
	return func(current, update string) string {
		if NonEmpty(update) {
			return update
		}
		return current
	}
}

// AppendMessages appends the update to the current log.
func AppendMessages() Reducer[[]llm.Message] {
	return func(current, update []llm.Message) []llm.Message {
		if len(update) == 0 {
			return current
		}
		out := make([]llm.Message, 0, len(current)+len(update))
		out = append(out, current...)
		out = append(out, update...)
		return out
	}
}

// Update is a partial state change. Nil pointer fields mean "no change";
// the merge engine applies only what a step actually set.
type Update struct {
	Competency       *string
	Gap              *string
	Opportunity      *string
	PromotionPackage *string

	Prefs        *Preferences
	WantsCourses *TriState

	HumanFeedback *string

	// AppendMessages is appended to the message log. ResetMessages clears
	// the log first; the synthesis step sets it when it consumes a tool
	// round. This is the one sanctioned departure from append-only logs.
	AppendMessages []llm.Message
	ResetMessages  bool
}

// IsZero reports whether the update changes nothing.
func (u Update) IsZero() bool {
	return u.Competency == nil &&
		u.Gap == nil &&
		u.Opportunity == nil &&
		u.PromotionPackage == nil &&
		u.Prefs == nil &&
		u.WantsCourses == nil &&
		u.HumanFeedback == nil &&
		len(u.AppendMessages) == 0 &&
		!u.ResetMessages
}

// Per-field policies. Only the opportunity slot deviates from overwrite: it
// has two producers (direct generation and tool synthesis) and must never be
// blanked by the one that produced nothing.
var (
	overwriteText  = Overwrite[string]()
	opportunityRed = KeepNonEmpty()
	appendMessages = AppendMessages()
)

// Apply merges an update into the current state and returns the result. The
// input state is never mutated; identity fields, documents, and the workflow
// type are not touchable through an Update at all.
func Apply(current State, u Update) State {
	next := current.Clone()

	if u.Competency != nil {
		next.Competency = overwriteText(next.Competency, *u.Competency)
	}
	if u.Gap != nil {
		next.Gap = overwriteText(next.Gap, *u.Gap)
	}
	if u.Opportunity != nil {
		next.Opportunity = opportunityRed(next.Opportunity, *u.Opportunity)
	}
	if u.PromotionPackage != nil {
		next.PromotionPackage = overwriteText(next.PromotionPackage, *u.PromotionPackage)
	}
	if u.Prefs != nil {
		next.Prefs = *u.Prefs
	}
	if u.WantsCourses != nil {
		next.WantsCourses = *u.WantsCourses
	}
	if u.HumanFeedback != nil {
		next.HumanFeedback = overwriteText(next.HumanFeedback, *u.HumanFeedback)
	}

	if u.ResetMessages {
		next.Messages = nil
	}
	next.Messages = appendMessages(next.Messages, u.AppendMessages)

	return next
}

// Text is a convenience for building *string update fields.
func Text(s string) *string { return &s }

// Tri is a convenience for building *TriState update fields.
func Tri(t TriState) *TriState { return &t }
