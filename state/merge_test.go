package state

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promocoach/promocoach/llm"
)

func TestApplyOverwritesDefaultFields(t *testing.T) {
	cur := State{Competency: "old competency", Gap: "old gap"}

	next := Apply(cur, Update{
		Competency: Text("new competency"),
		Gap:        Text(""),
	})

	assert.Equal(t, "new competency", next.Competency)
	assert.Equal(t, "", next.Gap, "overwrite policy allows blanking")
	assert.Equal(t, "old competency", cur.Competency, "input state untouched")
}

func TestApplyNilFieldsChangeNothing(t *testing.T) {
	cur := State{
		Competency:  "c",
		Gap:         "g",
		Opportunity: "o",
	}
	next := Apply(cur, Update{})
	assert.Equal(t, cur.Competency, next.Competency)
	assert.Equal(t, cur.Gap, next.Gap)
	assert.Equal(t, cur.Opportunity, next.Opportunity)
	assert.True(t, Update{}.IsZero())
}

func TestApplyOpportunityKeepsNonEmpty(t *testing.T) {
	cur := State{Opportunity: "existing analysis"}

	blanked := Apply(cur, Update{Opportunity: Text("   \n")})
	assert.Equal(t, "existing analysis", blanked.Opportunity,
		"blank update must not erase the opportunity slot")

	replaced := Apply(cur, Update{Opportunity: Text("fresh analysis")})
	assert.Equal(t, "fresh analysis", replaced.Opportunity)
}

func TestApplyMessageAppendAndReset(t *testing.T) {
	cur := State{Messages: []llm.Message{{Role: llm.RoleAssistant, Content: "first"}}}

	appended := Apply(cur, Update{AppendMessages: []llm.Message{
		{Role: llm.RoleTool, Content: "result"},
	}})
	require.Len(t, appended.Messages, 2)
	assert.Equal(t, llm.RoleTool, appended.Messages[1].Role)

	reset := Apply(appended, Update{ResetMessages: true})
	assert.Empty(t, reset.Messages)

	resetThenAppend := Apply(appended, Update{
		ResetMessages:  true,
		AppendMessages: []llm.Message{{Role: llm.RoleUser, Content: "again"}},
	})
	require.Len(t, resetThenAppend.Messages, 1)
	assert.Equal(t, "again", resetThenAppend.Messages[0].Content)
}

func TestProperty_KeepNonEmptyReducerLaw(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	reduce := KeepNonEmpty()

	properties.Property("merge(old, new) is new when non-empty, old otherwise", prop.ForAll(
		func(old, update string) bool {
			got := reduce(old, update)
			if NonEmpty(update) {
				return got == update
			}
			return got == old
		},
		gen.AnyString(),
		gen.OneGenOf(gen.AnyString(), gen.OneConstOf("", " ", "\t", "\n \n")),
	))

	properties.Property("reducer is idempotent in its update argument", prop.ForAll(
		func(old, update string) bool {
			once := reduce(old, update)
			twice := reduce(once, update)
			return reduce(twice, update) == twice
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestTriStateString(t *testing.T) {
	assert.Equal(t, "unset", Unset.String())
	assert.Equal(t, "yes", Yes.String())
	assert.Equal(t, "no", No.String())
}

func TestCloneCopiesMessageLog(t *testing.T) {
	cur := State{Messages: []llm.Message{{Content: "a"}, {Content: "b"}}}
	cp := cur.Clone()
	cp.Messages[0].Content = "mutated"
	assert.Equal(t, "a", cur.Messages[0].Content)
}

func TestToolRound(t *testing.T) {
	call := llm.ToolCall{ID: "call-1", Name: "search_learning_courses"}

	t.Run("empty log", func(t *testing.T) {
		_, _, ok := State{}.ToolRound()
		assert.False(t, ok)
	})

	t.Run("request without results", func(t *testing.T) {
		st := State{Messages: []llm.Message{
			{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{call}},
		}}
		_, _, ok := st.ToolRound()
		assert.False(t, ok)
	})

	t.Run("complete round", func(t *testing.T) {
		st := State{Messages: []llm.Message{
			{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{call}},
			{Role: llm.RoleTool, Content: "{}", ToolCallID: "call-1"},
		}}
		request, results, ok := st.ToolRound()
		require.True(t, ok)
		assert.Len(t, request.ToolCalls, 1)
		require.Len(t, results, 1)
		assert.Equal(t, "call-1", results[0].ToolCallID)
	})
}
