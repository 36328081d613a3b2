// Package workflow implements the control-flow engine: a directed graph of
// named steps with conditional routing, concurrent branches whose updates are
// serialized through the state merge engine, and a lifecycle event stream for
// observers.
package workflow

import (
	"context"
	"fmt"

	"github.com/promocoach/promocoach/llm"
	"github.com/promocoach/promocoach/state"
)

// StepID identifies a step in the graph. Lifecycle events carry the StepID of
// the step they describe, so observers never have to match on display names.
type StepID string

// End is the pseudo-successor that terminates a branch.
const End StepID = "__end__"

// PendingToolCalls marks a step result that requests tool execution instead
// of (or alongside) producing output. The raw assistant message travels in
// Result.Update's message append; this variant exists so routing never has to
// sniff the message log.
type PendingToolCalls struct {
	Calls []llm.ToolCall
}

// Result is what a step returns: a partial state update, plus an optional
// typed marker that the step emitted tool-call requests.
type Result struct {
	Update  state.Update
	Pending *PendingToolCalls
}

// HasPending reports whether the step requested tool execution.
func (r Result) HasPending() bool { return r.Pending != nil }

// Step is a single unit of work. Run must treat its state argument as
// read-only and return only the fields it changed.
type Step interface {
	ID() StepID
	Run(ctx context.Context, st state.State) (Result, error)
}

// StepFunc adapts a function to the Step interface.
type StepFunc func(ctx context.Context, st state.State) (Result, error)

// FuncStep wraps a function as a named step.
type FuncStep struct {
	id StepID
	fn StepFunc
}

// NewFuncStep creates a function step.
func NewFuncStep(id StepID, fn StepFunc) *FuncStep {
	return &FuncStep{id: id, fn: fn}
}

func (s *FuncStep) ID() StepID { return s.id }

func (s *FuncStep) Run(ctx context.Context, st state.State) (Result, error) {
	return s.fn(ctx, st)
}

// PassthroughStep produces no update. Used as a routing-only entry node.
type PassthroughStep struct{ StepID StepID }

func (s *PassthroughStep) ID() StepID { return s.StepID }

func (s *PassthroughStep) Run(ctx context.Context, st state.State) (Result, error) {
	return Result{}, nil
}

// RouterFunc chooses the successor of a step after it completes. It sees the
// merged state and the step's typed result, and must depend on nothing else.
type RouterFunc func(st state.State, res Result) StepID

// Graph is the static workflow topology: steps, unconditional edges, and
// conditional routers. A step has either static successors or a router, not
// both.
type Graph struct {
	steps   map[StepID]Step
	edges   map[StepID][]StepID
	routers map[StepID]RouterFunc
	entry   StepID
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		steps:   make(map[StepID]Step),
		edges:   make(map[StepID][]StepID),
		routers: make(map[StepID]RouterFunc),
	}
}

// AddStep registers a step under its ID.
func (g *Graph) AddStep(s Step) *Graph {
	g.steps[s.ID()] = s
	return g
}

// AddEdge adds an unconditional edge. A step with several outgoing edges
// fans out: all successors are scheduled concurrently.
func (g *Graph) AddEdge(from, to StepID) *Graph {
	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddRouter installs a conditional successor for a step.
func (g *Graph) AddRouter(from StepID, fn RouterFunc) *Graph {
	g.routers[from] = fn
	return g
}

// SetEntry sets the step executed first.
func (g *Graph) SetEntry(id StepID) *Graph {
	g.entry = id
	return g
}

// Entry returns the entry step ID.
func (g *Graph) Entry() StepID { return g.entry }

// Step returns the registered step for an ID.
func (g *Graph) Step(id StepID) (Step, bool) {
	s, ok := g.steps[id]
	return s, ok
}

// Validate checks the topology before execution: the entry must exist, every
// edge endpoint must be a known step (or End), and no step may have both
// static edges and a router.
func (g *Graph) Validate() error {
	if g.entry == "" {
		return fmt.Errorf("graph has no entry step")
	}
	if _, ok := g.steps[g.entry]; !ok {
		return fmt.Errorf("entry step not registered: %s", g.entry)
	}
	for from, tos := range g.edges {
		if _, ok := g.steps[from]; !ok {
			return fmt.Errorf("edge from unknown step: %s", from)
		}
		if _, hasRouter := g.routers[from]; hasRouter {
			return fmt.Errorf("step %s has both static edges and a router", from)
		}
		for _, to := range tos {
			if to == End {
				continue
			}
			if _, ok := g.steps[to]; !ok {
				return fmt.Errorf("edge %s -> %s references unknown step", from, to)
			}
		}
	}
	for from := range g.routers {
		if _, ok := g.steps[from]; !ok {
			return fmt.Errorf("router on unknown step: %s", from)
		}
	}
	return nil
}

// successors resolves the next steps after id completes with the given merged
// state and result.
func (g *Graph) successors(id StepID, st state.State, res Result) []StepID {
	if route, ok := g.routers[id]; ok {
		next := route(st, res)
		if next == "" || next == End {
			return nil
		}
		return []StepID{next}
	}
	var out []StepID
	for _, to := range g.edges[id] {
		if to == End {
			continue
		}
		out = append(out, to)
	}
	return out
}
