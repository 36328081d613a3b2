package coursesearch

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolName is the name the model uses to request a course search.
const ToolName = "search_learning_courses"

var paramsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"skill_gap": {
			"type": "string",
			"description": "The specific skill gap that needs to be addressed"
		},
		"learning_style": {
			"type": "string",
			"enum": ["online", "in-person", "hybrid", "any"],
			"description": "Preferred learning style"
		},
		"max_results": {
			"type": "integer",
			"description": "Maximum number of courses to return (capped at 3)"
		}
	},
	"required": ["skill_gap"]
}`)

// Tool adapts Client to the tools.Tool interface.
type Tool struct {
	client *Client
}

// NewTool wraps a search client as a workflow tool.
func NewTool(client *Client) *Tool {
	return &Tool{client: client}
}

func (t *Tool) Name() string { return ToolName }

func (t *Tool) Description() string {
	return "Search for learning courses that match a skill gap and learning style. " +
		"Returns course name, provider, link, price, duration, and rating as JSON."
}

func (t *Tool) Schema() json.RawMessage { return paramsSchema }

// Execute runs the search with loosely typed parameters as they arrive from
// a model tool call.
func (t *Tool) Execute(ctx context.Context, params map[string]any) (string, error) {
	skillGap, _ := params["skill_gap"].(string)
	if skillGap == "" {
		return "", fmt.Errorf("%s: skill_gap parameter is required", ToolName)
	}
	style, _ := params["learning_style"].(string)

	max := MaxCourses
	switch v := params["max_results"].(type) {
	case float64: // JSON numbers decode as float64
		max = int(v)
	case int:
		max = v
	}

	result, err := t.client.Search(ctx, skillGap, style, max)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ToolName, err)
	}
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%s: marshal result: %w", ToolName, err)
	}
	return string(raw), nil
}
