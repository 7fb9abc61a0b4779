// Model-facing rendering of the action declarations.

package tools

import "github.com/richinex/golem/llm"

// Definitions renders a phase's action set in the shape the model
// collaborators consume. The planner is never offered executor tools
// and vice versa; filtering happens here, at declaration time, not at
// runtime.
func Definitions(phase Phase) []llm.ToolDefinition {
	specs := Specs(phase)
	defs := make([]llm.ToolDefinition, 0, len(specs))
	for _, s := range specs {
		defs = append(defs, llm.ToolDefinition{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  s.Schema(),
		})
	}
	return defs
}
