// Package pipeline chains registered actions: each step's output feeds the
// next step, and only the last result is ever serialized.
package pipeline

import (
	"encoding/json"

	"github.com/ironsheep/image-tools/internal/action"
)

// Step is one pipeline stage.
type Step struct {
	Action    string         `json:"action"`
	Arguments []any          `json:"arguments,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

// ParseSteps decodes a JSON list of steps such as
//
//	[{"action": "brightness", "options": {"value": 150}},
//	 {"action": "posterize", "arguments": [4], "options": {"method": "linear"}}]
//
// Every element is checked before anything runs: the top level must be a
// list of objects, each with a string "action", an optional "arguments"
// list and an optional "options" object.
func ParseSteps(data []byte) ([]Step, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &action.ParameterError{Param: "actions", Msg: "Invalid JSON for actions: " + err.Error(), Err: err}
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, action.ParamErrorf("actions", "Actions must be a JSON list of steps.")
	}

	steps := make([]Step, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, action.ParamErrorf("actions", "Step %d must be a JSON object.", i+1)
		}

		name, ok := obj["action"].(string)
		if !ok || name == "" {
			return nil, action.ParamErrorf("actions", "Step %d has no \"action\" name.", i+1)
		}
		step := Step{Action: name}

		if v, present := obj["arguments"]; present && v != nil {
			args, ok := v.([]any)
			if !ok {
				return nil, action.ParamErrorf("actions", "Step %d: \"arguments\" must be a list.", i+1)
			}
			step.Arguments = args
		}
		if v, present := obj["options"]; present && v != nil {
			opts, ok := v.(map[string]any)
			if !ok {
				return nil, action.ParamErrorf("actions", "Step %d: \"options\" must be an object.", i+1)
			}
			step.Options = opts
		}
		steps = append(steps, step)
	}
	return steps, nil
}
