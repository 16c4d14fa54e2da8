package writer

import (
	"encoding/json"
	"fmt"
	"strings"

	"scriptforge/pkg/pipeline"
	"scriptforge/pkg/policy"
)

// plannedAngle mirrors the JSON contract the planner is asked to emit.
type plannedAngle struct {
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	HookStyle        string   `json:"hook_style"`
	Focus            string   `json:"focus"`
	OpeningDirection string   `json:"opening_direction"`
	FactsToUse       []string `json:"facts_to_use"`
	FactsToAvoid     []string `json:"facts_to_AVOID"`
	EmotionalTrigger string   `json:"emotional_trigger"`
}

type plannerOutput struct {
	Angles []plannedAngle `json:"angles"`
}

// parseAngles extracts angle descriptors from the planner's free-text
// response. The payload is expected to be JSON, possibly wrapped in a
// markdown code fence.
func parseAngles(content string) ([]pipeline.AngleDescriptor, error) {
	payload := stripCodeFence(content)

	var out plannerOutput
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, fmt.Errorf("planner returned unparseable JSON: %w", err)
	}

	var angles []pipeline.AngleDescriptor
	for _, a := range out.Angles {
		if strings.TrimSpace(a.Name) == "" {
			continue
		}
		angles = append(angles, pipeline.AngleDescriptor{
			Name:             a.Name,
			Focus:            a.Focus,
			HookStyle:        a.HookStyle,
			OpeningDirection: a.OpeningDirection,
			EmotionalTrigger: a.EmotionalTrigger,
			FactsToUse:       a.FactsToUse,
			FactsToAvoid:     a.FactsToAvoid,
		})
	}
	return angles, nil
}

// stripCodeFence unwraps ```json ... ``` (or bare ``` ... ```) blocks.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
	} else if idx := strings.Index(content, "```"); idx >= 0 {
		content = content[idx+3:]
	} else {
		return content
	}
	if end := strings.Index(content, "```"); end >= 0 {
		content = content[:end]
	}
	return strings.TrimSpace(content)
}

// fillAngles pads an under-produced angle list to count entries using the
// policy's deterministic templates. Templates whose keywords match the topic
// are preferred; used names are never repeated.
func fillAngles(angles []pipeline.AngleDescriptor, count int, topic string, templates []policy.AngleTemplate) []pipeline.AngleDescriptor {
	if len(angles) >= count {
		return angles[:count]
	}

	used := make(map[string]bool, len(angles))
	for _, a := range angles {
		used[a.Name] = true
	}

	lower := strings.ToLower(topic)
	ordered := make([]policy.AngleTemplate, 0, len(templates))
	var rest []policy.AngleTemplate
	for _, tpl := range templates {
		if matchesTopic(tpl, lower) {
			ordered = append(ordered, tpl)
		} else {
			rest = append(rest, tpl)
		}
	}
	ordered = append(ordered, rest...)

	for _, tpl := range ordered {
		if len(angles) >= count {
			break
		}
		if used[tpl.Name] {
			continue
		}
		used[tpl.Name] = true
		angles = append(angles, pipeline.AngleDescriptor{
			Name:             tpl.Name,
			Focus:            tpl.Description,
			HookStyle:        tpl.HookStyle,
			OpeningDirection: tpl.Template,
			EmotionalTrigger: "curiosity",
		})
	}
	return angles
}

// matchesTopic reports whether any template keyword appears as a whole word
// in the topic. Substring matching is wrong here: "ai" lives inside
// "raises".
func matchesTopic(tpl policy.AngleTemplate, lowerTopic string) bool {
	words := strings.Fields(lowerTopic)
	for _, kw := range tpl.Keywords {
		for _, w := range words {
			if strings.Trim(w, ".,!?:;\"'()") == kw {
				return true
			}
		}
	}
	return false
}
