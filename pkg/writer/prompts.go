package writer

import (
	"fmt"
	"strings"

	"scriptforge/pkg/pipeline"
)

// scriptStructure fixes the narrative shape per variant slot so that the
// three scripts diverge even when the planner's angles are similar.
type scriptStructure struct {
	Name   string
	Format string
}

var structures = []scriptStructure{
	{
		Name: "THE CONTROVERSY/DRAMA",
		Format: `[HOOK - Controversial statement or drama]
[THE SETUP - What everyone thinks they know]
[THE TWIST - What actually happened]
[THE DRAMA - Conflict, lawsuit, or scandal details]
[THE OUTCOME - Where they are now]
[ENGAGEMENT - Controversial question + CTA]`,
	},
	{
		Name: "THE STORY ARC",
		Format: `[HOOK - Shocking personal moment]
[BACKSTORY - Where they started, 2-3 sentences]
[THE STRUGGLE - What went wrong, specific details]
[THE TURNING POINT - "But here's where it gets interesting..."]
[THE BREAKTHROUGH - What they did differently]
[THE RESULT - Specific numbers/outcome]
[ENGAGEMENT - Personal question + CTA]`,
	},
	{
		Name: "THE BUSINESS BREAKDOWN",
		Format: `[HOOK - Mind-blowing business stat]
[THE PROBLEM - What was broken in the industry]
[THE INSIGHT - What they saw that others missed]
[THE STRATEGY - Specific tactic/approach used]
[THE NUMBERS - Revenue, users, growth stats]
[THE TAKEAWAY - Business lesson for audience]
[ENGAGEMENT - Would you use this? + CTA]`,
	},
}

func structureFor(scriptNumber int) scriptStructure {
	if scriptNumber < 1 || scriptNumber > len(structures) {
		return structures[0]
	}
	return structures[scriptNumber-1]
}

func planPrompt(topic, research string, count int) string {
	return fmt.Sprintf(`You are an expert viral content strategist for short-form video.

Given this topic and research, identify %d RADICALLY DIFFERENT angles.
Each script should feel like it's about a COMPLETELY DIFFERENT STORY.

**TOPIC:** %s

**RESEARCH DATA:**
%s

---

The scripts should NOT tell the same story with different words, use the same
timeline, focus on the same person, or have similar hooks.

The scripts SHOULD each focus on a DIFFERENT aspect of the research, use
DIFFERENT facts and numbers, and target DIFFERENT emotions.

## OUTPUT FORMAT (JSON):
`+"```json"+`
{
    "angles": [
        {
            "name": "5-7 word angle name",
            "category": "A/B/C/D/E",
            "hook_style": "shock|question|negative|story|financial|controversy",
            "focus": "Specific aspect - be detailed (20+ words)",
            "opening_direction": "Exact hook approach (20+ words)",
            "facts_to_use": ["specific fact 1 from research", "specific fact 2"],
            "facts_to_AVOID": ["fact to NOT use - reserved for other scripts"],
            "emotional_trigger": "curiosity|fomo|outrage|inspiration|fear|greed"
        }
    ]
}
`+"```"+`

IMPORTANT: Each angle must use DIFFERENT facts from research. No overlap
between one angle's facts_to_use and another's.

Return ONLY the JSON, no other text.`, count, topic, truncateRunes(research, 4000))
}

func writePrompt(topic string, angle pipeline.AngleDescriptor, research, styleContext string, scriptNumber int, feedback string) string {
	structure := structureFor(scriptNumber)

	var b strings.Builder
	fmt.Fprintf(&b, `You write viral short-form video scripts. 60 seconds. Spoken out loud. For Indian tech audiences - smart people who want interesting stories, not dumbed-down content.

## THIS IS SCRIPT #%d - IT MUST BE COMPLETELY DIFFERENT FROM THE OTHER SCRIPTS

This script uses the %q structure.
It must focus on: **%s**

## TOPIC
%s

## THIS SCRIPT'S UNIQUE ANGLE
- **Focus:** %s
- **Hook Style:** %s
- **Opening Direction:** %s
`, scriptNumber, structure.Name, angle.Name, topic, angle.Focus, angle.HookStyle, angle.OpeningDirection)

	if len(angle.FactsToUse) > 0 {
		fmt.Fprintf(&b, "- **Facts to USE:** %s\n", strings.Join(capList(angle.FactsToUse, 4), ", "))
	}
	if len(angle.FactsToAvoid) > 0 {
		fmt.Fprintf(&b, "- **Facts to AVOID (used in other scripts):** %s\n", strings.Join(capList(angle.FactsToAvoid, 3), ", "))
	}
	if angle.EmotionalTrigger != "" {
		fmt.Fprintf(&b, "- **Emotional Trigger:** %s\n", angle.EmotionalTrigger)
	}

	fmt.Fprintf(&b, `
## RESEARCH DATA
%s

## PATTERNS FROM WINNING SCRIPTS
%s

## SCRIPT #%d STRUCTURE: %s
%s
`, truncateRunes(research, 3500), truncateRunes(styleContext, 1500), scriptNumber, structure.Name, structure.Format)

	if feedback != "" {
		fmt.Fprintf(&b, "\n## REVISION FEEDBACK (fix these issues from the previous draft)\n%s\n", feedback)
	}

	b.WriteString(`
## SCRIPT RULES

**LENGTH:** 150-200 words (60 seconds when spoken)

**MANDATORY:**
- Multiple hooks THROUGHOUT, at least 2-3 mid-script retention triggers
- Short, punchy sentences (8-12 words max)
- Specific numbers WITH context, made to be FELT, not just stated
- LAYMAN LANGUAGE, no jargon without explanation
- PERSPECTIVE: have an opinion, don't just summarize
- Direct question near the end
- India angle ONLY if there is a natural connection

**BANNED:**
- Spam caps words (DESTROYED, PANICKING, TERRIFYING, CHAOS, INSANE)
- "No one is safe", "drop a", "comment if you agree"
- Bullet points (can't be spoken)
- Starting with the company name
- Long paragraphs (3+ sentences)

## OUTPUT FORMAT

SCRIPT ` + fmt.Sprint(scriptNumber) + `: ` + strings.ToUpper(angle.Name) + `

5 HOOK OPTIONS:

Hook 1: [...]
Hook 2: [...]
Hook 3: [...]
Hook 4: [...]
Hook 5: [...]

FULL SCRIPT:

[Write the complete 150-200 word script. Start with your best hook.]

Write the script now.`)

	return b.String()
}

func singlePrompt(st *pipeline.State, feedback string) string {
	formatLine := "a flowing narrative with a hook, a build-up, a twist and a closing question"
	if st.Mode == pipeline.ModeListicle {
		formatLine = "a numbered countdown list, each item one punchy spoken line with a concrete fact"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You write viral short-form video scripts. 60 seconds. Spoken out loud. Write ONE complete script as %s.

TOPIC: %s

RESEARCH DATA:
%s

STYLE REFERENCE:
%s

USER NOTES:
%s
`, formatLine, st.Topic, fallbackText(st.ResearchText, "No research available"),
		fallbackText(st.StyleContext, "No style examples available"),
		fallbackText(st.UserNotes, "None"))

	if feedback != "" {
		fmt.Fprintf(&b, "\nREVISION FEEDBACK (fix these issues from the previous draft):\n%s\n", feedback)
	}

	b.WriteString(`
Rules: 150-200 words, short punchy sentences, specific numbers with context,
no bullet points, no spam caps, direct question near the end.

Generate the script now with 5 hook options.`)
	return b.String()
}

func fallbackText(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func capList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
