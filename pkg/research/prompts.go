package research

import (
	"fmt"
	"strings"
)

// Prompt builders for the five research steps. Output format instructions
// are load-bearing: the markers they request are what the tolerant parsers
// in parser.go look for.

func detectPrompt(topic string) string {
	return fmt.Sprintf(`You are a content strategist for short-form marketing videos.

## TASK: Classify this topic

**TOPIC:** %q

## TOPIC TYPES:

### TYPE A: SPECIFIC (good for short-form video)
About a specific person, company, product, event, or announcement.
Examples: "Sam Altman GPT-5 announcement", "Tesla FSD India launch", "DeepSeek vs OpenAI".

### TYPE B: GENERIC (needs transformation)
Broad concept, definition, or educational topic.
Examples: "What is AI", "How blockchain works", "AI in healthcare".

### TYPE C: TRENDING (great for short-form video)
Current news, controversy, or time-sensitive topic.
Examples: "TikTok ban latest update", "Budget 2025 tech impact".

### TYPE D: AMBIGUOUS (needs clarification)
Single word or phrase that could go many directions.
Examples: "Google", "Elon Musk", "Indian tech".

## YOUR OUTPUT:

**TOPIC TYPE:** [A / B / C / D]

**REASONING:** [One sentence explaining the classification]

**IF TYPE B (Generic), PROVIDE 3 STORY-DRIVEN ANGLES:**

ANGLE 1: "[Specific person] + [specific action] + [specific detail]"
- Why it works: [One line]
- Search query: "[Exact query to research this]"

ANGLE 2: "[Different person/company] + [different action] + [specific detail]"
- Why it works: [One line]
- Search query: "[Exact query to research this]"

ANGLE 3: "[India-focused angle with specific company/person]"
- Why it works: [One line]
- Search query: "[Exact query to research this]"

**IF TYPE D (Ambiguous), PROVIDE:**
- 2 clarifying questions to narrow down the topic (format: Question 1: ...)
- 3 possible specific angles based on different interpretations`, topic)
}

func scanPrompt(topic string) string {
	return fmt.Sprintf(`You are a content researcher looking for the MOST INTERESTING angle on a topic.

For the topic %q, list 5-10 potential story angles.

GOOD ANGLES: a specific person did something unexpected, a surprising company
move, a shocking statistic that contradicts common belief, conflict between
companies or people, a hidden strategy that worked, an underdog story,
something happening right now, India-specific impact.

BAD ANGLES: generic definitions, how-to content without story, vague industry
trends, old news (more than 2-3 months unless historically significant).

## OUTPUT FORMAT

### ANGLE 1: [One-line description]
- **Hook Potential:** [Person/Company] + [Unexpected Action] + [Specific Detail]
- **Key Person:** [Name, Title, Company]
- **Why It Works:** [One sentence]
- **Recency:** [When did this happen?]

(Continue for all angles found.)

### ANGLES TO AVOID (found but rejected):
- [Rejected angle]: [Why]`, topic)
}

func selectPrompt(scanResult, userNotes string) string {
	notes := userNotes
	if strings.TrimSpace(notes) == "" {
		notes = "No specific preferences."
	}
	return fmt.Sprintf(`You are a content strategist. Pick the SINGLE BEST angle for a short-form video.

## SCAN RESULTS (all angles found):

%s

## USER'S NOTES:

%s

## SELECTION CRITERIA

| Criteria | Weight |
|----------|--------|
| HOOK STRENGTH | 30%% |
| SPECIFICITY | 25%% |
| RECENCY | 20%% |
| STORY ARC | 15%% |
| INDIA RELEVANCE | 10%% |

Score each angle 1-10 on every criterion, compute the weighted total, and
pick the single best.

## OUTPUT FORMAT

### ANGLE SCORING

| Angle | Hook | Specificity | Recency | Story Arc | India | TOTAL |
|-------|------|-------------|---------|-----------|-------|-------|

### SELECTED ANGLE

**Winner:** [Angle name]

**The Hook (Draft):** "[Person/Company] + [Action] + [Specific Detail]"

**Specific Search Queries for Deep Dive:**
1. "[Exact query to find more on this angle]"
2. "[Exact query to find quotes from the key person]"
3. "[Exact query to find the India connection]"
4. "[Exact query to find specific numbers]"

**Why This Angle Wins:**
[2-3 sentences]`, scanResult, notes)
}

func deepDivePrompt(selection Selection) string {
	return fmt.Sprintf(`You are doing a DEEP DIVE on ONE specific angle for a short-form video script.

## THE SELECTED ANGLE:

%s

## YOUR MISSION

Find everything needed for a compelling 45-60 second script on this angle:

1. BACKSTORY/CONTEXT (why now?): what event triggered this, what changed.
2. BEFORE/AFTER NUMBERS: show the change, not standalone numbers.
3. CONTRAST DATA: the old way's problems vs the new way's advantages.
4. ESCALATION DATA: company stat, then industry stat, then global implication.
5. THE KEY PERSON: background, the specific action, exact dates.
6. DIRECT QUOTES: 2-3 exact quotes in quotation marks with attribution.
7. INDIA ANGLE: direct impact, cost context in Rs., opportunity.

## OUTPUT FORMAT

### BACKSTORY/CONTEXT (WHY NOW?)
**The Trigger Event:** ...
**What Changed:** ...
**Timeline:** ...

### BEFORE/AFTER NUMBERS
| Metric | BEFORE | AFTER | CHANGE | TIME PERIOD |

### CONTRAST DATA (OLD VS NEW)
**One-liner contrast:** "[Old] costs [X], needs [Y]. [New]? [Advantages]."

### ESCALATION DATA
| Level | Stat | Implication |

### KEY PERSON PROFILE
| Field | Detail |

### DIRECT QUOTES
1. "[Quote]" - [Person], [Context]

### INDIA ANGLE
- **Direct Impact:** ...
- **Cost Context:** ...
- **Opportunity:** ...`, selection.Raw)
}

func connectPrompt(deepResearch string, selection Selection) string {
	return fmt.Sprintf(`You are a narrative architect. Organize research facts into a connected story flow.

## THE RESEARCH:

%s

## THE SELECTED ANGLE:

%s

## KEY PRINCIPLES

1. CONTEXT FIRST: explain WHY this is happening before WHAT happened.
2. NUMBERS WITH MEANING: before and after, with the change.
3. CONTRAST: old way vs new way when applicable.
4. ESCALATION: zoom from company to industry to global.
5. SHARP INSIGHT: a specific business reframe, not generic philosophy.

Preserve all raw facts. Do not summarize them away.

## OUTPUT FORMAT

**HOOK OPTIONS:** 3 different hook angles

**CONTEXT:** The backstory and trigger

**NUMBERS:** Key stats with before/after context

**THE STORY:** Core narrative, who did what

**CONTRAST:** Old vs new (if applicable)

**ESCALATION:** Bigger picture stats

**INSIGHT:** Sharp reframe

**INDIA ANGLE:** Local relevance with Rs. amounts if applicable

**QUESTION:** A genuine open question that prompts thought`, deepResearch, selection.Raw)
}

func extractDocumentPrompt(topic, content, userNotes string) string {
	notes := userNotes
	if strings.TrimSpace(notes) == "" {
		notes = "None provided"
	}
	return fmt.Sprintf(`You're a researcher preparing content for a short-form video script.

The user supplied a document about: %s

Your job: extract the STORY from this content. Not fragments. Not bullet
points. The narrative.

## DOCUMENT CONTENT:

%s

## USER NOTES:

%s

## OUTPUT FORMAT

Write flowing paragraphs, not bullet points. This will be used to write a
script someone will SPEAK.

**THE STORY:**
[2-3 paragraphs explaining what happened and why it matters]

**WHY NOW:**
[1 paragraph on the trigger and timing]

**THE NUMBERS (explained simply):**
[Numbers with plain English context, as sentences]

**OLD WAY VS NEW WAY:**
[Contrast written conversationally]

**BIGGER PICTURE:**
[Why this matters beyond the immediate story]

**QUOTES:**
[Any direct quotes with attribution]

**TENSION/DRAMA:**
[Any controversy or stakes]`, topic, content, notes)
}

func degradedExtractPrompt(topic, content string) string {
	return fmt.Sprintf(`Extract the key story from this material about %q.

Write flowing paragraphs summarizing:
- What happened and who did it
- Key numbers with context
- Why it matters

Material:
%s`, topic, content)
}
