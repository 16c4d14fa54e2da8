// Package pipeline contains the orchestration engine for script generation:
// the stage graph, the accumulated run state, routing between stages, and
// the bounded revision loop. Stages live in their own packages and plug in
// through the Stage interface.
package pipeline

// Mode selects the script format.
type Mode string

// Script modes.
const (
	ModeInformational Mode = "informational"
	ModeListicle      Mode = "listicle"
)

// ResearchStatus is the outcome of the research stage.
type ResearchStatus string

// Research outcomes. NeedsAngle and NeedsClarification are terminal: the
// run ends early and hands control back to the caller for more input.
const (
	ResearchComplete           ResearchStatus = "complete"
	ResearchNeedsAngle         ResearchStatus = "needs_angle"
	ResearchNeedsClarification ResearchStatus = "needs_clarification"
	ResearchError              ResearchStatus = "error"
)

// TopicType is the topic classification produced by research.
type TopicType string

// Topic classifications.
const (
	TopicSpecific  TopicType = "specific"
	TopicGeneric   TopicType = "generic"
	TopicTrending  TopicType = "trending"
	TopicAmbiguous TopicType = "ambiguous"
	TopicSkipped   TopicType = "skipped"
)

// Verdict is the quality gate decision.
type Verdict string

// Gate verdicts.
const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// AngleDescriptor is one narrative framing of the topic, produced by the
// planning call and consumed by exactly one writer task. Fact lists are
// disjoint across angles by the planner's contract.
type AngleDescriptor struct {
	Name             string
	Focus            string
	HookStyle        string
	OpeningDirection string
	EmotionalTrigger string
	FactsToUse       []string
	FactsToAvoid     []string
}

// ScriptVariant is one candidate script. Immutable once produced; the
// optimizer replaces by copy rather than mutating in place.
type ScriptVariant struct {
	AngleName  string
	AngleFocus string
	Body       string
}

// State is the single record threaded through every stage of one run.
// Stages append fields they own; the engine owns routing fields
// (RevisionCount). Created once per run, never shared across runs.
type State struct {
	// Input
	Topic           string
	Mode            Mode
	UserNotes       string
	SuppliedContent string
	SkipResearch    bool

	// Research output
	ResearchStatus       ResearchStatus
	ResearchText         string
	ResearchQualityScore int
	ResearchIssues       []string
	SelectedAngle        *AngleDescriptor
	TopicType            TopicType
	SuggestedAngles      []string
	ClarifyingQuestions  []string

	// Retrieval output
	StyleContext string

	// Generation output
	Variants       []ScriptVariant
	CombinedOutput string
	SummaryTable   string

	// Quality output
	GateVerdict   Verdict
	GateScore     int
	GateReasons   []string
	RevisionCount int
}

// RunOutcome classifies how a run ended.
type RunOutcome string

// Run outcomes.
const (
	OutcomeCompleted          RunOutcome = "completed"
	OutcomeNeedsAngle         RunOutcome = "needs_angle"
	OutcomeNeedsClarification RunOutcome = "needs_clarification"
)

// Result is the terminal product of a run. The optimizer's decisions
// (BestVariantIndex, RankedHookOrder, FinalText) exist only here, so they
// cannot be read before the optimizer has run.
type Result struct {
	State   *State
	Outcome RunOutcome

	// Populated on needs-input outcomes.
	SuggestedAngles     []string
	ClarifyingQuestions []string

	// Populated on completed outcomes.
	BestVariantIndex int
	RankedHookOrder  []int
	FinalText        string
}
