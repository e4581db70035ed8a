package engine

// Step is the orchestrator's per-sub-query pipeline state.
type Step string

const (
	StepPending    Step = "pending"
	StepRetrieving Step = "retrieving"
	StepGenerating Step = "generating"
	StepVerifying  Step = "verifying"
	StepVerified   Step = "verified"
	StepRefining   Step = "refining"
	StepExhausted  Step = "exhausted"
)

// Event is something that happened during one pipeline stage.
type Event string

const (
	EventBegin       Event = "begin"        // start or restart an iteration
	EventPassages    Event = "passages"     // retrieval produced usable passages
	EventNoPassages  Event = "no_passages"  // retrieval came back empty
	EventStageFailed Event = "stage_failed" // a backend failed after its own retries
	EventDraft       Event = "draft"        // generation produced a draft
	EventGrounded    Event = "grounded"     // verification passed
	EventUngrounded  Event = "ungrounded"   // verification failed or was inconclusive
	EventTimeout     Event = "timeout"      // session deadline hit
)

// Next is the pure transition function. iterationsUsed counts completed
// iterations; once it reaches maxIterations every failure path lands in
// exhausted instead of refining. Timeouts force exhausted from any
// non-terminal state. Unknown combinations hold the current state.
func Next(current Step, ev Event, iterationsUsed, maxIterations int) Step {
	if current == StepVerified || current == StepExhausted {
		return current
	}
	if ev == EventTimeout {
		return StepExhausted
	}

	budgetLeft := iterationsUsed < maxIterations

	switch current {
	case StepPending:
		if ev == EventBegin {
			return StepRetrieving
		}
	case StepRetrieving:
		switch ev {
		case EventPassages:
			return StepGenerating
		case EventNoPassages, EventStageFailed:
			return refineOrExhaust(budgetLeft)
		}
	case StepGenerating:
		switch ev {
		case EventDraft:
			return StepVerifying
		case EventStageFailed:
			return refineOrExhaust(budgetLeft)
		}
	case StepVerifying:
		switch ev {
		case EventGrounded:
			return StepVerified
		case EventUngrounded, EventStageFailed:
			return refineOrExhaust(budgetLeft)
		}
	case StepRefining:
		if ev == EventBegin {
			return StepRetrieving
		}
	}
	return current
}

func refineOrExhaust(budgetLeft bool) Step {
	if budgetLeft {
		return StepRefining
	}
	return StepExhausted
}

// Terminal reports whether the step accepts no further events.
func Terminal(s Step) bool {
	return s == StepVerified || s == StepExhausted
}
