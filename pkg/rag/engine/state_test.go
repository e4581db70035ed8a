package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	cases := []struct {
		name       string
		current    Step
		event      Event
		iterations int
		max        int
		want       Step
	}{
		{"pending begins retrieving", StepPending, EventBegin, 0, 3, StepRetrieving},
		{"retrieval with passages generates", StepRetrieving, EventPassages, 1, 3, StepGenerating},
		{"empty retrieval refines with budget", StepRetrieving, EventNoPassages, 1, 3, StepRefining},
		{"empty retrieval exhausts without budget", StepRetrieving, EventNoPassages, 3, 3, StepExhausted},
		{"retrieval failure refines", StepRetrieving, EventStageFailed, 1, 3, StepRefining},
		{"draft moves to verifying", StepGenerating, EventDraft, 1, 3, StepVerifying},
		{"generation failure exhausts at cap", StepGenerating, EventStageFailed, 3, 3, StepExhausted},
		{"grounded verifies", StepVerifying, EventGrounded, 1, 3, StepVerified},
		{"ungrounded refines with budget", StepVerifying, EventUngrounded, 1, 3, StepRefining},
		{"ungrounded exhausts at cap", StepVerifying, EventUngrounded, 3, 3, StepExhausted},
		{"refining restarts retrieval", StepRefining, EventBegin, 1, 3, StepRetrieving},
		{"timeout forces exhausted", StepGenerating, EventTimeout, 0, 3, StepExhausted},
		{"verified is terminal", StepVerified, EventUngrounded, 0, 3, StepVerified},
		{"exhausted is terminal", StepExhausted, EventBegin, 0, 3, StepExhausted},
		{"unknown event holds state", StepRetrieving, EventDraft, 1, 3, StepRetrieving},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Next(tc.current, tc.event, tc.iterations, tc.max))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(StepVerified))
	assert.True(t, Terminal(StepExhausted))
	assert.False(t, Terminal(StepRefining))
	assert.False(t, Terminal(StepPending))
}
