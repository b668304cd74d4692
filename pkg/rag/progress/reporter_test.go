package progress

import (
	"testing"
	"time"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/pkg/rag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_LegalPathOrder(t *testing.T) {
	rec := NewRecorder()
	r := NewReporter(rec, "client-1", logger.NewNopLogger())

	steps := []Step{StepStart, StepIntent, StepSearch, StepEmbedding, StepFiltering, StepRanking, StepSummary, StepFinalizing, StepComplete}
	for _, s := range steps {
		assert.True(t, r.Emit(s, string(s)))
	}

	assert.Equal(t, steps, rec.Steps("client-1"))
	assert.True(t, r.Done())
}

func TestReporter_ShortCircuitSkipsBracketedSteps(t *testing.T) {
	rec := NewRecorder()
	r := NewReporter(rec, "client-1", logger.NewNopLogger())

	r.Emit(StepStart, "Starting")
	r.SetIntent(rag.IntentGreeting)
	r.Emit(StepIntent, "Intent classified")
	r.Complete("Done")

	events := rec.Events("client-1")
	require.Len(t, events, 3)
	assert.Equal(t, []Step{StepStart, StepIntent, StepComplete}, rec.Steps("client-1"))
	assert.Empty(t, events[0].Intent)
	assert.Equal(t, rag.IntentGreeting, events[1].Intent)
	assert.Equal(t, rag.IntentGreeting, events[2].Intent)
}

func TestReporter_DropsInvalidSteps(t *testing.T) {
	tests := []struct {
		name    string
		emits   []Step
		want    []Step
		dropped int
	}{
		{name: "repeat", emits: []Step{StepStart, StepStart}, want: []Step{StepStart}, dropped: 1},
		{name: "backwards", emits: []Step{StepStart, StepRanking, StepSearch}, want: []Step{StepStart, StepRanking}, dropped: 1},
		{name: "after complete", emits: []Step{StepStart, StepComplete, StepComplete, StepFinalizing}, want: []Step{StepStart, StepComplete}, dropped: 2},
		{name: "unknown", emits: []Step{StepStart, Step("bogus")}, want: []Step{StepStart}, dropped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder()
			r := NewReporter(rec, "c", logger.NewNopLogger())

			dropped := 0
			for _, s := range tt.emits {
				if !r.Emit(s, "") {
					dropped++
				}
			}

			assert.Equal(t, tt.want, rec.Steps("c"))
			assert.Equal(t, tt.dropped, dropped)
		})
	}
}

func TestReporter_NoClientStillTracksOrder(t *testing.T) {
	r := NewReporter(nil, "", logger.NewNopLogger())
	assert.True(t, r.Emit(StepStart, ""))
	assert.True(t, r.Complete(""))
	assert.False(t, r.Complete(""))
}

func TestReporter_Timestamps(t *testing.T) {
	rec := NewRecorder()
	r := NewReporter(rec, "c", logger.NewNopLogger())
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	r.Emit(StepStart, "Starting")

	assert.Equal(t, fixed, rec.Events("c")[0].Timestamp)
}

func TestSinkFunc(t *testing.T) {
	var got []Event
	sink := SinkFunc(func(_ string, e Event) { got = append(got, e) })
	r := NewReporter(sink, "c", logger.NewNopLogger())

	r.Emit(StepStart, "hi")

	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Message)
}
