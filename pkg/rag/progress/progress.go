package progress

import (
	"sync"
	"time"

	"legal-rag-be/pkg/rag"
)

// Step names one pipeline stage boundary reported to the client.
type Step string

const (
	StepStart      Step = "start"
	StepIntent     Step = "intent"
	StepSearch     Step = "search"
	StepEmbedding  Step = "embedding"
	StepFiltering  Step = "filtering"
	StepRanking    Step = "ranking"
	StepSummary    Step = "summary"
	StepFinalizing Step = "finalizing"
	StepComplete   Step = "complete"
)

var stepOrder = map[Step]int{
	StepStart:      0,
	StepIntent:     1,
	StepSearch:     2,
	StepEmbedding:  3,
	StepFiltering:  4,
	StepRanking:    5,
	StepSummary:    6,
	StepFinalizing: 7,
	StepComplete:   8,
}

// Order is the position of s in the pipeline, -1 when s is unknown.
func (s Step) Order() int {
	if o, ok := stepOrder[s]; ok {
		return o
	}
	return -1
}

// Event is what the client receives. It is never persisted.
type Event struct {
	Step      Step       `json:"step"`
	Message   string     `json:"message"`
	Intent    rag.Intent `json:"intent,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Sink delivers events for a client id. Implementations must not block:
// a slow or missing listener loses the event.
type Sink interface {
	Send(clientID string, event Event)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(clientID string, event Event)

func (f SinkFunc) Send(clientID string, event Event) { f(clientID, event) }

// NoopSink drops everything.
type NoopSink struct{}

func (NoopSink) Send(string, Event) {}

// Recorder keeps every event it receives, grouped by client id.
type Recorder struct {
	mu     sync.Mutex
	events map[string][]Event
}

func NewRecorder() *Recorder {
	return &Recorder{events: make(map[string][]Event)}
}

func (r *Recorder) Send(clientID string, event Event) {
	r.mu.Lock()
	r.events[clientID] = append(r.events[clientID], event)
	r.mu.Unlock()
}

func (r *Recorder) Events(clientID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events[clientID]))
	copy(out, r.events[clientID])
	return out
}

func (r *Recorder) Steps(clientID string) []Step {
	events := r.Events(clientID)
	out := make([]Step, len(events))
	for i, e := range events {
		out[i] = e.Step
	}
	return out
}
