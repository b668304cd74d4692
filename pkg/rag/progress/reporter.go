package progress

import (
	"sync"
	"time"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/pkg/rag"
)

const module = "RAG-PROGRESS"

// Reporter emits the progress events of a single turn. Steps only move
// forward, and once complete has been sent the reporter goes silent.
type Reporter struct {
	sink     Sink
	clientID string
	logger   logger.ILogger
	now      func() time.Time

	mu     sync.Mutex
	last   int
	intent rag.Intent
	done   bool
}

// NewReporter binds a turn to clientID. An empty clientID or a nil sink
// yields a reporter that tracks order but sends nothing.
func NewReporter(sink Sink, clientID string, logger logger.ILogger) *Reporter {
	if sink == nil || clientID == "" {
		sink = NoopSink{}
	}
	return &Reporter{
		sink:     sink,
		clientID: clientID,
		logger:   logger,
		now:      time.Now,
		last:     -1,
	}
}

// SetIntent tags every later event with the classified intent.
func (r *Reporter) SetIntent(intent rag.Intent) {
	r.mu.Lock()
	r.intent = intent
	r.mu.Unlock()
}

// Emit pushes one event. A repeated, backward or post-complete step is
// dropped and false is returned.
func (r *Reporter) Emit(step Step, message string) bool {
	r.mu.Lock()
	order := step.Order()
	if r.done || order < 0 || order <= r.last {
		last, done := r.last, r.done
		r.mu.Unlock()
		r.logger.Warn(module, "Dropped out of order progress step", map[string]interface{}{
			"client_id": r.clientID,
			"step":      step,
			"last":      last,
			"done":      done,
		})
		return false
	}
	r.last = order
	if step == StepComplete {
		r.done = true
	}
	event := Event{
		Step:      step,
		Message:   message,
		Intent:    r.intent,
		Timestamp: r.now(),
	}
	r.mu.Unlock()

	r.sink.Send(r.clientID, event)
	return true
}

// Complete sends the terminal event unless one was already sent.
func (r *Reporter) Complete(message string) bool {
	return r.Emit(StepComplete, message)
}

// Done reports whether complete has been emitted.
func (r *Reporter) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}
