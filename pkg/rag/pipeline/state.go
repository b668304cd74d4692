package pipeline

import "fmt"

// TurnState is a node of the per-turn state machine. A turn starts at
// StateStart and always ends at StateDone.
type TurnState string

const (
	StateStart                TurnState = "START"
	StateIntentClassified     TurnState = "INTENT_CLASSIFIED"
	StateShortCircuitAnswered TurnState = "SHORT_CIRCUIT_ANSWERED"
	StateRagSearching         TurnState = "RAG_SEARCHING"
	StateRagRanking           TurnState = "RAG_RANKING"
	StateRagAnswered          TurnState = "RAG_ANSWERED"
	StateDone                 TurnState = "DONE"
)

var transitions = map[TurnState][]TurnState{
	StateStart:                {StateIntentClassified},
	StateIntentClassified:     {StateShortCircuitAnswered, StateRagSearching},
	StateShortCircuitAnswered: {StateDone},
	StateRagSearching:         {StateRagRanking},
	StateRagRanking:           {StateRagAnswered},
	StateRagAnswered:          {StateDone},
}

// machine records the path a turn took. It is owned by one Run call.
type machine struct {
	current TurnState
	path    []TurnState
}

func newMachine() *machine {
	return &machine{current: StateStart, path: []TurnState{StateStart}}
}

func (m *machine) advance(to TurnState) error {
	for _, next := range transitions[m.current] {
		if next == to {
			m.current = to
			m.path = append(m.path, to)
			return nil
		}
	}
	return fmt.Errorf("illegal turn transition %s -> %s", m.current, to)
}
