// Package wizard sequences the four board configuration steps. A Wizard
// owns the per-session state: the board id handed forward from step 1, the
// accepted columns, and the working drafts with their counters.
package wizard

import "fmt"

// State is one wizard step.
type State string

const (
	StateBasics     State = "basics"
	StateListView   State = "list_view"
	StateCreateEdit State = "create_edit"
	StateDetailView State = "detail_view"
	StateComplete   State = "complete"
)

// Steps lists the submittable states in order.
var Steps = []State{StateBasics, StateListView, StateCreateEdit, StateDetailView}

// Transitions is the forward-only step graph. Re-entering a completed
// step is handled by Reopen, not by a backward edge.
var Transitions = map[State][]State{
	StateBasics:     {StateListView},
	StateListView:   {StateCreateEdit},
	StateCreateEdit: {StateDetailView},
	StateDetailView: {StateComplete},
	StateComplete:   {},
}

// ParseState accepts a state name or its URL form (create-edit).
func ParseState(s string) (State, bool) {
	switch s {
	case "basics":
		return StateBasics, true
	case "list", "list_view", "list-view":
		return StateListView, true
	case "create_edit", "create-edit":
		return StateCreateEdit, true
	case "detail", "detail_view", "detail-view", "view":
		return StateDetailView, true
	case "complete":
		return StateComplete, true
	}
	return "", false
}

func next(s State) State {
	if to := Transitions[s]; len(to) > 0 {
		return to[0]
	}
	return s
}

// validateTransition checks whether moving from current to target is
// allowed by Transitions.
func validateTransition(current, target State) error {
	allowed, ok := Transitions[current]
	if !ok {
		return fmt.Errorf("%w: unknown state %s", ErrInvalidTransition, current)
	}
	for _, s := range allowed {
		if s == target {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, target)
}
