package workflow

import "fmt"

// Action is the operator facing name of a transition.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

var actionTargets = map[Action]Status{
	ActionApprove:  StatusConfirmed,
	ActionReject:   StatusRejected,
	ActionCancel:   StatusCancelled,
	ActionComplete: StatusCompleted,
}

var actionOrder = []Action{ActionApprove, ActionReject, ActionCancel, ActionComplete}

// Target returns the status an action moves a reservation into.
func (a Action) Target() (Status, error) {
	st, ok := actionTargets[a]
	if !ok {
		return "", ErrUnknownAction.WithField("action", fmt.Sprintf("unknown action %q", string(a)))
	}
	return st, nil
}

// RequiresMotive reports whether the action needs a motive text.
func (a Action) RequiresMotive() bool {
	return actionTargets[a].RequiresMotive()
}

// AvailableActions lists the actions legal from s.
func AvailableActions(s Status) []Action {
	var out []Action
	for _, a := range actionOrder {
		if CanTransition(s, actionTargets[a]) {
			out = append(out, a)
		}
	}
	return out
}
