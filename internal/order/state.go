package order

import "errors"

type Action string

const (
	ActionStart      Action = "start_order"
	ActionCollecting Action = "order_collecting"
	ActionCollected  Action = "order_collected"
	ActionShipped    Action = "order_shipped"
	ActionDelivered  Action = "order_delivered"
	ActionCanceled   Action = "order_canceled"
)

var ErrInvalidTransition = errors.New("invalid state transition")

// flow is the explicit transition table: each action names the one state it
// may be applied to and the state it produces. Cancellation is the only
// action handled outside the table, legal from every non-terminal state.
var flow = map[Action]struct{ from, to State }{
	ActionStart:      {StateBasket, StateCreated},
	ActionCollecting: {StateCreated, StateCollecting},
	ActionCollected:  {StateCollecting, StateCollected},
	ActionShipped:    {StateCollected, StateShipped},
	ActionDelivered:  {StateShipped, StateDelivered},
}

func (s State) Terminal() bool {
	return s == StateDelivered || s == StateCanceled
}

// Next returns the state that applying action to cur produces, or
// ErrInvalidTransition for any pair outside the table.
func Next(cur State, action Action) (State, error) {
	if action == ActionCanceled {
		if cur.Terminal() {
			return "", ErrInvalidTransition
		}
		return StateCanceled, nil
	}
	step, ok := flow[action]
	if !ok || step.from != cur {
		return "", ErrInvalidTransition
	}
	return step.to, nil
}
