package order

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNext_HappyPath(t *testing.T) {
	steps := []struct {
		cur    State
		action Action
		want   State
	}{
		{StateBasket, ActionStart, StateCreated},
		{StateCreated, ActionCollecting, StateCollecting},
		{StateCollecting, ActionCollected, StateCollected},
		{StateCollected, ActionShipped, StateShipped},
		{StateShipped, ActionDelivered, StateDelivered},
	}
	for _, s := range steps {
		got, err := Next(s.cur, s.action)
		require.NoError(t, err, "%s + %s", s.cur, s.action)
		require.Equal(t, s.want, got)
	}
}

func TestNext_RejectsSkippedStates(t *testing.T) {
	// shipping an order that was never collected must fail
	_, err := Next(StateCreated, ActionShipped)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// no backward transitions
	_, err = Next(StateShipped, ActionCollecting)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// starting an already started order must fail
	_, err = Next(StateCreated, ActionStart)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNext_CancelFromAnyNonTerminal(t *testing.T) {
	for _, cur := range []State{StateBasket, StateCreated, StateCollecting, StateCollected, StateShipped} {
		got, err := Next(cur, ActionCanceled)
		require.NoError(t, err, "cancel from %s", cur)
		require.Equal(t, StateCanceled, got)
	}
}

func TestNext_TerminalStatesAreFinal(t *testing.T) {
	for _, cur := range []State{StateDelivered, StateCanceled} {
		for _, action := range []Action{ActionStart, ActionCollecting, ActionCollected, ActionShipped, ActionDelivered, ActionCanceled} {
			_, err := Next(cur, action)
			require.ErrorIs(t, err, ErrInvalidTransition, "%s + %s", cur, action)
		}
	}
}
