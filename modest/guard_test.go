package modest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuardChain_CanExecuteRequiresBoth(t *testing.T) {
	yes := GuardFunc{CanExecuteFunc: func(*Operation, *State) bool { return true }}
	no := GuardFunc{CanExecuteFunc: func(*Operation, *State) bool { return false }}

	require.True(t, (&GuardChain{G1: yes, G2: yes}).CanExecute(nil, nil))
	require.False(t, (&GuardChain{G1: yes, G2: no}).CanExecute(nil, nil))
	require.False(t, (&GuardChain{G1: no, G2: yes}).CanExecute(nil, nil))
	require.True(t, (&GuardChain{G1: yes, G2: nil}).CanExecute(nil, nil))
}

// TestGuardChain_MustCancelIsOrOfBothLinks pins down the composition the
// dispatcher relies on: the chain demands cancellation if EITHER link
// does, evaluated by calling MustCancel on each link (not CanExecute).
func TestGuardChain_MustCancelIsOrOfBothLinks(t *testing.T) {
	mustCancelCalled := false
	canExecuteCalled := false
	g2 := GuardFunc{
		MustCancelFunc: func(*Operation, *State) bool {
			mustCancelCalled = true
			return true
		},
		CanExecuteFunc: func(*Operation, *State) bool {
			canExecuteCalled = true
			return false
		},
	}
	neverCancels := GuardFunc{MustCancelFunc: func(*Operation, *State) bool { return false }}

	chain := &GuardChain{G1: neverCancels, G2: g2}
	require.True(t, chain.MustCancel(nil, nil))
	require.True(t, mustCancelCalled)
	require.False(t, canExecuteCalled)
}

func TestGuardChain_MustCancelShortCircuitsOnFirstLink(t *testing.T) {
	secondCalled := false
	g1 := GuardFunc{MustCancelFunc: func(*Operation, *State) bool { return true }}
	g2 := GuardFunc{MustCancelFunc: func(*Operation, *State) bool { secondCalled = true; return false }}

	require.True(t, (&GuardChain{G1: g1, G2: g2}).MustCancel(nil, nil))
	require.False(t, secondCalled)
}
