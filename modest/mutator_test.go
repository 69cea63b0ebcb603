package modest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errMutator1 = errors.New("mutator1 failed")

func TestMutatorChain_BothLinksAlwaysRun(t *testing.T) {
	var calledM1, calledM2 bool
	m1 := MutatorFunc{MutatePreFunc: func(*Operation, *State) error {
		calledM1 = true
		return errMutator1
	}}
	m2 := MutatorFunc{MutatePreFunc: func(*Operation, *State) error {
		calledM2 = true
		return nil
	}}

	err := (&MutatorChain{M1: m1, M2: m2}).MutatePre(nil, nil)
	require.True(t, calledM1)
	require.True(t, calledM2)
	require.ErrorIs(t, err, errMutator1)
}

func TestMutatorChain_NoMutatorsNoError(t *testing.T) {
	require.NoError(t, (&MutatorChain{}).MutatePre(nil, nil))
	require.NoError(t, (&MutatorChain{}).MutatePost(nil, nil))
}
