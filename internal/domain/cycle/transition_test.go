package cycle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateTransition(t *testing.T) {
	legal := [][2]Status{
		{StatusEditing, StatusSent},
		{StatusSent, StatusAwaitingFeedback},
		{StatusSent, StatusCorrecting},
		{StatusAwaitingFeedback, StatusCorrecting},
		{StatusCorrecting, StatusAwaitingFeedback},
		{StatusCorrecting, StatusApproved},
	}
	for _, tr := range legal {
		require.NoError(t, ValidateTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	illegal := [][2]Status{
		{StatusEditing, StatusApproved},
		{StatusEditing, StatusCorrecting},
		{StatusSent, StatusEditing},
		{StatusApproved, StatusEditing},
		{StatusApproved, StatusSent},
		{StatusAwaitingFeedback, StatusApproved},
		{StatusCorrecting, StatusCorrecting},
	}
	for _, tr := range illegal {
		require.ErrorIs(t, ValidateTransition(tr[0], tr[1]), ErrInvalidTransition, "%s -> %s", tr[0], tr[1])
	}
}

func TestNextSteps(t *testing.T) {
	require.Equal(t, []Status{StatusSent}, NextSteps(StatusEditing))
	require.Empty(t, NextSteps(StatusApproved))
	require.True(t, StatusApproved.Terminal())
	require.False(t, Status("listo").Valid())
}

func TestCurrent(t *testing.T) {
	require.Nil(t, Current(nil, 0))

	cycles := []Cycle{{ID: "a", Number: 1}, {ID: "b", Number: 3}, {ID: "c", Number: 2}}
	require.Equal(t, "c", Current(cycles, 2).ID)
	require.Equal(t, "b", Current(cycles, 0).ID)
	require.Equal(t, "b", Current(cycles, 9).ID)
}
