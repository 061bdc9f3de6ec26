package krishimitra

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		current   VoteState
		requested VoteType
		next      VoteState
		deltaUp   int64
		deltaDown int64
	}{
		{NoVote, Up, VotedUp, 1, 0},
		{NoVote, Down, VotedDown, 0, 1},
		{VotedUp, Up, NoVote, -1, 0},
		{VotedUp, Down, VotedDown, -1, 1},
		{VotedDown, Down, NoVote, 0, -1},
		{VotedDown, Up, VotedUp, 1, -1},
	}

	for _, test := range tests {
		t.Run(test.current.String()+"_"+test.requested.String(), func(t *testing.T) {
			next, du, dd := Transition(test.current, test.requested)
			require.Equal(t, test.next, next)
			require.Equal(t, test.deltaUp, du)
			require.Equal(t, test.deltaDown, dd)
		})
	}
}

func TestParseVoteType(t *testing.T) {
	r := require.New(t)

	up, ok := ParseVoteType("up")
	r.True(ok)
	r.Equal(Up, up)

	down, ok := ParseVoteType("down")
	r.True(ok)
	r.Equal(Down, down)

	_, ok = ParseVoteType("sideways")
	r.False(ok)

	_, ok = ParseVoteType("")
	r.False(ok)
}

func TestVoteState(t *testing.T) {
	r := require.New(t)

	var missing *Vote
	r.Equal(NoVote, missing.State())
	r.Equal(VotedUp, (&Vote{Up: true}).State())
	r.Equal(VotedDown, (&Vote{Up: false}).State())
}
