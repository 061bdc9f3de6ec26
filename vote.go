package krishimitra

import (
	"encoding/json"
	"time"
)

// A VoteType is one of the two vote actions a user can request on a post.
// It is a closed enumeration; anything else is rejected when parsing the
// request and never reaches the transition logic.
type VoteType int

const (
	Up VoteType = iota
	Down
)

// ParseVoteType converts the wire representation of a vote into a VoteType.
func ParseVoteType(s string) (VoteType, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	}
	return 0, false
}

func (t VoteType) String() string {
	if t == Up {
		return "up"
	}
	return "down"
}

// A VoteState is the current position of a user on a post. NoVote is a real
// state, stored as the absence of a ledger row; only the storage layer deals
// with that translation.
type VoteState int

const (
	NoVote VoteState = iota
	VotedUp
	VotedDown
)

func (s VoteState) String() string {
	switch s {
	case VotedUp:
		return "up"
	case VotedDown:
		return "down"
	default:
		return "none"
	}
}

// MarshalJSON renders the state as its wire string, not the internal int.
func (s VoteState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// A Vote is a ledger entry, the single source of truth for one user's
// current vote on one post. At most one row exists per (user, post).
type Vote struct {
	ID        int64     `db:"id"`
	PostID    int64     `db:"post_id"`
	UserID    int64     `db:"user_id"`
	Up        bool      `db:"up"`
	CreatedAt time.Time `db:"created_at"`
}

// State returns the ledger entry as a VoteState, mapping a nil entry to NoVote.
func (v *Vote) State() VoteState {
	if v == nil {
		return NoVote
	}
	if v.Up {
		return VotedUp
	}
	return VotedDown
}

// Transition computes the next ledger state and the counter deltas for a
// requested vote. Requesting the vote a user already holds removes it, so
// casting the same vote twice in a row toggles it off.
//
//	current  requested  next    Δup  Δdown
//	none     up         up      +1    0
//	none     down       down     0   +1
//	up       up         none    -1    0
//	up       down       down    -1   +1
//	down     down       none     0   -1
//	down     up         up      +1   -1
func Transition(current VoteState, requested VoteType) (next VoteState, deltaUp int64, deltaDown int64) {
	switch current {
	case VotedUp:
		if requested == Up {
			return NoVote, -1, 0
		}
		return VotedDown, -1, 1
	case VotedDown:
		if requested == Down {
			return NoVote, 0, -1
		}
		return VotedUp, 1, -1
	default:
		if requested == Up {
			return VotedUp, 1, 0
		}
		return VotedDown, 0, 1
	}
}
