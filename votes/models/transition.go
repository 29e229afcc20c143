// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

// State is the vote state of a (voter, target) pair.
type State string

const (
	StateNoVote    State = "none"
	StateUpvoted   State = "upvote"
	StateDownvoted State = "downvote"
)

// StateOf returns the state held by a ledger record, or StateNoVote for nil.
func StateOf(rec *VoteRecord) State {
	if rec == nil {
		return StateNoVote
	}
	return stateFor(rec.VoteType)
}

func stateFor(v VoteType) State {
	switch v {
	case VoteUp:
		return StateUpvoted
	case VoteDown:
		return StateDownvoted
	}
	return StateNoVote
}

// Transition is the ledger operation implied by a request.
type Transition string

const (
	TransitionCreate Transition = "create"
	TransitionDelete Transition = "delete"
	TransitionFlip   Transition = "flip"
)

// NextTransition applies the state machine: no vote creates, the same vote toggles off and
// the other vote flips.
func NextTransition(current State, requested VoteType) Transition {
	switch {
	case current == StateNoVote:
		return TransitionCreate
	case current == stateFor(requested):
		return TransitionDelete
	default:
		return TransitionFlip
	}
}

// ResultingState is the state after applying t for requested.
func (t Transition) ResultingState(requested VoteType) State {
	if t == TransitionDelete {
		return StateNoVote
	}
	return stateFor(requested)
}

// CounterDelta is a signed adjustment of the up and down counters. The same delta applies to
// the target's counts, the voter's given counts and the author's received counts.
type CounterDelta struct {
	Up   int64
	Down int64
}

// IsZero reports whether the delta changes nothing.
func (d CounterDelta) IsZero() bool {
	return d.Up == 0 && d.Down == 0
}

// Negate returns the opposite adjustment.
func (d CounterDelta) Negate() CounterDelta {
	return CounterDelta{Up: -d.Up, Down: -d.Down}
}

// DeltaFor returns the adjustment of a single vote of type v in direction (+1 or -1).
func DeltaFor(v VoteType, direction int64) CounterDelta {
	if v == VoteUp {
		return CounterDelta{Up: direction}
	}
	return CounterDelta{Down: direction}
}

// Delta returns the counter adjustment of t. previous is the stored vote type; it is ignored
// for Create.
func (t Transition) Delta(previous, requested VoteType) CounterDelta {
	switch t {
	case TransitionCreate:
		return DeltaFor(requested, 1)
	case TransitionDelete:
		return DeltaFor(previous, 1).Negate()
	case TransitionFlip:
		from, to := DeltaFor(previous, 1).Negate(), DeltaFor(requested, 1)
		return CounterDelta{Up: from.Up + to.Up, Down: from.Down + to.Down}
	}
	return CounterDelta{}
}
