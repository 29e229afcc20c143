package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTargetType(t *testing.T) {
	for _, in := range []string{"Post", "post", " POST "} {
		got, ok := ParseTargetType(in)
		assert.True(t, ok, in)
		assert.Equal(t, TargetPost, got)
	}
	got, ok := ParseTargetType("comment")
	assert.True(t, ok)
	assert.Equal(t, TargetComment, got)

	_, ok = ParseTargetType("user")
	assert.False(t, ok)
	_, ok = ParseTargetType("")
	assert.False(t, ok)
}

func TestParseVoteType(t *testing.T) {
	got, ok := ParseVoteType("UpVote")
	assert.True(t, ok)
	assert.Equal(t, VoteUp, got)

	got, ok = ParseVoteType("downvote")
	assert.True(t, ok)
	assert.Equal(t, VoteDown, got)

	_, ok = ParseVoteType("sideways")
	assert.False(t, ok)
	_, ok = ParseVoteType("  ")
	assert.False(t, ok)
	assert.False(t, VoteType("").IsValid())
}

func TestNextTransition(t *testing.T) {
	tests := []struct {
		current   State
		requested VoteType
		want      Transition
		after     State
	}{
		{StateNoVote, VoteUp, TransitionCreate, StateUpvoted},
		{StateNoVote, VoteDown, TransitionCreate, StateDownvoted},
		{StateUpvoted, VoteUp, TransitionDelete, StateNoVote},
		{StateDownvoted, VoteDown, TransitionDelete, StateNoVote},
		{StateUpvoted, VoteDown, TransitionFlip, StateDownvoted},
		{StateDownvoted, VoteUp, TransitionFlip, StateUpvoted},
	}
	for _, tt := range tests {
		got := NextTransition(tt.current, tt.requested)
		assert.Equal(t, tt.want, got, "%s + %s", tt.current, tt.requested)
		assert.Equal(t, tt.after, got.ResultingState(tt.requested))
	}
}

func TestTransitionDelta(t *testing.T) {
	assert.Equal(t, CounterDelta{Up: 1}, TransitionCreate.Delta("", VoteUp))
	assert.Equal(t, CounterDelta{Down: 1}, TransitionCreate.Delta("", VoteDown))
	assert.Equal(t, CounterDelta{Up: -1}, TransitionDelete.Delta(VoteUp, VoteUp))
	assert.Equal(t, CounterDelta{Down: -1}, TransitionDelete.Delta(VoteDown, VoteDown))
	assert.Equal(t, CounterDelta{Up: -1, Down: 1}, TransitionFlip.Delta(VoteUp, VoteDown))
	assert.Equal(t, CounterDelta{Up: 1, Down: -1}, TransitionFlip.Delta(VoteDown, VoteUp))
	assert.Equal(t, CounterDelta{Up: 1, Down: -1}, CounterDelta{Up: -1, Down: 1}.Negate())
	assert.True(t, CounterDelta{}.IsZero())
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateNoVote, StateOf(nil))
	assert.Equal(t, StateDownvoted, StateOf(&VoteRecord{VoteType: VoteDown}))
}

func TestCounts(t *testing.T) {
	c := Counts{Up: 10, Down: 2}
	assert.Equal(t, int64(8), c.Net())
	assert.Equal(t, int64(12), c.Total())
}
