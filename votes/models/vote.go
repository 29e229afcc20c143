// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"strings"
	"time"

	uuid "github.com/gofrs/uuid"
)

// TargetType is the kind of entity a vote is cast on.
type TargetType string

const (
	TargetPost    TargetType = "Post"
	TargetComment TargetType = "Comment"
)

// TargetTypes lists every votable kind.
var TargetTypes = []TargetType{TargetPost, TargetComment}

// ParseTargetType accepts "Post" and "Comment" in any letter case.
func ParseTargetType(s string) (TargetType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range TargetTypes {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// VoteType is the direction of a vote.
type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

// ParseVoteType accepts "upvote" and "downvote" in any letter case.
func ParseVoteType(s string) (VoteType, bool) {
	v := VoteType(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", false
	}
	return v, true
}

// IsValid checks if the vote type is valid
func (v VoteType) IsValid() bool {
	return v == VoteUp || v == VoteDown
}

// VoteKey identifies the single ledger slot of a voter on a target.
type VoteKey struct {
	Voter      uuid.UUID
	TargetType TargetType
	TargetID   uuid.UUID
}

// VoteRecord is one ledger entry: the current vote of a voter on a target.
type VoteRecord struct {
	ObjectId   uuid.UUID  `json:"objectId" bson:"objectId"`
	Voter      uuid.UUID  `json:"voterId" bson:"voterId"`
	TargetType TargetType `json:"targetType" bson:"targetType"`
	TargetID   uuid.UUID  `json:"targetId" bson:"targetId"`
	VoteType   VoteType   `json:"voteType" bson:"voteType"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Key returns the ledger key of the record.
func (r *VoteRecord) Key() VoteKey {
	return VoteKey{Voter: r.Voter, TargetType: r.TargetType, TargetID: r.TargetID}
}

// Counts are the stored vote counters of a target.
type Counts struct {
	Up   int64 `json:"upvoteCount" bson:"upvoteCount"`
	Down int64 `json:"downvoteCount" bson:"downvoteCount"`
}

// Net returns up minus down.
func (c Counts) Net() int64 {
	return c.Up - c.Down
}

// Total returns up plus down.
func (c Counts) Total() int64 {
	return c.Up + c.Down
}

// VoteRequest is the body of POST /votes.
type VoteRequest struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	VoteType   string `json:"voteType"`
}

// VoteResult is returned after every successful transition.
type VoteResult struct {
	UpvoteCount   int64   `json:"upvoteCount"`
	DownvoteCount int64   `json:"downvoteCount"`
	Score         float64 `json:"score"`
	UserVote      State   `json:"userVote"`
}

// UserVotesQuery is decoded from the query string of GET /votes. TargetIDs accepts repeated
// parameters as well as a comma separated list.
type UserVotesQuery struct {
	TargetType string   `schema:"targetType"`
	TargetIDs  []string `schema:"targetIds"`
}

// UserVotesResponse is the body of GET /votes.
type UserVotesResponse struct {
	Votes map[string]State `json:"votes"`
}
