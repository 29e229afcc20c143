// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"time"

	uuid "github.com/gofrs/uuid"
)

// User is the forum account document. Only the fields the vote engine needs are modelled.
type User struct {
	ObjectId    uuid.UUID  `json:"objectId" bson:"objectId"`
	Username    string     `json:"username" bson:"username"`
	DisplayName string     `json:"displayName" bson:"displayName"`
	Reputation  Reputation `json:"reputation" bson:"reputation"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
}

// Reputation holds the vote counters embedded in a user.
type Reputation struct {
	UpvotesGiven      int64 `json:"upvotesGiven" bson:"upvotesGiven"`
	DownvotesGiven    int64 `json:"downvotesGiven" bson:"downvotesGiven"`
	UpvotesReceived   int64 `json:"upvotesReceived" bson:"upvotesReceived"`
	DownvotesReceived int64 `json:"downvotesReceived" bson:"downvotesReceived"`
}

// Karma is received upvotes minus received downvotes.
func (r Reputation) Karma() int64 {
	return r.UpvotesReceived - r.DownvotesReceived
}

// Document paths of the reputation counters.
const (
	FieldUpvotesGiven      = "reputation.upvotesGiven"
	FieldDownvotesGiven    = "reputation.downvotesGiven"
	FieldUpvotesReceived   = "reputation.upvotesReceived"
	FieldDownvotesReceived = "reputation.downvotesReceived"
)

// ReputationDelta is a signed adjustment of the four counters.
type ReputationDelta struct {
	UpvotesGiven      int64
	DownvotesGiven    int64
	UpvotesReceived   int64
	DownvotesReceived int64
}

// IsZero reports whether the delta changes nothing.
func (d ReputationDelta) IsZero() bool {
	return d == ReputationDelta{}
}

// Fields returns the non-zero adjustments keyed by document path.
func (d ReputationDelta) Fields() map[string]int64 {
	fields := make(map[string]int64, 4)
	for path, v := range map[string]int64{
		FieldUpvotesGiven:      d.UpvotesGiven,
		FieldDownvotesGiven:    d.DownvotesGiven,
		FieldUpvotesReceived:   d.UpvotesReceived,
		FieldDownvotesReceived: d.DownvotesReceived,
	} {
		if v != 0 {
			fields[path] = v
		}
	}
	return fields
}

// Apply adds d to r in place, flooring every counter at zero, and returns the clamped paths.
func (r *Reputation) Apply(d ReputationDelta) []string {
	var clamped []string
	add := func(v *int64, delta int64, path string) {
		*v += delta
		if *v < 0 {
			*v = 0
			clamped = append(clamped, path)
		}
	}
	add(&r.UpvotesGiven, d.UpvotesGiven, FieldUpvotesGiven)
	add(&r.DownvotesGiven, d.DownvotesGiven, FieldDownvotesGiven)
	add(&r.UpvotesReceived, d.UpvotesReceived, FieldUpvotesReceived)
	add(&r.DownvotesReceived, d.DownvotesReceived, FieldDownvotesReceived)
	return clamped
}

// ReputationResponse is the body of GET /users/:userId/reputation.
type ReputationResponse struct {
	UserID uuid.UUID `json:"userId"`
	Reputation
	Karma int64 `json:"karma"`
}
