// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"time"

	uuid "github.com/gofrs/uuid"
	votemodels "github.com/qolzam/forum/votes/models"
)

// Comment represents a comment on a post
type Comment struct {
	ObjectId      uuid.UUID  `json:"objectId" bson:"objectId"`
	PostID        uuid.UUID  `json:"postId" bson:"postId"`
	AuthorID      uuid.UUID  `json:"authorId" bson:"authorId"`
	AuthorName    string     `json:"authorName" bson:"authorName"`
	Body          string     `json:"body" bson:"body"`
	UpvoteCount   int64      `json:"upvoteCount" bson:"upvoteCount"`
	DownvoteCount int64      `json:"downvoteCount" bson:"downvoteCount"`
	Score         float64    `json:"score" bson:"score"`
	Deleted       bool       `json:"deleted" bson:"deleted"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Counts returns the vote counters of the comment.
func (c *Comment) Counts() votemodels.Counts {
	return votemodels.Counts{Up: c.UpvoteCount, Down: c.DownvoteCount}
}

// CreateCommentRequest is the body of POST /posts/:postId/comments.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// Sort orders for listing comments.
const (
	SortBest = "best"
	SortNew  = "new"
)

// CommentQuery is decoded from the query string of GET /posts/:postId/comments.
type CommentQuery struct {
	Sort  string `schema:"sort"`
	Page  int    `schema:"page"`
	Limit int    `schema:"limit"`
}

// CommentsListResponse is the body of GET /posts/:postId/comments.
type CommentsListResponse struct {
	Comments []Comment `json:"comments"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}
