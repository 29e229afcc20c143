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

// Post represents the complete post entity in the database
type Post struct {
	ObjectId      uuid.UUID  `json:"objectId" bson:"objectId"`
	AuthorID      uuid.UUID  `json:"authorId" bson:"authorId"`
	AuthorName    string     `json:"authorName" bson:"authorName"`
	Title         string     `json:"title" bson:"title"`
	Body          string     `json:"body" bson:"body"`
	UpvoteCount   int64      `json:"upvoteCount" bson:"upvoteCount"`
	DownvoteCount int64      `json:"downvoteCount" bson:"downvoteCount"`
	Score         float64    `json:"score" bson:"score"`
	Deleted       bool       `json:"deleted" bson:"deleted"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Counts returns the vote counters of the post.
func (p *Post) Counts() votemodels.Counts {
	return votemodels.Counts{Up: p.UpvoteCount, Down: p.DownvoteCount}
}

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sort orders for listing posts.
const (
	SortHot = "hot"
	SortNew = "new"
)

// PostQuery is decoded from the query string of GET /posts.
type PostQuery struct {
	Sort  string `schema:"sort"`
	Page  int    `schema:"page"`
	Limit int    `schema:"limit"`
}

// PostsListResponse is the body of GET /posts.
type PostsListResponse struct {
	Posts []Post `json:"posts"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
