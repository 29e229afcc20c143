// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/gofrs/uuid"
	commenterrors "github.com/qolzam/forum/comments/errors"
	"github.com/qolzam/forum/comments/models"
	"github.com/qolzam/forum/comments/repository"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/types"
	postmodels "github.com/qolzam/forum/posts/models"
)

// Listing limits
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
	MaxBodyLength   = 10000
)

// PostFinder resolves the live post a comment is attached to.
// It returns posterrors.ErrPostNotFound for missing or deleted posts.
type PostFinder interface {
	GetPost(ctx context.Context, id uuid.UUID) (*postmodels.Post, error)
}

// CommentService defines the comment operations exposed over HTTP.
type CommentService interface {
	CreateComment(ctx context.Context, user types.UserContext, postID uuid.UUID, req *models.CreateCommentRequest) (*models.Comment, error)
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	DeleteComment(ctx context.Context, user types.UserContext, id uuid.UUID) error
	ListComments(ctx context.Context, postID uuid.UUID, query *models.CommentQuery) (*models.CommentsListResponse, error)
}

type commentService struct {
	repo  repository.CommentRepository
	posts PostFinder
	now   func() time.Time
}

// NewCommentService creates a new comment service
func NewCommentService(repo repository.CommentRepository, posts PostFinder) CommentService {
	return &commentService{repo: repo, posts: posts, now: func() time.Time { return time.Now().UTC() }}
}

func (s *commentService) CreateComment(ctx context.Context, user types.UserContext, postID uuid.UUID, req *models.CreateCommentRequest) (*models.Comment, error) {
	if user.UserID == uuid.Nil {
		return nil, commenterrors.ErrMissingUserContext
	}
	body := strings.TrimSpace(req.Body)
	if body == "" || len(body) > MaxBodyLength {
		return nil, fmt.Errorf("%w: body must be 1-%d characters", commenterrors.ErrInvalidCommentData, MaxBodyLength)
	}
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate comment id: %w", err)
	}
	now := s.now()
	comment := &models.Comment{
		ObjectId:   id,
		PostID:     postID,
		AuthorID:   user.UserID,
		AuthorName: user.DisplayName,
		Body:       body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, interfaces.ErrNoDocuments) {
		return nil, commenterrors.ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	if comment.Deleted {
		return nil, commenterrors.ErrCommentNotFound
	}
	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, user types.UserContext, id uuid.UUID) error {
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if comment.AuthorID != user.UserID && !user.IsAdmin() {
		return commenterrors.ErrCommentOwnership
	}
	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, interfaces.ErrNoDocuments) {
			return commenterrors.ErrCommentNotFound
		}
		return err
	}
	return nil
}

func (s *commentService) ListComments(ctx context.Context, postID uuid.UUID, query *models.CommentQuery) (*models.CommentsListResponse, error) {
	sort := query.Sort
	switch sort {
	case "":
		sort = models.SortBest
	case models.SortBest, models.SortNew:
	default:
		return nil, fmt.Errorf("%w: %q, expected best or new", commenterrors.ErrInvalidSort, sort)
	}
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	comments, err := s.repo.ListByPost(ctx, postID, sort, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &models.CommentsListResponse{Comments: comments, Page: page, Limit: limit}, nil
}
